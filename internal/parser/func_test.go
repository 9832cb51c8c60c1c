package parser

import (
	"testing"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/lexer"
)

func TestSimpleFunctionDef(t *testing.T) {
	prog := mustParse(t, "func add(x: Int, y: Int) -> Int :\n  x + y")

	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected name add, got %s", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "x" || fn.Params[1].Name != "y" {
		t.Errorf("unexpected param names: %+v", fn.Params)
	}
	bt, ok := fn.ReturnType.(*ast.BasicType)
	if !ok || bt.Name != "Int" {
		t.Errorf("expected return type Int, got %+v", fn.ReturnType)
	}
	if _, ok := fn.Body.(*ast.BinaryOp); !ok {
		t.Errorf("expected BinaryOp body, got %T", fn.Body)
	}
}

func TestFunctionNoParams(t *testing.T) {
	prog := mustParse(t, "func hello() -> Int :\n  42")
	fn := prog.Functions[0]
	if len(fn.Params) != 0 {
		t.Errorf("expected 0 params, got %d", len(fn.Params))
	}
}

func TestFunctionWithRequiresAndEnsures(t *testing.T) {
	src := "func safeDiv(a: Int, b: Int) -> Int\n" +
		"  requires b != 0\n" +
		"  ensures a >= 0\n" +
		"  :\n" +
		"  a / b"
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	if len(fn.Requires) != 1 {
		t.Fatalf("expected 1 requires clause, got %d", len(fn.Requires))
	}
	if len(fn.Ensures) != 1 {
		t.Fatalf("expected 1 ensures clause, got %d", len(fn.Ensures))
	}
}

func TestMultipleFunctionDefs(t *testing.T) {
	src := "func add(x: Int, y: Int) -> Int :\n  x + y\n" +
		"func sub(x: Int, y: Int) -> Int :\n  x - y"
	prog := mustParse(t, src)
	if len(prog.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(prog.Functions))
	}
	if prog.Functions[0].Name != "add" || prog.Functions[1].Name != "sub" {
		t.Errorf("unexpected function order: %s, %s", prog.Functions[0].Name, prog.Functions[1].Name)
	}
}

func TestFunctionEffectAnnotationIsPreserved(t *testing.T) {
	src := "@effect(IO)\n" +
		"func greet(name: String) -> Unit :\n  name"
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	ann, ok := func() (ast.Annotation, bool) {
		for _, a := range fn.Annotations {
			if a.Name == "effect" {
				return a, true
			}
		}
		return ast.Annotation{}, false
	}()
	if !ok {
		t.Fatalf("expected an @effect annotation on greet, got %+v", fn.Annotations)
	}
	name, ok := ann.FindPositional(0)
	if !ok || name != "IO" {
		t.Errorf("expected @effect's positional argument to be IO, got %q (ok=%v)", name, ok)
	}
}

func TestExternFunctionDecl(t *testing.T) {
	src := `@extern("c_sqrt")
func sqrt(x: Int) -> Int`
	prog := mustParse(t, src)

	if len(prog.Functions) != 0 {
		t.Errorf("expected no full function defs, got %d", len(prog.Functions))
	}
	if len(prog.Externs) != 1 {
		t.Fatalf("expected 1 extern decl, got %d", len(prog.Externs))
	}
	ext := prog.Externs[0]
	if ext.Name != "sqrt" {
		t.Errorf("expected name sqrt, got %s", ext.Name)
	}
	if ext.ForeignName != "c_sqrt" {
		t.Errorf("expected foreign name c_sqrt, got %s", ext.ForeignName)
	}
	if ext.Variadic {
		t.Errorf("expected non-variadic extern")
	}
}

func TestExternVariadicFunctionDecl(t *testing.T) {
	src := `@extern("c_printf")
@variadic
func printf(fmt: String) -> Int`
	prog := mustParse(t, src)

	if len(prog.Externs) != 1 {
		t.Fatalf("expected 1 extern decl, got %d", len(prog.Externs))
	}
	if !prog.Externs[0].Variadic {
		t.Errorf("expected variadic extern")
	}
}

func TestFunctionWithOtherAnnotationsIsPreserved(t *testing.T) {
	src := `@source("legacy.ml")
func identity(x: Int) -> Int :
  x`
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	if len(fn.Annotations) != 1 || fn.Annotations[0].Name != "source" {
		t.Errorf("expected source annotation preserved, got %+v", fn.Annotations)
	}
}

func TestFunctionWithLetBody(t *testing.T) {
	prog := mustParse(t, "func compute(x: Int) -> Int :\n  let y = x * 2 in y + 1")
	fn := prog.Functions[0]
	if _, ok := fn.Body.(*ast.Let); !ok {
		t.Errorf("expected Let body, got %T", fn.Body)
	}
}

func TestFunctionWithMatchBody(t *testing.T) {
	src := "func describe(x: Int) -> String :\n" +
		"  match x with\n" +
		"    | 0 -> \"zero\"\n" +
		"    | _ -> \"nonzero\""
	prog := mustParse(t, src)
	fn := prog.Functions[0]
	m, ok := fn.Body.(*ast.Match)
	if !ok {
		t.Fatalf("expected Match body, got %T", fn.Body)
	}
	if len(m.Arms) != 2 {
		t.Errorf("expected 2 arms, got %d", len(m.Arms))
	}
}

func TestFunctionMissingColonIsAnError(t *testing.T) {
	errs := mustParseError(t, "func add(x: Int, y: Int) -> Int\n  x + y")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for missing ':'")
	}
}

func TestFunctionMissingBodyIsAnError(t *testing.T) {
	errs := mustParseError(t, "func add(x: Int, y: Int) -> Int :")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for missing function body")
	}
}

func TestUnrecognizedTopLevelTokenIsSkippedToEndOfLine(t *testing.T) {
	src := "huh this is nonsense\nfunc add(x: Int, y: Int) -> Int :\n  x + y"
	p := New(lexer.New(src, "test://unit"))
	prog := p.Parse()

	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for the unrecognized line")
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected recovery to still parse the following function, got %d functions", len(prog.Functions))
	}
}
