package types

import (
	"testing"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/lexer"
	"github.com/pole-lang/polec/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src, "test://unit"))
	prog := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return prog
}

func basicName(ty Type) string {
	bt, ok := ty.(*ast.BasicType)
	if !ok {
		return ""
	}
	return bt.Name
}

func TestInferLiterals(t *testing.T) {
	prog := parseProgram(t, "func f() -> Int :\n  1")
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferBinaryOpReturnsLeftOperandType(t *testing.T) {
	prog := parseProgram(t, `func f() -> Bool :
  1 == 2`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Preserved imprecision: == still reports the left operand's type (Int),
	// not Bool.
	if basicName(ty) != "Int" {
		t.Errorf("expected Int (left operand type), got %+v", ty)
	}
}

func TestInferUnboundVariableErrors(t *testing.T) {
	prog := parseProgram(t, "func f() -> Int :\n  x")
	_, err := Infer(prog.Functions[0].Body, NewEnv())
	if err == nil {
		t.Fatal("expected an error for unbound variable")
	}
	ie, ok := err.(*InferError)
	if !ok || ie.Code != "TYP001" {
		t.Errorf("expected TYP001, got %+v", err)
	}
}

func TestInferBuiltinIsNotAValue(t *testing.T) {
	prog := parseProgram(t, "func f() -> Int :\n  println")
	_, err := Infer(prog.Functions[0].Body, NewEnv())
	if err == nil {
		t.Fatal("expected an error for referencing println as a value")
	}
}

func TestInferLetBindsLocal(t *testing.T) {
	prog := parseProgram(t, `func f() -> Int :
  let x = 5 in
  x`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferLetUnderscoreDoesNotBind(t *testing.T) {
	prog := parseProgram(t, `func f() -> Int :
  let _ = 5 in
  7`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferIfReturnsThenBranchType(t *testing.T) {
	prog := parseProgram(t, `func f() -> Int :
  if 1 == 1 then 10 else 20`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferMatchReturnsFirstArmType(t *testing.T) {
	prog := parseProgram(t, `func f(n: Int) -> Int :
  match n with
    | 0 -> 1
    | _ -> 2`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferMatchWithNoArmsErrors(t *testing.T) {
	m := &ast.Match{Scrutinee: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}}
	_, err := Infer(m, NewEnv())
	if err == nil {
		t.Fatal("expected an error for an empty match")
	}
}

func TestInferFieldAccessOnRecord(t *testing.T) {
	env := NewEnv()
	env.Records["Point"] = []ast.RecordField{
		{Name: "x", Type: &ast.BasicType{Name: "Int"}},
		{Name: "y", Type: &ast.BasicType{Name: "Int"}},
	}
	env = env.WithLocal("p", &ast.BasicType{Name: "Point"})

	fa := &ast.FieldAccess{Record: &ast.Variable{Name: "p"}, Field: "x"}
	ty, err := Infer(fa, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferFieldAccessOnNonVariableBaseErrors(t *testing.T) {
	fa := &ast.FieldAccess{
		Record: &ast.FieldAccess{Record: &ast.Variable{Name: "p"}, Field: "a"},
		Field:  "x",
	}
	_, err := Infer(fa, NewEnv())
	if err == nil {
		t.Fatal("expected an error for a chained field-access base")
	}
	ie, ok := err.(*InferError)
	if !ok || ie.Code != "TYP003" {
		t.Errorf("expected TYP003, got %+v", err)
	}
}

func TestInferFieldAccessUnknownFieldErrors(t *testing.T) {
	env := NewEnv()
	env.Records["Point"] = []ast.RecordField{{Name: "x", Type: &ast.BasicType{Name: "Int"}}}
	env = env.WithLocal("p", &ast.BasicType{Name: "Point"})

	fa := &ast.FieldAccess{Record: &ast.Variable{Name: "p"}, Field: "z"}
	_, err := Infer(fa, env)
	ie, ok := err.(*InferError)
	if !ok || ie.Code != "TYP004" {
		t.Errorf("expected TYP004, got %+v", err)
	}
}

func TestInferApplicationOfUserFunction(t *testing.T) {
	env := NewEnv()
	env.FuncReturns["factorial"] = &ast.BasicType{Name: "Int"}

	app := &ast.Application{
		Func: &ast.Variable{Name: "factorial"},
		Arg:  &ast.Literal{Kind: ast.IntLit, Value: int64(5)},
	}
	ty, err := Infer(app, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferApplicationOfExternFunction(t *testing.T) {
	env := NewEnv()
	env.ExternReturns["c_sqrt"] = &ast.BasicType{Name: "Int"}

	app := &ast.Application{
		Func: &ast.Variable{Name: "c_sqrt"},
		Arg:  &ast.Literal{Kind: ast.IntLit, Value: int64(9)},
	}
	ty, err := Infer(app, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferApplicationFlattensMultiArgCalls(t *testing.T) {
	// foo(1, 2, 3) desugars at parse time to nested single-arg Application;
	// inference must flatten the same way the lowering engine does.
	prog := parseProgram(t, "func f() -> Int :\n  add(1, 2, 3)")
	env := NewEnv()
	env.FuncReturns["add"] = &ast.BasicType{Name: "Int"}
	ty, err := Infer(prog.Functions[0].Body, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int, got %+v", ty)
	}
}

func TestInferBuiltinStringLength(t *testing.T) {
	prog := parseProgram(t, `func f() -> Int :
  String_length("hi")`)
	ty, err := Infer(prog.Functions[0].Body, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Nat" {
		t.Errorf("expected Nat, got %+v", ty)
	}
}

func TestInferBuiltinListGetReturnsElementType(t *testing.T) {
	env := NewEnv()
	listArg := &ast.Constructor{
		Name: "List",
		Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
	}
	app := &ast.Application{
		Func: &ast.Application{Func: &ast.Variable{Name: "List_get"}, Arg: listArg},
		Arg:  &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
	}
	ty, err := Infer(app, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Int" {
		t.Errorf("expected Int element type, got %+v", ty)
	}
}

func TestInferConstructorListEmptyDefaultsToListOfInt(t *testing.T) {
	ctor := &ast.Constructor{Name: "List"}
	ty, err := Infer(ctor, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lt, ok := ty.(*ast.ListType)
	if !ok || basicName(lt.Element) != "Int" {
		t.Errorf("expected List<Int>, got %+v", ty)
	}
}

func TestInferConstructorListFromFirstElement(t *testing.T) {
	ctor := &ast.Constructor{
		Name: "List",
		Args: []ast.Expr{&ast.Literal{Kind: ast.StringLit, Value: "a"}},
	}
	ty, err := Infer(ctor, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lt, ok := ty.(*ast.ListType)
	if !ok || basicName(lt.Element) != "String" {
		t.Errorf("expected List<String>, got %+v", ty)
	}
}

func TestInferConstructorNullaryVariant(t *testing.T) {
	env := NewEnv()
	env.ConstructorOwner["Red"] = "Color"

	ctor := &ast.Constructor{Name: "Red"}
	ty, err := Infer(ctor, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Color" {
		t.Errorf("expected Color, got %+v", ty)
	}
}

func TestInferNoneUsesCurrentReturnType(t *testing.T) {
	env := NewEnv()
	env.CurrentReturn = &ast.OptionType{Inner: &ast.BasicType{Name: "Int"}}

	v := &ast.Variable{Name: "None"}
	ty, err := Infer(v, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ty.(*ast.OptionType); !ok {
		t.Errorf("expected OptionType, got %+v", ty)
	}
}

func TestInferNoneWithoutOptionReturnErrors(t *testing.T) {
	env := NewEnv()
	env.CurrentReturn = &ast.BasicType{Name: "Int"}

	v := &ast.Variable{Name: "None"}
	_, err := Infer(v, env)
	if err == nil {
		t.Fatal("expected an error for ambiguous None")
	}
	ie, ok := err.(*InferError)
	if !ok || ie.Code != "TYP006" {
		t.Errorf("expected TYP006, got %+v", err)
	}
}

func TestInferRecordLiteralMatchesRegisteredType(t *testing.T) {
	env := NewEnv()
	env.Records["Point"] = []ast.RecordField{
		{Name: "x", Type: &ast.BasicType{Name: "Int"}},
		{Name: "y", Type: &ast.BasicType{Name: "Int"}},
	}

	rec := &ast.Record{Fields: []ast.RecordFieldValue{
		{Name: "x", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(3)}},
		{Name: "y", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(4)}},
	}}
	ty, err := Infer(rec, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basicName(ty) != "Point" {
		t.Errorf("expected Point, got %+v", ty)
	}
}

func TestInferRecordLiteralNoMatchErrors(t *testing.T) {
	rec := &ast.Record{Fields: []ast.RecordFieldValue{
		{Name: "z", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
	}}
	_, err := Infer(rec, NewEnv())
	if err == nil {
		t.Fatal("expected an error for an unmatched record literal")
	}
}

func TestInferTuple(t *testing.T) {
	tup := &ast.Tuple{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.IntLit, Value: int64(1)},
		&ast.Literal{Kind: ast.StringLit, Value: "a"},
	}}
	ty, err := Infer(tup, NewEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tt, ok := ty.(*ast.TupleType)
	if !ok || len(tt.Elements) != 2 {
		t.Errorf("expected a 2-element TupleType, got %+v", ty)
	}
}
