package codegen

import (
	"strings"
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

func mustLower(t *testing.T, src string) string {
	t.Helper()
	prog := parseProgram(t, src)
	mod, err := NewLowerer("test.pole").Lower(prog)
	if err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}
	return mod.String()
}

func TestLowerFactorialRecursesAndBranches(t *testing.T) {
	src := "func factorial(n: Int) -> Int :\n" +
		"  if n <= 1 then 1 else n * factorial(n - 1)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "@factorial") {
		t.Errorf("expected factorial declared in IR, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call") || !strings.Contains(ir, "@factorial(") {
		t.Errorf("expected a recursive call in IR, got:\n%s", ir)
	}
	if !strings.Contains(ir, "icmp sle") {
		t.Errorf("expected <= lowered to icmp sle, got:\n%s", ir)
	}
}

func TestLowerFibonacciMatchCascade(t *testing.T) {
	src := "func fib(n: Int) -> Int :\n" +
		"  match n with\n" +
		"    | 0 -> 0\n" +
		"    | 1 -> 1\n" +
		"    | _ -> fib(n - 1) + fib(n - 2)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "phi ") {
		t.Errorf("expected phi nodes reconciling match arms, got:\n%s", ir)
	}
	if strings.Count(ir, "@fib(") < 3 {
		t.Errorf("expected the declaration plus two recursive calls in the wildcard arm, got:\n%s", ir)
	}
}

func TestLowerDistanceSqFieldAccess(t *testing.T) {
	src := "type Point = { x: Int, y: Int }\n" +
		"func distanceSq(a: Point, b: Point) -> Int :\n" +
		"  let dx = a.x - b.x in\n" +
		"  let dy = a.y - b.y in\n" +
		"  dx * dx + dy * dy"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "extractvalue") {
		t.Errorf("expected record field access lowered via extractvalue, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@distanceSq(") {
		t.Errorf("expected distanceSq declared in IR, got:\n%s", ir)
	}
}

func TestLowerUnwrapOrConstructorPattern(t *testing.T) {
	src := "func unwrapOr(o: Option<Int>, fallback: Int) -> Int :\n" +
		"  match o with\n" +
		"    | Some(x) -> x\n" +
		"    | None -> fallback"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "extractvalue") {
		t.Errorf("expected the Option tag/payload struct to be unpacked, got:\n%s", ir)
	}
	if !strings.Contains(ir, "icmp eq") {
		t.Errorf("expected the Some/None tag compared against a constant, got:\n%s", ir)
	}
}

func TestLowerHelloWorldExternAndPrint(t *testing.T) {
	src := "@extern(\"polec_print\")\n" +
		"func print(s: String) -> Unit\n\n" +
		"func main() -> Unit :\n" +
		"  print(\"Hello, world!\")"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "@polec_print(") {
		t.Errorf("expected the extern print symbol declared, got:\n%s", ir)
	}
	if !strings.Contains(ir, "i8*") {
		t.Errorf("expected the String ABI rule to pass a bare i8* to the extern, got:\n%s", ir)
	}
	if !strings.Contains(ir, "Hello, world!") {
		t.Errorf("expected the string literal to appear as a global constant, got:\n%s", ir)
	}
}

func TestLowerTagOfUnsupportedConstructorArgs(t *testing.T) {
	src := "type Shape = | Circle(Int) | Rectangle(Int, Int)\n" +
		"func tagOf(s: Shape) -> String :\n" +
		"  match s with\n" +
		"    | Circle(r) -> \"circle\"\n" +
		"    | Rectangle(w, h) -> \"rectangle\""
	prog := parseProgram(t, src)
	_, err := NewLowerer("test.pole").Lower(prog)
	if err == nil {
		t.Fatalf("expected a codegen error for argument-carrying non-Option/Result constructor patterns")
	}
}

func TestLowerNullaryVariantTagComparison(t *testing.T) {
	src := "type Color = | Red | Green | Blue\n" +
		"func tagOf(c: Color) -> Int :\n" +
		"  c == Red"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "icmp eq") {
		t.Errorf("expected == on nullary variants to lower to icmp eq, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@tagOf(") {
		t.Errorf("expected tagOf declared in IR, got:\n%s", ir)
	}
}

func TestLowerResultOkConstructionAndMatchRoundTrip(t *testing.T) {
	src := "func safeDiv(n: Int, d: Int) -> Result<Int, String> :\n" +
		"  if d == 0 then Err(\"divide by zero\") else Ok(n / d)\n\n" +
		"func unwrapOr(r: Result<Int, String>, fallback: Int) -> Int :\n" +
		"  match r with\n" +
		"    | Ok(x) -> x\n" +
		"    | Err(_) -> fallback"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "alloca") || !strings.Contains(ir, "bitcast") {
		t.Errorf("expected Ok's payload to round-trip through an alloca+bitcast pack/unpack, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@safeDiv(") || !strings.Contains(ir, "@unwrapOr(") {
		t.Errorf("expected both functions declared in IR, got:\n%s", ir)
	}
}

func TestLowerOptionSomeConstruction(t *testing.T) {
	src := "func wrap(n: Int) -> Option<Int> :\n" +
		"  Some(n)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "insertvalue") {
		t.Errorf("expected Some(n) to build the tagged Option struct via insertvalue, got:\n%s", ir)
	}
}

func TestLowerBuiltinStringLength(t *testing.T) {
	src := "func strlen(s: String) -> Int :\n" +
		"  String_length(s)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "extractvalue") {
		t.Errorf("expected String_length to extract the length field, got:\n%s", ir)
	}
}

func TestLowerBuiltinListGetBoundsCheck(t *testing.T) {
	src := "func get(xs: List<Int>, i: Int) -> Int :\n" +
		"  List_get(xs, i)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "icmp slt") {
		t.Errorf("expected List_get to lower a bounds check, got:\n%s", ir)
	}
}

func TestLowerBuiltinHashMapRoundTrip(t *testing.T) {
	src := "func put(cap: Int, k: Int, v: Int) -> Int :\n" +
		"  let m = HashMap_new(cap) in\n" +
		"  let saved = HashMap_put(m, k, v) in\n" +
		"  HashMap_get(m, k)"
	ir := mustLower(t, src)
	if !strings.Contains(ir, "srem") {
		t.Errorf("expected HashMap_put/get to lower k mod capacity via srem, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@malloc") {
		t.Errorf("expected HashMap_new to malloc its bucket array, got:\n%s", ir)
	}
}

func TestLowerUnderscoreLetDoesNotBindName(t *testing.T) {
	src := "func f(n: Int) -> Int :\n" +
		"  let _ = n in _"
	prog := parseProgram(t, src)
	_, err := NewLowerer("test.pole").Lower(prog)
	if err == nil {
		t.Fatalf("expected an error referencing _ after a _-bound let, since _ must not extend the environment")
	}
}

func TestLowerDeclaredEffectReachesSignature(t *testing.T) {
	src := "@effect(IO)\n" +
		"func greet(name: String) -> Unit :\n  name\n\n" +
		"func main() -> Unit :\n  greet(\"hi\")"
	prog := parseProgram(t, src)
	lw := NewLowerer("test.pole")
	if _, err := lw.Lower(prog); err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}
	sig, ok := lw.Signatures()["greet"]
	if !ok {
		t.Fatalf("expected a signature recorded for greet")
	}
	if sig.Effect != "IO" {
		t.Errorf("expected greet's signature to carry effect IO, got %q", sig.Effect)
	}
	if !strings.Contains(sig.String(), "! IO") {
		t.Errorf("expected FunctionType.String to render the effect, got %q", sig.String())
	}
}

func TestLowerUnknownEffectNameErrors(t *testing.T) {
	src := "@effect(Database)\n" +
		"func greet(name: String) -> Unit :\n  name"
	prog := parseProgram(t, src)
	_, err := NewLowerer("test.pole").Lower(prog)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized @effect name")
	}
}

func TestLowerUndeclaredFunctionErrors(t *testing.T) {
	src := "func f() -> Int :\n  g()"
	prog := parseProgram(t, src)
	_, err := NewLowerer("test.pole").Lower(prog)
	if err == nil {
		t.Fatalf("expected an error calling an undeclared function")
	}
}

func TestLowerEmptyMatchErrors(t *testing.T) {
	src := "func f(n: Int) -> Int :\n  n"
	prog := parseProgram(t, src)
	fn := prog.Functions[0]
	m := &ast.Match{Scrutinee: fn.Body, Arms: nil, Pos: fn.Pos}
	fn.Body = m

	_, err := NewLowerer("test.pole").Lower(prog)
	if err == nil {
		t.Fatalf("expected an error lowering a match with no arms")
	}
}
