package parser

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/lexer"
)

// update controls whether golden files are written or compared.
// Usage: go test -update ./internal/parser
var update = flag.Bool("update", false, "update golden files")

// goldenCompare compares got against testdata/parser/<name>.golden, or
// (re)writes the golden file when -update is passed.
func goldenCompare(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", "parser", name+".golden")

	if *update {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nrun with -update to create it", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", name, diff)
	}
}

// mustParse parses input and fails the test on any parser error.
func mustParse(t *testing.T, input string) *ast.Program {
	t.Helper()

	p := New(lexer.New(input, "test://unit"))
	prog := p.Parse()

	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors:\n%v", p.Errors())
	}
	return prog
}

// mustParseError parses input and returns its errors, failing the test if
// there were none.
func mustParseError(t *testing.T, input string) []error {
	t.Helper()

	p := New(lexer.New(input, "test://unit"))
	prog := p.Parse()

	if len(p.Errors()) == 0 {
		t.Fatalf("expected parse errors but got none. AST:\n%s", ast.PrintProgram(prog))
	}
	return p.Errors()
}

// assertHasErrorCode checks that at least one error carries the given code.
func assertHasErrorCode(t *testing.T, errs []error, code string) {
	t.Helper()

	for _, err := range errs {
		if pe, ok := err.(*ParserError); ok && pe.Code == code {
			return
		}
	}
	t.Errorf("expected error code %s but not found in:", code)
	for _, err := range errs {
		t.Errorf("  - %v", err)
	}
}

// parseSingleExprFunc parses a one-function program whose body is the
// expression under test, and returns that body expression.
func parseSingleExprFunc(t *testing.T, exprSrc string) ast.Expr {
	t.Helper()

	src := fmt.Sprintf("func f() -> Int :\n  %s", exprSrc)
	prog := mustParse(t, src)

	if len(prog.Functions) != 1 {
		t.Fatalf("expected exactly one function, got %d", len(prog.Functions))
	}
	return prog.Functions[0].Body
}

// assertPrecedence parses expr as a function body and checks it matches the
// expected fully-parenthesized form.
func assertPrecedence(t *testing.T, input, expectedForm string) {
	t.Helper()

	expr := parseSingleExprFunc(t, input)
	got := exprToParenForm(expr)

	if got != expectedForm {
		t.Errorf("precedence mismatch:\n  input:    %s\n  expected: %s\n  got:      %s",
			input, expectedForm, got)
	}
}

// exprToParenForm renders an expression in fully-parenthesized form, for
// precedence and associativity assertions.
func exprToParenForm(expr ast.Expr) string {
	if expr == nil {
		return "nil"
	}

	switch e := expr.(type) {
	case *ast.Literal:
		return fmt.Sprintf("%v", e.Value)
	case *ast.Variable:
		return e.Name
	case *ast.BinaryOp:
		return "(" + exprToParenForm(e.Left) + " " + e.Op + " " + exprToParenForm(e.Right) + ")"
	case *ast.UnaryOp:
		return "(" + e.Op + exprToParenForm(e.Expr) + ")"
	case *ast.Application:
		return "(" + exprToParenForm(e.Func) + " " + exprToParenForm(e.Arg) + ")"
	default:
		return "<?>"
	}
}
