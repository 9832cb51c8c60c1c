package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 5 + 10
func add(a: Int, b: Int) -> Int :
  a + b

if x > 10 then "big" else "small"

match value with
  | Some(x) -> x * 2
  | None -> 0

[1, 2, 3]
{ name = "Alice", age = 30 }

// This is a comment
true && false || !true
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "5"},
		{PLUS, "+"},
		{INT, "10"},

		{FUNC, "func"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "a"},
		{COLON, ":"},
		{IDENT, "Int"},
		{COMMA, ","},
		{IDENT, "b"},
		{COLON, ":"},
		{IDENT, "Int"},
		{RPAREN, ")"},
		{ARROW, "->"},
		{IDENT, "Int"},
		{COLON, ":"},
		{IDENT, "a"},
		{PLUS, "+"},
		{IDENT, "b"},

		{IF, "if"},
		{IDENT, "x"},
		{GT, ">"},
		{INT, "10"},
		{THEN, "then"},
		{STRING, "big"},
		{ELSE, "else"},
		{STRING, "small"},

		{MATCH, "match"},
		{IDENT, "value"},
		{WITH, "with"},
		{PIPE, "|"},
		{IDENT, "Some"},
		{LPAREN, "("},
		{IDENT, "x"},
		{RPAREN, ")"},
		{ARROW, "->"},
		{IDENT, "x"},
		{STAR, "*"},
		{INT, "2"},
		{PIPE, "|"},
		{IDENT, "None"},
		{ARROW, "->"},
		{INT, "0"},

		{LBRACKET, "["},
		{INT, "1"},
		{COMMA, ","},
		{INT, "2"},
		{COMMA, ","},
		{INT, "3"},
		{RBRACKET, "]"},

		{LBRACE, "{"},
		{IDENT, "name"},
		{ASSIGN, "="},
		{STRING, "Alice"},
		{COMMA, ","},
		{IDENT, "age"},
		{ASSIGN, "="},
		{INT, "30"},
		{RBRACE, "}"},

		{TRUE, "true"},
		{AND, "&&"},
		{FALSE, "false"},
		{OR, "||"},
		{NOT, "!"},
		{TRUE, "true"},

		{EOF, ""},
	}

	l := New(input, "test.pole")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - tokentype wrong. expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_UnitAndAnnotation(t *testing.T) {
	input := `@extern("c_strlen")
func len() -> ()`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{AT, "@"},
		{IDENT, "extern"},
		{LPAREN, "("},
		{STRING, "c_strlen"},
		{RPAREN, ")"},
		{FUNC, "func"},
		{IDENT, "len"},
		{LPAREN, "("},
		{RPAREN, ")"},
		{ARROW, "->"},
		{UNIT, "()"},
		{EOF, ""},
	}

	l := New(input, "test.pole")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - tokentype wrong. expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_EscapesInString(t *testing.T) {
	l := New(`"line1\nline2\ttab\"quote\""`, "test.pole")
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	expected := "line1\nline2\ttab\"quote\""
	if tok.Literal != expected {
		t.Fatalf("expected %q, got %q", expected, tok.Literal)
	}
}

func TestNextToken_FloatsAndExponents(t *testing.T) {
	cases := []struct {
		input   string
		literal string
	}{
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"1.5e-3", "1.5e-3"},
	}
	for _, c := range cases {
		l := New(c.input, "test.pole")
		tok := l.NextToken()
		if tok.Type != FLOAT {
			t.Fatalf("input %q: expected FLOAT, got %s", c.input, tok.Type)
		}
		if tok.Literal != c.literal {
			t.Fatalf("input %q: expected literal %q, got %q", c.input, c.literal, tok.Literal)
		}
	}
}

func TestNextToken_RequiresEnsures(t *testing.T) {
	input := `requires x > 0
ensures result >= 0`
	l := New(input, "test.pole")
	tok := l.NextToken()
	if tok.Type != REQUIRES {
		t.Fatalf("expected REQUIRES, got %s", tok.Type)
	}
}

func TestPrecedence_IsFlatAcrossAllBinaryOperators(t *testing.T) {
	ops := []TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, EQ, NEQ, LT, LTE, GT, GTE, AND, OR}
	for _, op := range ops {
		tok := Token{Type: op}
		if tok.Precedence() != 1 {
			t.Fatalf("operator %s: expected flat precedence 1, got %d", op, tok.Precedence())
		}
	}
}
