// Package parser implements a recursive-descent parser, with a Pratt
// expression core, over the token stream produced by internal/lexer. It
// produces an *ast.Program.
package parser

import (
	"fmt"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/lexer"
)

// ParserError is a structured, location-tagged parser error.
type ParserError struct {
	Code      string
	Message   string
	Pos       ast.Pos
	NearToken lexer.Token
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Pos, e.Message)
}

// NewParserError constructs a ParserError.
func NewParserError(code string, pos ast.Pos, nearToken lexer.Token, message string) *ParserError {
	return &ParserError{Code: code, Message: message, Pos: pos, NearToken: nearToken}
}

// Report converts the ParserError into the compiler-wide structured Report.
func (e *ParserError) Report() *errors.Report {
	return errors.New(e.Code, "parser", e.Pos, e.Message, map[string]any{
		"near": e.NearToken.Literal,
	})
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Precedence levels. Binary operators all share one flat level
// (lexer.Token.Precedence reproduces the source's undocumented, left-
// associative grouping — see DESIGN.md's Open Question decisions); call
// and field access bind tighter, outside the Pratt infix table.
const (
	LOWEST int = iota
	BINARY
	PREFIX
)

// Parser parses Pole IR source into an *ast.Program.
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []error

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []error{}}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.UNIT, p.parseUnitLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseRecordLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.LET, p.parseLetExpression)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTE, lexer.GT, lexer.GTE,
		lexer.AND, lexer.OR, lexer.FARROW,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the parser's accumulated errors.
func (p *Parser) Errors() []error {
	return p.errors
}

// Parse parses a complete program and returns its AST.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{Pos: p.curPos()}

	for !p.curTokenIs(lexer.EOF) {
		anns := p.parseAnnotations()

		switch p.curToken.Type {
		case lexer.TYPE:
			if td := p.parseTypeDef(anns); td != nil {
				prog.TypeDefs = append(prog.TypeDefs, td)
			}
		case lexer.FUNC:
			p.parseFuncLike(prog, anns)
		default:
			p.errors = append(p.errors, NewParserError(
				errors.PAR001, p.curPos(), p.curToken,
				fmt.Sprintf("unrecognized top-level token %s", p.curToken.Type)))
			p.skipToEndOfLine()
			continue
		}

		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
	}

	return prog
}

// skipToEndOfLine advances past every remaining token on the current
// physical line, keeping the parser robust against unknown directives.
func (p *Parser) skipToEndOfLine() {
	line := p.curToken.Line
	for p.curToken.Line == line && !p.curTokenIs(lexer.EOF) {
		p.nextToken()
	}
}

// parseExpression is the Pratt loop: it resolves a prefix production, then
// repeatedly folds in infix operators whose precedence exceeds the given
// floor. Because every recognized binary operator shares precedence level
// BINARY, this produces strictly left-associative, flat grouping.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	left := prefix()
	left = p.parsePostfix(left)

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

// parsePostfix applies call and field-access postfix operators, which bind
// tighter than any binary operator and are not part of the Pratt table.
func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	for {
		switch p.peekToken.Type {
		case lexer.LPAREN:
			p.nextToken()
			left = p.parseCallExpression(left)
		case lexer.DOT:
			p.nextToken()
			left = p.parseFieldAccess(left)
		default:
			return left
		}
	}
}

// Utility token helpers.

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors, NewParserError(
		errors.PAR001, p.peekPos(), p.peekToken,
		fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)))
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	p.errors = append(p.errors, NewParserError(
		errors.PAR001, p.curPos(), p.curToken,
		fmt.Sprintf("no prefix parse function for %s found", t)))
}

func (p *Parser) curPos() ast.Pos {
	return ast.Pos{Line: p.curToken.Line, Column: p.curToken.Column, File: p.curToken.File}
}

func (p *Parser) peekPos() ast.Pos {
	return ast.Pos{Line: p.peekToken.Line, Column: p.peekToken.Column, File: p.peekToken.File}
}

func (p *Parser) peekPrecedence() int {
	if p.peekToken.Precedence() > 0 {
		return BINARY
	}
	return LOWEST
}

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }
