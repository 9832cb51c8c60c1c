package parser

import (
	"strconv"
	"unicode"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/lexer"
)

// parsePattern parses one pattern: wildcard, literal, constructor (with
// optional sub-patterns), variable, tuple, or record. An uppercase-leading
// identifier is always a constructor pattern (even with no args, e.g. the
// nullary variant `Red`); anything else starting with a lowercase letter
// binds as a variable.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case lexer.IDENT:
		name := p.curToken.Literal
		pos := p.curPos()

		if name == "_" {
			return &ast.WildcardPattern{Pos: pos}
		}

		if startsUpper(name) {
			if p.peekTokenIs(lexer.LPAREN) {
				p.nextToken() // curToken = LPAREN
				return p.parseConstructorPattern(name, pos)
			}
			return &ast.ConstructorPattern{Name: name, Pos: pos}
		}

		return &ast.VariablePattern{Name: name, Pos: pos}

	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.UNIT:
		return &ast.LiteralPattern{Kind: p.literalKind(), Value: p.literalValue(), Pos: p.curPos()}

	case lexer.LPAREN:
		return p.parseTuplePattern()

	case lexer.LBRACE:
		return p.parseRecordPattern()

	default:
		p.errors = append(p.errors, NewParserError(
			errors.PAR006, p.curPos(), p.curToken, "expected a pattern"))
		return nil
	}
}

func startsUpper(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}

// parseConstructorPattern parses `Name(p1, p2, ...)`; curToken is LPAREN.
func (p *Parser) parseConstructorPattern(name string, pos ast.Pos) ast.Pattern {
	cons := &ast.ConstructorPattern{Name: name, Pos: pos}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return cons
	}

	p.nextToken() // move to first sub-pattern
	cons.Args = append(cons.Args, p.parsePattern())

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		cons.Args = append(cons.Args, p.parsePattern())
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return cons
}

// parseTuplePattern parses `(p1, p2, ...)`; a single parenthesized pattern
// with no comma is a grouped pattern, not a one-element tuple.
func (p *Parser) parseTuplePattern() ast.Pattern {
	startPos := p.curPos()
	p.nextToken() // consume LPAREN

	first := p.parsePattern()
	if !p.peekTokenIs(lexer.COMMA) {
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elements := []ast.Pattern{first}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		elements = append(elements, p.parsePattern())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.TuplePattern{Elements: elements, Pos: startPos}
}

// parseRecordPattern parses `{ name = pattern, ... }`.
func (p *Parser) parseRecordPattern() ast.Pattern {
	startPos := p.curPos()
	p.nextToken() // consume LBRACE

	var fields []ast.RecordPatternField
	for !p.curTokenIs(lexer.RBRACE) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errors = append(p.errors, NewParserError(
				errors.PAR006, p.curPos(), p.curToken, "expected a field name in record pattern"))
			return nil
		}
		name := p.curToken.Literal
		if !p.expectPeek(lexer.ASSIGN) {
			return nil
		}
		p.nextToken()
		fields = append(fields, ast.RecordPatternField{Name: name, Pattern: p.parsePattern()})

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	if !p.curTokenIs(lexer.RBRACE) {
		p.errors = append(p.errors, NewParserError(
			errors.PAR002, p.curPos(), p.curToken, "expected '}' to close record pattern"))
		return nil
	}
	return &ast.RecordPattern{Fields: fields, Pos: startPos}
}

func (p *Parser) literalKind() ast.LiteralKind {
	switch p.curToken.Type {
	case lexer.INT:
		return ast.IntLit
	case lexer.FLOAT:
		return ast.FloatLit
	case lexer.STRING:
		return ast.StringLit
	case lexer.TRUE, lexer.FALSE:
		return ast.BoolLit
	case lexer.UNIT:
		return ast.UnitLit
	default:
		return ast.StringLit
	}
}

func (p *Parser) literalValue() interface{} {
	switch p.curToken.Type {
	case lexer.INT:
		v, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		return v
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		return v
	case lexer.STRING:
		return p.curToken.Literal
	case lexer.TRUE:
		return true
	case lexer.FALSE:
		return false
	case lexer.UNIT:
		return nil
	default:
		return p.curToken.Literal
	}
}
