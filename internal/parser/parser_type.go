package parser

import (
	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/lexer"
)

// parseType parses a type expression: a basic name, a generic form
// (Option<T>, Result<T,E>, List<T>, Ptr<T>), or a parenthesized tuple
// (T1, T2, ...). There is no function-type surface syntax; the parser never
// builds a FunctionType (codegen's buildSignature synthesizes one per
// function signature).
func (p *Parser) parseType() ast.Type {
	switch p.curToken.Type {
	case lexer.UNIT:
		t := &ast.BasicType{Name: "Unit", Pos: p.curPos()}
		return t

	case lexer.LPAREN:
		return p.parseTupleType()

	case lexer.IDENT:
		return p.parseNamedOrGenericType()

	default:
		p.errors = append(p.errors, NewParserError(
			errors.PAR007, p.curPos(), p.curToken, "expected a type expression"))
		return nil
	}
}

func (p *Parser) parseNamedOrGenericType() ast.Type {
	startPos := p.curPos()
	name := p.curToken.Literal

	if !p.peekTokenIs(lexer.LT) {
		return &ast.BasicType{Name: name, Pos: startPos}
	}

	switch name {
	case "Option":
		p.nextToken() // consume name, curToken = LT
		p.nextToken() // consume LT, curToken = first type token
		inner := p.parseType()
		if !p.expectPeek(lexer.GT) {
			return nil
		}
		return &ast.OptionType{Inner: inner, Pos: startPos}

	case "Result":
		p.nextToken()
		p.nextToken()
		ok := p.parseType()
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
		p.nextToken()
		errType := p.parseType()
		if !p.expectPeek(lexer.GT) {
			return nil
		}
		return &ast.ResultType{Ok: ok, Err: errType, Pos: startPos}

	case "List":
		p.nextToken()
		p.nextToken()
		elem := p.parseType()
		if !p.expectPeek(lexer.GT) {
			return nil
		}
		return &ast.ListType{Element: elem, Pos: startPos}

	case "Ptr":
		p.nextToken()
		p.nextToken()
		pointee := p.parseType()
		if !p.expectPeek(lexer.GT) {
			return nil
		}
		return &ast.PointerType{Pointee: pointee, Pos: startPos}

	default:
		// LT after an unrecognized name is not part of this grammar; treat
		// the name as a plain basic type and let the caller deal with the
		// stray LT.
		return &ast.BasicType{Name: name, Pos: startPos}
	}
}

// parseTupleType parses `(T1, T2, ...)`. A single parenthesized type with
// no comma is just a grouped type, not a one-element tuple.
func (p *Parser) parseTupleType() ast.Type {
	startPos := p.curPos()
	p.nextToken() // consume LPAREN

	first := p.parseType()
	if !p.peekTokenIs(lexer.COMMA) {
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elements := []ast.Type{first}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // move to COMMA
		p.nextToken() // move past COMMA
		elements = append(elements, p.parseType())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.TupleType{Elements: elements, Pos: startPos}
}

// parseRecordFields parses `{ f1: T1, f2: T2, ... }` as it appears in a
// `type Name = { ... }` record definition. curToken is LBRACE on entry;
// curToken is RBRACE on return. Trailing commas are accepted.
func (p *Parser) parseRecordFields() []ast.RecordField {
	p.nextToken() // consume LBRACE

	var fields []ast.RecordField
	for !p.curTokenIs(lexer.RBRACE) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errors = append(p.errors, NewParserError(
				errors.PAR004, p.curPos(), p.curToken, "expected a field name in record type"))
			return fields
		}
		name := p.curToken.Literal
		if !p.expectPeek(lexer.COLON) {
			return fields
		}
		p.nextToken()
		ty := p.parseType()
		fields = append(fields, ast.RecordField{Name: name, Type: ty})

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return fields
}
