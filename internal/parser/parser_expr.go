package parser

import (
	"strconv"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/lexer"
)

// Prefix parse functions.

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Variable{Name: p.curToken.Literal, Pos: p.curPos()}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errors = append(p.errors, NewParserError(
			errors.PAR009, p.curPos(), p.curToken, "could not parse integer literal: "+p.curToken.Literal))
		return nil
	}
	return &ast.Literal{Kind: ast.IntLit, Value: v, Pos: p.curPos()}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, NewParserError(
			errors.PAR009, p.curPos(), p.curToken, "could not parse float literal: "+p.curToken.Literal))
		return nil
	}
	return &ast.Literal{Kind: ast.FloatLit, Value: v, Pos: p.curPos()}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return &ast.Literal{Kind: ast.StringLit, Value: p.curToken.Literal, Pos: p.curPos()}
}

func (p *Parser) parseBooleanLiteral() ast.Expr {
	return &ast.Literal{Kind: ast.BoolLit, Value: p.curTokenIs(lexer.TRUE), Pos: p.curPos()}
}

func (p *Parser) parseUnitLiteral() ast.Expr {
	return &ast.Literal{Kind: ast.UnitLit, Value: nil, Pos: p.curPos()}
}

func (p *Parser) parsePrefixExpression() ast.Expr {
	expr := &ast.UnaryOp{Op: p.curToken.Literal, Pos: p.curPos()}
	p.nextToken()
	expr.Expr = p.parseExpression(PREFIX)
	return expr
}

// parseGroupedExpression parses a parenthesized expression or a tuple
// literal `(e1, e2, ...)`. A single expression in parens with no comma is
// just a grouped expression, not a one-element tuple.
func (p *Parser) parseGroupedExpression() ast.Expr {
	startPos := p.curPos()
	p.nextToken() // consume LPAREN

	first := p.parseExpression(LOWEST)

	if !p.peekTokenIs(lexer.COMMA) {
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elements := []ast.Expr{first}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		elements = append(elements, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.Tuple{Elements: elements, Pos: startPos}
}

// parseListLiteral parses `[e1, e2, ...]` and desugars it to a Constructor
// named "List", matching the lowering engine's synthetic list constructor.
func (p *Parser) parseListLiteral() ast.Expr {
	startPos := p.curPos()
	p.nextToken() // consume LBRACKET

	cons := &ast.Constructor{Name: "List", Pos: startPos}
	if p.curTokenIs(lexer.RBRACKET) {
		return cons
	}

	cons.Args = append(cons.Args, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		cons.Args = append(cons.Args, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return cons
}

// parseRecordLiteral parses `{ name = value, ... }`.
func (p *Parser) parseRecordLiteral() ast.Expr {
	startPos := p.curPos()
	p.nextToken() // consume LBRACE

	rec := &ast.Record{Pos: startPos}
	for !p.curTokenIs(lexer.RBRACE) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errors = append(p.errors, NewParserError(
				errors.PAR001, p.curPos(), p.curToken, "expected a field name in record literal"))
			return nil
		}
		name := p.curToken.Literal
		if !p.expectPeek(lexer.ASSIGN) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		rec.Fields = append(rec.Fields, ast.RecordFieldValue{Name: name, Value: value})

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
			errors.PAR002, p.curPos(), p.curToken, "expected '}' to close record literal"))
		return nil
	}
	return rec
}

func (p *Parser) parseIfExpression() ast.Expr {
	expr := &ast.If{Pos: p.curPos()}

	p.nextToken()
	expr.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.THEN) {
		return nil
	}
	p.nextToken()
	expr.Then = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.ELSE) {
		return nil
	}
	p.nextToken()
	expr.Else = p.parseExpression(LOWEST)

	return expr
}

// parseLetExpression parses `let name = value in body`.
func (p *Parser) parseLetExpression() ast.Expr {
	let := &ast.Let{Pos: p.curPos()}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	let.Name = p.curToken.Literal

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	let.Value = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	let.Body = p.parseExpression(LOWEST)

	return let
}

// parseMatchExpression parses `match e with | pat -> body ...`.
func (p *Parser) parseMatchExpression() ast.Expr {
	match := &ast.Match{Pos: p.curPos()}

	p.nextToken()
	match.Scrutinee = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.WITH) {
		return nil
	}

	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken() // curToken = PIPE
		p.nextToken() // curToken = first pattern token

		pat := p.parsePattern()
		if !p.expectPeek(lexer.ARROW) {
			return nil
		}
		p.nextToken()
		body := p.parseExpression(LOWEST)

		match.Arms = append(match.Arms, ast.MatchArm{Pattern: pat, Body: body})
	}

	if len(match.Arms) == 0 {
		p.errors = append(p.errors, NewParserError(
			errors.PAR001, p.curPos(), p.curToken, "match requires at least one | pattern -> body arm"))
	}

	return match
}

// Infix parse function. Because every recognized binary operator (including
// the grammar-listed "=>") shares precedence level BINARY, this always
// parses its right operand at that same level, producing flat,
// left-associative grouping for mixed operator chains.
func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	expr := &ast.BinaryOp{Left: left, Op: p.curToken.Literal, Pos: p.curPos()}
	precedence := BINARY
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseCallExpression parses `fn(a1, a2, ...)`, desugaring multi-argument
// calls into nested single-argument Applications. curToken is LPAREN.
func (p *Parser) parseCallExpression(fn ast.Expr) ast.Expr {
	pos := p.curPos()
	args := p.parseCallArguments()

	result := fn
	for _, arg := range args {
		result = &ast.Application{Func: result, Arg: arg, Pos: pos}
	}
	// A zero-argument call `f()` still applies once, against Unit, since
	// Application always carries exactly one argument.
	if len(args) == 0 {
		result = &ast.Application{Func: fn, Arg: &ast.Literal{Kind: ast.UnitLit, Pos: pos}, Pos: pos}
	}
	return result
}

func (p *Parser) parseCallArguments() []ast.Expr {
	var args []ast.Expr

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}

	p.expectPeek(lexer.RPAREN)
	return args
}

// parseFieldAccess parses `record.field`. curToken is DOT.
func (p *Parser) parseFieldAccess(record ast.Expr) ast.Expr {
	pos := p.curPos()
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	return &ast.FieldAccess{Record: record, Field: p.curToken.Literal, Pos: pos}
}
