package parser

import (
	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/lexer"
)

// parseAnnotations parses zero or more `@name` / `@name(args)` forms
// preceding a top-level declaration. @extern and @variadic drive extern-vs-
// function dispatch in parseFuncLike; @source and @test_case (and any other
// name) are preserved but otherwise ignored by the core.
func (p *Parser) parseAnnotations() []ast.Annotation {
	var anns []ast.Annotation
	for p.curTokenIs(lexer.AT) {
		pos := p.curPos()
		if !p.expectPeek(lexer.IDENT) {
			return anns
		}
		ann := ast.Annotation{Name: p.curToken.Literal, Pos: pos}

		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken() // curToken = LPAREN
			if !p.peekTokenIs(lexer.RPAREN) {
				p.nextToken()
				ann.Args = append(ann.Args, p.parseAnnotationArg())
				for p.peekTokenIs(lexer.COMMA) {
					p.nextToken()
					p.nextToken()
					ann.Args = append(ann.Args, p.parseAnnotationArg())
				}
			}
			if !p.expectPeek(lexer.RPAREN) {
				return anns
			}
		}

		anns = append(anns, ann)
		p.nextToken()
	}
	return anns
}

func (p *Parser) parseAnnotationArg() ast.AnnotationArg {
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.ASSIGN) {
		key := p.curToken.Literal
		p.nextToken() // ASSIGN
		p.nextToken() // value token
		return ast.AnnotationArg{Key: key, Value: p.curToken.Literal}
	}
	return ast.AnnotationArg{Value: p.curToken.Literal}
}

func findAnnotation(anns []ast.Annotation, name string) (ast.Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}
	return ast.Annotation{}, false
}

// parseTypeDef parses `type Name = ...` in its alias, record, and variant
// forms (including the inline `type N = Ident | Ident` variant shape with
// no leading pipe). curToken is TYPE on entry.
func (p *Parser) parseTypeDef(anns []ast.Annotation) *ast.TypeDef {
	startPos := p.curPos()
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken() // move to first token of the definition body

	switch {
	case p.curTokenIs(lexer.LBRACE):
		fields := p.parseRecordFields()
		return &ast.TypeDef{Name: name, Kind: ast.RecordDef, Fields: fields, Annotations: anns, Pos: startPos}

	case p.curTokenIs(lexer.PIPE):
		ctors := p.parseVariantDefBody()
		return &ast.TypeDef{Name: name, Kind: ast.VariantDef, Constructors: ctors, Annotations: anns, Pos: startPos}

	case p.curTokenIs(lexer.IDENT) && startsUpper(p.curToken.Literal) && p.peekTokenIs(lexer.PIPE):
		ctors := p.parseVariantDefBody()
		return &ast.TypeDef{Name: name, Kind: ast.VariantDef, Constructors: ctors, Annotations: anns, Pos: startPos}

	default:
		alias := p.parseType()
		return &ast.TypeDef{Name: name, Kind: ast.AliasDef, Alias: alias, Annotations: anns, Pos: startPos}
	}
}

// parseVariantDefBody parses the `| C1 | C2(T) | C3` branches of a variant
// definition, with or without a leading pipe before the first branch.
func (p *Parser) parseVariantDefBody() []ast.VariantConstructor {
	if p.curTokenIs(lexer.PIPE) {
		p.nextToken() // move to first constructor name
	}

	var ctors []ast.VariantConstructor
	for {
		ctors = append(ctors, p.parseVariantConstructor())
		if p.peekTokenIs(lexer.PIPE) {
			p.nextToken() // PIPE
			p.nextToken() // next constructor name
			continue
		}
		break
	}
	return ctors
}

func (p *Parser) parseVariantConstructor() ast.VariantConstructor {
	name := p.curToken.Literal
	var types []ast.Type

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken() // curToken = LPAREN
		p.nextToken() // first type token or RPAREN
		if !p.curTokenIs(lexer.RPAREN) {
			types = append(types, p.parseType())
			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				types = append(types, p.parseType())
			}
			p.expectPeek(lexer.RPAREN)
		}
	}

	return ast.VariantConstructor{Name: name, Types: types}
}

// parseFuncLike parses `func name(params) -> Return`, then dispatches on
// whether @extern is present: an extern declaration stops there (no
// requires/ensures/body), while a full function definition continues into
// zero or more requires/ensures clauses and a `:`-separated body.
func (p *Parser) parseFuncLike(prog *ast.Program, anns []ast.Annotation) {
	startPos := p.curPos()

	if !p.expectPeek(lexer.IDENT) {
		return
	}
	name := p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return
	}
	params := p.parseParamList()

	if !p.expectPeek(lexer.ARROW) {
		return
	}
	p.nextToken()
	retType := p.parseType()

	if externAnn, ok := findAnnotation(anns, "extern"); ok {
		foreignName, _ := externAnn.FindPositional(0)
		_, variadic := findAnnotation(anns, "variadic")
		prog.Externs = append(prog.Externs, &ast.ExternFunctionDecl{
			Name:        name,
			ForeignName: foreignName,
			Params:      params,
			ReturnType:  retType,
			Annotations: anns,
			Variadic:    variadic,
			Pos:         startPos,
		})
		return
	}

	fn := &ast.FunctionDef{
		Name: name, Params: params, ReturnType: retType, Annotations: anns, Pos: startPos,
	}

	for p.peekTokenIs(lexer.REQUIRES) {
		p.nextToken()
		p.nextToken()
		fn.Requires = append(fn.Requires, p.parseExpression(LOWEST))
	}
	for p.peekTokenIs(lexer.ENSURES) {
		p.nextToken()
		p.nextToken()
		fn.Ensures = append(fn.Ensures, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(lexer.COLON) {
		return
	}
	p.nextToken()
	fn.Body = p.parseExpression(LOWEST)

	prog.Functions = append(prog.Functions, fn)
}

// parseParamList parses `(p1: T1, p2: T2, ...)`. curToken is LPAREN on
// entry.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, p.parseParam())

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParam())
	}

	p.expectPeek(lexer.RPAREN)
	return params
}

func (p *Parser) parseParam() ast.Param {
	pos := p.curPos()
	name := p.curToken.Literal
	if !p.expectPeek(lexer.COLON) {
		return ast.Param{Name: name, Pos: pos}
	}
	p.nextToken()
	ty := p.parseType()
	return ast.Param{Name: name, Type: ty, Pos: pos}
}
