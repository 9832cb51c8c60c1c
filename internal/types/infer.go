package types

import (
	"fmt"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
)

// InferError is Infer's own error value. Codegen attempts no fallback
// inference after one (no deduction from an emitted function's SSA return
// type): lowerLet and lowerFieldAccess return it unchanged, and Ok-payload
// extraction folds its message into a codegen error.
type InferError struct {
	Code    string
	Message string
	Pos     ast.Pos
}

func (e *InferError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Report converts an InferError into the compiler-wide structured Report.
func (e *InferError) Report() *errors.Report {
	return errors.New(e.Code, "typecheck", e.Pos, e.Message, nil)
}

func infErr(code string, pos ast.Pos, format string, a ...interface{}) error {
	return &InferError{Code: code, Message: fmt.Sprintf(format, a...), Pos: pos}
}

// Infer is a pure, recursive function computing the source-level type of
// an expression, per spec.md §4.4's "Type inference (local)" rules. It
// consults env but never mutates it; descending into a Let or a match arm
// is the caller's responsibility (via Env.WithLocal), matching the
// lowering engine's own save-and-restore scoping.
func Infer(expr ast.Expr, env *Env) (Type, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return inferLiteral(e), nil

	case *ast.Variable:
		return inferVariable(e, env)

	case *ast.BinaryOp:
		// Preserved verbatim: equality/relational operators still return
		// the left operand's type in this implementation (open question).
		return Infer(e.Left, env)

	case *ast.UnaryOp:
		return Infer(e.Expr, env)

	case *ast.FieldAccess:
		return inferFieldAccess(e, env)

	case *ast.Application:
		return inferApplication(e, env)

	case *ast.Record:
		return inferRecordLiteral(e, env)

	case *ast.If:
		return Infer(e.Then, env)

	case *ast.Match:
		if len(e.Arms) == 0 {
			return nil, infErr(errors.TYP001, e.Pos, "match has no arms to infer a type from")
		}
		return Infer(e.Arms[0].Body, env)

	case *ast.Let:
		bodyEnv := env
		if e.Name != "_" {
			valTy, err := Infer(e.Value, env)
			if err != nil {
				return nil, err
			}
			bodyEnv = env.WithLocal(e.Name, valTy)
		}
		return Infer(e.Body, bodyEnv)

	case *ast.Constructor:
		return inferConstructor(e, env)

	case *ast.Tuple:
		elemTypes := make([]Type, len(e.Elements))
		for i, el := range e.Elements {
			ty, err := Infer(el, env)
			if err != nil {
				return nil, err
			}
			elemTypes[i] = ty
		}
		return &ast.TupleType{Elements: elemTypes, Pos: e.Pos}, nil

	default:
		return nil, infErr(errors.TYP001, expr.Position(), "cannot infer a type for %T", expr)
	}
}

func inferLiteral(l *ast.Literal) Type {
	switch l.Kind {
	case ast.IntLit:
		return intType
	case ast.FloatLit:
		return &ast.BasicType{Name: "Float64", Pos: l.Pos}
	case ast.BoolLit:
		return boolType
	case ast.StringLit:
		return &ast.BasicType{Name: "String", Pos: l.Pos}
	default:
		return &ast.BasicType{Name: "Unit", Pos: l.Pos}
	}
}

func inferVariable(v *ast.Variable, env *Env) (Type, error) {
	if ty, ok := env.Locals[v.Name]; ok {
		return ty, nil
	}
	if owner, ok := env.ConstructorOwner[v.Name]; ok {
		return &ast.BasicType{Name: owner, Pos: v.Pos}, nil
	}
	// None disambiguates via the enclosing function's declared return
	// type (spec.md §9's documented, preserved ambiguity — DESIGN.md
	// Open Question decision 7).
	if v.Name == "None" {
		if opt, ok := env.CurrentReturn.(*ast.OptionType); ok {
			return opt, nil
		}
		return nil, infErr(errors.TYP006, v.Pos,
			"ambiguous None: enclosing function's return type is not Option<T>")
	}
	if IsBuiltin(v.Name) {
		return nil, infErr(errors.TYP001, v.Pos,
			"%s is a built-in function, not a value", v.Name)
	}
	return nil, infErr(errors.TYP001, v.Pos, "unbound variable %q", v.Name)
}

func inferFieldAccess(f *ast.FieldAccess, env *Env) (Type, error) {
	base, ok := f.Record.(*ast.Variable)
	if !ok {
		return nil, infErr(errors.TYP003, f.Pos,
			"field access is only supported on a directly named variable")
	}
	baseTy, err := Infer(base, env)
	if err != nil {
		return nil, err
	}
	bt, ok := baseTy.(*ast.BasicType)
	if !ok {
		return nil, infErr(errors.TYP003, f.Pos, "%s is not a record", base.Name)
	}
	fields, ok := env.Records[bt.Name]
	if !ok {
		return nil, infErr(errors.TYP003, f.Pos, "%s is not a known record type", bt.Name)
	}
	for _, field := range fields {
		if field.Name == f.Field {
			return field.Type, nil
		}
	}
	return nil, infErr(errors.TYP004, f.Pos, "unknown field %q on record %s", f.Field, bt.Name)
}

// flattenApplication walks a nested-Application chain down to its callee
// name and ordered argument expressions, mirroring the lowering engine's
// own flattening of the same chain.
func flattenApplication(app *ast.Application) (name string, args []ast.Expr, ok bool) {
	var chain []ast.Expr
	var cur ast.Expr = app
	for {
		a, isApp := cur.(*ast.Application)
		if !isApp {
			break
		}
		chain = append([]ast.Expr{a.Arg}, chain...)
		cur = a.Func
	}
	v, isVar := cur.(*ast.Variable)
	if !isVar {
		return "", nil, false
	}
	return v.Name, chain, true
}

func inferApplication(app *ast.Application, env *Env) (Type, error) {
	name, args, ok := flattenApplication(app)
	if !ok {
		return nil, infErr(errors.TYP002, app.Pos, "application target is not a named function")
	}

	argTypes := make([]Type, 0, len(args))
	for _, a := range args {
		ty, err := Infer(a, env)
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, ty)
	}

	if IsBuiltin(name) {
		if ty, ok := inferBuiltinCall(name, argTypes); ok {
			return ty, nil
		}
		return nil, infErr(errors.TYP001, app.Pos, "could not infer return type of built-in %s", name)
	}

	if owner, isCtor := env.ConstructorOwner[name]; isCtor {
		return &ast.BasicType{Name: owner, Pos: app.Pos}, nil
	}
	switch name {
	case "Some":
		if len(argTypes) > 0 {
			return &ast.OptionType{Inner: argTypes[0], Pos: app.Pos}, nil
		}
	case "Ok":
		if len(argTypes) > 0 {
			return &ast.ResultType{Ok: argTypes[0], Err: &ast.UnknownType{Pos: app.Pos}, Pos: app.Pos}, nil
		}
	case "Err":
		if len(argTypes) > 0 {
			return &ast.ResultType{Ok: &ast.UnknownType{Pos: app.Pos}, Err: argTypes[0], Pos: app.Pos}, nil
		}
	}

	if ty, ok := env.FuncReturns[name]; ok {
		return ty, nil
	}
	if ty, ok := env.ExternReturns[name]; ok {
		return ty, nil
	}

	return nil, infErr(errors.TYP001, app.Pos, "could not infer return type of %s", name)
}

func inferRecordLiteral(rec *ast.Record, env *Env) (Type, error) {
	fieldSet := make(map[string]bool, len(rec.Fields))
	for _, f := range rec.Fields {
		fieldSet[f.Name] = true
	}

	for typeName, fields := range env.Records {
		if len(fields) != len(fieldSet) {
			continue
		}
		matches := true
		for _, f := range fields {
			if !fieldSet[f.Name] {
				matches = false
				break
			}
		}
		if matches {
			return &ast.BasicType{Name: typeName, Pos: rec.Pos}, nil
		}
	}
	return nil, infErr(errors.TYP001, rec.Pos, "no registered record type matches these fields")
}

func inferConstructor(c *ast.Constructor, env *Env) (Type, error) {
	if c.Name != "List" {
		if owner, ok := env.ConstructorOwner[c.Name]; ok {
			return &ast.BasicType{Name: owner, Pos: c.Pos}, nil
		}
		return nil, infErr(errors.TYP005, c.Pos, "unknown constructor %q", c.Name)
	}
	if len(c.Args) == 0 {
		// Unsafe but documented (spec.md §4.4): an empty list literal
		// infers List<Int> with no caller hint consulted.
		return &ast.ListType{Element: intType, Pos: c.Pos}, nil
	}
	elemTy, err := Infer(c.Args[0], env)
	if err != nil {
		return nil, err
	}
	return &ast.ListType{Element: elemTy, Pos: c.Pos}, nil
}
