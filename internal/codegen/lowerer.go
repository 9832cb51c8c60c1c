// Package codegen lowers a type-checked Pole IR program to an LLVM SSA
// module via github.com/llir/llvm, one function at a time, in source
// declaration order. See Lowerer.Lower.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/effects"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/types"
)

// Lowerer walks one ast.Program once in declaration order and builds an
// *ir.Module. It owns the per-compilation state spec.md §4.4 describes:
// record/variant field tables, the foreign-symbol table, and the
// user/foreign return-type tables consulted by local type inference.
type Lowerer struct {
	module *ir.Module

	records   map[string][]ast.RecordField
	variants  map[string][]ast.VariantConstructor
	ctorOwner map[string]string
	ctorIndex map[string]int64 // constructor name -> declaration index within its variant

	foreignSymbols map[string]*ir.Func // foreign function name -> emitted symbol
	foreignReturns map[string]types.Type
	funcReturns    map[string]types.Type
	funcs          map[string]*ir.Func

	// signatures holds the declared ast.FunctionType for every function and
	// extern, curried over their parameters with any @effect annotation
	// attached to the outermost arrow. Populated during the declaration
	// pass, read back by callers (cmd/polec's -check output) that want to
	// show a function's full signature, effect included.
	signatures map[string]*ast.FunctionType

	runtime *runtimeDecls
}

// NewLowerer creates an empty Lowerer targeting a fresh module.
func NewLowerer(sourceName string) *Lowerer {
	mod := ir.NewModule()
	mod.SourceFilename = sourceName
	return &Lowerer{
		module:         mod,
		records:        make(map[string][]ast.RecordField),
		variants:       make(map[string][]ast.VariantConstructor),
		ctorOwner:      make(map[string]string),
		ctorIndex:      make(map[string]int64),
		foreignSymbols: make(map[string]*ir.Func),
		foreignReturns: make(map[string]types.Type),
		funcReturns:    make(map[string]types.Type),
		funcs:          make(map[string]*ir.Func),
		signatures:     make(map[string]*ast.FunctionType),
	}
}

// Signatures returns the declared signature of every function and extern
// lowered so far, keyed by name.
func (lw *Lowerer) Signatures() map[string]*ast.FunctionType {
	return lw.signatures
}

func findAnnotation(anns []ast.Annotation, name string) (ast.Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}
	return ast.Annotation{}, false
}

// declaredEffect reads an @effect(Name) annotation, validating it against
// the closed effect vocabulary internal/effects names.
func declaredEffect(pos ast.Pos, anns []ast.Annotation) (string, error) {
	ann, ok := findAnnotation(anns, "effect")
	if !ok {
		return "", nil
	}
	name, _ := ann.FindPositional(0)
	if !effects.Valid(name) {
		return "", errors.WrapReport(errors.New(errors.CDG006, "codegen", pos,
			fmt.Sprintf("unrecognized effect %q", name), nil))
	}
	return name, nil
}

// buildSignature curries params/retType into a right-nested ast.FunctionType
// chain (Param1 -> (Param2 -> ... -> Return)), matching FunctionType's own
// single-Param/single-Return shape, with effect attached to the outermost
// arrow. A zero-parameter function signs as Unit -> Return, the same
// synthesized-Unit convention parseCallExpression uses for zero-arg calls.
func buildSignature(params []ast.Param, retType ast.Type, effect string, pos ast.Pos) *ast.FunctionType {
	if len(params) == 0 {
		return &ast.FunctionType{Param: &ast.BasicType{Name: "Unit", Pos: pos}, Return: retType, Effect: effect, Pos: pos}
	}
	var chain ast.Type = retType
	for i := len(params) - 1; i >= 0; i-- {
		eff := ""
		if i == 0 {
			eff = effect
		}
		chain = &ast.FunctionType{Param: params[i].Type, Return: chain, Effect: eff, Pos: pos}
	}
	return chain.(*ast.FunctionType)
}

// Lower runs the declaration pass followed by function-body lowering and
// returns the completed module, or the first error encountered (codegen
// aborts hard on its first error — spec.md §7, no partial emission).
func (lw *Lowerer) Lower(prog *ast.Program) (*ir.Module, error) {
	lw.runtime = newRuntimeDecls(lw.module)

	for _, td := range prog.TypeDefs {
		lw.declareType(td)
	}
	for _, ext := range prog.Externs {
		if err := lw.declareExtern(ext); err != nil {
			return nil, err
		}
	}
	for _, fn := range prog.Functions {
		if err := lw.declareFunction(fn); err != nil {
			return nil, err
		}
	}
	for _, fn := range prog.Functions {
		if err := lw.lowerFunction(fn); err != nil {
			return nil, err
		}
	}
	return lw.module, nil
}

func (lw *Lowerer) declareType(td *ast.TypeDef) {
	switch td.Kind {
	case ast.RecordDef:
		lw.records[td.Name] = td.Fields
	case ast.VariantDef:
		lw.variants[td.Name] = td.Constructors
		for i, ctor := range td.Constructors {
			lw.ctorOwner[ctor.Name] = td.Name
			lw.ctorIndex[ctor.Name] = int64(i)
		}
	}
}

func (lw *Lowerer) declareExtern(ext *ast.ExternFunctionDecl) error {
	retTy, err := lw.lowerType(ext.ReturnType)
	if err != nil {
		return codegenErr(ext.Pos, "extern %s: %v", ext.Name, err)
	}

	var params []*ir.Param
	for _, p := range ext.Params {
		pty, err := lw.lowerType(p.Type)
		if err != nil {
			return codegenErr(ext.Pos, "extern %s param %s: %v", ext.Name, p.Name, err)
		}
		if isStringSource(p.Type) {
			pty = irtypes.NewPointer(irtypes.I8) // foreign String passed as data_pointer, C ABI
		}
		params = append(params, ir.NewParam(p.Name, pty))
	}

	fn := lw.module.NewFunc(ext.ForeignName, retTy, params...)
	if ext.Variadic {
		fn.Sig.Variadic = true
	}
	lw.foreignSymbols[ext.Name] = fn
	lw.foreignReturns[ext.Name] = ext.ReturnType

	effect, err := declaredEffect(ext.Pos, ext.Annotations)
	if err != nil {
		return err
	}
	lw.signatures[ext.Name] = buildSignature(ext.Params, ext.ReturnType, effect, ext.Pos)
	return nil
}

func (lw *Lowerer) declareFunction(fn *ast.FunctionDef) error {
	retTy, err := lw.lowerType(fn.ReturnType)
	if err != nil {
		return codegenErr(fn.Pos, "func %s: %v", fn.Name, err)
	}
	var params []*ir.Param
	for _, p := range fn.Params {
		pty, err := lw.lowerType(p.Type)
		if err != nil {
			return codegenErr(fn.Pos, "func %s param %s: %v", fn.Name, p.Name, err)
		}
		params = append(params, ir.NewParam(p.Name, pty))
	}
	llvmFn := lw.module.NewFunc(fn.Name, retTy, params...)
	lw.funcs[fn.Name] = llvmFn
	lw.funcReturns[fn.Name] = fn.ReturnType

	effect, err := declaredEffect(fn.Pos, fn.Annotations)
	if err != nil {
		return err
	}
	lw.signatures[fn.Name] = buildSignature(fn.Params, fn.ReturnType, effect, fn.Pos)
	return nil
}

func codegenErr(pos ast.Pos, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	return errors.WrapReport(errors.New(errors.CDG001, "codegen", pos, msg, nil))
}

func isStringSource(t ast.Type) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.Name == "String"
}

// typeEnv builds the types.Env a function body's inference needs, seeded
// from the Lowerer's own declaration-pass tables.
func (lw *Lowerer) typeEnv() *types.Env {
	env := types.NewEnv()
	for name, fields := range lw.records {
		env.Records[name] = fields
	}
	for name, ctors := range lw.variants {
		env.Variants[name] = ctors
	}
	for name, owner := range lw.ctorOwner {
		env.ConstructorOwner[name] = owner
	}
	for name, ty := range lw.funcReturns {
		env.FuncReturns[name] = ty
	}
	for name, ty := range lw.foreignReturns {
		env.ExternReturns[name] = ty
	}
	return env
}
