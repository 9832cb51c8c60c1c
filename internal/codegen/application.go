package codegen

import (
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/types"
)

// flattenApplication walks a nested-application chain down to its callee
// name and ordered argument expressions — the parser's desugaring of
// `f(a, b, c)` into nested single-arg Application nodes is undone here,
// mirroring internal/types' own flattening of the same shape.
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

func (fb *funcBuilder) lowerApplication(app *ast.Application) (value.Value, error) {
	name, argExprs, ok := flattenApplication(app)
	if !ok {
		return nil, codegenErr(app.Pos, "application target is not a named function")
	}

	args := make([]value.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := fb.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch name {
	case "Some":
		return fb.lowerSomeConstruction(app, args)
	case "Ok":
		return fb.lowerResultConstruction(app, name, args, true)
	case "Err":
		return fb.lowerResultConstruction(app, name, args, false)
	}

	if types.IsBuiltin(name) {
		return fb.lowerBuiltinCall(app, name, args)
	}

	if fn, ok := fb.lw.funcs[name]; ok {
		return fb.block.NewCall(fn, args...), nil
	}
	if fn, ok := fb.lw.foreignSymbols[name]; ok {
		return fb.block.NewCall(fn, fb.adaptForeignArgs(args)...), nil
	}

	return nil, codegenErr(app.Pos, "call to undeclared function %q", name)
}

// lowerSomeConstruction builds the tagged Option<T> struct {1, x} for a
// Some(x) application. Unlike None, T is simply the argument's own SSA
// type — no enclosing-context lookup is needed since the payload is right
// there.
func (fb *funcBuilder) lowerSomeConstruction(app *ast.Application, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, codegenErr(app.Pos, "Some expects exactly one argument")
	}
	optTy := optionStructType(args[0].Type())
	agg := value.Value(constant.NewUndef(optTy))
	agg = fb.block.NewInsertValue(agg, constant.NewInt(irtypes.I32, 1), 0)
	return fb.block.NewInsertValue(agg, args[0], 1)
}

// lowerResultConstruction builds the tagged Result<T, E> struct for an
// Ok(x)/Err(x) application. The branch not being constructed isn't known at
// the call site — the same ambiguity None has — so the enclosing function's
// declared Result<T, E> return type supplies both halves (see Open Question
// decision 7 in DESIGN.md for the analogous None case). The payload is
// packed into the value slot's byte array via packIntoBytes since T and E
// can be differently-shaped SSA types.
func (fb *funcBuilder) lowerResultConstruction(app *ast.Application, name string, args []value.Value, isOk bool) (value.Value, error) {
	if len(args) != 1 {
		return nil, codegenErr(app.Pos, "%s expects exactly one argument", name)
	}
	rt, ok := fb.typeEnv.CurrentReturn.(*ast.ResultType)
	if !ok {
		return nil, codegenErr(app.Pos, "ambiguous %s: enclosing function's return type is not Result<T, E>", name)
	}
	okTy, err := fb.lw.lowerType(rt.Ok)
	if err != nil {
		return nil, codegenErr(app.Pos, "%v", err)
	}
	errTy, err := fb.lw.lowerType(rt.Err)
	if err != nil {
		return nil, codegenErr(app.Pos, "%v", err)
	}
	size := resultPayloadSize(okTy, errTy)
	resTy := resultStructType(size)

	tag := int64(0)
	if isOk {
		tag = 1
	}
	packed := fb.packIntoBytes(args[0], size)
	agg := value.Value(constant.NewUndef(resTy))
	agg = fb.block.NewInsertValue(agg, constant.NewInt(irtypes.I32, tag), 0)
	return fb.block.NewInsertValue(agg, packed, 1)
}

// packIntoBytes reinterprets val as a [n]i8 array by round-tripping it
// through an alloca: store as its own type, load back as bytes. n must be
// at least val's own size (resultPayloadSize guarantees this for Ok/Err).
func (fb *funcBuilder) packIntoBytes(val value.Value, n int64) value.Value {
	arrTy := irtypes.NewArray(uint64(n), irtypes.I8)
	slot := fb.block.NewAlloca(arrTy)
	typedSlot := fb.block.NewBitCast(slot, irtypes.NewPointer(val.Type()))
	fb.block.NewStore(val, typedSlot)
	return fb.block.NewLoad(arrTy, slot)
}

// unpackFromBytes is packIntoBytes's inverse: store the byte array, reload
// through a pointer bitcast to the target type.
func (fb *funcBuilder) unpackFromBytes(bytes value.Value, target irtypes.Type) value.Value {
	slot := fb.block.NewAlloca(bytes.Type())
	fb.block.NewStore(bytes, slot)
	typedSlot := fb.block.NewBitCast(slot, irtypes.NewPointer(target))
	return fb.block.NewLoad(target, typedSlot)
}

// adaptForeignArgs applies the foreign-call String ABI rule: any argument
// whose SSA type is the two-field {i8*, i64} String struct is passed as
// its .data_pointer field (element 0) rather than the whole struct.
func (fb *funcBuilder) adaptForeignArgs(args []value.Value) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		if isStringStructType(a.Type()) {
			out[i] = fb.block.NewExtractValue(a, 0)
		} else {
			out[i] = a
		}
	}
	return out
}

func isStringStructType(t irtypes.Type) bool {
	st, ok := t.(*irtypes.StructType)
	if !ok || len(st.Fields) != 2 {
		return false
	}
	_, fieldIsPtr := st.Fields[0].(*irtypes.PointerType)
	return fieldIsPtr && st.Fields[1].Equal(irtypes.I64)
}
