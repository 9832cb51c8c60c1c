package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/types"
)

func (fb *funcBuilder) lowerExpr(e ast.Expr) (value.Value, error) {
	switch ex := e.(type) {
	case *ast.Literal:
		return fb.lowerLiteral(ex)
	case *ast.Variable:
		return fb.lowerVariable(ex)
	case *ast.BinaryOp:
		return fb.lowerBinaryOp(ex)
	case *ast.UnaryOp:
		return fb.lowerUnaryOp(ex)
	case *ast.If:
		return fb.lowerIf(ex)
	case *ast.Match:
		return fb.lowerMatch(ex)
	case *ast.Let:
		return fb.lowerLet(ex)
	case *ast.FieldAccess:
		return fb.lowerFieldAccess(ex)
	case *ast.Record:
		return fb.lowerRecordLiteral(ex)
	case *ast.Constructor:
		return fb.lowerConstructor(ex)
	case *ast.Application:
		return fb.lowerApplication(ex)
	case *ast.Tuple:
		return fb.lowerTuple(ex)
	default:
		return nil, codegenErr(e.Position(), "unsupported expression %T", e)
	}
}

func (fb *funcBuilder) lowerLiteral(l *ast.Literal) (value.Value, error) {
	switch l.Kind {
	case ast.IntLit:
		return constant.NewInt(irtypes.I64, l.Value.(int64)), nil
	case ast.FloatLit:
		return constant.NewFloat(irtypes.Double, l.Value.(float64)), nil
	case ast.BoolLit:
		if l.Value.(bool) {
			return constant.NewInt(irtypes.I1, 1), nil
		}
		return constant.NewInt(irtypes.I1, 0), nil
	case ast.StringLit:
		return fb.lowerStringConstant(l.Value.(string))
	case ast.UnitLit:
		return constant.NewInt(irtypes.I8, 0), nil
	default:
		return nil, codegenErr(l.Pos, "unsupported literal kind %v", l.Kind)
	}
}

func (fb *funcBuilder) lowerStringConstant(s string) (value.Value, error) {
	data := constant.NewCharArrayFromString(s + "\x00")
	global := fb.lw.module.NewGlobalDef("", data)
	global.Immutable = true
	arrTy, _ := data.Type().(*irtypes.ArrayType)
	ptr := constant.NewGetElementPtr(arrTy, global,
		constant.NewInt(irtypes.I64, 0), constant.NewInt(irtypes.I64, 0))
	strTy := stringStructType()
	return constant.NewStruct(strTy, ptr, constant.NewInt(irtypes.I64, int64(len(s)))), nil
}

func (fb *funcBuilder) lowerVariable(v *ast.Variable) (value.Value, error) {
	if val, ok := fb.scope.lookup(v.Name); ok {
		return val, nil
	}
	if _, ok := fb.lw.ctorOwner[v.Name]; ok {
		return constant.NewInt(irtypes.I32, fb.lw.ctorIndex[v.Name]), nil
	}
	if v.Name == "None" {
		if opt, ok := fb.typeEnv.CurrentReturn.(*ast.OptionType); ok {
			inner, err := fb.lw.lowerType(opt.Inner)
			if err != nil {
				return nil, codegenErr(v.Pos, "%v", err)
			}
			optTy := optionStructType(inner)
			return constant.NewStruct(optTy, constant.NewInt(irtypes.I32, 0), constant.NewUndef(inner)), nil
		}
		return nil, codegenErr(v.Pos, "ambiguous None: enclosing function's return type is not Option<T>")
	}
	if types.IsBuiltin(v.Name) {
		return nil, codegenErr(v.Pos, "%s is a built-in function, not a value", v.Name)
	}
	return nil, codegenErr(v.Pos, "unbound variable %q", v.Name)
}

func (fb *funcBuilder) lowerUnaryOp(u *ast.UnaryOp) (value.Value, error) {
	operand, err := fb.lowerExpr(u.Expr)
	if err != nil {
		return nil, err
	}
	if u.Op != "-" {
		return nil, codegenErr(u.Pos, "unsupported unary operator %q", u.Op)
	}
	if operand.Type().Equal(irtypes.Double) {
		return fb.block.NewFSub(constant.NewFloat(irtypes.Double, 0), operand), nil
	}
	return fb.block.NewSub(constant.NewInt(irtypes.I64, 0), operand), nil
}

func (fb *funcBuilder) lowerBinaryOp(b *ast.BinaryOp) (value.Value, error) {
	left, err := fb.lowerExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := fb.lowerExpr(b.Right)
	if err != nil {
		return nil, err
	}
	// Only integer arithmetic/compares are supported at this level of
	// coverage; floating-point operands are an open question (spec.md §9).
	switch b.Op {
	case "+":
		return fb.block.NewAdd(left, right), nil
	case "-":
		return fb.block.NewSub(left, right), nil
	case "*":
		return fb.block.NewMul(left, right), nil
	case "/":
		return fb.block.NewSDiv(left, right), nil
	case "%":
		return fb.block.NewSRem(left, right), nil
	case "==":
		return fb.block.NewICmp(enum.IPredEQ, left, right), nil
	case "!=":
		return fb.block.NewICmp(enum.IPredNE, left, right), nil
	case "<":
		return fb.block.NewICmp(enum.IPredSLT, left, right), nil
	case "<=":
		return fb.block.NewICmp(enum.IPredSLE, left, right), nil
	case ">":
		return fb.block.NewICmp(enum.IPredSGT, left, right), nil
	case ">=":
		return fb.block.NewICmp(enum.IPredSGE, left, right), nil
	case "&&":
		return fb.block.NewAnd(left, right), nil
	case "||":
		return fb.block.NewOr(left, right), nil
	default:
		return nil, codegenErr(b.Pos, "unsupported binary operator %q", b.Op)
	}
}

func (fb *funcBuilder) lowerIf(i *ast.If) (value.Value, error) {
	cond, err := fb.lowerExpr(i.Condition)
	if err != nil {
		return nil, err
	}

	thenBlock := fb.fn.NewBlock("if.then")
	elseBlock := fb.fn.NewBlock("if.else")
	mergeBlock := fb.fn.NewBlock("if.merge")
	fb.block.NewCondBr(cond, thenBlock, elseBlock)

	fb.block = thenBlock
	thenVal, err := fb.lowerExpr(i.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := fb.block
	thenEnd.NewBr(mergeBlock)

	fb.block = elseBlock
	elseVal, err := fb.lowerExpr(i.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := fb.block
	elseEnd.NewBr(mergeBlock)

	fb.block = mergeBlock
	phi := mergeBlock.NewPhi(
		ir.NewIncoming(thenVal, thenEnd),
		ir.NewIncoming(elseVal, elseEnd),
	)
	return phi, nil
}

func (fb *funcBuilder) lowerLet(l *ast.Let) (value.Value, error) {
	val, err := fb.lowerExpr(l.Value)
	if err != nil {
		return nil, err
	}

	savedScope, savedEnv := fb.scope, fb.typeEnv
	if l.Name != "_" {
		valTy, err := types.Infer(l.Value, fb.typeEnv)
		if err != nil {
			return nil, err
		}
		fb.scope = &scope{parent: fb.scope, name: l.Name, val: val}
		fb.typeEnv = fb.typeEnv.WithLocal(l.Name, valTy)
	}

	bodyVal, err := fb.lowerExpr(l.Body)
	fb.scope, fb.typeEnv = savedScope, savedEnv
	if err != nil {
		return nil, err
	}
	return bodyVal, nil
}

func (fb *funcBuilder) lowerFieldAccess(f *ast.FieldAccess) (value.Value, error) {
	base, ok := f.Record.(*ast.Variable)
	if !ok {
		return nil, codegenErr(f.Pos, "field access is only supported on a directly named variable")
	}
	baseVal, ok := fb.scope.lookup(base.Name)
	if !ok {
		return nil, codegenErr(f.Pos, "unbound variable %q", base.Name)
	}
	baseTy, err := types.Infer(base, fb.typeEnv)
	if err != nil {
		return nil, err
	}
	bt, ok := baseTy.(*ast.BasicType)
	if !ok {
		return nil, codegenErr(f.Pos, "%s is not a record", base.Name)
	}
	fields, ok := fb.lw.records[bt.Name]
	if !ok {
		return nil, codegenErr(f.Pos, "%s is not a known record type", bt.Name)
	}
	for i, field := range fields {
		if field.Name == f.Field {
			return fb.block.NewExtractValue(baseVal, uint64(i)), nil
		}
	}
	return nil, codegenErr(f.Pos, "unknown field %q on record %s", f.Field, bt.Name)
}

func (fb *funcBuilder) lowerRecordLiteral(r *ast.Record) (value.Value, error) {
	fieldSet := make(map[string]ast.Expr, len(r.Fields))
	for _, f := range r.Fields {
		fieldSet[f.Name] = f.Value
	}

	var declFields []ast.RecordField
	for _, fields := range fb.lw.records {
		if len(fields) != len(fieldSet) {
			continue
		}
		matches := true
		for _, f := range fields {
			if _, ok := fieldSet[f.Name]; !ok {
				matches = false
				break
			}
		}
		if matches {
			declFields = fields
			break
		}
	}
	if declFields == nil {
		return nil, codegenErr(r.Pos, "no registered record type matches these fields")
	}

	vals := make([]value.Value, len(declFields))
	elemTypes := make([]irtypes.Type, len(declFields))
	for i, f := range declFields {
		v, err := fb.lowerExpr(fieldSet[f.Name])
		if err != nil {
			return nil, err
		}
		vals[i] = v
		elemTypes[i] = v.Type()
	}

	structTy := irtypes.NewStruct(elemTypes...)
	var agg value.Value = constant.NewUndef(structTy)
	for i, v := range vals {
		agg = fb.block.NewInsertValue(agg, v, uint64(i))
	}
	return agg, nil
}

func (fb *funcBuilder) lowerConstructor(c *ast.Constructor) (value.Value, error) {
	if c.Name != "List" {
		if _, ok := fb.lw.ctorOwner[c.Name]; ok {
			return constant.NewInt(irtypes.I32, fb.lw.ctorIndex[c.Name]), nil
		}
		return nil, codegenErr(c.Pos, "unknown constructor %q", c.Name)
	}
	return fb.lowerListLiteral(c)
}

func (fb *funcBuilder) lowerListLiteral(c *ast.Constructor) (value.Value, error) {
	if len(c.Args) == 0 {
		elemTy := irtypes.I64
		listTy := listStructType(elemTy)
		return constant.NewStruct(listTy, constant.NewNull(irtypes.NewPointer(elemTy)), constant.NewInt(irtypes.I64, 0)), nil
	}

	elems := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := fb.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	elemTy := elems[0].Type()

	constElems := make([]constant.Constant, len(elems))
	allConst := true
	for i, v := range elems {
		cv, ok := v.(constant.Constant)
		if !ok {
			allConst = false
			break
		}
		constElems[i] = cv
	}

	listTy := listStructType(elemTy)
	if allConst {
		arrTy := irtypes.NewArray(uint64(len(elems)), elemTy)
		arr := constant.NewArray(arrTy, constElems...)
		global := fb.lw.module.NewGlobalDef("", arr)
		global.Immutable = true
		ptr := fb.block.NewGetElementPtr(arrTy, global,
			constant.NewInt(irtypes.I64, 0), constant.NewInt(irtypes.I64, 0))
		agg := constant.NewUndef(listTy)
		out := fb.block.NewInsertValue(agg, ptr, 0)
		return fb.block.NewInsertValue(out, constant.NewInt(irtypes.I64, int64(len(elems))), 1), nil
	}

	// At least one element is a runtime value: allocate on the heap and
	// store each element individually.
	sizeBytes := int64(len(elems)) * elemSizeBytes(elemTy)
	raw := fb.block.NewCall(fb.lw.runtime.Malloc(), constant.NewInt(irtypes.I64, sizeBytes))
	typedPtr := fb.block.NewBitCast(raw, irtypes.NewPointer(elemTy))
	for i, v := range elems {
		elemPtr := fb.block.NewGetElementPtr(elemTy, typedPtr, constant.NewInt(irtypes.I64, int64(i)))
		fb.block.NewStore(v, elemPtr)
	}
	agg := constant.NewUndef(listTy)
	out := fb.block.NewInsertValue(agg, typedPtr, 0)
	return fb.block.NewInsertValue(out, constant.NewInt(irtypes.I64, int64(len(elems))), 1), nil
}

func (fb *funcBuilder) lowerTuple(t *ast.Tuple) (value.Value, error) {
	elems := make([]value.Value, len(t.Elements))
	elemTypes := make([]irtypes.Type, len(t.Elements))
	for i, e := range t.Elements {
		v, err := fb.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		elems[i] = v
		elemTypes[i] = v.Type()
	}
	structTy := irtypes.NewStruct(elemTypes...)
	var agg value.Value = constant.NewUndef(structTy)
	for i, v := range elems {
		agg = fb.block.NewInsertValue(agg, v, uint64(i))
	}
	return agg, nil
}

func elemSizeBytes(t irtypes.Type) int64 {
	switch t {
	case irtypes.I64, irtypes.Double:
		return 8
	case irtypes.I32:
		return 4
	case irtypes.I8, irtypes.I1:
		return 1
	default:
		return 8 // pointers and aggregates: conservative, ABI-sized by the target in practice
	}
}
