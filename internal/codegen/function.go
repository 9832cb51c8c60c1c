package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/types"
)

// scope is a linked chain of name -> SSA value bindings. Entering a let or
// a match-arm pattern pushes a new link; leaving it restores the previous
// link — the save/restore shadowing idiom spec.md §4.4 describes, realized
// here as a chain walk rather than a literal stack.
type scope struct {
	parent *scope
	name   string
	val    value.Value
}

func (s *scope) lookup(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.val, true
		}
	}
	return nil, false
}

// funcBuilder lowers the body of a single function. It is the per-function
// instance of the lowering context spec.md describes: the current SSA
// insertion block, the value scope chain, and the type-inference Env
// threaded alongside it (so None and field access resolve consistently
// with what the lowering engine itself is producing).
type funcBuilder struct {
	lw      *Lowerer
	fn      *ir.Func
	block   *ir.Block
	scope   *scope
	typeEnv *types.Env
}

func (lw *Lowerer) lowerFunction(fn *ast.FunctionDef) error {
	llvmFn := lw.funcs[fn.Name]
	entry := llvmFn.NewBlock("entry")

	env := lw.typeEnv()
	env.CurrentReturn = fn.ReturnType

	fb := &funcBuilder{lw: lw, fn: llvmFn, block: entry, typeEnv: env}
	for i, p := range fn.Params {
		fb.scope = &scope{parent: fb.scope, name: p.Name, val: llvmFn.Params[i]}
		fb.typeEnv = fb.typeEnv.WithLocal(p.Name, p.Type)
	}

	bodyVal, err := fb.lowerExpr(fn.Body)
	if err != nil {
		return err
	}

	if isUnit(fn.ReturnType) {
		fb.block.NewRet(constant.NewInt(irtypes.I8, 0))
		return nil
	}
	fb.block.NewRet(bodyVal)
	return nil
}

func isUnit(t ast.Type) bool {
	bt, ok := t.(*ast.BasicType)
	return ok && bt.Name == "Unit"
}

