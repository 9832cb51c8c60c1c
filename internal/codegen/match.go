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

// lowerMatch compiles a match expression as a top-to-bottom cascade of
// conditional branches, one per arm, each falling through to a recursive
// lowering of the remaining arms on pattern failure (spec.md §4.4).
func (fb *funcBuilder) lowerMatch(m *ast.Match) (value.Value, error) {
	if len(m.Arms) == 0 {
		return nil, codegenErr(m.Pos, "match has no arms")
	}
	scrutinee, err := fb.lowerExpr(m.Scrutinee)
	if err != nil {
		return nil, err
	}
	return fb.lowerMatchArms(m, scrutinee, m.Arms)
}

func (fb *funcBuilder) lowerMatchArms(m *ast.Match, scrutinee value.Value, arms []ast.MatchArm) (value.Value, error) {
	arm := arms[0]
	rest := arms[1:]

	switch pat := arm.Pattern.(type) {
	case *ast.WildcardPattern:
		return fb.lowerExpr(arm.Body)

	case *ast.VariablePattern:
		savedScope := fb.scope
		fb.scope = &scope{parent: fb.scope, name: pat.Name, val: scrutinee}
		v, err := fb.lowerExpr(arm.Body)
		fb.scope = savedScope
		return v, err

	case *ast.LiteralPattern:
		litVal, err := fb.lowerExpr(&ast.Literal{Kind: pat.Kind, Value: pat.Value, Pos: pat.Pos})
		if err != nil {
			return nil, err
		}
		cond := fb.block.NewICmp(enum.IPredEQ, scrutinee, litVal)
		return fb.branchOnCond(m, cond, arm, rest, scrutinee)

	case *ast.ConstructorPattern:
		return fb.lowerConstructorPatternArm(m, scrutinee, pat, arm, rest)

	default:
		return nil, codegenErr(arm.Pattern.Position(), "unsupported pattern %T in match", arm.Pattern)
	}
}

// branchOnCond builds the then/else blocks for a boolean-tested pattern: a
// match on the pattern enters the arm body; a miss recurses into the
// remaining arms. Both paths merge via a phi typed by the first arm's
// value, per spec.md §4.4.
func (fb *funcBuilder) branchOnCond(m *ast.Match, cond value.Value, arm ast.MatchArm, rest []ast.MatchArm, scrutinee value.Value) (value.Value, error) {
	thenBlock := fb.fn.NewBlock("match.then")
	elseBlock := fb.fn.NewBlock("match.else")
	mergeBlock := fb.fn.NewBlock("match.merge")
	fb.block.NewCondBr(cond, thenBlock, elseBlock)

	fb.block = thenBlock
	thenVal, err := fb.lowerExpr(arm.Body)
	if err != nil {
		return nil, err
	}
	thenEnd := fb.block
	thenEnd.NewBr(mergeBlock)

	fb.block = elseBlock
	var elseVal value.Value
	if len(rest) == 0 {
		elseVal, err = fb.lowerExpr(arm.Body) // unreachable per exhaustiveness, same type as then
	} else {
		elseVal, err = fb.lowerMatchArms(m, scrutinee, rest)
	}
	if err != nil {
		return nil, err
	}
	elseEnd := fb.block
	elseEnd.NewBr(mergeBlock)

	fb.block = mergeBlock
	return mergeBlock.NewPhi(
		ir.NewIncoming(thenVal, thenEnd),
		ir.NewIncoming(elseVal, elseEnd),
	), nil
}

// lowerConstructorPatternArm handles the only constructor patterns spec.md
// §4.4 specifies: Some(x)/Ok(x) (tag 1, extract field 1) and None/Err (tag
// 0). Constructors of user variants beyond nullary enums are an open
// question not covered by this lowering.
func (fb *funcBuilder) lowerConstructorPatternArm(m *ast.Match, scrutinee value.Value, pat *ast.ConstructorPattern, arm ast.MatchArm, rest []ast.MatchArm) (value.Value, error) {
	switch pat.Name {
	case "Some", "Ok":
		tag := fb.block.NewExtractValue(scrutinee, 0)
		cond := fb.block.NewICmp(enum.IPredEQ, tag, constant.NewInt(irtypes.I32, 1))

		thenBlock := fb.fn.NewBlock("match.some.then")
		elseBlock := fb.fn.NewBlock("match.some.else")
		mergeBlock := fb.fn.NewBlock("match.some.merge")
		fb.block.NewCondBr(cond, thenBlock, elseBlock)

		fb.block = thenBlock
		var thenVal value.Value
		var err error
		if len(pat.Args) > 0 {
			if bindPat, ok := pat.Args[0].(*ast.VariablePattern); ok {
				inner, innerErr := fb.extractSomeOrOkPayload(m.Scrutinee, scrutinee, pat.Name)
				if innerErr != nil {
					return nil, innerErr
				}
				savedScope := fb.scope
				fb.scope = &scope{parent: fb.scope, name: bindPat.Name, val: inner}
				thenVal, err = fb.lowerExpr(arm.Body)
				fb.scope = savedScope
			} else {
				thenVal, err = fb.lowerExpr(arm.Body)
			}
		} else {
			thenVal, err = fb.lowerExpr(arm.Body)
		}
		if err != nil {
			return nil, err
		}
		thenEnd := fb.block
		thenEnd.NewBr(mergeBlock)

		fb.block = elseBlock
		var elseVal value.Value
		if len(rest) == 0 {
			elseVal, err = fb.lowerExpr(arm.Body)
		} else {
			elseVal, err = fb.lowerMatchArms(m, scrutinee, rest)
		}
		if err != nil {
			return nil, err
		}
		elseEnd := fb.block
		elseEnd.NewBr(mergeBlock)

		fb.block = mergeBlock
		return mergeBlock.NewPhi(
			ir.NewIncoming(thenVal, thenEnd),
			ir.NewIncoming(elseVal, elseEnd),
		), nil

	case "None", "Err":
		tag := fb.block.NewExtractValue(scrutinee, 0)
		cond := fb.block.NewICmp(enum.IPredEQ, tag, constant.NewInt(irtypes.I32, 0))
		return fb.branchOnCond(m, cond, arm, rest, scrutinee)

	default:
		// Nullary user-variant constructor: compare the scrutinee's i32 tag
		// directly.
		if idx, ok := fb.lw.ctorIndex[pat.Name]; ok && len(pat.Args) == 0 {
			cond := fb.block.NewICmp(enum.IPredEQ, scrutinee, constant.NewInt(irtypes.I32, idx))
			return fb.branchOnCond(m, cond, arm, rest, scrutinee)
		}
		return nil, codegenErr(pat.Pos, "constructor pattern %q with arguments is not supported in match", pat.Name)
	}
}

// extractSomeOrOkPayload reads the bound payload out of a Some(x)/Ok(x)
// scrutinee. Some's field 1 is already x's own SSA type; Ok's field 1 is the
// byte array resultStructType packs the larger-of-T/E payload into, so it
// needs unpacking back to the Ok branch's concrete type first — recovered
// from the scrutinee expression's declared Result<T, E> type, since the SSA
// struct itself no longer carries it.
func (fb *funcBuilder) extractSomeOrOkPayload(scrutineeExpr ast.Expr, scrutinee value.Value, ctorName string) (value.Value, error) {
	raw := fb.block.NewExtractValue(scrutinee, 1)
	if ctorName == "Some" {
		return raw, nil
	}
	scrutTy, err := types.Infer(scrutineeExpr, fb.typeEnv)
	if err != nil {
		return nil, codegenErr(scrutineeExpr.Position(), "%v", err)
	}
	rt, ok := scrutTy.(*ast.ResultType)
	if !ok {
		return nil, codegenErr(scrutineeExpr.Position(), "Ok pattern on a non-Result scrutinee")
	}
	okTy, err := fb.lw.lowerType(rt.Ok)
	if err != nil {
		return nil, codegenErr(scrutineeExpr.Position(), "%v", err)
	}
	return fb.unpackFromBytes(raw, okTy), nil
}
