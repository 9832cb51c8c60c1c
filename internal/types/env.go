// Package types implements Pole IR's local, recursive type inference: no
// unification, no row polymorphism, no type classes — a pure function over
// ast.Expr that consults a small set of per-compilation tables and returns
// a source-level ast.Type. See Infer.
package types

import (
	"github.com/pole-lang/polec/internal/ast"
)

// Type is the source-level type sum, unchanged from the AST's own Type
// interface: BasicType, OptionType, ResultType, ListType, PointerType,
// TupleType, RecordType, FunctionType, UnknownType.
type Type = ast.Type

// Env is the inference-time view of the lowering engine's per-compilation
// state: the tables the lowering context threads, restricted to what
// inference needs. The lowering engine owns the authoritative copies;
// Env is extended through WithLocal copies, never mutated in place, as
// lowering binds function parameters and let names.
type Env struct {
	// Locals maps a bound name (function parameter, let-binding, or
	// match-arm pattern variable) to its inferred type.
	Locals map[string]Type

	// Records maps a record type name to its declaration-order field list.
	Records map[string][]ast.RecordField

	// Variants maps a variant type name to its ordered constructor list,
	// and ConstructorOwner maps a constructor name back to its declaring
	// variant type name (constructor names are unique across the program).
	Variants          map[string][]ast.VariantConstructor
	ConstructorOwner  map[string]string

	// FuncReturns and ExternReturns map a user/foreign function name to its
	// declared return type.
	FuncReturns   map[string]Type
	ExternReturns map[string]Type

	// CurrentReturn is the declared return type of the function currently
	// being lowered, consulted to disambiguate a bare `None` reference.
	CurrentReturn Type
}

// NewEnv creates an empty Env. The lowering engine populates Records,
// Variants, ConstructorOwner, FuncReturns, and ExternReturns once during
// its declaration pass, then clones/extends Locals per function.
func NewEnv() *Env {
	return &Env{
		Locals:           make(map[string]Type),
		Records:          make(map[string][]ast.RecordField),
		Variants:         make(map[string][]ast.VariantConstructor),
		ConstructorOwner: make(map[string]string),
		FuncReturns:      make(map[string]Type),
		ExternReturns:    make(map[string]Type),
	}
}

// WithLocal returns a shallow copy of env with name bound to ty — the
// save/restore idiom the lowering engine uses for let and match-arm scopes
// is implemented by the caller keeping the old Env and swapping it back in,
// not by Env itself being mutated in place.
func (env *Env) WithLocal(name string, ty Type) *Env {
	next := &Env{
		Locals:           make(map[string]Type, len(env.Locals)+1),
		Records:          env.Records,
		Variants:         env.Variants,
		ConstructorOwner: env.ConstructorOwner,
		FuncReturns:      env.FuncReturns,
		ExternReturns:    env.ExternReturns,
		CurrentReturn:    env.CurrentReturn,
	}
	for k, v := range env.Locals {
		next.Locals[k] = v
	}
	next.Locals[name] = ty
	return next
}
