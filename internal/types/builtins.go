package types

import "github.com/pole-lang/polec/internal/ast"

// builtinNames is the closed vocabulary of source-level built-in function
// names (§6). Both "List_get"-style and no other spelling are recognized —
// the lexer has no dotted-identifier production, so the dotted spelling
// spec.md allows alongside the underscored one is not reachable by this
// grammar (see DESIGN.md).
var builtinNames = map[string]bool{
	"String_length": true, "String_contains": true,
	"print": true, "println": true,
	"List_get": true, "List_set": true, "List_push": true,
	"List_length": true, "List_concat": true,
	"HashMap_new": true, "HashMap_put": true, "HashMap_get": true, "HashMap_size": true,
}

// IsBuiltin reports whether name is a reserved built-in function name.
func IsBuiltin(name string) bool { return builtinNames[name] }

var (
	natType    Type = &ast.BasicType{Name: "Nat"}
	boolType   Type = &ast.BasicType{Name: "Bool"}
	unitType   Type = &ast.BasicType{Name: "Unit"}
	intType    Type = &ast.BasicType{Name: "Int"}
	hashMapTyp Type = &ast.BasicType{Name: "HashMap"}
)

// inferBuiltinCall returns the fixed return type for a recognized built-in
// called with the given already-inferred argument types, per spec.md §4.4's
// built-in return-type table. args may be shorter than the builtin's true
// arity if earlier arguments failed to infer; callers should only reach
// here once arity has been checked by the caller (lowering does; infer.go
// itself tolerates a short slice to avoid panicking on malformed input).
func inferBuiltinCall(name string, args []Type) (Type, bool) {
	switch name {
	case "String_length":
		return natType, true
	case "String_contains":
		return boolType, true
	case "print", "println":
		return unitType, true
	case "List_get":
		if len(args) > 0 {
			if lt, ok := args[0].(*ast.ListType); ok {
				return lt.Element, true
			}
		}
		return intType, true
	case "List_set", "List_push":
		if len(args) > 0 {
			return args[0], true
		}
		return nil, false
	case "List_length":
		return natType, true
	case "List_concat":
		if len(args) > 0 {
			return args[0], true
		}
		return &ast.ListType{Element: intType}, true
	case "HashMap_new":
		return hashMapTyp, true
	case "HashMap_put":
		return unitType, true
	case "HashMap_get":
		// The wire format stores one untagged 8-byte value slot with no
		// element-type marker, so the get result defaults to Int.
		return intType, true
	case "HashMap_size":
		return natType, true
	}
	return nil, false
}
