// Package errors provides the structured diagnostic type shared by every
// compiler phase: arena exhaustion, parsing, type inference, lowering, and
// object emission all report through the same Report shape so a driver can
// render or JSON-encode them uniformly.
package errors

// Error code constants, one block per phase.
const (
	// OutOfMemory (OOM###)
	OOM001 = "OOM001" // arena allocation exceeded its advisory cap

	// Parser errors (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter
	PAR003 = "PAR003" // invalid function declaration
	PAR004 = "PAR004" // invalid type declaration
	PAR005 = "PAR005" // invalid extern declaration
	PAR006 = "PAR006" // invalid pattern
	PAR007 = "PAR007" // invalid type expression
	PAR008 = "PAR008" // invalid annotation
	PAR009 = "PAR009" // could not parse numeric literal

	// Type errors (TYP###)
	TYP001 = "TYP001" // unbound variable
	TYP002 = "TYP002" // applying a non-function value
	TYP003 = "TYP003" // field access on a non-record expression
	TYP004 = "TYP004" // unknown record field
	TYP005 = "TYP005" // unknown constructor
	TYP006 = "TYP006" // ambiguous None without an enclosing Option return type

	// Codegen errors (CDG###)
	CDG001 = "CDG001" // unbound variable during lowering
	CDG002 = "CDG002" // unknown built-in
	CDG003 = "CDG003" // unsupported expression form
	CDG004 = "CDG004" // arity mismatch in application chain
	CDG005 = "CDG005" // unrecognized user-defined type name
	CDG006 = "CDG006" // unrecognized @effect name

	// Emit errors (EMT###)
	EMT001 = "EMT001" // failed to parse generated LLVM IR
	EMT002 = "EMT002" // no target machine available for the given triple
	EMT003 = "EMT003" // failed to write object file
)

// ErrorInfo describes an error code's phase and category for tooling.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	OOM001: {OOM001, "arena", "memory", "Arena allocation exceeded its advisory cap"},

	PAR001: {PAR001, "parser", "syntax", "Unexpected token"},
	PAR002: {PAR002, "parser", "syntax", "Missing closing delimiter"},
	PAR003: {PAR003, "parser", "syntax", "Invalid function declaration"},
	PAR004: {PAR004, "parser", "syntax", "Invalid type declaration"},
	PAR005: {PAR005, "parser", "syntax", "Invalid extern declaration"},
	PAR006: {PAR006, "parser", "syntax", "Invalid pattern"},
	PAR007: {PAR007, "parser", "syntax", "Invalid type expression"},
	PAR008: {PAR008, "parser", "syntax", "Invalid annotation"},
	PAR009: {PAR009, "parser", "syntax", "Invalid numeric literal"},

	TYP001: {TYP001, "typecheck", "scope", "Unbound variable"},
	TYP002: {TYP002, "typecheck", "type", "Applying a non-function value"},
	TYP003: {TYP003, "typecheck", "type", "Field access on non-record"},
	TYP004: {TYP004, "typecheck", "type", "Unknown record field"},
	TYP005: {TYP005, "typecheck", "type", "Unknown constructor"},
	TYP006: {TYP006, "typecheck", "type", "Ambiguous None literal"},

	CDG001: {CDG001, "codegen", "scope", "Unbound variable during lowering"},
	CDG002: {CDG002, "codegen", "builtin", "Unknown built-in"},
	CDG003: {CDG003, "codegen", "lowering", "Unsupported expression form"},
	CDG004: {CDG004, "codegen", "lowering", "Arity mismatch in application chain"},
	CDG005: {CDG005, "codegen", "type", "Unrecognized user-defined type name"},
	CDG006: {CDG006, "codegen", "type", "Unrecognized @effect name"},

	EMT001: {EMT001, "emit", "llvm", "Failed to parse generated LLVM IR"},
	EMT002: {EMT002, "emit", "target", "No target machine for the given triple"},
	EMT003: {EMT003, "emit", "io", "Failed to write object file"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsParserError reports whether code belongs to the parser phase.
func IsParserError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "parser"
}

// IsTypeError reports whether code belongs to the typecheck phase.
func IsTypeError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "typecheck"
}

// IsCodegenError reports whether code belongs to the codegen phase.
func IsCodegenError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "codegen"
}
