// Package effects names the closed effect vocabulary a Function type may
// declare. Pole IR compiles to a native object with no capability-checked
// execution model, so these names are validated and pretty-printed only —
// never consulted by the lowering engine to alter codegen.
package effects

// Name is one of the four effect capabilities a FunctionType may declare.
type Name string

const (
	IO    Name = "IO"
	FS    Name = "FS"
	Net   Name = "Net"
	Clock Name = "Clock"
)

var known = map[Name]bool{IO: true, FS: true, Net: true, Clock: true}

// Valid reports whether name is one of the closed effect vocabulary, or
// empty (no declared effect).
func Valid(name string) bool {
	if name == "" {
		return true
	}
	return known[Name(name)]
}

// String pretty-prints a declared effect the way a FunctionType's own
// String method does: "" when absent, the bare name otherwise.
func String(name string) string {
	return name
}
