// Package ast defines the closed, tagged AST for the Pole IR: types,
// expressions, patterns, and top-level declarations. This is a value-object
// layer only — construction and structural traversal, nothing else. All
// nodes are allocated into the parse/IR arenas by the parser and live for
// the duration of one compilation; lowering never mutates them.
package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Position() Pos
}

// Pos is a position in the source text.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int // byte offset, used for span arithmetic
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a range in source text, used for diagnostic reports.
type Span struct {
	Start Pos
	End   Pos
}

// Annotation is a parsed `@name(...)` form. Args may be positional
// (Key == "") or key=value pairs; both are preserved even for annotations
// the lowering engine ignores (@source, @test_case, ...).
type Annotation struct {
	Name string
	Args []AnnotationArg
	Pos  Pos
}

// AnnotationArg is one entry inside an annotation's parenthesized argument
// list.
type AnnotationArg struct {
	Key   string // "" for a positional argument
	Value string
}

func (a Annotation) String() string {
	if len(a.Args) == 0 {
		return "@" + a.Name
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		if arg.Key != "" {
			parts[i] = fmt.Sprintf("%s=%q", arg.Key, arg.Value)
		} else {
			parts[i] = fmt.Sprintf("%q", arg.Value)
		}
	}
	return fmt.Sprintf("@%s(%s)", a.Name, strings.Join(parts, ", "))
}

// Find returns the value of the first argument with the given key, or the
// first positional argument if key is "". Used for @extern("foreign_name").
func (a Annotation) Find(key string) (string, bool) {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// FindPositional returns the i-th positional (key-less) argument.
func (a Annotation) FindPositional(i int) (string, bool) {
	n := 0
	for _, arg := range a.Args {
		if arg.Key == "" {
			if n == i {
				return arg.Value, true
			}
			n++
		}
	}
	return "", false
}

// ============================================================================
// Types
// ============================================================================

// Type is the sum of all type expressions.
type Type interface {
	Node
	typeNode()
}

// BasicType names a primitive or user-defined type: Int, Nat, Bool,
// Float64, String, Unit, or a name bound by a TypeDef.
type BasicType struct {
	Name string
	Pos  Pos
}

func (t *BasicType) String() string { return t.Name }
func (t *BasicType) Position() Pos  { return t.Pos }
func (*BasicType) typeNode()        {}

// OptionType is Option<Inner>.
type OptionType struct {
	Inner Type
	Pos   Pos
}

func (t *OptionType) String() string { return fmt.Sprintf("Option<%s>", t.Inner) }
func (t *OptionType) Position() Pos  { return t.Pos }
func (*OptionType) typeNode()        {}

// ResultType is Result<Ok, Err>.
type ResultType struct {
	Ok  Type
	Err Type
	Pos Pos
}

func (t *ResultType) String() string { return fmt.Sprintf("Result<%s,%s>", t.Ok, t.Err) }
func (t *ResultType) Position() Pos  { return t.Pos }
func (*ResultType) typeNode()        {}

// ListType is List<Element>.
type ListType struct {
	Element Type
	Pos     Pos
}

func (t *ListType) String() string { return fmt.Sprintf("List<%s>", t.Element) }
func (t *ListType) Position() Pos  { return t.Pos }
func (*ListType) typeNode()        {}

// PointerType is Ptr<Pointee>.
type PointerType struct {
	Pointee Type
	Pos     Pos
}

func (t *PointerType) String() string { return fmt.Sprintf("Ptr<%s>", t.Pointee) }
func (t *PointerType) Position() Pos  { return t.Pos }
func (*PointerType) typeNode()        {}

// TupleType is (T1, T2, ...).
type TupleType struct {
	Elements []Type
	Pos      Pos
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) Position() Pos { return t.Pos }
func (*TupleType) typeNode()       {}

// RecordField is one (name, Type) entry in a record type. Order here is
// declaration order and is load-bearing: it determines physical layout.
type RecordField struct {
	Name string
	Type Type
}

// RecordType is an inline `{ f1: T1, f2: T2 }` record type.
type RecordType struct {
	Fields []RecordField
	Pos    Pos
}

func (t *RecordType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (t *RecordType) Position() Pos { return t.Pos }
func (*RecordType) typeNode()       {}

// FunctionType is Param -> Return, optionally annotated with an effect
// name. Only top-level functions exist (no closures), so this type
// describes a declared signature, not a first-class value.
type FunctionType struct {
	Param  Type
	Return Type
	Effect string // "" when absent
	Pos    Pos
}

func (t *FunctionType) String() string {
	if t.Effect != "" {
		return fmt.Sprintf("%s -> %s ! %s", t.Param, t.Return, t.Effect)
	}
	return fmt.Sprintf("%s -> %s", t.Param, t.Return)
}
func (t *FunctionType) Position() Pos { return t.Pos }
func (*FunctionType) typeNode()       {}

// UnknownType is the inference sentinel. It must never appear in a
// fully-lowered function; lowering a type that contains it fails with a
// codegen error.
type UnknownType struct {
	Pos Pos
}

func (t *UnknownType) String() string { return "Unknown" }
func (t *UnknownType) Position() Pos  { return t.Pos }
func (*UnknownType) typeNode()        {}

// ============================================================================
// Expressions
// ============================================================================

// Expr is the sum of all expression forms.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind distinguishes the literal forms.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	BoolLit
	StringLit
	UnitLit
)

// Literal is a literal value.
type Literal struct {
	Kind  LiteralKind
	Value interface{} // int64, float64, bool, string, or nil for Unit
	Pos   Pos
}

func (l *Literal) String() string {
	if l.Kind == StringLit {
		return fmt.Sprintf("%q", l.Value)
	}
	if l.Kind == UnitLit {
		return "()"
	}
	return fmt.Sprintf("%v", l.Value)
}
func (l *Literal) Position() Pos { return l.Pos }
func (*Literal) exprNode()       {}

// Variable is a reference to a bound name.
type Variable struct {
	Name string
	Pos  Pos
}

func (v *Variable) String() string { return v.Name }
func (v *Variable) Position() Pos  { return v.Pos }
func (*Variable) exprNode()        {}

// Param is one (name, Type) entry in a function's parameter list, lambda
// parameter list, or extern declaration parameter list.
type Param struct {
	Name string
	Type Type
	Pos  Pos
}

// Lambda is an anonymous function node, printed as `\x -> e`. The parser
// has no syntax that produces it, so a Lambda exists only when built
// directly; the core only lowers top-level FunctionDefs and rejects a
// Lambda during lowering (no closures).
type Lambda struct {
	Params []*Param
	Body   Expr
	Pos    Pos
}

func (l *Lambda) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("\\%s -> %s", strings.Join(names, " "), l.Body)
}
func (l *Lambda) Position() Pos { return l.Pos }
func (*Lambda) exprNode()       {}

// Application is a single-argument function application. A surface call
// `f(a, b, c)` is parsed into nested Applications: Application{Application{
// Application{f, a}, b}, c}.
type Application struct {
	Func Expr
	Arg  Expr
	Pos  Pos
}

func (a *Application) String() string { return fmt.Sprintf("(%s %s)", a.Func, a.Arg) }
func (a *Application) Position() Pos  { return a.Pos }
func (*Application) exprNode()        {}

// Let is a `let name = value in body` expression. A Name of "_" discards
// the binding: the body's scope is not extended.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
	Pos   Pos
}

func (l *Let) String() string { return fmt.Sprintf("(let %s = %s in %s)", l.Name, l.Value, l.Body) }
func (l *Let) Position() Pos  { return l.Pos }
func (*Let) exprNode()        {}

// If is a conditional expression.
type If struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Pos       Pos
}

func (i *If) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Condition, i.Then, i.Else)
}
func (i *If) Position() Pos { return i.Pos }
func (*If) exprNode()       {}

// MatchArm is one `| pattern -> body` arm of a match.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// Match is a pattern match over a scrutinee. Must have at least one arm:
// the parser reports a match with no arms, and lowering also rejects an
// arm-less Match built directly (CodegenError).
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Pos       Pos
}

func (m *Match) String() string {
	parts := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		parts[i] = fmt.Sprintf("| %s -> %s", a.Pattern, a.Body)
	}
	return fmt.Sprintf("(match %s with %s)", m.Scrutinee, strings.Join(parts, " "))
}
func (m *Match) Position() Pos { return m.Pos }
func (*Match) exprNode()       {}

// Constructor is a constructor application: a variant constructor
// (`Some(x)`, `Red`), or the synthetic "List" constructor produced by
// desugaring a list literal `[e1, e2, ...]`.
type Constructor struct {
	Name string
	Args []Expr
	Pos  Pos
}

func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}
func (c *Constructor) Position() Pos { return c.Pos }
func (*Constructor) exprNode()       {}

// BinaryOp is a binary operator application.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Pos
}

func (b *BinaryOp) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }
func (b *BinaryOp) Position() Pos  { return b.Pos }
func (*BinaryOp) exprNode()        {}

// UnaryOp is a unary operator application (currently only prefix `-`).
type UnaryOp struct {
	Op   string
	Expr Expr
	Pos  Pos
}

func (u *UnaryOp) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Expr) }
func (u *UnaryOp) Position() Pos  { return u.Pos }
func (*UnaryOp) exprNode()        {}

// Tuple is a tuple literal `(e1, e2, ...)`.
type Tuple struct {
	Elements []Expr
	Pos      Pos
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) Position() Pos { return t.Pos }
func (*Tuple) exprNode()       {}

// RecordFieldValue is one `name = value` entry of a record literal.
type RecordFieldValue struct {
	Name  string
	Value Expr
}

// Record is a record literal `{ k = v, ... }`.
type Record struct {
	Fields []RecordFieldValue
	Pos    Pos
}

func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Name, f.Value)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (r *Record) Position() Pos { return r.Pos }
func (*Record) exprNode()       {}

// FieldAccess is `record.field`. Lowering only supports a Record that is a
// directly named Variable (no chained `r.a.b`).
type FieldAccess struct {
	Record Expr
	Field  string
	Pos    Pos
}

func (f *FieldAccess) String() string { return fmt.Sprintf("%s.%s", f.Record, f.Field) }
func (f *FieldAccess) Position() Pos  { return f.Pos }
func (*FieldAccess) exprNode()        {}

// ============================================================================
// Patterns
// ============================================================================

// Pattern is the sum of all match/let pattern forms.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Pos Pos
}

func (w *WildcardPattern) String() string { return "_" }
func (w *WildcardPattern) Position() Pos  { return w.Pos }
func (*WildcardPattern) patternNode()     {}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	Kind  LiteralKind
	Value interface{}
	Pos   Pos
}

func (l *LiteralPattern) String() string { return fmt.Sprintf("%v", l.Value) }
func (l *LiteralPattern) Position() Pos  { return l.Pos }
func (*LiteralPattern) patternNode()     {}

// VariablePattern always matches and binds the scrutinee to Name.
type VariablePattern struct {
	Name string
	Pos  Pos
}

func (v *VariablePattern) String() string { return v.Name }
func (v *VariablePattern) Position() Pos  { return v.Pos }
func (*VariablePattern) patternNode()     {}

// ConstructorPattern matches a named constructor, with optional
// sub-patterns for its arguments (`Some(x)`, `Red`, `Pair(a, b)`).
type ConstructorPattern struct {
	Name string
	Args []Pattern
	Pos  Pos
}

func (c *ConstructorPattern) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}
func (c *ConstructorPattern) Position() Pos { return c.Pos }
func (*ConstructorPattern) patternNode()    {}

// TuplePattern matches a tuple element-wise.
type TuplePattern struct {
	Elements []Pattern
	Pos      Pos
}

func (t *TuplePattern) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TuplePattern) Position() Pos { return t.Pos }
func (*TuplePattern) patternNode()    {}

// RecordPatternField is one `name = pattern` (or bare `name`) entry of a
// record pattern.
type RecordPatternField struct {
	Name    string
	Pattern Pattern
}

// RecordPattern matches a record field-wise.
type RecordPattern struct {
	Fields []RecordPatternField
	Pos    Pos
}

func (r *RecordPattern) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Name, f.Pattern)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (r *RecordPattern) Position() Pos { return r.Pos }
func (*RecordPattern) patternNode()    {}

// ============================================================================
// Top-level declarations
// ============================================================================

// TypeDefKind distinguishes the three shapes a TypeDef can take.
type TypeDefKind int

const (
	AliasDef TypeDefKind = iota
	RecordDef
	VariantDef
)

// VariantConstructor is one `| Name` or `| Name(T1, T2, ...)` branch of a
// variant type definition. Its declaration index is the tag value emitted
// for simple (nullary) variants.
type VariantConstructor struct {
	Name  string
	Types []Type // empty for a nullary constructor
}

// TypeDef is a top-level `type Name = ...` declaration.
type TypeDef struct {
	Name         string
	Kind         TypeDefKind
	Alias        Type                 // set when Kind == AliasDef
	Fields       []RecordField        // set when Kind == RecordDef
	Constructors []VariantConstructor // set when Kind == VariantDef
	Annotations  []Annotation
	Pos          Pos
}

func (t *TypeDef) String() string {
	switch t.Kind {
	case AliasDef:
		return fmt.Sprintf("type %s = %s", t.Name, t.Alias)
	case RecordDef:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
		}
		return fmt.Sprintf("type %s = { %s }", t.Name, strings.Join(parts, ", "))
	default:
		parts := make([]string, len(t.Constructors))
		for i, c := range t.Constructors {
			if len(c.Types) == 0 {
				parts[i] = c.Name
			} else {
				tps := make([]string, len(c.Types))
				for j, ty := range c.Types {
					tps[j] = ty.String()
				}
				parts[i] = fmt.Sprintf("%s(%s)", c.Name, strings.Join(tps, ", "))
			}
		}
		return fmt.Sprintf("type %s = | %s", t.Name, strings.Join(parts, " | "))
	}
}
func (t *TypeDef) Position() Pos { return t.Pos }

// FunctionDef is a top-level `func name(params) -> Return : body`
// declaration. requires/ensures clauses are parsed but never enforced by
// the core.
type FunctionDef struct {
	Name        string
	Params      []Param
	ReturnType  Type
	Requires    []Expr
	Ensures     []Expr
	Body        Expr
	Annotations []Annotation
	Pos         Pos
}

func (f *FunctionDef) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return fmt.Sprintf("func %s(%s) -> %s : %s", f.Name, strings.Join(parts, ", "), f.ReturnType, f.Body)
}
func (f *FunctionDef) Position() Pos { return f.Pos }

// ExternFunctionDecl is a foreign function declaration: `@extern(foreign)
// func name(params) -> Return` with no body.
type ExternFunctionDecl struct {
	Name        string
	ForeignName string
	Params      []Param
	ReturnType  Type
	Annotations []Annotation
	Variadic    bool
	Pos         Pos
}

func (e *ExternFunctionDecl) String() string {
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return fmt.Sprintf("@extern(%q) func %s(%s) -> %s", e.ForeignName, e.Name, strings.Join(parts, ", "), e.ReturnType)
}
func (e *ExternFunctionDecl) Position() Pos { return e.Pos }

// Program is the top-level unit produced by the parser: ordered
// collections of type definitions, extern declarations, and function
// definitions, in source order.
type Program struct {
	TypeDefs  []*TypeDef
	Externs   []*ExternFunctionDecl
	Functions []*FunctionDef
	Pos       Pos
}

func (p *Program) String() string {
	parts := make([]string, 0, len(p.TypeDefs)+len(p.Externs)+len(p.Functions))
	for _, t := range p.TypeDefs {
		parts = append(parts, t.String())
	}
	for _, e := range p.Externs {
		parts = append(parts, e.String())
	}
	for _, f := range p.Functions {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "\n\n")
}
func (p *Program) Position() Pos { return p.Pos }
