package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of an AST node,
// omitting position info so that two structurally-equal parses compare
// equal regardless of source formatting. Used for golden snapshot tests
// and the round-trip property: re-parsing source twice yields two ASTs
// whose Print output is identical.
func Print(node Node) string {
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// PrintProgram is Print specialized for the top-level Program.
func PrintProgram(p *Program) string {
	data, err := json.MarshalIndent(simplifyProgram(p), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplifyProgram(p *Program) interface{} {
	if p == nil {
		return nil
	}
	typeDefs := make([]interface{}, len(p.TypeDefs))
	for i, t := range p.TypeDefs {
		typeDefs[i] = simplify(t)
	}
	externs := make([]interface{}, len(p.Externs))
	for i, e := range p.Externs {
		externs[i] = simplify(e)
	}
	funcs := make([]interface{}, len(p.Functions))
	for i, f := range p.Functions {
		funcs[i] = simplify(f)
	}
	return map[string]interface{}{
		"type":      "Program",
		"typeDefs":  typeDefs,
		"externs":   externs,
		"functions": funcs,
	}
}

func simplifyParams(params []Param) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		out[i] = map[string]interface{}{"name": p.Name, "type": simplify(p.Type)}
	}
	return out
}

func simplifyAnnotations(anns []Annotation) []interface{} {
	out := make([]interface{}, len(anns))
	for i, a := range anns {
		args := make([]interface{}, len(a.Args))
		for j, arg := range a.Args {
			args[j] = map[string]interface{}{"key": arg.Key, "value": arg.Value}
		}
		out[i] = map[string]interface{}{"name": a.Name, "args": args}
	}
	return out
}

func simplifyExprs(exprs []Expr) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = simplify(e)
	}
	return out
}

// simplify converts an AST node into a JSON-serializable structure tagged
// with its concrete node kind, dropping Pos so output is reproducible
// across re-parses of the same source.
func simplify(node interface{}) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {

	// Types
	case *BasicType:
		return map[string]interface{}{"type": "BasicType", "name": n.Name}
	case *OptionType:
		return map[string]interface{}{"type": "OptionType", "inner": simplify(n.Inner)}
	case *ResultType:
		return map[string]interface{}{"type": "ResultType", "ok": simplify(n.Ok), "err": simplify(n.Err)}
	case *ListType:
		return map[string]interface{}{"type": "ListType", "element": simplify(n.Element)}
	case *PointerType:
		return map[string]interface{}{"type": "PointerType", "pointee": simplify(n.Pointee)}
	case *TupleType:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "TupleType", "elements": elems}
	case *RecordType:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "type": simplify(f.Type)}
		}
		return map[string]interface{}{"type": "RecordType", "fields": fields}
	case *FunctionType:
		return map[string]interface{}{
			"type":   "FunctionType",
			"param":  simplify(n.Param),
			"return": simplify(n.Return),
			"effect": n.Effect,
		}
	case *UnknownType:
		return map[string]interface{}{"type": "UnknownType"}

	// Expressions
	case *Literal:
		return map[string]interface{}{"type": "Literal", "kind": int(n.Kind), "value": n.Value}
	case *Variable:
		return map[string]interface{}{"type": "Variable", "name": n.Name}
	case *Lambda:
		return map[string]interface{}{"type": "Lambda", "params": simplifyParams(paramPtrsToParams(n.Params)), "body": simplify(n.Body)}
	case *Application:
		return map[string]interface{}{"type": "Application", "func": simplify(n.Func), "arg": simplify(n.Arg)}
	case *Let:
		return map[string]interface{}{"type": "Let", "name": n.Name, "value": simplify(n.Value), "body": simplify(n.Body)}
	case *If:
		return map[string]interface{}{"type": "If", "cond": simplify(n.Condition), "then": simplify(n.Then), "else": simplify(n.Else)}
	case *Match:
		arms := make([]interface{}, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = map[string]interface{}{"pattern": simplify(a.Pattern), "body": simplify(a.Body)}
		}
		return map[string]interface{}{"type": "Match", "scrutinee": simplify(n.Scrutinee), "arms": arms}
	case *Constructor:
		return map[string]interface{}{"type": "Constructor", "name": n.Name, "args": simplifyExprs(n.Args)}
	case *BinaryOp:
		return map[string]interface{}{"type": "BinaryOp", "op": n.Op, "left": simplify(n.Left), "right": simplify(n.Right)}
	case *UnaryOp:
		return map[string]interface{}{"type": "UnaryOp", "op": n.Op, "expr": simplify(n.Expr)}
	case *Tuple:
		return map[string]interface{}{"type": "Tuple", "elements": simplifyExprs(n.Elements)}
	case *Record:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "value": simplify(f.Value)}
		}
		return map[string]interface{}{"type": "Record", "fields": fields}
	case *FieldAccess:
		return map[string]interface{}{"type": "FieldAccess", "record": simplify(n.Record), "field": n.Field}

	// Patterns
	case *WildcardPattern:
		return map[string]interface{}{"type": "WildcardPattern"}
	case *LiteralPattern:
		return map[string]interface{}{"type": "LiteralPattern", "kind": int(n.Kind), "value": n.Value}
	case *VariablePattern:
		return map[string]interface{}{"type": "VariablePattern", "name": n.Name}
	case *ConstructorPattern:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = simplify(a)
		}
		return map[string]interface{}{"type": "ConstructorPattern", "name": n.Name, "args": args}
	case *TuplePattern:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "TuplePattern", "elements": elems}
	case *RecordPattern:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "pattern": simplify(f.Pattern)}
		}
		return map[string]interface{}{"type": "RecordPattern", "fields": fields}

	// Declarations
	case *TypeDef:
		m := map[string]interface{}{"type": "TypeDef", "name": n.Name, "kind": int(n.Kind), "annotations": simplifyAnnotations(n.Annotations)}
		switch n.Kind {
		case AliasDef:
			m["alias"] = simplify(n.Alias)
		case RecordDef:
			fields := make([]interface{}, len(n.Fields))
			for i, f := range n.Fields {
				fields[i] = map[string]interface{}{"name": f.Name, "type": simplify(f.Type)}
			}
			m["fields"] = fields
		case VariantDef:
			ctors := make([]interface{}, len(n.Constructors))
			for i, c := range n.Constructors {
				types := make([]interface{}, len(c.Types))
				for j, t := range c.Types {
					types[j] = simplify(t)
				}
				ctors[i] = map[string]interface{}{"name": c.Name, "types": types}
			}
			m["constructors"] = ctors
		}
		return m
	case *FunctionDef:
		return map[string]interface{}{
			"type":        "FunctionDef",
			"name":        n.Name,
			"params":      simplifyParams(n.Params),
			"returnType":  simplify(n.ReturnType),
			"requires":    simplifyExprs(n.Requires),
			"ensures":     simplifyExprs(n.Ensures),
			"body":        simplify(n.Body),
			"annotations": simplifyAnnotations(n.Annotations),
		}
	case *ExternFunctionDecl:
		return map[string]interface{}{
			"type":        "ExternFunctionDecl",
			"name":        n.Name,
			"foreignName": n.ForeignName,
			"params":      simplifyParams(n.Params),
			"returnType":  simplify(n.ReturnType),
			"variadic":    n.Variadic,
			"annotations": simplifyAnnotations(n.Annotations),
		}
	case *Program:
		return simplifyProgram(n)

	default:
		return fmt.Sprintf("<unsupported %T>", node)
	}
}

func paramPtrsToParams(ps []*Param) []Param {
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}
