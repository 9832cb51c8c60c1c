package codegen

import (
	"fmt"

	irtypes "github.com/llir/llvm/ir/types"

	"github.com/pole-lang/polec/internal/ast"
)

// stringStructType is the SSA representation of a String: a pointer to a
// null-terminated byte array plus its length, matching the struct
// constant spec.md §4.4 describes for String literals.
func stringStructType() *irtypes.StructType {
	return irtypes.NewStruct(irtypes.NewPointer(irtypes.I8), irtypes.I64)
}

// listStructType is the SSA representation of a List<T>: {T* data, i64 length}.
func listStructType(elem irtypes.Type) *irtypes.StructType {
	return irtypes.NewStruct(irtypes.NewPointer(elem), irtypes.I64)
}

// optionStructType is the SSA representation of an Option<T>: {i32 tag, T value}.
func optionStructType(inner irtypes.Type) *irtypes.StructType {
	return irtypes.NewStruct(irtypes.I32, inner)
}

// resultStructType is the SSA representation of a Result<T, E>: {i32 tag,
// [N]i8 value}, a single value slot sized to whichever of T/E is larger —
// the bit-for-bit union layout spec.md §3 specifies, mirroring Option's own
// {i32 tag, T value} shape but needing a byte-array slot since T and E can
// be differently-shaped SSA types. Ok/Err construction and Ok-pattern
// extraction reinterpret this slot via an alloca+bitcast round trip (see
// application.go's packIntoBytes/unpackFromBytes).
func resultStructType(payloadBytes int64) *irtypes.StructType {
	return irtypes.NewStruct(irtypes.I32, irtypes.NewArray(uint64(payloadBytes), irtypes.I8))
}

// resultPayloadSize picks the larger of the two branch types' sizes for
// resultStructType's value slot.
func resultPayloadSize(ok, errTy irtypes.Type) int64 {
	okSize, errSize := payloadSizeBytes(ok), payloadSizeBytes(errTy)
	if errSize > okSize {
		return errSize
	}
	return okSize
}

// payloadSizeBytes approximates a lowered type's size in bytes: scalars and
// pointers via elemSizeBytes, structs via the sum of their fields' sizes.
// This ignores target-machine alignment padding, the same conservative
// approximation elemSizeBytes already documents for aggregates.
func payloadSizeBytes(t irtypes.Type) int64 {
	if st, ok := t.(*irtypes.StructType); ok {
		var total int64
		for _, f := range st.Fields {
			total += payloadSizeBytes(f)
		}
		return total
	}
	return elemSizeBytes(t)
}

// hashMapStructType is {bucket* buckets, i64 capacity, i64 size}, a 24-byte
// bucket layout ({i64 key, i64 value, i32 used}).
func hashMapBucketType() *irtypes.StructType {
	return irtypes.NewStruct(irtypes.I64, irtypes.I64, irtypes.I32)
}

func hashMapStructType() *irtypes.StructType {
	return irtypes.NewStruct(irtypes.NewPointer(hashMapBucketType()), irtypes.I64, irtypes.I64)
}

// lowerType converts a source-level ast.Type to its SSA representation.
func (lw *Lowerer) lowerType(t ast.Type) (irtypes.Type, error) {
	switch ty := t.(type) {
	case *ast.BasicType:
		switch ty.Name {
		case "Int", "Nat":
			return irtypes.I64, nil
		case "Bool":
			return irtypes.I1, nil
		case "Float64":
			return irtypes.Double, nil
		case "String":
			return stringStructType(), nil
		case "Unit":
			return irtypes.I8, nil
		case "HashMap":
			return hashMapStructType(), nil
		default:
			if fields, ok := lw.records[ty.Name]; ok {
				return lw.recordStructType(fields)
			}
			if _, ok := lw.variants[ty.Name]; ok {
				return irtypes.I32, nil // nullary-only variant tag
			}
			return nil, fmt.Errorf("unknown type %s", ty.Name)
		}
	case *ast.OptionType:
		inner, err := lw.lowerType(ty.Inner)
		if err != nil {
			return nil, err
		}
		return optionStructType(inner), nil
	case *ast.ResultType:
		ok, err := lw.lowerType(ty.Ok)
		if err != nil {
			return nil, err
		}
		errTy, err := lw.lowerType(ty.Err)
		if err != nil {
			return nil, err
		}
		return resultStructType(resultPayloadSize(ok, errTy)), nil
	case *ast.ListType:
		elem, err := lw.lowerType(ty.Element)
		if err != nil {
			return nil, err
		}
		return listStructType(elem), nil
	case *ast.PointerType:
		elem, err := lw.lowerType(ty.Pointee)
		if err != nil {
			return nil, err
		}
		return irtypes.NewPointer(elem), nil
	case *ast.TupleType:
		elems := make([]irtypes.Type, len(ty.Elements))
		for i, e := range ty.Elements {
			et, err := lw.lowerType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return irtypes.NewStruct(elems...), nil
	case *ast.RecordType:
		return lw.recordStructType(ty.Fields)
	case *ast.UnknownType:
		return nil, fmt.Errorf("unknown type at %v", ty.Pos)
	default:
		return nil, fmt.Errorf("unsupported type %T", t)
	}
}

func (lw *Lowerer) recordStructType(fields []ast.RecordField) (*irtypes.StructType, error) {
	elems := make([]irtypes.Type, len(fields))
	for i, f := range fields {
		ft, err := lw.lowerType(f.Type)
		if err != nil {
			return nil, err
		}
		elems[i] = ft
	}
	return irtypes.NewStruct(elems...), nil
}
