// Package vm implements the stack-based bytecode virtual machine: value
// representation, call-frame discipline, instruction dispatch, capability
// and sandbox handling.
package vm

import (
	"fmt"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
)

// ValueKind discriminates the Value sum type.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValInt
	ValFloat
	ValString
	ValSymbol
	ValPair
	ValClosure
	ValActorID
	ValCapability
	ValGcPtr
	ValHostError
)

func (k ValueKind) String() string {
	names := [...]string{"Nil", "Bool", "Int", "Float", "String", "Symbol", "Pair", "Closure", "ActorID", "Capability", "GcPtr", "HostError"}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is the VM's tagged union: nil, boolean, 64-bit integer, 64-bit
// float, an interned string or symbol, a pair/closure/gc
// pointer into the arena, an actor id, or a capability token.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int     int64
	Float   float64
	Index   uint32 // String: index into the string table; Symbol: symbol index
	Ptr     memory.HeapPtr
	ActorID uint32
	Cap     capability.Capability
	ErrMsg  string // valid for ValHostError, the distinguished error token
}

func Nil() Value                  { return Value{Kind: ValNil} }
func BoolValue(b bool) Value      { return Value{Kind: ValBool, Bool: b} }
func IntValue(i int64) Value      { return Value{Kind: ValInt, Int: i} }
func FloatValue(f float64) Value  { return Value{Kind: ValFloat, Float: f} }
func StringValue(idx uint32) Value { return Value{Kind: ValString, Index: idx} }
func SymbolValue(idx uint32) Value { return Value{Kind: ValSymbol, Index: idx} }
func PairValue(ptr memory.HeapPtr) Value    { return Value{Kind: ValPair, Ptr: ptr} }
func ClosureValue(ptr memory.HeapPtr) Value { return Value{Kind: ValClosure, Ptr: ptr} }
func GcPtrValue(ptr memory.HeapPtr) Value   { return Value{Kind: ValGcPtr, Ptr: ptr} }
func ActorIDValue(id uint32) Value          { return Value{Kind: ValActorID, ActorID: id} }
func CapabilityValue(c capability.Capability) Value {
	return Value{Kind: ValCapability, Cap: c}
}

// IsPointer reports whether this Value's representation owns an arena
// pointer that GC roots must track.
func (v Value) IsPointer() bool {
	return v.Kind == ValPair || v.Kind == ValClosure || v.Kind == ValGcPtr
}

// TypeName is used in TypeMismatch error fields.
func (v Value) TypeName() string {
	return v.Kind.String()
}
