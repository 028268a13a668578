package vm

import "fmt"

// Op is the bytecode instruction tag.
type Op uint8

const (
	OpNil Op = iota
	OpBool
	OpInt
	OpFloat
	OpSymbol
	OpLoadString
	OpDup
	OpPop
	OpSwap
	OpGetLocal
	OpSetLocal
	OpCons
	OpCar
	OpCdr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpEq
	OpLt
	OpGt
	OpLte
	OpGte
	OpNe
	OpJmp
	OpJmpIfFalse
	OpCall
	OpTailCall
	OpRet
	OpMakeClosure
	OpStrLen
	OpStrConcat
	OpStrIndex
	OpYield
	OpSend
	OpCheckStepLimit
	OpHasCap
	OpRequestCap
	OpGrantCap
	OpRevokeCap
	OpHostCall
	OpInitSandbox
	OpIsolateCapabilities
	OpSetErrorHandler
	OpLogSandboxViolation
	OpCleanupSandbox
)

var opNames = [...]string{
	"Nil", "Bool", "Int", "Float", "Symbol", "LoadString", "Dup", "Pop", "Swap",
	"GetLocal", "SetLocal", "Cons", "Car", "Cdr", "Add", "Sub", "Mul", "Div", "Mod",
	"FAdd", "FSub", "FMul", "FDiv", "Eq", "Lt", "Gt", "Lte", "Gte", "Ne",
	"Jmp", "JmpIfFalse", "Call", "TailCall", "Ret", "MakeClosure",
	"StrLen", "StrConcat", "StrIndex", "Yield", "Send", "CheckStepLimit",
	"HasCap", "RequestCap", "GrantCap", "RevokeCap", "HostCall",
	"InitSandbox", "IsolateCapabilities", "SetErrorHandler", "LogSandboxViolation", "CleanupSandbox",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Instruction is a decoded bytecode instruction. Operand fields are
// populated according to Op; unused fields are zero. A single struct
// plus discriminant, rather than per-opcode Go types, keeps dispatch a
// flat switch.
type Instruction struct {
	Op Op

	BoolOperand  bool
	IntOperand   int64
	FloatOperand float64

	// U32A/U32B: Symbol/LoadString/HasCap index (A); MakeClosure
	// body_idx(A)/cap_count(B); RequestCap cap_idx(A)/justification_idx(B);
	// GrantCap/RevokeCap target(A)/cap_idx(B); HostCall cap_idx(A).
	U32A uint32
	U32B uint32

	// U16: GetLocal/SetLocal index; Call/TailCall argc; HostCall func_id.
	U16 uint16

	// U8: HostCall argc.
	U8 uint8

	// I16: Jmp/JmpIfFalse/SetErrorHandler relative offset.
	I16 int16
}

// SizeBytes returns the instruction's on-wire size (1 to 9 bytes).
func (ins Instruction) SizeBytes() int {
	switch ins.Op {
	case OpBool:
		return 2
	case OpInt, OpFloat:
		return 9
	case OpSymbol, OpLoadString, OpHasCap:
		return 5
	case OpGetLocal, OpSetLocal:
		return 3
	case OpCall, OpTailCall:
		return 3
	case OpJmp, OpJmpIfFalse, OpSetErrorHandler:
		return 3
	case OpMakeClosure, OpRequestCap:
		return 9
	case OpGrantCap, OpRevokeCap:
		return 9
	case OpHostCall:
		return 8
	default:
		return 1
	}
}
