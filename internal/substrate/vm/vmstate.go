package vm

import (
	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
)

// StepOutcomeKind discriminates what a single Step produced.
type StepOutcomeKind uint8

const (
	StepContinue StepOutcomeKind = iota
	StepYield
	StepFinished
	StepWaitingForCapability
)

func (k StepOutcomeKind) String() string {
	switch k {
	case StepContinue:
		return "Continue"
	case StepYield:
		return "Yield"
	case StepFinished:
		return "Finished"
	case StepWaitingForCapability:
		return "WaitingForCapability"
	default:
		return "UnknownOutcome"
	}
}

// StepOutcome is the result of one VmState.Step call.
type StepOutcome struct {
	Kind          StepOutcomeKind
	FinishedValue Value
	WaitingCap    capability.Capability
}

// Host is the scheduler-provided environment a VmState calls into for
// anything that crosses actor boundaries: its own capability/identity view,
// audit logging, cross-actor delegation/revocation, host-function dispatch,
// and outbound message delivery. Keeping this as an injected interface lets
// vm stay independent of the scheduler package.
type Host interface {
	ActorView() capability.ActorView
	Capabilities() *capability.Set
	Audit(operation string, cap capability.Capability, result capability.Decision)
	Delegate(targetActorID uint32, cap capability.Capability) capability.Decision
	Revoke(targetActorID uint32, cap capability.Capability) capability.Decision
	HostCall(funcID uint16, argc uint8, args []Value) (Value, error)
	Send(targetActorID uint32, msg Value)
}

// SandboxRecord is pushed by InitSandbox and popped by CleanupSandbox,
// recording the resource snapshot, error handler, and (if
// IsolateCapabilities ran within this block) the capability-set snapshot
// to restore.
type SandboxRecord struct {
	StepsAtEntry   int64
	PrevHandlerIP  int // absolute IP
	PrevHandlerSet bool
	IsolatedCaps   *capability.Set // nil unless IsolateCapabilities ran
}

// VmState is the complete, serializable-free execution state of one
// actor's bytecode interpreter.
type VmState struct {
	Instructions []Instruction
	IP           int

	Stack     []Value
	CallStack []CallFrame

	Constants []Value
	Strings   []string // string table; interned bytes for String/Symbol values

	Arena *memory.Arena

	// Cells holds immediate (non-pointer) Values that have been boxed into
	// a pair/closure slot, addressed by the slot's memory.Token payload.
	// Pointer-valued slots instead store the arena HeapPtr directly and
	// never touch Cells; the arena's own header tag identifies which
	// ValueKind a pointer slot reconstructs to (Pair/Closure/GcPtr).
	Cells []Value

	StepsRemaining    int64
	MemoryLimit       uint32
	ActorID           uint32
	MaxRecursionDepth int
	GCConfig          memory.DefragmentConfig

	nextFrameID uint64

	SandboxStack    []SandboxRecord
	ErrorFlag       bool
	ErrorHandlerIP  int
	ErrorHandlerSet bool

	Host Host
}

// HostErrorToken builds the distinguished error-token value pushed by
// HostCall on a host-level failure; msg carries the host
// function's error string for a sandbox handler to inspect.
func HostErrorToken(msg string) Value {
	return Value{Kind: ValHostError, ErrMsg: msg}
}

// NewVmState constructs a fresh VM ready to execute instructions starting
// at IP 0 with an empty stack and no call frames.
func NewVmState(instructions []Instruction, constants []Value, strings []string, arena *memory.Arena, stepLimit int64, memoryLimit uint32, actorID uint32, maxRecursionDepth int, host Host) *VmState {
	return &VmState{
		Instructions:      instructions,
		Constants:         constants,
		Strings:           strings,
		Arena:             arena,
		StepsRemaining:    stepLimit,
		MemoryLimit:       memoryLimit,
		ActorID:           actorID,
		MaxRecursionDepth: maxRecursionDepth,
		GCConfig:          memory.DefaultDefragmentConfig(),
		Host:              host,
	}
}

func (vm *VmState) context() Context {
	return Context{
		IP:             vm.IP,
		StackLen:       len(vm.Stack),
		CallStackDepth: len(vm.CallStack),
		StepsRemaining: vm.StepsRemaining,
		ActorID:        vm.ActorID,
		MemoryUsed:     vm.Arena.NextFree(),
	}
}

func (vm *VmState) push(v Value) {
	vm.Stack = append(vm.Stack, v)
}

func (vm *VmState) pop() (Value, *VmError) {
	if len(vm.Stack) == 0 {
		return Value{}, newError(ErrStackUnderflow, vm.context(), map[string]any{"operation": "pop", "required": 1, "available": 0})
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return v, nil
}

func (vm *VmState) requireStack(n int, operation string) *VmError {
	if len(vm.Stack) < n {
		return newError(ErrStackUnderflow, vm.context(), map[string]any{"operation": operation, "required": n, "available": len(vm.Stack)})
	}
	return nil
}

func (vm *VmState) frameStackBase() int {
	if len(vm.CallStack) == 0 {
		return 0
	}
	return vm.CallStack[len(vm.CallStack)-1].StackBase
}

// Step fetches, decrements, and executes one instruction. Running past the
// last instruction finishes the actor with the value on top of the stack
// (Nil if the stack is empty) and consumes no step.
func (vm *VmState) Step() (StepOutcome, error) {
	if vm.StepsRemaining <= 0 {
		return StepOutcome{}, newError(ErrCpuLimitExceeded, vm.context(), nil)
	}
	if vm.IP < 0 || vm.IP >= len(vm.Instructions) {
		result := Nil()
		if len(vm.Stack) > 0 {
			result = vm.Stack[len(vm.Stack)-1]
			vm.Stack = vm.Stack[:len(vm.Stack)-1]
		}
		return StepOutcome{Kind: StepFinished, FinishedValue: result}, nil
	}
	ins := vm.Instructions[vm.IP]
	vm.StepsRemaining--

	switch {
	case isLiteralOrStackOp(ins.Op):
		return vm.execLiteralOrStack(ins)
	case isLocalsOp(ins.Op):
		return vm.execLocals(ins)
	case isPairOp(ins.Op):
		return vm.execPair(ins)
	case isArithOp(ins.Op):
		return vm.execArith(ins)
	case isCompareOp(ins.Op):
		return vm.execCompare(ins)
	case isControlOp(ins.Op):
		return vm.execControl(ins)
	case ins.Op == OpMakeClosure:
		return vm.execMakeClosure(ins)
	case isStringOp(ins.Op):
		return vm.execString(ins)
	case isActorOp(ins.Op):
		return vm.execActor(ins)
	case ins.Op == OpCheckStepLimit:
		return vm.execCheckStepLimit(ins)
	case isCapabilityOp(ins.Op):
		return vm.execCapability(ins)
	case isSandboxOp(ins.Op):
		return vm.execSandbox(ins)
	default:
		return StepOutcome{}, newError(ErrUnknownOpCode, vm.context(), map[string]any{"op": ins.Op.String()})
	}
}

// Run drives Step to completion, stopping at Finished, Yield, or
// WaitingForCapability, or on the first error.
func (vm *VmState) Run() (StepOutcome, error) {
	for {
		outcome, err := vm.Step()
		if err != nil {
			return StepOutcome{}, err
		}
		if outcome.Kind != StepContinue {
			return outcome, nil
		}
	}
}
