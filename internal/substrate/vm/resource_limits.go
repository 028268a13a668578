package vm

import (
	"fmt"

	"github.com/latticevm/substrate/internal/substrate/capability"
)

// ResourceLimits bounds an actor's admission into the scheduler: the
// step/memory/recursion ceilings an actor must fit within before it is
// ever run. Grounded on jue_world's resource_limits.rs, which enforces the
// same shape externally to the VM; here it is a pre-flight check that
// pkg/substrate's Runtime.Execute runs before constructing a VmState.
type ResourceLimits struct {
	StepLimit      int64
	MemoryLimit    uint32
	CallStackLimit int
	HeapAllocLimit uint32
}

// DefaultResourceLimits is a generous default suitable for interactive
// use, not a hard ceiling.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		StepLimit:      100_000,
		MemoryLimit:    1 << 20, // 1MiB
		CallStackLimit: 1024,
		HeapAllocLimit: 1 << 20,
	}
}

// Validate checks internal consistency of the limits themselves.
func (r ResourceLimits) Validate() error {
	if r.StepLimit <= 0 {
		return fmt.Errorf("vm: ResourceLimits: step limit must be positive")
	}
	if r.MemoryLimit == 0 {
		return fmt.Errorf("vm: ResourceLimits: memory limit must be positive")
	}
	if r.CallStackLimit <= 0 {
		return fmt.Errorf("vm: ResourceLimits: call stack limit must be positive")
	}
	return nil
}

// constantValueSize estimates the byte footprint of a constant-pool entry,
// used only for admission estimation, not actual arena accounting.
func constantValueSize(v Value) uint32 {
	switch v.Kind {
	case ValNil, ValBool:
		return 1
	case ValInt, ValFloat:
		return 8
	case ValString, ValPair, ValClosure:
		return 8
	case ValSymbol, ValActorID, ValGcPtr:
		return 4
	case ValCapability:
		if v.Cap.Kind == capability.ResourceExtraMemory || v.Cap.Kind == capability.ResourceExtraTime {
			return 9
		}
		return 1
	default:
		return 4
	}
}

// EstimateResourceUsage gives a cheap, static estimate of the steps and
// heap bytes a program will consume, without running it: one step per
// instruction, plus the data bytes each Cons/MakeClosure allocates (object
// headers and alignment padding are not counted) and the constant pool's
// own footprint, plus a fixed overhead for VM bookkeeping. Each instruction
// is counted once, so loops and repeated calls are not reflected and the
// estimate is not an upper bound. Used by pkg/substrate's Runtime.Execute
// to reject a program before admission rather than discovering the overrun
// mid-execution (jue_world's estimate_step_count/estimate_memory_usage).
func EstimateResourceUsage(instructions []Instruction, constants []Value) (steps int64, memoryBytes uint32) {
	steps = int64(len(instructions))
	var mem uint32
	for _, c := range constants {
		mem += constantValueSize(c)
	}
	for _, ins := range instructions {
		switch ins.Op {
		case OpCons:
			mem += 8
		case OpMakeClosure:
			mem += 4 + 4*ins.U32B
		}
	}
	mem += 1024 // fixed VM bookkeeping overhead
	return steps, mem
}

// ValidateAgainstLimits reports an error if the static estimate for
// (instructions, constants) already exceeds limits, before any step runs.
func ValidateAgainstLimits(instructions []Instruction, constants []Value, limits ResourceLimits) error {
	steps, mem := EstimateResourceUsage(instructions, constants)
	if steps > limits.StepLimit {
		return fmt.Errorf("vm: estimated step count %d exceeds limit %d", steps, limits.StepLimit)
	}
	if mem > limits.MemoryLimit {
		return fmt.Errorf("vm: estimated memory usage %d exceeds limit %d", mem, limits.MemoryLimit)
	}
	return nil
}
