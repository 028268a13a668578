// Package substrate provides the public API for the tiered,
// capability-safe computational substrate: a cooperative actor runtime
// sitting atop a stack-based bytecode VM, a λ-calculus kernel with
// machine-checkable reduction proofs, and an arena-allocated,
// mark-compact garbage-collected heap.
//
// # Quick start
//
// Running an actor's bytecode to completion:
//
//	rt := substrate.NewRuntime(nil)
//	program := substrate.Program{
//		Instructions: []substrate.Instruction{{Op: vm.OpInt, IntOperand: 42}},
//	}
//	result := rt.Execute(1, program, substrate.DefaultResourceLimits(), capability.Empirical)
//	if result.Err != nil {
//		log.Fatal(result.Err)
//	}
//
// Delivering inter-actor messages between ticks:
//
//	rt.DeliverMessages(2, []substrate.Value{substrate.IntValue(7)})
//
// Verifying a kernel reduction proof:
//
//	before, after, err := substrate.Verify(proof)
//
// # Architecture
//
// - pkg/substrate/: public API (this package)
// - internal/substrate/kernel: λ-calculus kernel and proof terms
// - internal/substrate/vm: bytecode VM
// - internal/substrate/memory: arena + mark-compact GC
// - internal/substrate/capability: capability/tier system
// - internal/substrate/scheduler: cooperative actor scheduler
//
// The public API provides stable interfaces for execution, message
// delivery, and proof verification; internal/ implementation details may
// change without breaking pkg/substrate's surface.
package substrate
