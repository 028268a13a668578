package substrate_test

import (
	"testing"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/vm"
	"github.com/latticevm/substrate/pkg/substrate"
)

// TestExecuteArithmetic checks that [Int(40), Int(2), Add]
// finishes with Int(42) after three steps.
func TestExecuteArithmetic(t *testing.T) {
	program := substrate.Program{
		Instructions: []substrate.Instruction{
			{Op: vm.OpInt, IntOperand: 40},
			{Op: vm.OpInt, IntOperand: 2},
			{Op: vm.OpAdd},
		},
	}
	rt := substrate.NewRuntime(nil)
	result := rt.Execute(1, program, substrate.DefaultResourceLimits(), capability.Formal)

	if result.Err != nil {
		t.Fatalf("unexpected error: %+v", result.Err)
	}
	if result.Output == nil || result.Output.Kind != vm.ValInt || result.Output.Int != 42 {
		t.Fatalf("got output %+v, want Int(42)", result.Output)
	}
	if result.Metrics.StepsUsed != 3 {
		t.Errorf("StepsUsed = %d, want 3", result.Metrics.StepsUsed)
	}
}

// TestExecuteDivisionByZero checks that [Int(10), Int(0), Div]
// fails with DivisionByZero.
func TestExecuteDivisionByZero(t *testing.T) {
	program := substrate.Program{
		Instructions: []substrate.Instruction{
			{Op: vm.OpInt, IntOperand: 10},
			{Op: vm.OpInt, IntOperand: 0},
			{Op: vm.OpDiv},
		},
	}
	rt := substrate.NewRuntime(nil)
	result := rt.Execute(1, program, substrate.DefaultResourceLimits(), capability.Formal)

	if result.Err == nil {
		t.Fatal("expected a DivisionByZero error, got none")
	}
	if result.Err.Kind != substrate.ErrKindDivisionByZero {
		t.Errorf("Err.Kind = %v, want ErrKindDivisionByZero", result.Err.Kind)
	}
}

// TestExecuteDeterminism checks that identical
// (bytecode, constants, step_limit, memory_limit) produce identical
// ExecutionResults (up to StepsUsed, not wall time).
func TestExecuteDeterminism(t *testing.T) {
	program := substrate.Program{
		Instructions: []substrate.Instruction{
			{Op: vm.OpInt, IntOperand: 7},
			{Op: vm.OpInt, IntOperand: 6},
			{Op: vm.OpMul},
		},
	}
	limits := substrate.DefaultResourceLimits()

	rt1 := substrate.NewRuntime(nil)
	r1 := rt1.Execute(1, program, limits, capability.Formal)
	rt2 := substrate.NewRuntime(nil)
	r2 := rt2.Execute(1, program, limits, capability.Formal)

	if r1.Output == nil || r2.Output == nil || r1.Output.Int != r2.Output.Int {
		t.Fatalf("nondeterministic output: %+v vs %+v", r1.Output, r2.Output)
	}
	if r1.Metrics.StepsUsed != r2.Metrics.StepsUsed {
		t.Errorf("nondeterministic StepsUsed: %d vs %d", r1.Metrics.StepsUsed, r2.Metrics.StepsUsed)
	}
}

// TestExecuteCapabilityDenial checks that a Formal-tier actor
// has no IoReadSensor, so a HostCall naming it is denied at run time.
func TestExecuteCapabilityDenial(t *testing.T) {
	sensorCap := capability.Capability{Kind: capability.IoReadSensor}
	program := substrate.Program{
		Instructions: []substrate.Instruction{
			{Op: vm.OpInitSandbox},
			{Op: vm.OpHostCall, U32A: 0, U16: 32, U8: 0},
			{Op: vm.OpCleanupSandbox},
		},
		Constants: []substrate.Value{vm.CapabilityValue(sensorCap)},
	}
	rt := substrate.NewRuntime(nil)
	result := rt.Execute(1, program, substrate.DefaultResourceLimits(), capability.Formal)

	if result.Err == nil {
		t.Fatal("expected a CapabilityError, got none")
	}
	if result.Err.Kind != substrate.ErrKindCapabilityError {
		t.Errorf("Err.Kind = %v, want ErrKindCapabilityError", result.Err.Kind)
	}
}
