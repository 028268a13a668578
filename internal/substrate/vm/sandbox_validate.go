package vm

import "fmt"

// ValidateSandboxing is a pre-flight bytecode check: every HostCall,
// RequestCap, GrantCap, and RevokeCap must occur strictly between a
// matching InitSandbox/CleanupSandbox pair. Grounded on jue_world's
// sandbox.rs validate_bytecode, which rejects those instructions outright
// for experimental-tier sandboxed execution; here the same set is instead
// required to be wrapped in a sandbox block, since this core mediates
// them with SetErrorHandler/LogSandboxViolation rather than forbidding
// them.
func ValidateSandboxing(instructions []Instruction) error {
	depth := 0
	for i, ins := range instructions {
		switch ins.Op {
		case OpInitSandbox:
			depth++
		case OpCleanupSandbox:
			if depth == 0 {
				return fmt.Errorf("vm: ValidateSandboxing: CleanupSandbox at %d has no matching InitSandbox", i)
			}
			depth--
		case OpHostCall, OpRequestCap, OpGrantCap, OpRevokeCap:
			if depth == 0 {
				return fmt.Errorf("vm: ValidateSandboxing: %s at %d occurs outside any sandbox block", ins.Op, i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("vm: ValidateSandboxing: %d InitSandbox block(s) left unclosed", depth)
	}
	return nil
}
