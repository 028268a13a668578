// Command substrate-run admits and runs a single actor's bytecode to
// completion, reading one JSON document from stdin and writing one JSON
// document to stdout. Grounded on cmd/vybium-vm-prover/main.go's
// stdin-JSON/stdout-JSON shape, collapsed to a single document since an
// actor program is one self-contained unit, not a three-part STARK claim.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/vm"
	"github.com/latticevm/substrate/pkg/substrate"
)

// RunInput is the stdin document: an actor id, its trust tier, optional
// resource limits (defaulted if omitted), and the bytecode program.
type RunInput struct {
	ActorID uint32          `json:"actor_id"`
	Tier    string          `json:"tier"`
	Limits  *LimitsInput    `json:"limits,omitempty"`
	Program ProgramInput    `json:"program"`
}

// LimitsInput overrides substrate.DefaultResourceLimits field-by-field.
type LimitsInput struct {
	StepLimit      int64  `json:"step_limit"`
	MemoryLimit    uint32 `json:"memory_limit"`
	CallStackLimit int    `json:"call_stack_limit"`
}

// ProgramInput is the wire form of substrate.Program: instructions named
// by opcode mnemonic with the operand fields that opcode needs, plus the
// constant pool and interned string table they index into.
type ProgramInput struct {
	Instructions []InstructionInput `json:"instructions"`
	Constants    []ValueInput       `json:"constants,omitempty"`
	Strings      []string           `json:"strings,omitempty"`
}

// InstructionInput is one bytecode instruction. Only the fields its Op
// uses need be set; the rest are ignored.
type InstructionInput struct {
	Op string `json:"op"`

	Bool  *bool    `json:"bool,omitempty"`
	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`

	Index uint32 `json:"index,omitempty"` // Symbol/LoadString/HasCap

	BodyIdx     uint32 `json:"body_idx,omitempty"`
	CaptureCnt  uint32 `json:"capture_count,omitempty"`
	CapIdx      uint32 `json:"cap_idx,omitempty"`
	JustifyIdx  uint32 `json:"justification_idx,omitempty"`
	TargetID    uint32 `json:"target,omitempty"`
	FuncID      uint16 `json:"func_id,omitempty"`
	Argc        uint16 `json:"argc,omitempty"`
	HostArgc    uint8  `json:"host_argc,omitempty"`
	LocalIdx    uint16 `json:"local_idx,omitempty"`
	Offset      int16  `json:"offset,omitempty"`
}

// ValueInput is the wire form of a constant-pool entry.
type ValueInput struct {
	Kind  string `json:"kind"`
	Bool  bool   `json:"bool,omitempty"`
	Int   int64  `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Index uint32 `json:"index,omitempty"`
}

// RunOutput is the stdout document, mirroring substrate.ExecutionResult.
type RunOutput struct {
	Output            *ValueOutput       `json:"output,omitempty"`
	MessagesSent      []MessageOutput    `json:"messages_sent,omitempty"`
	Error             *ErrorOutput       `json:"error,omitempty"`
	Waiting           bool               `json:"waiting,omitempty"`
	WaitingCapability string             `json:"waiting_capability,omitempty"`
	ProgramDigest     string             `json:"program_digest"`
	Metrics           MetricsOutput      `json:"metrics"`
}

type ValueOutput struct {
	Kind string `json:"kind"`
	Int  int64  `json:"int,omitempty"`
	Bool bool   `json:"bool,omitempty"`
}

type MessageOutput struct {
	Target  uint32      `json:"target"`
	Message ValueOutput `json:"message"`
}

type ErrorOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type MetricsOutput struct {
	StepsUsed          uint64  `json:"steps_used"`
	MemoryUsed         uint32  `json:"memory_used"`
	FragmentationRatio float64 `json:"fragmentation_ratio"`
}

func main() {
	var in RunInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		fatal(fmt.Sprintf("failed to parse input: %v", err))
	}

	program, err := convertProgram(in.Program)
	if err != nil {
		fatal(fmt.Sprintf("failed to convert program: %v", err))
	}

	tier, err := parseTier(in.Tier)
	if err != nil {
		fatal(err.Error())
	}

	limits := substrate.DefaultResourceLimits()
	if in.Limits != nil {
		if in.Limits.StepLimit != 0 {
			limits.StepLimit = in.Limits.StepLimit
		}
		if in.Limits.MemoryLimit != 0 {
			limits.MemoryLimit = in.Limits.MemoryLimit
		}
		if in.Limits.CallStackLimit != 0 {
			limits.CallStackLimit = in.Limits.CallStackLimit
		}
	}

	logStderr("admitting actor...")
	logger, _ := zap.NewDevelopment()
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := substrate.NewRuntime(logger)

	logStderr("executing...")
	result := rt.Execute(in.ActorID, program, limits, tier)

	out := convertResult(result)
	outBytes, err := json.Marshal(out)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize result: %v", err))
	}
	os.Stdout.Write(outBytes)
	os.Stdout.Write([]byte("\n"))
}

func parseTier(name string) (capability.TrustTier, error) {
	switch name {
	case "", "Formal":
		return capability.Formal, nil
	case "Verified":
		return capability.Verified, nil
	case "Empirical":
		return capability.Empirical, nil
	case "Experimental":
		return capability.Experimental, nil
	default:
		return 0, fmt.Errorf("unknown tier: %s", name)
	}
}

func convertProgram(in ProgramInput) (substrate.Program, error) {
	instructions := make([]substrate.Instruction, len(in.Instructions))
	for i, ii := range in.Instructions {
		ins, err := convertInstruction(ii)
		if err != nil {
			return substrate.Program{}, fmt.Errorf("instruction %d: %w", i, err)
		}
		instructions[i] = ins
	}

	constants := make([]substrate.Value, len(in.Constants))
	for i, vi := range in.Constants {
		v, err := convertValue(vi)
		if err != nil {
			return substrate.Program{}, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = v
	}

	return substrate.Program{
		Instructions: instructions,
		Constants:    constants,
		Strings:      in.Strings,
	}, nil
}

func convertValue(vi ValueInput) (substrate.Value, error) {
	switch vi.Kind {
	case "Nil":
		return substrate.NilValue(), nil
	case "Bool":
		return substrate.BoolValue(vi.Bool), nil
	case "Int":
		return substrate.IntValue(vi.Int), nil
	case "Float":
		return substrate.FloatValue(vi.Float), nil
	case "String":
		return vm.StringValue(vi.Index), nil
	case "Symbol":
		return vm.SymbolValue(vi.Index), nil
	default:
		return substrate.Value{}, fmt.Errorf("unknown constant kind: %s", vi.Kind)
	}
}

// convertInstruction maps the opcode mnemonic onto vm.Instruction's
// operand fields, matching the instruction catalogue one mnemonic at a
// time, in a parseInstruction switch-over-string style.
func convertInstruction(ii InstructionInput) (substrate.Instruction, error) {
	op, ok := opByName[ii.Op]
	if !ok {
		return substrate.Instruction{}, fmt.Errorf("unknown opcode: %s", ii.Op)
	}
	ins := substrate.Instruction{Op: op}
	switch op {
	case vm.OpBool:
		if ii.Bool != nil {
			ins.BoolOperand = *ii.Bool
		}
	case vm.OpInt:
		if ii.Int != nil {
			ins.IntOperand = *ii.Int
		}
	case vm.OpFloat:
		if ii.Float != nil {
			ins.FloatOperand = *ii.Float
		}
	case vm.OpSymbol, vm.OpLoadString, vm.OpHasCap:
		ins.U32A = ii.Index
	case vm.OpGetLocal, vm.OpSetLocal:
		ins.U16 = ii.LocalIdx
	case vm.OpCall, vm.OpTailCall:
		ins.U16 = ii.Argc
	case vm.OpJmp, vm.OpJmpIfFalse, vm.OpSetErrorHandler:
		ins.I16 = ii.Offset
	case vm.OpMakeClosure:
		ins.U32A = ii.BodyIdx
		ins.U32B = ii.CaptureCnt
	case vm.OpRequestCap:
		ins.U32A = ii.CapIdx
		ins.U32B = ii.JustifyIdx
	case vm.OpGrantCap, vm.OpRevokeCap:
		ins.U32A = ii.TargetID
		ins.U32B = ii.CapIdx
	case vm.OpHostCall:
		ins.U32A = ii.CapIdx
		ins.U16 = ii.FuncID
		ins.U8 = ii.HostArgc
	}
	return ins, nil
}

var opByName = map[string]vm.Op{
	"Nil": vm.OpNil, "Bool": vm.OpBool, "Int": vm.OpInt, "Float": vm.OpFloat,
	"Symbol": vm.OpSymbol, "LoadString": vm.OpLoadString,
	"Dup": vm.OpDup, "Pop": vm.OpPop, "Swap": vm.OpSwap,
	"GetLocal": vm.OpGetLocal, "SetLocal": vm.OpSetLocal,
	"Cons": vm.OpCons, "Car": vm.OpCar, "Cdr": vm.OpCdr,
	"Add": vm.OpAdd, "Sub": vm.OpSub, "Mul": vm.OpMul, "Div": vm.OpDiv, "Mod": vm.OpMod,
	"FAdd": vm.OpFAdd, "FSub": vm.OpFSub, "FMul": vm.OpFMul, "FDiv": vm.OpFDiv,
	"Eq": vm.OpEq, "Lt": vm.OpLt, "Gt": vm.OpGt, "Lte": vm.OpLte, "Gte": vm.OpGte, "Ne": vm.OpNe,
	"Jmp": vm.OpJmp, "JmpIfFalse": vm.OpJmpIfFalse,
	"Call": vm.OpCall, "TailCall": vm.OpTailCall, "Ret": vm.OpRet,
	"MakeClosure": vm.OpMakeClosure,
	"StrLen": vm.OpStrLen, "StrConcat": vm.OpStrConcat, "StrIndex": vm.OpStrIndex,
	"Yield": vm.OpYield, "Send": vm.OpSend, "CheckStepLimit": vm.OpCheckStepLimit,
	"HasCap": vm.OpHasCap, "RequestCap": vm.OpRequestCap,
	"GrantCap": vm.OpGrantCap, "RevokeCap": vm.OpRevokeCap, "HostCall": vm.OpHostCall,
	"InitSandbox": vm.OpInitSandbox, "IsolateCapabilities": vm.OpIsolateCapabilities,
	"SetErrorHandler": vm.OpSetErrorHandler, "LogSandboxViolation": vm.OpLogSandboxViolation,
	"CleanupSandbox": vm.OpCleanupSandbox,
}

func convertResult(result substrate.ExecutionResult) RunOutput {
	out := RunOutput{
		ProgramDigest: fmt.Sprintf("%v", result.ProgramDigest),
		Metrics: MetricsOutput{
			StepsUsed:          result.Metrics.StepsUsed,
			MemoryUsed:         result.Metrics.MemoryUsed,
			FragmentationRatio: result.Metrics.FragmentationRatio,
		},
	}
	if result.Output != nil {
		vo := convertValueOut(*result.Output)
		out.Output = &vo
	}
	for _, m := range result.MessagesSent {
		out.MessagesSent = append(out.MessagesSent, MessageOutput{
			Target:  m.Target,
			Message: convertValueOut(m.Message),
		})
	}
	if result.Err != nil {
		out.Error = &ErrorOutput{Kind: fmt.Sprintf("%d", result.Err.Kind), Message: result.Err.Message}
	}
	if result.Waiting {
		out.Waiting = true
		out.WaitingCapability = result.WaitingCapability.Kind.String()
	}
	return out
}

func convertValueOut(v substrate.Value) ValueOutput {
	vo := ValueOutput{Kind: v.Kind.String()}
	switch v.Kind {
	case vm.ValInt:
		vo.Int = v.Int
	case vm.ValBool:
		vo.Bool = v.Bool
	case vm.ValActorID:
		vo.Int = int64(v.ActorID)
	}
	return vo
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "substrate-run:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
