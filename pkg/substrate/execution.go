package substrate

import (
	"go.uber.org/zap"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
	"github.com/latticevm/substrate/internal/substrate/scheduler"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

// Runtime owns a single scheduler and the logger every actor it admits
// shares, playing the role of a stateless public-API struct (a la
// `NewVM`/`NewProver`) but over a stateful scheduler, matching
// `original_source/physics_world/src/lib.rs`'s `PhysicsWorld`.
type Runtime struct {
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewRuntime constructs a Runtime with an empty scheduler. A nil logger is
// replaced with a no-op logger.
func NewRuntime(logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		sched:  scheduler.NewScheduler(logger),
		logger: logger,
	}
}

// ExecutionResult is the final outcome of running an actor to completion,
// grounded directly on physics_world/src/lib.rs's ExecutionResult.
type ExecutionResult struct {
	Output        *Value
	MessagesSent  []OutboundMessage
	Err           *StructuredError
	ProgramDigest vm.ProgramDigest
	Metrics       ResourceMetrics

	// Waiting reports that the actor parked on a PendingConsensus
	// capability request instead of finishing or erroring
	// (WaitingForCapability(c)). The actor remains registered with the
	// runtime; call ResolveCapabilityVote then Resume to continue it.
	Waiting           bool
	WaitingCapability Capability
}

// OutboundMessage is one message an actor sent to another during its run.
type OutboundMessage struct {
	Target  uint32
	Message Value
}

// ResourceMetrics is the resource usage an Execute call consumed.
// Grounded on physics_world/src/lib.rs's ResourceMetrics.
type ResourceMetrics struct {
	StepsUsed          uint64
	MemoryUsed         uint32
	FragmentationRatio float64
}

// StructuredError mirrors physics_world/src/lib.rs's StructuredError enum:
// a closed taxonomy of actor-execution failure modes, carrying the
// dynamic context each variant needs.
type StructuredError struct {
	Kind      StructuredErrorKind
	Limit     int64
	Attempted int64
	Message   string
}

func (e *StructuredError) Error() string { return e.Message }

// StructuredErrorKind discriminates StructuredError.
type StructuredErrorKind uint8

const (
	ErrKindCpuLimitExceeded StructuredErrorKind = iota
	ErrKindMemoryLimitExceeded
	ErrKindStackUnderflow
	ErrKindInvalidHeapPtr
	ErrKindUnknownOpCode
	ErrKindTypeMismatch
	ErrKindDivisionByZero
	ErrKindArithmeticOverflow
	ErrKindRecursionLimitExceeded
	ErrKindCapabilityError
	ErrKindSerializationError
	ErrKindGcDisabled
	ErrKindHeapExhausted
	ErrKindSchedulerError
)

func structuredErrorFromVMError(err *vm.VmError) *StructuredError {
	se := &StructuredError{Message: err.Error()}
	switch err.Kind {
	case vm.ErrCpuLimitExceeded:
		se.Kind = ErrKindCpuLimitExceeded
	case vm.ErrMemoryLimitExceeded:
		se.Kind = ErrKindMemoryLimitExceeded
	case vm.ErrStackUnderflow:
		se.Kind = ErrKindStackUnderflow
	case vm.ErrInvalidHeapPtr:
		se.Kind = ErrKindInvalidHeapPtr
	case vm.ErrUnknownOpCode:
		se.Kind = ErrKindUnknownOpCode
	case vm.ErrTypeMismatch:
		se.Kind = ErrKindTypeMismatch
	case vm.ErrDivisionByZero:
		se.Kind = ErrKindDivisionByZero
	case vm.ErrArithmeticOverflow:
		se.Kind = ErrKindArithmeticOverflow
	case vm.ErrRecursionLimitExceeded:
		se.Kind = ErrKindRecursionLimitExceeded
	case vm.ErrCapabilityError:
		se.Kind = ErrKindCapabilityError
	case vm.ErrSerializationError:
		se.Kind = ErrKindSerializationError
	case vm.ErrGcDisabled:
		se.Kind = ErrKindGcDisabled
	case vm.ErrHeapExhausted:
		se.Kind = ErrKindHeapExhausted
	}
	if v, ok := err.Fields["limit"].(int64); ok {
		se.Limit = v
	}
	return se
}

// Execute admits a fresh actor running the given program with the given
// tier's granted capabilities, then drives the scheduler's Tick loop to
// completion, collecting output, sent messages, errors, and resource
// metrics. Grounded directly on physics_world/src/lib.rs's
// PhysicsWorld::execute_actor.
func (r *Runtime) Execute(actorID uint32, program Program, limits ResourceLimits, tier TrustTier) ExecutionResult {
	if err := program.validate(limits); err != nil {
		return ExecutionResult{Err: &StructuredError{Kind: ErrKindSerializationError, Message: err.Error()}}
	}

	arena := memory.NewArena(limits.MemoryLimit)
	vmState := vm.NewVmState(program.Instructions, program.Constants, program.Strings, arena, limits.StepLimit, limits.MemoryLimit, actorID, limits.CallStackLimit, nil)

	actor := &scheduler.Actor{
		ID:           actorID,
		VM:           vmState,
		Capabilities: capability.GrantedCapabilities(tier).Clone(),
	}
	r.sched.AddActor(actor)

	digest := vm.ComputeProgramDigest(program.Instructions, program.Constants)
	return r.runToSuspension(actorID, digest)
}

// Resume continues ticking an actor that a prior Execute (or Resume) left
// parked with Waiting set, after the caller has resolved its capability
// vote with ResolveCapabilityVote. The actor must still be registered
// with the runtime (Execute/Resume never remove a waiting actor).
func (r *Runtime) Resume(actorID uint32) ExecutionResult {
	return r.runToSuspension(actorID, vm.ProgramDigest{})
}

// runToSuspension drives the scheduler's Tick loop until actorID either
// finishes, errors, or parks waiting on a capability vote, collecting
// resource metrics along the way. Grounded on physics_world/src/lib.rs's
// PhysicsWorld::execute_actor loop, extended with the WaitingForCapability
// suspension the spec's capability system adds beyond the original's
// Yielded/Finished/Errored cases.
func (r *Runtime) runToSuspension(actorID uint32, digest vm.ProgramDigest) ExecutionResult {
	var sent []OutboundMessage
	for {
		result, err := r.sched.Tick()
		if err != nil {
			return ExecutionResult{
				Err:           &StructuredError{Kind: ErrKindSchedulerError, Message: err.Error()},
				ProgramDigest: digest,
				Metrics:       r.metricsFor(actorID),
			}
		}
		if result.ActorID != actorID {
			// another registered actor's turn; keep ticking until ours runs
			continue
		}
		for _, m := range result.Sent {
			sent = append(sent, OutboundMessage{Target: m.Target, Message: m.Value})
		}

		switch result.Kind {
		case scheduler.ActorYielded:
			continue
		case scheduler.ActorWaitingForCapability:
			return ExecutionResult{
				Waiting:           true,
				WaitingCapability: result.Capability,
				MessagesSent:      sent,
				ProgramDigest:     digest,
				Metrics:           r.metricsFor(actorID),
			}
		case scheduler.ActorFinished:
			out := result.Value
			return ExecutionResult{
				Output:        &out,
				MessagesSent:  sent,
				ProgramDigest: digest,
				Metrics:       r.metricsFor(actorID),
			}
		case scheduler.ActorErrored:
			var se *StructuredError
			if vmErr, ok := result.Err.(*vm.VmError); ok {
				se = structuredErrorFromVMError(vmErr)
			} else {
				se = &StructuredError{Kind: ErrKindSchedulerError, Message: result.Err.Error()}
			}
			return ExecutionResult{
				Err:           se,
				MessagesSent:  sent,
				ProgramDigest: digest,
				Metrics:       r.metricsFor(actorID),
			}
		}
	}
}

// metricsFor reports the scheduler-wide totals: steps run by every actor
// so far, and the heap usage and fragmentation of the actors still
// registered. actorID is not consulted, so once the actor has been removed
// from the scheduler its heap no longer counts toward MemoryUsed.
func (r *Runtime) metricsFor(actorID uint32) ResourceMetrics {
	r.sched.UpdateResourceUsage()
	stats := r.sched.GetResourceStats()
	return ResourceMetrics{
		StepsUsed:          stats.StepsUsed,
		MemoryUsed:         stats.MemoryUsage,
		FragmentationRatio: stats.FragmentationRatio,
	}
}

// DeliverMessages injects messages for an actor to process on its next
// tick, grounded on physics_world/src/lib.rs's PhysicsWorld::deliver_messages.
func (r *Runtime) DeliverMessages(actorID uint32, messages []Value) {
	for _, msg := range messages {
		r.sched.SendMessage(actorID, msg)
	}
	r.sched.DeliverExternalMessages()
}

// ResolveCapabilityVote resolves an actor's PendingConsensus MetaGrant
// request out of band, un-parking it so a subsequent Execute/Tick can
// proceed. Re-exports scheduler.Scheduler.ResolveCapabilityVote at the
// public boundary, since an actor parked on ActorWaitingForCapability
// inside Execute has no other way to be un-parked.
func (r *Runtime) ResolveCapabilityVote(actorID uint32, cap Capability, approved bool) error {
	return r.sched.ResolveCapabilityVote(actorID, cap, approved)
}

// validate runs the program's static resource estimate and sandbox-block
// check before admission.
func (p Program) validate(limits ResourceLimits) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	if err := vm.ValidateAgainstLimits(p.Instructions, p.Constants, limits); err != nil {
		return err
	}
	return vm.ValidateSandboxing(p.Instructions)
}
