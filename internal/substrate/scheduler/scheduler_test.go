package scheduler

import (
	"testing"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

func newTestActor(id uint32, instructions []vm.Instruction) *Actor {
	arena := memory.NewArena(4096)
	vmState := vm.NewVmState(instructions, nil, nil, arena, 1000, 4096, id, 64, nil)
	return &Actor{
		ID:           id,
		VM:           vmState,
		Capabilities: capability.NewSet(),
	}
}

func pushIntAndReturn(n int64) []vm.Instruction {
	return []vm.Instruction{
		{Op: vm.OpInt, IntOperand: n},
		{Op: vm.OpRet},
	}
}

func TestSchedulerRoundRobin(t *testing.T) {
	s := NewScheduler(nil)
	// each actor yields once, then finishes
	a1 := newTestActor(1, []vm.Instruction{{Op: vm.OpYield}, {Op: vm.OpInt, IntOperand: 1}, {Op: vm.OpRet}})
	a2 := newTestActor(2, []vm.Instruction{{Op: vm.OpYield}, {Op: vm.OpInt, IntOperand: 2}, {Op: vm.OpRet}})
	s.AddActor(a1)
	s.AddActor(a2)

	r1, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Kind != ActorYielded || r1.ActorID != 1 {
		t.Fatalf("expected actor 1 to yield first, got %+v", r1)
	}

	r2, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r2.Kind != ActorYielded || r2.ActorID != 2 {
		t.Fatalf("expected actor 2 to yield second (round-robin), got %+v", r2)
	}

	r3, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r3.Kind != ActorFinished || r3.ActorID != 1 || r3.Value.Int != 1 {
		t.Fatalf("expected actor 1 to finish with 1, got %+v", r3)
	}
}

func TestSchedulerActorFinish(t *testing.T) {
	s := NewScheduler(nil)
	s.AddActor(newTestActor(1, pushIntAndReturn(42)))

	result, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != ActorFinished {
		t.Fatalf("expected ActorFinished, got %v", result.Kind)
	}
	if result.Value.Int != 42 {
		t.Fatalf("expected finished value 42, got %d", result.Value.Int)
	}
	if len(s.Actors) != 0 {
		t.Fatalf("expected finished actor to be removed, %d actors remain", len(s.Actors))
	}
}

func TestSchedulerMessageDelivery(t *testing.T) {
	s := NewScheduler(nil)
	actor := newTestActor(1, []vm.Instruction{{Op: vm.OpYield}})
	s.AddActor(actor)

	s.SendMessage(1, vm.IntValue(7))
	s.SendMessage(1, vm.IntValue(8))
	// not delivered yet: external queue flushes only at tick boundaries
	if len(actor.Mailbox) != 0 {
		t.Fatalf("expected no mailbox delivery before a tick, got %d", len(actor.Mailbox))
	}

	if _, err := s.Tick(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actor.Mailbox) != 2 {
		t.Fatalf("expected 2 messages delivered at tick boundary, got %d", len(actor.Mailbox))
	}
	if actor.Mailbox[0].Int != 7 || actor.Mailbox[1].Int != 8 {
		t.Fatalf("expected FIFO delivery order, got %+v", actor.Mailbox)
	}
}

func TestSchedulerMailboxDrainedIntoStack(t *testing.T) {
	s := NewScheduler(nil)
	actor := newTestActor(1, []vm.Instruction{{Op: vm.OpRet}})
	actor.Mailbox = []vm.Value{vm.IntValue(99)}
	s.AddActor(actor)

	result, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != ActorFinished || result.Value.Int != 99 {
		t.Fatalf("expected the drained mailbox value to be on the stack for Ret to pop, got %+v", result)
	}
}

func TestSchedulerCapabilityRequestPendingConsensusParksActor(t *testing.T) {
	s := NewScheduler(nil)
	// index 0 in the (empty) constant pool won't resolve; build a real
	// constant pool with a MetaGrant capability at index 0.
	arena := memory.NewArena(4096)
	constants := []vm.Value{vm.CapabilityValue(capability.Capability{Kind: capability.MetaGrant})}
	instructions := []vm.Instruction{{Op: vm.OpRequestCap, U32A: 0, U32B: 0}}
	vmState := vm.NewVmState(instructions, constants, []string{""}, arena, 1000, 4096, 1, 64, nil)
	actor := &Actor{ID: 1, VM: vmState, Capabilities: capability.NewSet()}
	s.AddActor(actor)

	result, err := s.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != ActorWaitingForCapability {
		t.Fatalf("expected ActorWaitingForCapability for MetaGrant request, got %v (%v)", result.Kind, result.Err)
	}
	if !actor.Waiting {
		t.Fatalf("expected actor to be parked waiting")
	}
	if len(actor.PendingRequests) != 1 {
		t.Fatalf("expected one pending request, got %d", len(actor.PendingRequests))
	}

	if err := s.ResolveCapabilityVote(1, result.Capability, true); err != nil {
		t.Fatalf("unexpected error resolving vote: %v", err)
	}
	if actor.Waiting {
		t.Fatalf("expected actor to be un-parked after vote resolution")
	}
	if !actor.Capabilities.Has(capability.Capability{Kind: capability.MetaGrant}) {
		t.Fatalf("expected MetaGrant to be granted after approved vote")
	}
}

func TestSchedulerTickNoActorsErrors(t *testing.T) {
	s := NewScheduler(nil)
	if _, err := s.Tick(); err == nil {
		t.Fatalf("expected an error ticking a scheduler with no actors")
	}
}
