// Package scheduler implements the cooperative actor scheduler: actor
// lifecycle, mailbox delivery, fair round-robin ticking with
// per-actor resource accounting, and capability mediation of an actor's
// blocked RequestCap operations.
package scheduler

import (
	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

// PendingCapRequest records a RequestCap an actor is parked on, pending an
// out-of-band consensus decision (a PendingConsensus outcome).
type PendingCapRequest struct {
	Capability    capability.Capability
	Justification string
	RequestedAt   uint64
}

// Actor is an independent VM with its own stack, heap, mailbox, and
// capability set, scheduled cooperatively. Grounded on
// original_source/physics_world/src/scheduler.rs's Actor{id, vm, mailbox,
// is_waiting}, extended with capability, parent, and priority fields.
type Actor struct {
	ID      uint32
	VM      *vm.VmState
	Mailbox []vm.Value

	Waiting         bool
	PendingRequests []PendingCapRequest

	Capabilities *capability.Set

	HasParent bool
	ParentID  uint32

	Priority      uint8
	PriorityBoost *uint8
}

// View returns the capability.ActorView the decision policy consults for
// this actor.
func (a *Actor) View() capability.ActorView {
	return capability.ActorView{
		ID:           a.ID,
		HasParent:    a.HasParent,
		ParentID:     a.ParentID,
		Priority:     a.Priority,
		Capabilities: a.Capabilities,
	}
}

// stepBudget derives this actor's per-tick instruction budget: the flat
// default plus PriorityBoost when one is set. Priority itself does not
// enter the budget, and the budget is never used for preemption or
// reordering.
func (a *Actor) stepBudget(defaultBudget int) int {
	budget := defaultBudget
	if a.PriorityBoost != nil {
		budget += int(*a.PriorityBoost)
	}
	return budget
}

// DrainMailbox moves every queued message onto the actor's VM stack in
// FIFO order, preserving per-sender-target order. Called at the start of
// every tick, before stepping.
func (a *Actor) DrainMailbox() {
	for _, msg := range a.Mailbox {
		a.VM.Stack = append(a.VM.Stack, msg)
	}
	a.Mailbox = a.Mailbox[:0]
}
