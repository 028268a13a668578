package scheduler

import "github.com/latticevm/substrate/internal/substrate/capability"

// ActorSnapshot is a read-only view of one actor's scheduling state, for
// introspection rather than control.
type ActorSnapshot struct {
	ID              uint32
	Waiting         bool
	PendingRequests []PendingCapRequest
	MailboxDepth    int
	StepsRemaining  int64
	MemoryUsed      uint32
	Capabilities    []capability.Capability
}

// DebugSnapshot is a full point-in-time view of the scheduler, grounded on
// original_source/physics_world/src/scheduler/debug.rs's capability and
// state introspection helpers, extended to cover the tick trace and
// resource history this core also tracks.
type DebugSnapshot struct {
	Actors       []ActorSnapshot
	TickTrace    []string
	ResourceHist []ResourceUsageSnapshot
	Audit        []capability.AuditEntry
}

// DebugSnapshot returns a deep-enough-to-be-stable copy of the scheduler's
// current state, safe for a caller to log or compare without racing
// further ticks (single-threaded scheduler notwithstanding: this is
// about not aliasing slices the scheduler will later mutate in place).
func (s *Scheduler) DebugSnapshot() DebugSnapshot {
	actors := make([]ActorSnapshot, 0, len(s.Actors))
	for _, a := range s.Actors {
		actors = append(actors, ActorSnapshot{
			ID:              a.ID,
			Waiting:         a.Waiting,
			PendingRequests: append([]PendingCapRequest(nil), a.PendingRequests...),
			MailboxDepth:    len(a.Mailbox),
			StepsRemaining:  a.VM.StepsRemaining,
			MemoryUsed:      a.VM.Arena.NextFree(),
			Capabilities:    a.Capabilities.List(),
		})
	}
	return DebugSnapshot{
		Actors:       actors,
		TickTrace:    append([]string(nil), s.tickTrace...),
		ResourceHist: append([]ResourceUsageSnapshot(nil), s.ResourceHist...),
		Audit:        s.Audit.All(),
	}
}

// ActorHasCapability reports whether actorID currently holds cap, false if
// the actor doesn't exist.
func (s *Scheduler) ActorHasCapability(actorID uint32, cap capability.Capability) bool {
	a := s.findActor(actorID)
	if a == nil {
		return false
	}
	return a.Capabilities.Has(cap)
}
