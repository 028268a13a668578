package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

// timestampFrom turns the scheduler's monotonic request counter into a
// time.Time for capability.AuditLog.Record, keeping audit ordering
// reproducible across runs instead of depending on the wall clock.
func timestampFrom(n uint64) time.Time {
	return time.Unix(0, int64(n))
}

// TickResultKind discriminates what a single Tick produced.
type TickResultKind uint8

const (
	ActorYielded TickResultKind = iota
	ActorFinished
	ActorErrored
	ActorWaitingForCapability
)

func (k TickResultKind) String() string {
	switch k {
	case ActorYielded:
		return "ActorYielded"
	case ActorFinished:
		return "ActorFinished"
	case ActorErrored:
		return "ActorErrored"
	case ActorWaitingForCapability:
		return "ActorWaitingForCapability"
	default:
		return "UnknownTickResult"
	}
}

// TickResult is the outcome of one Scheduler.Tick call.
type TickResult struct {
	Kind       TickResultKind
	ActorID    uint32
	Value      vm.Value
	Err        error
	Capability capability.Capability
	Sent       []SentMessage
}

// SentMessage records one Send instruction's effect for the caller's
// ExecutionResult.messages_sent, since Scheduler.SendMessage itself only
// knows the target's external queue, not which actor asked.
type SentMessage struct {
	Target uint32
	Value  vm.Value
}

// SchedulerError is returned by Tick when there is nothing to schedule.
// Grounded on original_source/physics_world/src/scheduler.rs's
// PhysicsError::SchedulerError.
type SchedulerError struct {
	Message string
}

func (e *SchedulerError) Error() string { return e.Message }

// DefaultStepBudget is the per-actor per-tick instruction budget.
const DefaultStepBudget = 100

// Scheduler multiplexes many actors over a single process with strict
// resource quotas. Grounded directly on
// original_source/physics_world/src/scheduler.rs's PhysicsScheduler,
// extended with per-actor step budgets, capability mediation, resource
// quotas, and a debug/audit surface.
//
// All of the scheduler's mutable state (audit log, external queues,
// resource history) is touched only from within Tick and its helpers, so
// the single-threaded access the ordering guarantees depend on falls out
// of construction, not locking.
type Scheduler struct {
	Actors         []*Actor
	cursor         int
	maxActorIDSeen uint32

	externalQueues map[uint32][]vm.Value

	globalStepCount   uint64
	globalMemoryUsage uint32

	GlobalQuota  ResourceQuota
	actorQuotas  map[uint32]ResourceQuota
	ResourceHist []ResourceUsageSnapshot

	Audit         *capability.AuditLog
	nextRequestID uint64

	tickTrace []string
	tickSent  []SentMessage

	logger *zap.Logger
}

// NewScheduler returns an empty scheduler. A nil logger is replaced with a
// no-op logger, matching capability.NewAuditLog's convention.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		externalQueues: make(map[uint32][]vm.Value),
		actorQuotas:    make(map[uint32]ResourceQuota),
		Audit:          capability.NewAuditLog(logger),
		GlobalQuota:    DefaultGlobalQuota(),
		logger:         logger,
	}
}

// now returns a synthetic monotonic timestamp for audit entries, derived
// from the request-id counter rather than the wall clock, so two runs of
// identical programs produce identical audit timelines.
func (s *Scheduler) now() uint64 {
	s.nextRequestID++
	return s.nextRequestID
}

// AddActor registers an actor with the scheduler.
func (s *Scheduler) AddActor(a *Actor) {
	s.Actors = append(s.Actors, a)
	if _, ok := s.actorQuotas[a.ID]; !ok {
		s.actorQuotas[a.ID] = s.GlobalQuota.PerActorDefault()
	}
}

// CurrentActorID returns the actor id at the cursor, if any.
func (s *Scheduler) CurrentActorID() (uint32, bool) {
	if len(s.Actors) == 0 {
		return 0, false
	}
	return s.Actors[s.cursor].ID, true
}

func (s *Scheduler) advance() {
	if len(s.Actors) == 0 {
		s.cursor = 0
		return
	}
	s.cursor = (s.cursor + 1) % len(s.Actors)
}

func (s *Scheduler) removeActor(id uint32) {
	for i, a := range s.Actors {
		if a.ID == id {
			s.Actors = append(s.Actors[:i], s.Actors[i+1:]...)
			if s.cursor > i || s.cursor >= len(s.Actors) {
				if s.cursor > 0 {
					s.cursor--
				}
			}
			delete(s.actorQuotas, id)
			return
		}
	}
}

func (s *Scheduler) findActor(id uint32) *Actor {
	for _, a := range s.Actors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// nextActorID allocates an id one past the highest id ever seen, so a
// spawned child never collides with a terminated and removed actor.
func (s *Scheduler) nextActorID() uint32 {
	var max uint32
	for _, a := range s.Actors {
		if a.ID > max {
			max = a.ID
		}
	}
	if max >= s.maxActorIDSeen {
		s.maxActorIDSeen = max + 1
	} else {
		s.maxActorIDSeen++
	}
	return s.maxActorIDSeen
}

// findActorRequests returns the pending capability requests parked on the
// named actor, or nil if it has none (or doesn't exist).
func (s *Scheduler) findActorRequests(id uint32) []PendingCapRequest {
	actor := s.findActor(id)
	if actor == nil {
		return nil
	}
	return actor.PendingRequests
}

// Tick runs the actor at the cursor for up to its per-tick step budget,
// then yields to the next actor (a budget exhaustion counts as an
// implicit yield). Its mailbox is drained before stepping. External
// messages sent during the tick are flushed to mailboxes once the tick
// completes: the tick itself is the delivery boundary.
func (s *Scheduler) Tick() (TickResult, error) {
	if len(s.Actors) == 0 {
		return TickResult{}, &SchedulerError{Message: "no actors to schedule"}
	}

	s.tickSent = nil
	actor := s.Actors[s.cursor]
	if actor.Waiting {
		s.advance()
		s.DeliverExternalMessages()
		return TickResult{Kind: ActorYielded, ActorID: actor.ID}, nil
	}

	actor.DrainMailbox()
	budget := actor.stepBudget(DefaultStepBudget)
	host := &actorHost{sched: s, actor: actor}
	actor.VM.Host = host

	for i := 0; i < budget; i++ {
		before := actor.VM.StepsRemaining
		outcome, err := actor.VM.Step()
		s.globalStepCount += uint64(before - actor.VM.StepsRemaining)
		if err != nil {
			idx := s.cursor
			s.removeActor(actor.ID)
			s.cursor = idx
			if s.cursor >= len(s.Actors) {
				s.cursor = 0
			}
			s.trace(fmt.Sprintf("actor %d errored: %v", actor.ID, err))
			s.DeliverExternalMessages()
			return TickResult{Kind: ActorErrored, ActorID: actor.ID, Err: err, Sent: s.tickSent}, nil
		}

		switch outcome.Kind {
		case vm.StepContinue:
			continue
		case vm.StepYield:
			s.advance()
			s.trace(fmt.Sprintf("actor %d yielded", actor.ID))
			s.DeliverExternalMessages()
			return TickResult{Kind: ActorYielded, ActorID: actor.ID, Sent: s.tickSent}, nil
		case vm.StepFinished:
			idx := s.cursor
			s.removeActor(actor.ID)
			s.cursor = idx
			if s.cursor >= len(s.Actors) {
				s.cursor = 0
			}
			s.trace(fmt.Sprintf("actor %d finished", actor.ID))
			s.DeliverExternalMessages()
			return TickResult{Kind: ActorFinished, ActorID: actor.ID, Value: outcome.FinishedValue, Sent: s.tickSent}, nil
		case vm.StepWaitingForCapability:
			actor.PendingRequests = append(actor.PendingRequests, PendingCapRequest{
				Capability:  outcome.WaitingCap,
				RequestedAt: s.now(),
			})
			actor.Waiting = true
			s.advance()
			s.trace(fmt.Sprintf("actor %d waiting for capability %s", actor.ID, outcome.WaitingCap.Kind))
			s.DeliverExternalMessages()
			return TickResult{Kind: ActorWaitingForCapability, ActorID: actor.ID, Capability: outcome.WaitingCap, Sent: s.tickSent}, nil
		}
	}

	// Budget exhausted: implicit yield.
	s.advance()
	s.trace(fmt.Sprintf("actor %d exhausted its step budget", actor.ID))
	s.DeliverExternalMessages()
	return TickResult{Kind: ActorYielded, ActorID: actor.ID, Sent: s.tickSent}, nil
}

// ResolveCapabilityVote is the local capability-vote primitive: it
// resolves an actor's PendingConsensus MetaGrant request out of band.
// Approved grants the capability and un-parks the actor; denied discards
// the request and un-parks it without granting.
func (s *Scheduler) ResolveCapabilityVote(actorID uint32, cap capability.Capability, approved bool) error {
	actor := s.findActor(actorID)
	if actor == nil {
		return fmt.Errorf("scheduler: ResolveCapabilityVote: actor %d not found", actorID)
	}
	decision := capability.Denied
	if approved {
		decision = capability.Granted
		actor.Capabilities.Add(cap)
	}
	s.Audit.Record(actorID, "Request", cap, decision, timestampFrom(s.now()))

	kept := actor.PendingRequests[:0]
	for _, req := range actor.PendingRequests {
		if !req.Capability.Equal(cap) {
			kept = append(kept, req)
		}
	}
	actor.PendingRequests = kept
	if len(actor.PendingRequests) == 0 {
		actor.Waiting = false
	}
	return nil
}

// SendMessage appends to the target's external queue, even if the target
// doesn't exist yet.
func (s *Scheduler) SendMessage(target uint32, value vm.Value) {
	s.externalQueues[target] = append(s.externalQueues[target], value)
}

// DeliverExternalMessages flushes every external queue into its target
// actor's mailbox, preserving per-sender-target order.
func (s *Scheduler) DeliverExternalMessages() {
	for target, msgs := range s.externalQueues {
		if len(msgs) == 0 {
			continue
		}
		if actor := s.findActor(target); actor != nil {
			actor.Mailbox = append(actor.Mailbox, msgs...)
			delete(s.externalQueues, target)
		}
	}
}

func (s *Scheduler) trace(line string) {
	s.tickTrace = append(s.tickTrace, line)
	if len(s.tickTrace) > 1000 {
		s.tickTrace = s.tickTrace[len(s.tickTrace)-1000:]
	}
	s.logger.Debug("scheduler tick", zap.String("event", line))
}
