package scheduler

import (
	"fmt"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

// actorHost implements vm.Host for one actor's running VmState, routing
// everything that crosses actor boundaries (delegation, revocation, audit,
// host-function dispatch, and outbound sends) back through the owning
// Scheduler.
type actorHost struct {
	sched *Scheduler
	actor *Actor
}

func (h *actorHost) ActorView() capability.ActorView { return h.actor.View() }

func (h *actorHost) Capabilities() *capability.Set { return h.actor.Capabilities }

func (h *actorHost) Audit(operation string, cap capability.Capability, result capability.Decision) {
	h.sched.Audit.Record(h.actor.ID, operation, cap, result, timestampFrom(h.sched.now()))
}

// Delegate implements GrantCap: the granter is the running actor,
// the target is looked up by id. A missing target is Denied and audited
// under the granter's id, since there is no target actor to audit under.
func (h *actorHost) Delegate(targetActorID uint32, cap capability.Capability) capability.Decision {
	target := h.sched.findActor(targetActorID)
	if target == nil {
		h.sched.Audit.Record(h.actor.ID, "Delegate", cap, capability.Denied, timestampFrom(h.sched.now()))
		return capability.Denied
	}
	decision := capability.DecideDelegation(h.actor.View(), target.View(), cap)
	if decision == capability.Granted {
		target.Capabilities.Add(cap)
	}
	h.sched.Audit.Record(h.actor.ID, "Delegate", cap, decision, timestampFrom(h.sched.now()))
	return decision
}

// Revoke implements RevokeCap.
func (h *actorHost) Revoke(targetActorID uint32, cap capability.Capability) capability.Decision {
	target := h.sched.findActor(targetActorID)
	if target == nil {
		h.sched.Audit.Record(h.actor.ID, "Revoke", cap, capability.Denied, timestampFrom(h.sched.now()))
		return capability.Denied
	}
	decision := capability.DecideRevocation(h.actor.View(), target.View(), cap)
	if decision == capability.Granted {
		target.Capabilities.Remove(cap)
	}
	h.sched.Audit.Record(h.actor.ID, "Revoke", cap, decision, timestampFrom(h.sched.now()))
	return decision
}

func (h *actorHost) Send(targetActorID uint32, msg vm.Value) {
	h.sched.SendMessage(targetActorID, msg)
	h.sched.tickSent = append(h.sched.tickSent, SentMessage{Target: targetActorID, Value: msg})
}

// Host function ids. 0-31 are the capability-free arithmetic and
// comparison range vm.hostCallRequiresCapability exempts; 32+ are
// side-effecting and require the bytecode to name, at HostCall's cap_idx,
// a capability the actor holds. Which capability is named is not checked
// against the function being called.
const (
	HostFuncAddInt uint16 = iota
	HostFuncSubInt
	HostFuncMulInt
	HostFuncDivInt
	HostFuncModInt
	HostFuncAddFloat
	HostFuncSubFloat
	HostFuncMulFloat
	HostFuncDivFloat
	HostFuncCompareEq
	HostFuncCompareLt
	HostFuncCompareGt
)

const (
	HostFuncReadSensor     uint16 = 32
	HostFuncWriteActuator  uint16 = 33
	HostFuncReadClock      uint16 = 34
	HostFuncSpawnActor     uint16 = 35
	HostFuncTerminateActor uint16 = 36
	HostFuncNetworkSend    uint16 = 37
	HostFuncPersistWrite   uint16 = 38
)

// childArenaCapacity is the heap size given to an actor spawned via
// HostFuncSpawnActor, matching the footprint DefaultResourceLimits grants
// a freshly admitted actor.
const childArenaCapacity = 1 << 20

func defaultChildArena() *memory.Arena {
	return memory.NewArena(childArenaCapacity)
}

// HostCall dispatches on func_id against the closed host-function table.
// The VM has already verified any required capability before calling
// this.
func (h *actorHost) HostCall(funcID uint16, argc uint8, args []vm.Value) (vm.Value, error) {
	switch funcID {
	case HostFuncAddInt, HostFuncSubInt, HostFuncMulInt, HostFuncDivInt, HostFuncModInt:
		return hostIntArith(funcID, args)
	case HostFuncAddFloat, HostFuncSubFloat, HostFuncMulFloat, HostFuncDivFloat:
		return hostFloatArith(funcID, args)
	case HostFuncCompareEq, HostFuncCompareLt, HostFuncCompareGt:
		return hostCompare(funcID, args)
	case HostFuncReadSensor:
		// No physical sensor is wired to this in-process core; a
		// deterministic zero reading keeps execution reproducible.
		return vm.IntValue(0), nil
	case HostFuncWriteActuator:
		return vm.Nil(), nil
	case HostFuncReadClock:
		// Logical clock, not wall time, so identical runs stay
		// deterministic.
		return vm.IntValue(int64(h.sched.globalStepCount)), nil
	case HostFuncSpawnActor:
		return h.hostSpawnActor(args)
	case HostFuncTerminateActor:
		return h.hostTerminateActor(args)
	case HostFuncNetworkSend:
		return vm.Nil(), nil
	case HostFuncPersistWrite:
		return vm.Nil(), nil
	default:
		return vm.Value{}, fmt.Errorf("scheduler: HostCall: unknown func_id %d", funcID)
	}
}

func requireArgc(args []vm.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("scheduler: HostCall: expected %d args, got %d", n, len(args))
	}
	return nil
}

func hostIntArith(funcID uint16, args []vm.Value) (vm.Value, error) {
	if err := requireArgc(args, 2); err != nil {
		return vm.Value{}, err
	}
	a, b := args[0], args[1]
	if a.Kind != vm.ValInt || b.Kind != vm.ValInt {
		return vm.Value{}, fmt.Errorf("scheduler: HostCall: int arithmetic requires Int operands")
	}
	switch funcID {
	case HostFuncAddInt:
		return vm.IntValue(a.Int + b.Int), nil
	case HostFuncSubInt:
		return vm.IntValue(a.Int - b.Int), nil
	case HostFuncMulInt:
		return vm.IntValue(a.Int * b.Int), nil
	case HostFuncDivInt:
		if b.Int == 0 {
			return vm.Value{}, fmt.Errorf("scheduler: HostCall: division by zero")
		}
		return vm.IntValue(a.Int / b.Int), nil
	case HostFuncModInt:
		if b.Int == 0 {
			return vm.Value{}, fmt.Errorf("scheduler: HostCall: modulo by zero")
		}
		return vm.IntValue(a.Int % b.Int), nil
	}
	panic("scheduler: hostIntArith: unreachable")
}

func hostFloatArith(funcID uint16, args []vm.Value) (vm.Value, error) {
	if err := requireArgc(args, 2); err != nil {
		return vm.Value{}, err
	}
	a, b := args[0], args[1]
	if a.Kind != vm.ValFloat || b.Kind != vm.ValFloat {
		return vm.Value{}, fmt.Errorf("scheduler: HostCall: float arithmetic requires Float operands")
	}
	switch funcID {
	case HostFuncAddFloat:
		return vm.FloatValue(a.Float + b.Float), nil
	case HostFuncSubFloat:
		return vm.FloatValue(a.Float - b.Float), nil
	case HostFuncMulFloat:
		return vm.FloatValue(a.Float * b.Float), nil
	case HostFuncDivFloat:
		return vm.FloatValue(a.Float / b.Float), nil
	}
	panic("scheduler: hostFloatArith: unreachable")
}

func hostCompare(funcID uint16, args []vm.Value) (vm.Value, error) {
	if err := requireArgc(args, 2); err != nil {
		return vm.Value{}, err
	}
	a, b := args[0], args[1]
	af, aok := numericOf(a)
	bf, bok := numericOf(b)
	if !aok || !bok {
		return vm.Value{}, fmt.Errorf("scheduler: HostCall: comparison requires numeric operands")
	}
	switch funcID {
	case HostFuncCompareEq:
		return vm.BoolValue(af == bf), nil
	case HostFuncCompareLt:
		return vm.BoolValue(af < bf), nil
	case HostFuncCompareGt:
		return vm.BoolValue(af > bf), nil
	}
	panic("scheduler: hostCompare: unreachable")
}

func numericOf(v vm.Value) (float64, bool) {
	switch v.Kind {
	case vm.ValInt:
		return float64(v.Int), true
	case vm.ValFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// hostSpawnActor creates a child actor sharing no heap state with its
// parent (no cross-actor shared mutable memory), inheriting no
// capabilities by default; the new actor id is returned to the caller.
func (h *actorHost) hostSpawnActor(args []vm.Value) (vm.Value, error) {
	if err := requireArgc(args, 0); err != nil {
		return vm.Value{}, err
	}
	childID := h.sched.nextActorID()
	child := &Actor{
		ID:           childID,
		VM:           vm.NewVmState(nil, nil, nil, defaultChildArena(), DefaultStepBudget, h.actor.VM.MemoryLimit, childID, h.actor.VM.MaxRecursionDepth, nil),
		Capabilities: capability.NewSet(),
		HasParent:    true,
		ParentID:     h.actor.ID,
	}
	h.sched.AddActor(child)
	return vm.ActorIDValue(childID), nil
}

// hostTerminateActor removes the named target actor from the scheduler,
// discarding any request it has parked (cancellation).
func (h *actorHost) hostTerminateActor(args []vm.Value) (vm.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return vm.Value{}, err
	}
	if args[0].Kind != vm.ValActorID {
		return vm.Value{}, fmt.Errorf("scheduler: HostCall: TerminateActor requires an ActorID argument")
	}
	targetID := args[0].ActorID
	for _, req := range h.sched.findActorRequests(targetID) {
		h.sched.Audit.Record(targetID, "Request", req.Capability, capability.Denied, timestampFrom(h.sched.now()))
	}
	h.sched.removeActor(targetID)
	return vm.Nil(), nil
}
