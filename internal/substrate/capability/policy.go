package capability

// Decision is the outcome of a capability request, delegation, or
// revocation, consulted and recorded by the scheduler.
type Decision uint8

const (
	Granted Decision = iota
	Denied
	PendingConsensus
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "Granted"
	case Denied:
		return "Denied"
	case PendingConsensus:
		return "PendingConsensus"
	default:
		return "UnknownDecision"
	}
}

// ActorView is the minimal actor-shaped information the capability policy
// needs to decide a request/delegation/revocation, kept independent of the
// scheduler package so capability has no dependency on it.
type ActorView struct {
	ID           uint32
	HasParent    bool
	ParentID     uint32
	Priority     uint8
	Capabilities *Set
}

// isChildOf reports whether target was spawned by parent.
func isChildOf(target, parent ActorView) bool {
	return target.HasParent && target.ParentID == parent.ID
}

// DecideRequest implements the decision policy table, consulted by the
// scheduler whenever an actor executes RequestCap.
func DecideRequest(actor ActorView, requested Capability, justification string) Decision {
	if actor.Capabilities.Has(requested) {
		return Granted
	}
	switch requested.Kind {
	case MetaSelfModify:
		if actor.HasParent {
			return Granted
		}
		return Denied
	case MetaGrant:
		return PendingConsensus
	case MacroUnsafe:
		if actor.Capabilities.HasKind(MetaGrant) {
			return Granted
		}
		return Denied
	case IoNetwork:
		if justification != "" {
			return Granted
		}
		return Denied
	case MacroHygienic, ComptimeEval, IoReadSensor, IoWriteActuator, IoPersist,
		SysCreateActor, SysClock, SysTerminateActor,
		ResourceExtraMemory, ResourceExtraTime:
		return Granted
	default:
		return Denied
	}
}

// directChildOnly is the set of capabilities restricted to delegation to
// a direct child only.
func directChildOnly(k Kind) bool {
	return k == SysTerminateActor || k == MacroUnsafe || k == MetaSelfModify
}

// DecideDelegation implements GrantCap's rules: the granter must
// hold MetaGrant and the capability being delegated; MetaGrant itself may
// only go to a child or to an actor with priority > 200; a fixed list of
// sensitive capabilities may only go to a direct child; everything else
// delegates freely once those preconditions hold.
func DecideDelegation(granter, target ActorView, cap Capability) Decision {
	if !granter.Capabilities.HasKind(MetaGrant) {
		return Denied
	}
	if !granter.Capabilities.Has(cap) {
		return Denied
	}
	if cap.Kind == MetaGrant {
		if isChildOf(target, granter) || target.Priority > 200 {
			return Granted
		}
		return Denied
	}
	if directChildOnly(cap.Kind) {
		if isChildOf(target, granter) {
			return Granted
		}
		return Denied
	}
	return Granted
}

// DecideRevocation implements RevokeCap's rules: self-revoke is
// always permitted; a MetaGrant holder may revoke any capability from
// anyone except MetaGrant itself from a non-child; a parent may revoke
// from its own child.
func DecideRevocation(revoker, target ActorView, cap Capability) Decision {
	if revoker.ID == target.ID {
		return Granted
	}
	if revoker.Capabilities.HasKind(MetaGrant) {
		if cap.Kind == MetaGrant && !isChildOf(target, revoker) {
			return Denied
		}
		return Granted
	}
	if isChildOf(target, revoker) {
		return Granted
	}
	return Denied
}
