package capability

import "testing"

func actorWith(id uint32, hasParent bool, parentID uint32, priority uint8, caps ...Capability) ActorView {
	s := NewSet()
	for _, c := range caps {
		s.Add(c)
	}
	return ActorView{ID: id, HasParent: hasParent, ParentID: parentID, Priority: priority, Capabilities: s}
}

func TestDecideRequestAlreadyHeldIsGranted(t *testing.T) {
	actor := actorWith(1, false, 0, 0, Capability{Kind: IoPersist})
	if got := DecideRequest(actor, Capability{Kind: IoPersist}, ""); got != Granted {
		t.Fatalf("already-held request should be Granted, got %v", got)
	}
}

func TestDecideRequestMetaSelfModifyRequiresParent(t *testing.T) {
	orphan := actorWith(1, false, 0, 0)
	if got := DecideRequest(orphan, Capability{Kind: MetaSelfModify}, ""); got != Denied {
		t.Fatalf("orphan requesting MetaSelfModify should be Denied, got %v", got)
	}
	child := actorWith(2, true, 1, 0)
	if got := DecideRequest(child, Capability{Kind: MetaSelfModify}, ""); got != Granted {
		t.Fatalf("child requesting MetaSelfModify should be Granted, got %v", got)
	}
}

func TestDecideRequestMetaGrantIsAlwaysPending(t *testing.T) {
	actor := actorWith(1, false, 0, 0)
	if got := DecideRequest(actor, Capability{Kind: MetaGrant}, ""); got != PendingConsensus {
		t.Fatalf("MetaGrant request should be PendingConsensus, got %v", got)
	}
}

func TestDecideRequestMacroUnsafeRequiresMetaGrant(t *testing.T) {
	without := actorWith(1, false, 0, 0)
	if got := DecideRequest(without, Capability{Kind: MacroUnsafe}, ""); got != Denied {
		t.Fatalf("MacroUnsafe without MetaGrant should be Denied, got %v", got)
	}
	with := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant})
	if got := DecideRequest(with, Capability{Kind: MacroUnsafe}, ""); got != Granted {
		t.Fatalf("MacroUnsafe with MetaGrant should be Granted, got %v", got)
	}
}

func TestDecideRequestIoNetworkRequiresJustification(t *testing.T) {
	actor := actorWith(1, false, 0, 0)
	if got := DecideRequest(actor, Capability{Kind: IoNetwork}, ""); got != Denied {
		t.Fatalf("IoNetwork without justification should be Denied, got %v", got)
	}
	if got := DecideRequest(actor, Capability{Kind: IoNetwork}, "needed for RPC"); got != Granted {
		t.Fatalf("IoNetwork with justification should be Granted, got %v", got)
	}
}

func TestDecideRequestUnconditionalGrants(t *testing.T) {
	actor := actorWith(1, false, 0, 0)
	kinds := []Kind{
		MacroHygienic, ComptimeEval, IoReadSensor, IoWriteActuator, IoPersist,
		SysCreateActor, SysClock, SysTerminateActor,
		ResourceExtraMemory, ResourceExtraTime,
	}
	for _, k := range kinds {
		if got := DecideRequest(actor, Capability{Kind: k}, ""); got != Granted {
			t.Fatalf("%v should be unconditionally Granted, got %v", k, got)
		}
	}
}

func TestDecideDelegationRequiresGranterToHoldMetaGrantAndCap(t *testing.T) {
	target := actorWith(2, true, 1, 0)

	granterNoMetaGrant := actorWith(1, false, 0, 0, Capability{Kind: IoPersist})
	if got := DecideDelegation(granterNoMetaGrant, target, Capability{Kind: IoPersist}); got != Denied {
		t.Fatalf("delegation without granter MetaGrant should be Denied, got %v", got)
	}

	granterMissingCap := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant})
	if got := DecideDelegation(granterMissingCap, target, Capability{Kind: IoPersist}); got != Denied {
		t.Fatalf("delegation of a capability the granter lacks should be Denied, got %v", got)
	}
}

func TestDecideDelegationMetaGrantToChildOrHighPriority(t *testing.T) {
	granter := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant})
	child := actorWith(2, true, 1, 0)
	if got := DecideDelegation(granter, child, Capability{Kind: MetaGrant}); got != Granted {
		t.Fatalf("MetaGrant delegation to a child should be Granted, got %v", got)
	}
	stranger := actorWith(3, false, 0, 250)
	if got := DecideDelegation(granter, stranger, Capability{Kind: MetaGrant}); got != Granted {
		t.Fatalf("MetaGrant delegation to a priority>200 actor should be Granted, got %v", got)
	}
	lowPriorityStranger := actorWith(4, false, 0, 10)
	if got := DecideDelegation(granter, lowPriorityStranger, Capability{Kind: MetaGrant}); got != Denied {
		t.Fatalf("MetaGrant delegation to an unrelated low-priority actor should be Denied, got %v", got)
	}
}

func TestDecideDelegationSensitiveCapsRequireDirectChild(t *testing.T) {
	granter := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant}, Capability{Kind: SysTerminateActor})
	child := actorWith(2, true, 1, 0)
	stranger := actorWith(3, false, 0, 0)

	if got := DecideDelegation(granter, child, Capability{Kind: SysTerminateActor}); got != Granted {
		t.Fatalf("SysTerminateActor delegation to a direct child should be Granted, got %v", got)
	}
	if got := DecideDelegation(granter, stranger, Capability{Kind: SysTerminateActor}); got != Denied {
		t.Fatalf("SysTerminateActor delegation to a non-child should be Denied, got %v", got)
	}
}

func TestDecideDelegationOrdinaryCapFreelyGranted(t *testing.T) {
	granter := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant}, Capability{Kind: IoPersist})
	stranger := actorWith(3, false, 0, 0)
	if got := DecideDelegation(granter, stranger, Capability{Kind: IoPersist}); got != Granted {
		t.Fatalf("ordinary capability delegation to any actor should be Granted, got %v", got)
	}
}

func TestDecideRevocationSelfRevokeAlwaysGranted(t *testing.T) {
	actor := actorWith(1, false, 0, 0)
	if got := DecideRevocation(actor, actor, Capability{Kind: IoPersist}); got != Granted {
		t.Fatalf("self-revocation should be Granted, got %v", got)
	}
}

func TestDecideRevocationMetaGrantHolderRules(t *testing.T) {
	holder := actorWith(1, false, 0, 0, Capability{Kind: MetaGrant})
	child := actorWith(2, true, 1, 0)
	stranger := actorWith(3, false, 0, 0)

	if got := DecideRevocation(holder, stranger, Capability{Kind: IoPersist}); got != Granted {
		t.Fatalf("MetaGrant holder revoking an ordinary cap from anyone should be Granted, got %v", got)
	}
	if got := DecideRevocation(holder, stranger, Capability{Kind: MetaGrant}); got != Denied {
		t.Fatalf("MetaGrant holder revoking MetaGrant from a non-child should be Denied, got %v", got)
	}
	if got := DecideRevocation(holder, child, Capability{Kind: MetaGrant}); got != Granted {
		t.Fatalf("MetaGrant holder revoking MetaGrant from its own child should be Granted, got %v", got)
	}
}

func TestDecideRevocationParentOverChild(t *testing.T) {
	parent := actorWith(1, false, 0, 0)
	child := actorWith(2, true, 1, 0)
	stranger := actorWith(3, false, 0, 0)

	if got := DecideRevocation(parent, child, Capability{Kind: IoPersist}); got != Granted {
		t.Fatalf("parent revoking from its child should be Granted, got %v", got)
	}
	if got := DecideRevocation(parent, stranger, Capability{Kind: IoPersist}); got != Denied {
		t.Fatalf("non-parent non-MetaGrant-holder should not be able to revoke from a stranger, got %v", got)
	}
}
