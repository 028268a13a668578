package capability

// TrustTier is a compile-time upper bound on the capabilities a program
// may request, ordered Formal < Verified < Empirical < Experimental.
type TrustTier uint8

const (
	Formal TrustTier = iota
	Verified
	Empirical
	Experimental
)

func (t TrustTier) String() string {
	switch t {
	case Formal:
		return "Formal"
	case Verified:
		return "Verified"
	case Empirical:
		return "Empirical"
	case Experimental:
		return "Experimental"
	default:
		return "UnknownTier"
	}
}

// allExceptMetaGrant is Experimental's granted set: every capability
// except MetaGrant and MetaSelfModify, which always require explicit
// delegation regardless of tier, and the ResourceExtra* capabilities,
// which no tier grants.
func allExceptMetaGrant() []Capability {
	return []Capability{
		{Kind: MacroHygienic}, {Kind: MacroUnsafe}, {Kind: ComptimeEval},
		{Kind: IoReadSensor}, {Kind: IoWriteActuator}, {Kind: IoNetwork}, {Kind: IoPersist},
		{Kind: SysCreateActor}, {Kind: SysTerminateActor}, {Kind: SysClock},
	}
}

// GrantedCapabilities is the total function TrustTier -> Set<Capability>.
// ResourceExtra* capabilities are never tier-granted; they are acquired
// only through RequestCap, since each carries a distinct quota payload
// that no fixed tier table can enumerate.
func GrantedCapabilities(tier TrustTier) *Set {
	s := NewSet()
	switch tier {
	case Formal:
		// Purely computational; no side effects, no macros.
	case Verified:
		s.Add(Capability{Kind: MacroHygienic})
		s.Add(Capability{Kind: ComptimeEval})
	case Empirical:
		s.Add(Capability{Kind: IoReadSensor})
		s.Add(Capability{Kind: IoWriteActuator})
		s.Add(Capability{Kind: IoPersist})
		s.Add(Capability{Kind: IoNetwork})
		s.Add(Capability{Kind: SysCreateActor})
		s.Add(Capability{Kind: MacroHygienic})
		s.Add(Capability{Kind: ComptimeEval})
	case Experimental:
		for _, c := range allExceptMetaGrant() {
			s.Add(c)
		}
	}
	return s
}
