package capability

import "testing"

func TestGrantedCapabilitiesFormalIsEmpty(t *testing.T) {
	s := GrantedCapabilities(Formal)
	if len(s.List()) != 0 {
		t.Fatalf("Formal tier should grant nothing, got %v", s.List())
	}
}

func TestGrantedCapabilitiesVerifiedSubsetOfEmpirical(t *testing.T) {
	verified := GrantedCapabilities(Verified)
	empirical := GrantedCapabilities(Empirical)
	if !empirical.IsSupersetOf(verified) {
		t.Fatalf("Empirical should be a superset of Verified")
	}
	if !verified.HasKind(MacroHygienic) || !verified.HasKind(ComptimeEval) {
		t.Fatalf("Verified should grant MacroHygienic and ComptimeEval")
	}
}

func TestGrantedCapabilitiesEmpiricalSubsetOfExperimental(t *testing.T) {
	empirical := GrantedCapabilities(Empirical)
	experimental := GrantedCapabilities(Experimental)
	if !experimental.IsSupersetOf(empirical) {
		t.Fatalf("Experimental should be a superset of Empirical")
	}
}

func TestGrantedCapabilitiesExperimentalExcludesMetaGrantFamily(t *testing.T) {
	s := GrantedCapabilities(Experimental)
	if s.HasKind(MetaGrant) {
		t.Fatalf("Experimental must never auto-grant MetaGrant")
	}
	if s.HasKind(MetaSelfModify) {
		t.Fatalf("Experimental must never auto-grant MetaSelfModify")
	}
	if s.HasKind(ResourceExtraMemory) || s.HasKind(ResourceExtraTime) {
		t.Fatalf("resource capabilities are never tier-granted")
	}
}
