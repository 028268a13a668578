package kernel

import "testing"

func TestBetaReduceStepIdentityWhenNoRedex(t *testing.T) {
	term := Lam(Var(0))
	got := BetaReduceStep(term)
	if !Equal(got, term) {
		t.Errorf("BetaReduceStep(%v) = %v, want identity", term, got)
	}
}

func TestBetaReduceStepScenarioA(t *testing.T) {
	// Concrete end-to-end scenario A: App(Lam(Var(0)), Var(1)) -> Var(1).
	input := App(Lam(Var(0)), Var(1))
	got := BetaReduceStep(input)
	if !Equal(got, Var(1)) {
		t.Errorf("BetaReduceStep(%v) = %v, want Var(1)", input, got)
	}
}

func TestNormalizeScenarioB(t *testing.T) {
	// (\x.\y.x) a b, i.e. App(App(Lam(Lam(Var(1))), Var(0)), Var(1)),
	// normalizes to Var(0).
	input := App(App(Lam(Lam(Var(1))), Var(0)), Var(1))
	got, err := Normalize(input, 0)
	if err != nil {
		t.Fatalf("Normalize(%v) error: %v", input, err)
	}
	if !Equal(got, Var(0)) {
		t.Errorf("Normalize(%v) = %v, want Var(0)", input, got)
	}
}

func TestNormalizeIdempotence(t *testing.T) {
	terms := []*Term{
		App(Lam(Var(0)), Var(1)),
		App(App(Lam(Lam(Var(1))), Var(0)), Var(1)),
		Lam(App(Lam(Var(0)), Var(0))),
	}
	for _, term := range terms {
		first, err := Normalize(term, 0)
		if err != nil {
			t.Fatalf("Normalize(%v) error: %v", term, err)
		}
		second, err := Normalize(first, 0)
		if err != nil {
			t.Fatalf("Normalize(normalize(%v)) error: %v", term, err)
		}
		if !Equal(first, second) {
			t.Errorf("normalize not idempotent on %v: first=%v second=%v", term, first, second)
		}
	}
}

func TestNormalizeDiverges(t *testing.T) {
	// Omega = (\x. x x) (\x. x x) never reaches a normal form.
	omegaBody := Lam(App(Var(0), Var(0)))
	omega := App(omegaBody, omegaBody)
	_, err := Normalize(omega, 50)
	if err == nil {
		t.Fatalf("Normalize(omega) = nil error, want NormalizationDiverged")
	}
	kerr, ok := err.(*Error)
	if !ok || kerr.Kind != ErrNormalizationDiverged {
		t.Errorf("Normalize(omega) error = %v, want ErrNormalizationDiverged", err)
	}
}

func TestEtaReduceSideCondition(t *testing.T) {
	// Lam(App(f, Var(0))) where f does not reference index 0: reducible.
	reducible := Lam(App(Var(1), Var(0)))
	got, ok := EtaReduce(reducible)
	if !ok {
		t.Fatalf("EtaReduce(%v) = (_, false), want ok", reducible)
	}
	if !Equal(got, Var(0)) {
		t.Errorf("EtaReduce(%v) = %v, want Var(0)", reducible, got)
	}

	// Lam(App(Var(0), Var(0))): the function position references index 0,
	// so eta does not apply.
	notReducible := Lam(App(Var(0), Var(0)))
	if _, ok := EtaReduce(notReducible); ok {
		t.Errorf("EtaReduce(%v) = (_, true), want not applicable", notReducible)
	}

	// Wrong shape entirely.
	if _, ok := EtaReduce(Var(0)); ok {
		t.Errorf("EtaReduce(Var(0)) should not be applicable")
	}
}
