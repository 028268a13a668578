package kernel

import "testing"

func TestProveBetaScenarioA(t *testing.T) {
	input := App(Lam(Var(0)), Var(1))
	proof, err := ProveBeta(input)
	if err != nil {
		t.Fatalf("ProveBeta(%v) error: %v", input, err)
	}
	a, b, err := Verify(proof)
	if err != nil {
		t.Fatalf("Verify(ProveBeta(%v)) error: %v", input, err)
	}
	if !Equal(a, input) {
		t.Errorf("Verify returned A=%v, want %v", a, input)
	}
	if !Equal(b, Var(1)) {
		t.Errorf("Verify returned B=%v, want Var(1)", b)
	}
}

func TestBetaSoundness(t *testing.T) {
	// Universal invariant #3: verify(prove_beta(r)) == (r, beta_reduce_step(r))
	terms := []*Term{
		App(Lam(Var(0)), Var(1)),
		App(Lam(App(Var(0), Var(0))), Lam(Var(0))),
	}
	for _, redex := range terms {
		proof, err := ProveBeta(redex)
		if err != nil {
			t.Fatalf("ProveBeta(%v) error: %v", redex, err)
		}
		a, b, err := Verify(proof)
		if err != nil {
			t.Fatalf("Verify error on %v: %v", redex, err)
		}
		want := BetaReduceStep(redex)
		if !Equal(a, redex) || !Equal(b, want) {
			t.Errorf("verify(prove_beta(%v)) = (%v, %v), want (%v, %v)", redex, a, b, redex, want)
		}
	}
}

func TestProveBetaFailsWithoutRedex(t *testing.T) {
	if _, err := ProveBeta(Var(0)); err == nil {
		t.Error("ProveBeta(Var(0)) should fail: no beta redex")
	}
}

func TestProveEtaFailsWhenNotReducible(t *testing.T) {
	if _, err := ProveEta(Var(0)); err == nil {
		t.Error("ProveEta(Var(0)) should fail: not eta-reducible")
	}
}

func TestVerifyRefl(t *testing.T) {
	term := Lam(App(Var(0), Var(1)))
	a, b, err := Verify(&Proof{Kind: ProofRefl, Term: term})
	if err != nil {
		t.Fatalf("Verify(Refl) error: %v", err)
	}
	if !Equal(a, term) || !Equal(b, term) {
		t.Errorf("Verify(Refl(%v)) = (%v, %v), want (%v, %v)", term, a, b, term, term)
	}
}

func TestVerifySym(t *testing.T) {
	input := App(Lam(Var(0)), Var(1))
	inner, err := ProveBeta(input)
	if err != nil {
		t.Fatalf("ProveBeta error: %v", err)
	}
	a, b, err := Verify(&Proof{Kind: ProofSym, P: inner})
	if err != nil {
		t.Fatalf("Verify(Sym) error: %v", err)
	}
	if !Equal(a, Var(1)) || !Equal(b, input) {
		t.Errorf("Verify(Sym(p)) = (%v, %v), want (Var(1), %v)", a, b, input)
	}
}

func TestVerifyTransRejectsDisagreeingMiddles(t *testing.T) {
	p := &Proof{Kind: ProofRefl, Term: Var(0)}
	q := &Proof{Kind: ProofRefl, Term: Var(1)}
	_, _, err := Verify(&Proof{Kind: ProofTrans, P: p, Q: q})
	if err == nil {
		t.Fatal("Verify(Trans) should fail when middle terms disagree")
	}
	kerr, ok := err.(*Error)
	if !ok || kerr.Kind != ErrInvalidTransitivity {
		t.Errorf("Verify(Trans) error = %v, want ErrInvalidTransitivity", err)
	}
}

func TestVerifyCongAppAndCongLam(t *testing.T) {
	fProof := &Proof{Kind: ProofRefl, Term: Var(0)}
	aProof := &Proof{Kind: ProofRefl, Term: Var(1)}
	f, g, err := Verify(&Proof{Kind: ProofCongApp, P: fProof, Q: aProof})
	if err != nil {
		t.Fatalf("Verify(CongApp) error: %v", err)
	}
	if !Equal(f, App(Var(0), Var(1))) || !Equal(g, App(Var(0), Var(1))) {
		t.Errorf("Verify(CongApp) = (%v, %v), want matching applications", f, g)
	}

	m, n, err := Verify(&Proof{Kind: ProofCongLam, P: fProof})
	if err != nil {
		t.Fatalf("Verify(CongLam) error: %v", err)
	}
	if !Equal(m, Lam(Var(0))) || !Equal(n, Lam(Var(0))) {
		t.Errorf("Verify(CongLam) = (%v, %v), want (Lam(Var(0)), Lam(Var(0)))", m, n)
	}
}

func TestProveNormalizationScenarioB(t *testing.T) {
	// (\x.\y.x) a b normalizes to Var(0) via two BetaSteps chained under Trans.
	input := App(App(Lam(Lam(Var(1))), Var(0)), Var(1))
	proof, err := ProveNormalization(input, 0)
	if err != nil {
		t.Fatalf("ProveNormalization(%v) error: %v", input, err)
	}
	if proof.Kind != ProofTrans {
		t.Fatalf("ProveNormalization composite proof should be a Trans chain, got %v", proof.Kind)
	}
	a, b, err := Verify(proof)
	if err != nil {
		t.Fatalf("Verify(ProveNormalization(%v)) error: %v", input, err)
	}
	if !Equal(a, input) {
		t.Errorf("Verify returned A=%v, want %v", a, input)
	}
	if !Equal(b, Var(0)) {
		t.Errorf("Verify returned B=%v, want Var(0)", b)
	}
}

func TestProofCheckerWellFormedness(t *testing.T) {
	// Universal invariant #4: every proof built by the library's builders
	// verifies, and malformed proofs are rejected.
	redex := App(Lam(Var(0)), Var(1))
	beta, err := ProveBeta(redex)
	if err != nil {
		t.Fatalf("ProveBeta error: %v", err)
	}
	if _, _, err := Verify(beta); err != nil {
		t.Errorf("builder-produced proof failed to verify: %v", err)
	}

	malformed := &Proof{Kind: ProofBetaStep, Redex: redex, Contractum: Var(99)}
	if _, _, err := Verify(malformed); err == nil {
		t.Error("malformed BetaStep proof should be rejected")
	}
}
