package substrate

import "github.com/latticevm/substrate/internal/substrate/kernel"

// Proof is a closed proof term witnessing one reduction step or a bounded
// normalization sequence in the λ-kernel.
type Proof = kernel.Proof

// Term is a De Bruijn-indexed λ-calculus term.
type Term = kernel.Term

// Verify checks a Proof against the closed proof-term algebra, returning
// the terms it proves equal (its endpoints) or an error if the proof is
// malformed. Re-exports kernel.Verify at the public boundary.
func Verify(p *Proof) (before, after *Term, err error) {
	return kernel.Verify(p)
}

// ProveNormalization proves that t normalizes to its normal form within
// stepLimit reduction steps, re-exporting kernel.ProveNormalization.
func ProveNormalization(t *Term, stepLimit int) (*Proof, error) {
	return kernel.ProveNormalization(t, stepLimit)
}
