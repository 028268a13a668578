package memory

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// ContentDigest fingerprints the live (allocated, below next_free) region of
// an arena. It is not a cryptographic commitment; it exists so the
// scheduler's defragmentation telemetry can cheaply tell whether a
// compaction actually changed heap contents, using the same
// absorb-then-squeeze shape as a Fiat-Shamir transcript channel,
// repurposed here for a heap snapshot instead of a proof transcript.
func ContentDigest(a *Arena) [32]byte {
	h := sha3.New256()
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], a.nextFree)
	h.Write(lenBuf[:])
	h.Write(a.storage[:a.nextFree])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
