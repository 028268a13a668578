package kernel

import (
	"encoding/binary"
	"fmt"
)

// Term wire tags. Distinct namespace from the proof tags below; a decoder
// always knows from context whether it is reading a Term or a Proof.
const (
	termTagVar byte = 0x00
	termTagLam byte = 0x01
	termTagApp byte = 0x02
)

// Proof wire tags, per the external wire format: a prefix byte followed by
// the constructor's sub-terms/sub-proofs in order.
const (
	proofTagBetaStep byte = 0x01
	proofTagEtaStep  byte = 0x02
	proofTagRefl     byte = 0x03
	proofTagSym      byte = 0x04
	proofTagTrans    byte = 0x05
	proofTagCongApp  byte = 0x06
	proofTagCongLam  byte = 0x07
)

// EncodeTerm serializes t recursively: a tag byte, and for a variable a
// 4-byte little-endian index, for a lambda one nested term, for an
// application two nested terms.
func EncodeTerm(t *Term) []byte {
	switch t.Kind {
	case KindVar:
		buf := make([]byte, 5)
		buf[0] = termTagVar
		binary.LittleEndian.PutUint32(buf[1:], t.Index)
		return buf
	case KindLam:
		buf := []byte{termTagLam}
		return append(buf, EncodeTerm(t.Body)...)
	case KindApp:
		buf := []byte{termTagApp}
		buf = append(buf, EncodeTerm(t.Fun)...)
		buf = append(buf, EncodeTerm(t.Arg)...)
		return buf
	default:
		panic(fmt.Sprintf("kernel: EncodeTerm: unknown term kind %v", t.Kind))
	}
}

// DecodeTerm reads a term from the front of data and returns it along with
// the number of bytes consumed.
func DecodeTerm(data []byte) (*Term, int, error) {
	if len(data) == 0 {
		return nil, 0, &Error{Kind: ErrInvalidBetaStep, Message: "DecodeTerm: empty input"}
	}
	switch data[0] {
	case termTagVar:
		if len(data) < 5 {
			return nil, 0, &Error{Kind: ErrInvalidBetaStep, Message: "DecodeTerm: truncated variable index"}
		}
		return Var(binary.LittleEndian.Uint32(data[1:5])), 5, nil
	case termTagLam:
		body, n, err := DecodeTerm(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return Lam(body), 1 + n, nil
	case termTagApp:
		fn, n1, err := DecodeTerm(data[1:])
		if err != nil {
			return nil, 0, err
		}
		arg, n2, err := DecodeTerm(data[1+n1:])
		if err != nil {
			return nil, 0, err
		}
		return App(fn, arg), 1 + n1 + n2, nil
	default:
		return nil, 0, &Error{Kind: ErrInvalidBetaStep, Message: fmt.Sprintf("DecodeTerm: unknown term tag 0x%02x", data[0])}
	}
}

// EncodeProof serializes a proof tree using a tagged prefix encoding.
func EncodeProof(p *Proof) []byte {
	switch p.Kind {
	case ProofBetaStep:
		buf := []byte{proofTagBetaStep}
		buf = append(buf, EncodeTerm(p.Redex)...)
		buf = append(buf, EncodeTerm(p.Contractum)...)
		return buf
	case ProofEtaStep:
		buf := []byte{proofTagEtaStep}
		buf = append(buf, EncodeTerm(p.Redex)...)
		buf = append(buf, EncodeTerm(p.Contractum)...)
		return buf
	case ProofRefl:
		buf := []byte{proofTagRefl}
		return append(buf, EncodeTerm(p.Term)...)
	case ProofSym:
		buf := []byte{proofTagSym}
		return append(buf, EncodeProof(p.P)...)
	case ProofTrans:
		buf := []byte{proofTagTrans}
		buf = append(buf, EncodeProof(p.P)...)
		buf = append(buf, EncodeProof(p.Q)...)
		return buf
	case ProofCongApp:
		buf := []byte{proofTagCongApp}
		buf = append(buf, EncodeProof(p.P)...)
		buf = append(buf, EncodeProof(p.Q)...)
		return buf
	case ProofCongLam:
		buf := []byte{proofTagCongLam}
		return append(buf, EncodeProof(p.P)...)
	default:
		panic(fmt.Sprintf("kernel: EncodeProof: unknown proof kind %v", p.Kind))
	}
}

// DecodeProof reads a proof from the front of data and returns it along
// with the number of bytes consumed.
func DecodeProof(data []byte) (*Proof, int, error) {
	if len(data) == 0 {
		return nil, 0, &Error{Kind: ErrInvalidBetaStep, Message: "DecodeProof: empty input"}
	}
	switch data[0] {
	case proofTagBetaStep, proofTagEtaStep:
		redex, n1, err := DecodeTerm(data[1:])
		if err != nil {
			return nil, 0, err
		}
		contractum, n2, err := DecodeTerm(data[1+n1:])
		if err != nil {
			return nil, 0, err
		}
		kind := ProofBetaStep
		if data[0] == proofTagEtaStep {
			kind = ProofEtaStep
		}
		return &Proof{Kind: kind, Redex: redex, Contractum: contractum}, 1 + n1 + n2, nil
	case proofTagRefl:
		term, n, err := DecodeTerm(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return &Proof{Kind: ProofRefl, Term: term}, 1 + n, nil
	case proofTagSym:
		sub, n, err := DecodeProof(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return &Proof{Kind: ProofSym, P: sub}, 1 + n, nil
	case proofTagTrans, proofTagCongApp:
		left, n1, err := DecodeProof(data[1:])
		if err != nil {
			return nil, 0, err
		}
		right, n2, err := DecodeProof(data[1+n1:])
		if err != nil {
			return nil, 0, err
		}
		kind := ProofTrans
		if data[0] == proofTagCongApp {
			kind = ProofCongApp
		}
		return &Proof{Kind: kind, P: left, Q: right}, 1 + n1 + n2, nil
	case proofTagCongLam:
		sub, n, err := DecodeProof(data[1:])
		if err != nil {
			return nil, 0, err
		}
		return &Proof{Kind: ProofCongLam, P: sub}, 1 + n, nil
	default:
		return nil, 0, &Error{Kind: ErrInvalidBetaStep, Message: fmt.Sprintf("DecodeProof: unknown proof tag 0x%02x", data[0])}
	}
}
