package capability

import "testing"

func TestCapabilityEqual(t *testing.T) {
	t.Run("same kind no payload", func(t *testing.T) {
		a := Capability{Kind: IoNetwork}
		b := Capability{Kind: IoNetwork}
		if !a.Equal(b) {
			t.Fatalf("expected equal")
		}
	})
	t.Run("resource variant compares payload", func(t *testing.T) {
		a := Capability{Kind: ResourceExtraMemory, Payload: 1024}
		b := Capability{Kind: ResourceExtraMemory, Payload: 2048}
		if a.Equal(b) {
			t.Fatalf("expected unequal for differing payloads")
		}
		c := Capability{Kind: ResourceExtraMemory, Payload: 1024}
		if !a.Equal(c) {
			t.Fatalf("expected equal for matching payloads")
		}
	})
	t.Run("different kind never equal", func(t *testing.T) {
		a := Capability{Kind: IoNetwork}
		b := Capability{Kind: IoPersist}
		if a.Equal(b) {
			t.Fatalf("expected unequal")
		}
	})
}

func TestCapabilityWireRoundTrip(t *testing.T) {
	cases := []Capability{
		{Kind: MetaSelfModify},
		{Kind: SysClock},
		{Kind: ResourceExtraMemory, Payload: 0xdeadbeef},
		{Kind: ResourceExtraTime, Payload: 1},
	}
	for _, c := range cases {
		encoded := EncodeCapability(c)
		decoded, n, err := DecodeCapability(encoded)
		if err != nil {
			t.Fatalf("decode error for %v: %v", c, err)
		}
		if n != len(encoded) {
			t.Fatalf("consumed %d bytes, expected %d", n, len(encoded))
		}
		if !decoded.Equal(c) {
			t.Fatalf("round trip mismatch: got %v, want %v", decoded, c)
		}
	}
}

func TestDecodeCapabilityRejectsTruncatedAndUnknown(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, _, err := DecodeCapability(nil); err == nil {
			t.Fatalf("expected error on empty input")
		}
	})
	t.Run("truncated payload", func(t *testing.T) {
		data := []byte{byte(ResourceExtraMemory), 1, 2, 3}
		if _, _, err := DecodeCapability(data); err == nil {
			t.Fatalf("expected error on truncated payload")
		}
	})
	t.Run("unknown kind", func(t *testing.T) {
		data := []byte{255}
		if _, _, err := DecodeCapability(data); err == nil {
			t.Fatalf("expected error on unknown kind")
		}
	})
}
