package chainhash

import "testing"

func TestHashRoundTrip(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = byte(i)
	}
	s := h.String()
	got, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %x want %x", got, h)
	}
}

func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatal("zero hash reported non-zero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Fatal("non-zero hash reported zero")
	}
}

func TestNewHashBadLength(t *testing.T) {
	if _, err := NewHash([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short slice")
	}
}
