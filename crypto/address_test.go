package crypto

import "testing"

func TestAddressBase58RoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i + 1)
	}
	priv, err := ParsePrivateKey(key[:])
	if err != nil {
		t.Fatal(err)
	}
	addr := priv.Address()
	s := String(addr)
	got, err := ParseAddressString(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Fatalf("round trip mismatch: got %x want %x", got, addr)
	}
}

func TestParseAddressStringRejectsBadChecksum(t *testing.T) {
	var key [32]byte
	key[0] = 1
	priv, _ := ParsePrivateKey(key[:])
	s := String(priv.Address())
	corrupted := s[:len(s)-1] + "x"
	if _, err := ParseAddressString(corrupted); err == nil {
		t.Fatal("expected checksum error")
	}
}
