package crypto

import "testing"

func TestSignAndRecoverAddress(t *testing.T) {
	var key [32]byte
	key[0] = 7
	priv, err := ParsePrivateKey(key[:])
	if err != nil {
		t.Fatal(err)
	}
	var digest [32]byte
	digest[0] = 0xab
	sig := priv.Sign(digest)
	addr, err := RecoverAddress(sig, digest)
	if err != nil {
		t.Fatal(err)
	}
	if addr != priv.Address() {
		t.Fatalf("recovered address %x != signer address %x", addr, priv.Address())
	}
}

func TestRecoverFailsOnWrongDigest(t *testing.T) {
	var key [32]byte
	key[0] = 9
	priv, _ := ParsePrivateKey(key[:])
	var digest, other [32]byte
	digest[0] = 1
	other[0] = 2
	sig := priv.Sign(digest)
	addr, err := RecoverAddress(sig, other)
	if err == nil && addr == priv.Address() {
		t.Fatal("recovering with wrong digest must not yield the signer's address")
	}
}
