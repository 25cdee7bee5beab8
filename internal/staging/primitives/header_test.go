package primitives

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/warthog-network/node/chaincfg/chainhash"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:    1,
		PrevHash:   chainhash.Hash{1, 2, 3},
		MerkleRoot: chainhash.Hash{4, 5, 6},
		Timestamp:  1234567890,
		TargetBits: [4]byte{0x1d, 0x00, 0xff, 0xff},
		Nonce:      42,
	}
	b := h.Serialize()
	if len(b) != HeaderSize {
		t.Fatalf("serialized header must be %d bytes, got %d", HeaderSize, len(b))
	}
	got, err := ParseHeader(b[:])
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %v want %v", spew.Sdump(got), spew.Sdump(h))
	}
}

func TestParseHeaderRejectsWrongLength(t *testing.T) {
	if _, err := ParseHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestWorksumMonotonicOnAdd(t *testing.T) {
	target := GenesisV1(16)
	w := Zero()
	w2 := w.AddHeader(target)
	if !w2.GreaterThan(w) {
		t.Fatal("adding any header's work must strictly increase the worksum")
	}
	w3 := w2.Sub(target)
	if w3.Cmp(w) != 0 {
		t.Fatal("Sub must reverse AddHeader exactly")
	}
}

func TestMerkleRootDeterministic(t *testing.T) {
	hash := func(b []byte) chainhash.Hash {
		var h chainhash.Hash
		copy(h[:], b)
		return h
	}
	body := Body{
		RandomSeed: [4]byte{1, 2, 3, 4},
		Rewards:    []RewardTx{{ToAccount: 1, Amount: 100}},
	}
	r1 := body.MerkleRoot(hash)
	r2 := body.MerkleRoot(hash)
	if r1 != r2 {
		t.Fatal("merkle root must be deterministic")
	}
}
