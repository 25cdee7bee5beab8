package primitives

import (
	"testing"

	"github.com/warthog-network/node/chaincfg/chainhash"
)

func TestGenesisTargetsReportEncoding(t *testing.T) {
	v1 := GenesisV1(0)
	if v1.IsV2() {
		t.Fatal("GenesisV1 must report v2=false")
	}
	v2 := GenesisV2(0)
	if !v2.IsV2() {
		t.Fatal("GenesisV2 must report v2=true")
	}
}

func TestCompatibleV1AllZeroHash(t *testing.T) {
	target := GenesisV1(8)
	var h chainhash.Hash // all-zero hash always satisfies any target
	if !target.Compatible(h) {
		t.Fatal("all-zero hash must be compatible with every target")
	}
}

func TestCompatibleV1RejectsTooHardHash(t *testing.T) {
	target := GenesisV1(8)
	h := chainhash.Hash{}
	for i := range h {
		h[i] = 0xff
	}
	if target.Compatible(h) {
		t.Fatal("all-ff hash must not be compatible with a nontrivial target")
	}
}

func TestCompatibleV2Symmetric(t *testing.T) {
	target := GenesisV2(10)
	var h chainhash.Hash
	if !target.Compatible(h) {
		t.Fatal("all-zero hash must satisfy a V2 target too")
	}
}

func TestScaleCapsToOneExponentStep(t *testing.T) {
	base := GenesisV1(16)
	harder := base.Scale(1, 1000, 0)
	if harder.v2 {
		t.Fatal("scale must preserve encoding")
	}
	baseZeros, _, _ := base.fields()
	newZeros, _, _ := harder.fields()
	if newZeros > baseZeros+1 {
		t.Fatalf("exponent increased by more than one step: %d -> %d", baseZeros, newZeros)
	}
}

func TestScaleFloorsAtGenesisExponent(t *testing.T) {
	base := GenesisV1(16)
	easier := base.Scale(1000, 1, 16)
	zeros, _, _ := easier.fields()
	if zeros < 16 {
		t.Fatalf("scale went below genesis floor: %d", zeros)
	}
}

func TestDifficultyIsPositive(t *testing.T) {
	if GenesisV1(16).Difficulty() <= 0 {
		t.Fatal("difficulty must be positive")
	}
	if GenesisV2(16).Difficulty() <= 0 {
		t.Fatal("difficulty must be positive")
	}
}

func TestForHeightSelectsEncoding(t *testing.T) {
	if ForHeight(999, 1000) {
		t.Fatal("height below activation must select V1")
	}
	if !ForHeight(1000, 1000) {
		t.Fatal("height at activation must select V2")
	}
}
