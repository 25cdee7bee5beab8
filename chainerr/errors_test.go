package chainerr

import "testing"

func TestLeadsToBan(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{EPow, true},
		{EMerkleRoot, true},
		{EChecksum, false},
		{EEmpty, false},
		{EProbeDescriptorMismatch, false},
		{EBufferFull, false},
		{ENotFound, false},
		{ETimeout, false},
		{EMaxConnections, false},
		{EBug, false},
	}
	for _, c := range cases {
		if got := c.code.LeadsToBan(); got != c.want {
			t.Errorf("%s.LeadsToBan() = %v, want %v", c.code.Name(), got, c.want)
		}
	}
}

func TestBanSecondsMatchesOffense(t *testing.T) {
	if EPow.BanSeconds() == 0 {
		t.Fatal("EPow should carry a nonzero ban duration")
	}
	if EBufferFull.BanSeconds() != 0 {
		t.Fatal("EBufferFull is a local fault and must never ban")
	}
}

func TestHeightErrorUnwrap(t *testing.T) {
	err := NewHeightError(EMerkleRoot, 73)
	if err.Height != 73 {
		t.Fatalf("height = %d, want 73", err.Height)
	}
	var code Code
	if u, ok := err.Unwrap().(Code); !ok || u != EMerkleRoot {
		t.Fatalf("unwrap = %v, want %v", u, EMerkleRoot)
	} else {
		code = u
	}
	if code.Name() != "EMROOT" {
		t.Fatalf("name = %s, want EMROOT", code.Name())
	}
}

func TestInsufficientFundsAliasesBalance(t *testing.T) {
	if EInsufficientFunds != EBalance {
		t.Fatal("EInsufficientFunds must alias EBalance")
	}
}
