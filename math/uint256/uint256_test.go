package uint256

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a := Uint256{}
	a.SetLimb(0, 100)
	b := Uint256{}
	b.SetLimb(0, 58)
	sum := a.Add(b)
	if sum.Limb(0) != 158 {
		t.Fatalf("sum limb0 = %d, want 158", sum.Limb(0))
	}
	back := sum.Sub(b)
	if back.Cmp(a) != 0 {
		t.Fatalf("sub did not invert add: got %v want %v", back, a)
	}
}

func TestCarryPropagation(t *testing.T) {
	a := Uint256{}
	a.SetLimb(0, 0xffffffff)
	one := Uint256{}
	one.SetLimb(0, 1)
	sum := a.Add(one)
	if sum.Limb(0) != 0 || sum.Limb(1) != 1 {
		t.Fatalf("carry did not propagate: %+v", sum)
	}
}

func TestCmpOrdering(t *testing.T) {
	small := Uint256{}
	small.SetLimb(0, 1)
	big := Uint256{}
	big.SetLimb(1, 1)
	if !small.Less(big) {
		t.Fatal("expected small < big")
	}
	if big.Less(small) {
		t.Fatal("expected big not< small")
	}
	if small.Cmp(small) != 0 {
		t.Fatal("expected equal to self")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	var b [32]byte
	for i := range b {
		b[i] = byte(i + 1)
	}
	u := FromBytes(b)
	got := u.Bytes()
	if got != b {
		t.Fatalf("round trip mismatch: got %x want %x", got, b)
	}
}

func TestMaxIsGreatest(t *testing.T) {
	m := Max()
	one := Uint256{}
	one.SetLimb(0, 1)
	if !one.Less(m) {
		t.Fatal("expected 1 < Max()")
	}
}
