package addrmgr

import (
	"testing"

	"github.com/warthog-network/node/chainerr"
)

func TestOffendBansForBannableCode(t *testing.T) {
	ps, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ps.IsBanned("203.0.113.5") {
		t.Fatal("must not be banned before any offense")
	}
	if err := ps.Offend("203.0.113.5", chainerr.EPow); err != nil {
		t.Fatal(err)
	}
	if !ps.IsBanned("203.0.113.5") {
		t.Fatal("EPow must lead to a ban")
	}
}

func TestOffendDoesNotBanZeroBanCode(t *testing.T) {
	ps, _ := New(nil)
	if err := ps.Offend("203.0.113.6", chainerr.ENotFound); err != nil {
		t.Fatal(err)
	}
	if ps.IsBanned("203.0.113.6") {
		t.Fatal("ENotFound must never ban")
	}
}

func TestUnbanClearsBan(t *testing.T) {
	ps, _ := New(nil)
	ps.Offend("203.0.113.7", chainerr.EMerkleRoot)
	if !ps.IsBanned("203.0.113.7") {
		t.Fatal("expected ban")
	}
	if err := ps.Unban("203.0.113.7"); err != nil {
		t.Fatal(err)
	}
	if ps.IsBanned("203.0.113.7") {
		t.Fatal("expected unban to clear ban status")
	}
}
