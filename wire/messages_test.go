// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

func sampleHeader() primitives.Header {
	return primitives.Header{
		Version:    1,
		PrevHash:   chainhash.Hash{1, 2, 3},
		MerkleRoot: chainhash.Hash{4, 5, 6},
		Timestamp:  1700000000,
		TargetBits: [4]byte{0x1d, 0x00, 0xff, 0xff},
		Nonce:      99,
	}
}

// TestMessageRoundTrip exercises spec §8 invariant 4/5-style byte round
// trips for every wire message kind: Encode then Decode must reproduce
// the original value exactly.
func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Message
	}{
		{
			name: "init",
			msg: &MsgInit{
				Version: 7, ChainLength: 1234, Worksum: [32]byte{9, 9, 9},
				Grid: primitives.Grid{chainhash.Hash{1}, chainhash.Hash{2}},
				PinHeight: 1200, PinHash: chainhash.Hash{7}, ListenPort: 8733,
			},
			want: &MsgInit{},
		},
		{
			name: "append",
			msg: &MsgAppend{Height: 55, Header: sampleHeader(), WorksumDelta: [32]byte{1},
				GridDelta: primitives.Grid{chainhash.Hash{3}}},
			want: &MsgAppend{},
		},
		{
			name: "fork",
			msg: &MsgFork{ForkHeight: 10, Worksum: [32]byte{2}, NewHead: sampleHeader(),
				GridSuffix: primitives.Grid{chainhash.Hash{5}, chainhash.Hash{6}}},
			want: &MsgFork{},
		},
		{
			name: "signedpinrollback",
			msg: &MsgSignedPinRollback{
				Snapshot:     SignedSnapshot{Height: 5, Hash: chainhash.Hash{1}, Priority: 3, Signature: primitives.Signature{1, 2, 3}},
				ShrinkLength: 4,
			},
			want: &MsgSignedPinRollback{},
		},
		{
			name: "leader",
			msg:  &MsgLeader{Snapshot: SignedSnapshot{Height: 9, Priority: 99}},
			want: &MsgLeader{},
		},
		{
			name: "batchreq",
			msg:  &MsgBatchReq{Nonce: 42, Selector: Selector{Descriptor: 1, StartHeight: 100, Length: 100}},
			want: &MsgBatchReq{},
		},
		{
			name: "batchrep",
			msg:  &MsgBatchRep{Nonce: 42, Headers: []primitives.Header{sampleHeader(), sampleHeader()}},
			want: &MsgBatchRep{},
		},
		{
			name: "probereq",
			msg:  &MsgProbeReq{Nonce: 1, Descriptor: 2, Height: 3},
			want: &MsgProbeReq{},
		},
		{
			name: "proberep-both",
			msg:  &MsgProbeRep{Nonce: 1, HasReq: true, Requested: sampleHeader(), HasCurrent: true, Current: sampleHeader()},
			want: &MsgProbeRep{},
		},
		{
			name: "proberep-neither",
			msg:  &MsgProbeRep{Nonce: 1},
			want: &MsgProbeRep{},
		},
		{
			name: "blockreq",
			msg:  &MsgBlockReq{Nonce: 9, Selector: Selector{Descriptor: 3, StartHeight: 1, Length: 50}},
			want: &MsgBlockReq{},
		},
		{
			name: "blockrep",
			msg: &MsgBlockRep{Nonce: 9, Bodies: []EncodedBody{
				{
					RandomSeed:  [4]byte{1, 2, 3, 4},
					NewAccounts: []primitives.Address{{1}, {2}},
					Rewards:     []primitives.RewardTx{{ToAccount: 1, Amount: 5000}},
					Transfers: []primitives.TransferTx{{
						Id:        primitives.TxId{AccountId: 1, PinHeight: 10, NonceId: 0},
						ToAccount: 2, Amount: 100, Fee: 1, PinHash: chainhash.Hash{1},
					}},
					TokenActions: []primitives.TokenAction{{Kind: primitives.TokenActionMint, Account: 3, Payload: []byte{1, 2, 3}}},
				},
			}},
			want: &MsgBlockRep{},
		},
		{
			name: "ping",
			msg:  &MsgPing{Nonce: 1, SnapshotPrio: 2, MaxAddresses: 3, MaxTransaction: 4},
			want: &MsgPing{},
		},
		{
			name: "pong",
			msg: &MsgPong{Nonce: 1, Addresses: []string{"10.0.0.1:8733", "10.0.0.2:8733"},
				TxIds: []primitives.TxId{{AccountId: 1, PinHeight: 2, NonceId: 3}}},
			want: &MsgPong{},
		},
		{
			name: "txnotify",
			msg:  &MsgTxNotify{TxIds: []primitives.TxId{{AccountId: 7, PinHeight: 8, NonceId: 9}}},
			want: &MsgTxNotify{},
		},
		{
			name: "txreq",
			msg:  &MsgTxReq{TxIds: []primitives.TxId{{AccountId: 1, PinHeight: 1, NonceId: 1}}},
			want: &MsgTxReq{},
		},
		{
			name: "txrep",
			msg: &MsgTxRep{Transfers: []primitives.TransferTx{{
				Id: primitives.TxId{AccountId: 4, PinHeight: 5, NonceId: 6}, ToAccount: 7, Amount: 8, Fee: 1,
			}}},
			want: &MsgTxRep{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.msg.Encode(&buf); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if err := tc.want.Decode(&buf); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if buf.Len() != 0 {
				t.Fatalf("%d trailing bytes after Decode", buf.Len())
			}
			if !messagesEqual(tc.msg, tc.want) {
				t.Fatalf("round trip mismatch:\ngot  %s\nwant %s", spew.Sdump(tc.want), spew.Sdump(tc.msg))
			}
		})
	}
}

// messagesEqual compares via spew.Sdump since several message types
// hold slices/maps that don't support ==.
func messagesEqual(a, b Message) bool {
	return spew.Sdump(a) == spew.Sdump(b)
}

func TestTypeCodeRoundTrip(t *testing.T) {
	for _, cmd := range commandOrder {
		hi, lo, err := TypeCode(cmd)
		if err != nil {
			t.Fatalf("TypeCode(%s): %v", cmd, err)
		}
		got, err := CommandForTypeCode(hi, lo)
		if err != nil {
			t.Fatalf("CommandForTypeCode: %v", err)
		}
		if got != cmd {
			t.Fatalf("got %s want %s", got, cmd)
		}
	}
}

func TestCommandForTypeCodeRejectsNonzeroHi(t *testing.T) {
	if _, err := CommandForTypeCode(1, 0); err == nil {
		t.Fatal("expected error for nonzero typeHi")
	}
}

func TestNewUnknownCommand(t *testing.T) {
	if New("bogus") != nil {
		t.Fatal("expected nil for unknown command")
	}
}
