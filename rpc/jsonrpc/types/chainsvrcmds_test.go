// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import "testing"

func TestNewGetHeaderCmd(t *testing.T) {
	height := uint32(5)
	cmd := NewGetHeaderCmd(&height, nil)
	if cmd.Height == nil || *cmd.Height != 5 {
		t.Fatalf("expected height 5, got %v", cmd.Height)
	}
	if cmd.Hash != nil {
		t.Fatalf("expected nil hash, got %v", cmd.Hash)
	}
}

func TestNewGetHistoryCmd(t *testing.T) {
	cmd := NewGetHistoryCmd("abc123", 42)
	if cmd.Address != "abc123" || cmd.BeforeTxIndex != 42 {
		t.Fatalf("unexpected cmd: %+v", cmd)
	}
}

func TestNewMiningSubscribeCmd(t *testing.T) {
	cmd := NewMiningSubscribeCmd("addr")
	if cmd.Address != "addr" {
		t.Fatalf("unexpected cmd: %+v", cmd)
	}
}
