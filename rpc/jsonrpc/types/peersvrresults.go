// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// PeerResult models one entry of get_peers' response: a connected
// peer's connection id, address, and claimed chain state.
type PeerResult struct {
	ConnectionID uint64 `json:"connectionId"`
	Inbound      bool   `json:"inbound"`
	Address      string `json:"address"`
	Version      uint32 `json:"version"`
	ChainLength  uint32 `json:"chainLength"`
}

// GetPeersResult models the data returned by get_peers.
type GetPeersResult struct {
	Peers []PeerResult `json:"peers"`
}

// BannedEntryResult models one entry of get_banned's response.
type BannedEntryResult struct {
	IP       string `json:"ip"`
	BanUntil int64  `json:"banUntil"`
}

// GetBannedResult models the data returned by get_banned.
type GetBannedResult struct {
	Banned []BannedEntryResult `json:"banned"`
}

// UnbanResult models the (empty-on-success) response to unban.
type UnbanResult struct{}

// DisconnectResult models the (empty-on-success) response to
// disconnect.
type DisconnectResult struct{}
