// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// GetPeersCmd defines the get_peers JSON-RPC command.
type GetPeersCmd struct{}

// NewGetPeersCmd returns a new instance which can be used to issue a
// get_peers JSON-RPC command.
func NewGetPeersCmd() *GetPeersCmd { return &GetPeersCmd{} }

// GetBannedCmd defines the get_banned JSON-RPC command.
type GetBannedCmd struct{}

// NewGetBannedCmd returns a new instance which can be used to issue a
// get_banned JSON-RPC command.
func NewGetBannedCmd() *GetBannedCmd { return &GetBannedCmd{} }

// UnbanCmd defines the unban JSON-RPC command.
type UnbanCmd struct {
	IP string `json:"ip"`
}

// NewUnbanCmd returns a new instance which can be used to issue an
// unban JSON-RPC command.
func NewUnbanCmd(ip string) *UnbanCmd {
	return &UnbanCmd{IP: ip}
}

// DisconnectCmd defines the disconnect JSON-RPC command.
type DisconnectCmd struct {
	ConnectionID uint64 `json:"connectionId"`
}

// NewDisconnectCmd returns a new instance which can be used to issue a
// disconnect JSON-RPC command.
func NewDisconnectCmd(connectionID uint64) *DisconnectCmd {
	return &DisconnectCmd{ConnectionID: connectionID}
}

// MiningSubscribeCmd defines the mining.subscribe JSON-RPC command
// (spec §6.2): the Stratum server (external) uses this to register for
// a push notification whenever consensus advances or a mempool change
// affects the block template for Address.
type MiningSubscribeCmd struct {
	Address string `json:"address"`
}

// NewMiningSubscribeCmd returns a new instance which can be used to
// issue a mining.subscribe JSON-RPC command.
func NewMiningSubscribeCmd(address string) *MiningSubscribeCmd {
	return &MiningSubscribeCmd{Address: address}
}
