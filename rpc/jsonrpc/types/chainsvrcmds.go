// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// GetHeaderCmd defines the get_header JSON-RPC command (spec §6.2). At
// most one of Height/Hash should be set; a router resolves "heightOrHash"
// string input into whichever field applies before constructing this.
type GetHeaderCmd struct {
	Height *uint32 `json:"height,omitempty"`
	Hash   *string `json:"hash,omitempty"`
}

// NewGetHeaderCmd returns a new instance which can be used to issue a
// get_header JSON-RPC command.
func NewGetHeaderCmd(height *uint32, hash *string) *GetHeaderCmd {
	return &GetHeaderCmd{Height: height, Hash: hash}
}

// GetHashCmd defines the get_hash JSON-RPC command.
type GetHashCmd struct {
	Height uint32 `json:"height"`
}

// NewGetHashCmd returns a new instance which can be used to issue a
// get_hash JSON-RPC command.
func NewGetHashCmd(height uint32) *GetHashCmd {
	return &GetHashCmd{Height: height}
}

// GetBlockCmd defines the get_block JSON-RPC command.
type GetBlockCmd struct {
	Height *uint32 `json:"height,omitempty"`
	Hash   *string `json:"hash,omitempty"`
}

// NewGetBlockCmd returns a new instance which can be used to issue a
// get_block JSON-RPC command.
func NewGetBlockCmd(height *uint32, hash *string) *GetBlockCmd {
	return &GetBlockCmd{Height: height, Hash: hash}
}

// GetGridCmd defines the get_grid JSON-RPC command.
type GetGridCmd struct{}

// NewGetGridCmd returns a new instance which can be used to issue a
// get_grid JSON-RPC command.
func NewGetGridCmd() *GetGridCmd { return &GetGridCmd{} }

// GetMiningCmd defines the get_mining JSON-RPC command.
type GetMiningCmd struct {
	Address string `json:"address"`
}

// NewGetMiningCmd returns a new instance which can be used to issue a
// get_mining JSON-RPC command.
func NewGetMiningCmd(address string) *GetMiningCmd {
	return &GetMiningCmd{Address: address}
}

// SubmitBlockCmd defines the submit_block JSON-RPC command. Block is
// the hex-encoded wire serialization of a primitives.Block.
type SubmitBlockCmd struct {
	Block string `json:"block"`
}

// NewSubmitBlockCmd returns a new instance which can be used to issue a
// submit_block JSON-RPC command.
func NewSubmitBlockCmd(block string) *SubmitBlockCmd {
	return &SubmitBlockCmd{Block: block}
}

// GetSignedSnapshotCmd defines the get_signed_snapshot JSON-RPC command.
type GetSignedSnapshotCmd struct{}

// NewGetSignedSnapshotCmd returns a new instance which can be used to
// issue a get_signed_snapshot JSON-RPC command.
func NewGetSignedSnapshotCmd() *GetSignedSnapshotCmd { return &GetSignedSnapshotCmd{} }

// GetTxCacheCmd defines the get_txcache JSON-RPC command.
type GetTxCacheCmd struct{}

// NewGetTxCacheCmd returns a new instance which can be used to issue a
// get_txcache JSON-RPC command.
func NewGetTxCacheCmd() *GetTxCacheCmd { return &GetTxCacheCmd{} }

// GetHashrateCmd defines the get_hashrate JSON-RPC command: estimated
// network hashrate computed over the trailing N blocks.
type GetHashrateCmd struct {
	N uint32 `json:"n"`
}

// NewGetHashrateCmd returns a new instance which can be used to issue a
// get_hashrate JSON-RPC command.
func NewGetHashrateCmd(n uint32) *GetHashrateCmd {
	return &GetHashrateCmd{N: n}
}

// GetBalanceCmd defines the get_balance JSON-RPC command. Exactly one
// of Account/Address identifies the account being queried.
type GetBalanceCmd struct {
	Account *uint64 `json:"account,omitempty"`
	Address *string `json:"address,omitempty"`
}

// NewGetBalanceCmd returns a new instance which can be used to issue a
// get_balance JSON-RPC command.
func NewGetBalanceCmd(account *uint64, address *string) *GetBalanceCmd {
	return &GetBalanceCmd{Account: account, Address: address}
}

// GetHistoryCmd defines the get_history JSON-RPC command.
type GetHistoryCmd struct {
	Address      string `json:"address"`
	BeforeTxIndex uint64 `json:"beforeTxIndex,omitempty"`
}

// NewGetHistoryCmd returns a new instance which can be used to issue a
// get_history JSON-RPC command.
func NewGetHistoryCmd(address string, beforeTxIndex uint64) *GetHistoryCmd {
	return &GetHistoryCmd{Address: address, BeforeTxIndex: beforeTxIndex}
}

// GetRichlistCmd defines the get_richlist JSON-RPC command.
type GetRichlistCmd struct {
	Limit int `json:"limit,omitempty"`
}

// NewGetRichlistCmd returns a new instance which can be used to issue a
// get_richlist JSON-RPC command.
func NewGetRichlistCmd(limit int) *GetRichlistCmd {
	return &GetRichlistCmd{Limit: limit}
}

// PutMempoolCmd defines the put_mempool JSON-RPC command. TxBytes is
// the hex-encoded wire serialization of a primitives.TransferTx.
type PutMempoolCmd struct {
	TxBytes string `json:"txBytes"`
}

// NewPutMempoolCmd returns a new instance which can be used to issue a
// put_mempool JSON-RPC command.
func NewPutMempoolCmd(txBytes string) *PutMempoolCmd {
	return &PutMempoolCmd{TxBytes: txBytes}
}

// GetMempoolCmd defines the get_mempool JSON-RPC command.
type GetMempoolCmd struct {
	Limit int `json:"limit,omitempty"`
}

// NewGetMempoolCmd returns a new instance which can be used to issue a
// get_mempool JSON-RPC command.
func NewGetMempoolCmd(limit int) *GetMempoolCmd {
	return &GetMempoolCmd{Limit: limit}
}

// LookupTxCmd defines the lookup_tx JSON-RPC command.
type LookupTxCmd struct {
	Hash string `json:"hash"`
}

// NewLookupTxCmd returns a new instance which can be used to issue a
// lookup_tx JSON-RPC command.
func NewLookupTxCmd(hash string) *LookupTxCmd {
	return &LookupTxCmd{Hash: hash}
}
