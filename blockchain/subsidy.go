// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/warthog-network/node/internal/staging/primitives"

// baseSubsidy and halvingInterval follow the same halving-schedule
// shape as the teacher's calcBlockSubsidy (blockchain/subsidy.go),
// adapted from a UTXO coinbase amount to a single reward-transaction
// amount credited directly to the miner's account (spec §3 Body
// RewardTx, §4.1 get_mining "reward to address").
const (
	baseSubsidy     = 50 * 1e8 // 50 coins, 1e8 smallest units
	halvingInterval = 210_000
)

// blockSubsidy returns the reward amount for height, halving every
// halvingInterval blocks until it reaches zero.
func blockSubsidy(height primitives.Height) uint64 {
	halvings := uint64(height) / halvingInterval
	if halvings >= 64 {
		return 0
	}
	return baseSubsidy >> halvings
}
