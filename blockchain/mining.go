// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"crypto/rand"
	"time"

	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/internal/staging/primitives"
)

// maxTemplateTransfers bounds how many mempool transfers get_mining
// will ever pack into a single template, independent of block size
// limits enforced later at append time.
const maxTemplateTransfers = 2000

// MiningTemplate is what get_mining hands to an external miner: a
// header missing only its nonce, the body it commits to, and the
// target the solved header must satisfy.
type MiningTemplate struct {
	Height primitives.Height
	Header primitives.Header
	Body   primitives.Body
	Target primitives.Target
}

// GetMining builds a block template paying the reward to address. The
// caller (an external miner) fills in a nonce and proof-of-work-
// satisfying value before calling AppendMined.
func (e *Engine) GetMining(address primitives.Address) (*MiningTemplate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	height := e.consensus.length() + 1
	target := nextTarget(&e.consensus, e.params)

	var prevHash chainhash.Hash
	if last, ok := e.consensus.headerAt(e.consensus.length()); ok {
		prevHash = identityHash(last)
	}

	now := uint32(time.Now().Unix())
	var minTimestamp uint32
	if last, ok := e.consensus.headerAt(e.consensus.length()); ok {
		minTimestamp = last.Timestamp + 1
	}
	timestamp := now
	if timestamp < minTimestamp {
		timestamp = minTimestamp
	}

	body := primitives.Body{}
	if _, err := rand.Read(body.RandomSeed[:]); err != nil {
		// crypto/rand failing means the platform's CSPRNG is broken;
		// fall back to a timestamp-derived seed rather than failing
		// the whole template.
		body.RandomSeed = [4]byte{byte(now), byte(now >> 8), byte(now >> 16), byte(now >> 24)}
	}

	rewardAccount, found := e.accounts.lookup(address)
	if !found {
		rewardAccount = e.accounts.next
		body.NewAccounts = append(body.NewAccounts, address)
	}
	body.Rewards = append(body.Rewards, primitives.RewardTx{ToAccount: rewardAccount, Amount: blockSubsidy(height)})

	body.Transfers = e.assembleTemplateTransfers()

	header := primitives.Header{
		Version:    1,
		PrevHash:   prevHash,
		Timestamp:  timestamp,
		TargetBits: target.Bytes(),
	}
	header.MerkleRoot = body.MerkleRoot(chainhash.HashFunc)

	return &MiningTemplate{Height: height, Header: header, Body: body, Target: target}, nil
}

// assembleTemplateTransfers greedily packs mempool transfers by fee,
// skipping any that would overdraw an account once earlier selections
// in the same template are accounted for.
func (e *Engine) assembleTemplateTransfers() []primitives.TransferTx {
	candidates := e.mempool.Top(maxTemplateTransfers)
	spent := make(map[primitives.AccountId]uint64)
	out := make([]primitives.TransferTx, 0, len(candidates))
	for _, tx := range candidates {
		from, ok := e.accounts.get(tx.Id.AccountId)
		if !ok {
			continue
		}
		total := tx.Amount + tx.Fee
		if from.balance < spent[tx.Id.AccountId]+total {
			continue
		}
		spent[tx.Id.AccountId] += total
		out = append(out, tx)
	}
	return out
}
