// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/warthog-network/node/chaincfg"
	"github.com/warthog-network/node/chaincfg/chainhash"
	"github.com/warthog-network/node/chainerr"
	"github.com/warthog-network/node/crypto"
	"github.com/warthog-network/node/database"
	"github.com/warthog-network/node/internal/staging/primitives"
	"github.com/warthog-network/node/mempool"
	"github.com/warthog-network/node/wire"
)

// log is the CHNE-tagged logger every Engine method writes through.
var log = slog.Disabled

// UseLogger sets the logger used by the package-level code.
func UseLogger(logger slog.Logger) { log = logger }

// AppendEvent is emitted on a successful append_mined or as the tail
// event of a successful apply_stage; Orchestrator forwards it to every
// initialized peer as an Append message.
type AppendEvent struct {
	Height       primitives.Height
	Header       primitives.Header
	WorksumDelta primitives.Worksum
	GridDelta    primitives.Grid
}

// ForkEvent is emitted when apply_stage moves consensus onto a
// different chain than the one it replaces.
type ForkEvent struct {
	ForkHeight primitives.Height
	Worksum    primitives.Worksum
	NewHead    primitives.Header
	GridSuffix primitives.Grid
}

// StateUpdate bundles everything Orchestrator needs after a mutation:
// which event to broadcast, and the set of transactions that
// re-entered (or left) the mempool as a side effect.
type StateUpdate struct {
	Append        *AppendEvent
	Fork          *ForkEvent
	RemovedMined  []primitives.TxId
	ReenteredPool []primitives.TransferTx
}

// Engine is ChainEngine: the actor owning the canonical chain, the
// stage chain, the mempool, and the replay cache. Every exported
// method is meant to be called from a single goroutine (Orchestrator's
// event loop); the internal mutex only guards against accidental
// concurrent use from tests or API readers.
type Engine struct {
	mu sync.Mutex

	params *chaincfg.Params
	hasher primitives.PowHasher
	db     *database.DB

	state ChainState

	consensus headerChain
	bodies    []primitives.Body
	accounts  *accountTable
	history   map[primitives.AccountId][]historyEntry
	undos     map[primitives.Height]undoEntry

	mempool *mempool.Mempool
	replay  *mempool.ReplayCache

	stage           headerChain
	stageBodies     []primitives.Body
	stageForkHeight primitives.Height

	snapshot         *wire.SignedSnapshot
	snapshotPriority uint64

	// invalidationToken bumps on every mutation; internal/mining's
	// template cache stores the token it was built against and
	// rebuilds on mismatch instead of tracking separate dirty flags.
	invalidationToken uint64
}

// New constructs an empty Engine at height 0 (genesis reference
// point). db may be nil for a pure in-memory engine (tests).
func New(params *chaincfg.Params, hasher primitives.PowHasher, db *database.DB) *Engine {
	return &Engine{
		params:   params,
		hasher:   hasher,
		db:       db,
		accounts: newAccountTable(),
		history:  make(map[primitives.AccountId][]historyEntry),
		undos:    make(map[primitives.Height]undoEntry),
		mempool:  mempool.New(),
		replay:   mempool.NewReplayCache(),
	}
}

// State reports the engine's current state-machine value.
func (e *Engine) State() ChainState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// InvalidationToken returns the current mutation token (internal/mining
// cache validity check).
func (e *Engine) InvalidationToken() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invalidationToken
}

func (e *Engine) bumpToken() { e.invalidationToken++ }

// pinWindowStart returns the lowest height still inside the replay
// window for a chain of the given length.
func (e *Engine) pinWindowStart(length primitives.Height) primitives.Height {
	window := primitives.Height(e.params.PinWindow)
	if length < window {
		return 1
	}
	return length - window + 1
}

// ---- append_mined ----

// AppendMined validates and applies a single externally-mined block
// on top of the current consensus tip.
func (e *Engine) AppendMined(block primitives.Block) (*StateUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wantHeight := e.consensus.length() + 1
	if block.Height.Value() != wantHeight {
		return nil, chainerr.NewHeightError(chainerr.EBadHeight, uint32(block.Height.Value()))
	}

	if err := e.checkLinkAndPow(block.Header, wantHeight); err != nil {
		return nil, err
	}
	if err := e.checkSnapshotCompat(block.Header, wantHeight); err != nil {
		return nil, err
	}
	if !block.VerifyMerkle(chainhash.HashFunc) {
		return nil, chainerr.NewHeightError(chainerr.EMerkleRoot, uint32(wantHeight))
	}
	if err := e.checkTimestamp(block.Header, &e.consensus); err != nil {
		return nil, err
	}

	target := block.Header.Target(wantHeight, e.params.V2ActivationHeight)
	undo, err := e.validateAndApplyBody(wantHeight, block.Body, target, &e.consensus, e.bodies, true)
	if err != nil {
		return nil, err
	}

	e.consensus.append(block.Header, target)
	e.bodies = append(e.bodies, block.Body)
	e.undos[wantHeight] = *undo
	e.evictMempoolOutsideWindow()
	e.bumpToken()

	event := &AppendEvent{
		Height:       wantHeight,
		Header:       block.Header,
		WorksumDelta: primitives.Zero().AddHeader(target),
		GridDelta:    e.consensus.grid[maxInt(0, len(e.consensus.grid)-1):],
	}
	return &StateUpdate{Append: event, RemovedMined: undo.txIds}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// checkLinkAndPow verifies prevHash chain linkage, the expected
// difficulty target, and proof of work for header proposed at height.
func (e *Engine) checkLinkAndPow(header primitives.Header, height primitives.Height) error {
	if height == 1 {
		if !header.PrevHash.IsZero() {
			return chainerr.NewHeightError(chainerr.EHeaderLink, uint32(height))
		}
	} else {
		prev, ok := e.consensus.headerAt(height - 1)
		if !ok || header.PrevHash != identityHash(prev) {
			return chainerr.NewHeightError(chainerr.EHeaderLink, uint32(height))
		}
	}

	wantTarget := nextTarget(&e.consensus, e.params)
	gotTarget := header.Target(height, e.params.V2ActivationHeight)
	if gotTarget.Bytes() != wantTarget.Bytes() {
		return chainerr.NewHeightError(chainerr.EDifficulty, uint32(height))
	}

	serialized := header.Serialize()
	powHash := e.hasher.PowHash(serialized, height)
	if !gotTarget.Compatible(powHash) {
		return chainerr.NewHeightError(chainerr.EPow, uint32(height))
	}
	return nil
}

// checkSnapshotCompat rejects a header proposed at the installed
// signed snapshot's height whose identity hash disagrees with it (spec
// §3 "the chain cannot be rolled back to lengths below snapshot.height",
// scenario S4: "further appends that conflict with snap at height 5 are
// rejected with LEADER_MISMATCH").
func (e *Engine) checkSnapshotCompat(header primitives.Header, height primitives.Height) error {
	if e.snapshot == nil || height != primitives.Height(e.snapshot.Height) {
		return nil
	}
	if identityHash(header) != e.snapshot.Hash {
		return chainerr.NewHeightError(chainerr.ELeaderMismatch, uint32(height))
	}
	return nil
}

// checkTimestamp enforces the median-time-past and clock-tolerance
// rules against chain's trailing history.
func (e *Engine) checkTimestamp(header primitives.Header, chain *headerChain) error {
	mtp := medianTimePast(chain, e.params)
	if chain.length() > 0 && header.Timestamp <= mtp {
		return chainerr.NewHeightError(chainerr.ETimestamp, uint32(chain.length()+1))
	}
	limit := time.Now().Add(e.params.ClockTolerance).Unix()
	if int64(header.Timestamp) > limit {
		return chainerr.NewHeightError(chainerr.EClockTolerance, uint32(chain.length()+1))
	}
	return nil
}

// validateAndApplyBody validates every element of body against chain
// state as of height-1 and, on success, mutates accounts/history/
// mempool/replay in place, returning the undo entry. On any failure
// nothing has been mutated yet (validation runs fully before the
// mutating pass), preserving the all-or-nothing contract.
func (e *Engine) validateAndApplyBody(height primitives.Height, body primitives.Body, target primitives.Target, chain *headerChain, _ []primitives.Body, removeFromPool bool) (*undoEntry, error) {
	// Pass 1: validate without mutating. Accounts introduced by
	// body.NewAccounts do not exist yet, so a reward or transfer may
	// reference one of them by the AccountId it is about to be
	// assigned (sequential, starting at e.accounts.next, the same order
	// pass 2 creates them in) without yet appearing in e.accounts.
	seenNew := make(map[primitives.Address]bool)
	pendingIDs := make(map[primitives.AccountId]bool, len(body.NewAccounts))
	nextID := e.accounts.next
	for _, addr := range body.NewAccounts {
		if _, ok := e.accounts.lookup(addr); ok {
			return nil, chainerr.NewHeightError(chainerr.EAddrPolicy, uint32(height))
		}
		if seenNew[addr] {
			return nil, chainerr.NewHeightError(chainerr.EAddrPolicy, uint32(height))
		}
		seenNew[addr] = true
		pendingIDs[nextID] = true
		nextID++
	}
	knownOrPending := func(id primitives.AccountId) bool {
		if _, ok := e.accounts.get(id); ok {
			return true
		}
		return pendingIDs[id]
	}

	spent := make(map[primitives.AccountId]uint64)
	for _, r := range body.Rewards {
		if !knownOrPending(r.ToAccount) {
			return nil, chainerr.NewHeightError(chainerr.EInvAccount, uint32(height))
		}
	}

	pinStart := e.pinWindowStart(chain.length())
	seenInBody := make(map[primitives.TxId]bool, len(body.Transfers))
	for _, t := range body.Transfers {
		if t.Id.PinHeight < pinStart || t.Id.PinHeight > chain.length() {
			return nil, chainerr.NewHeightError(chainerr.EPinHeight, uint32(height))
		}
		pinHeader, ok := chain.headerAt(t.Id.PinHeight)
		if !ok || t.PinHash != identityHash(pinHeader) {
			return nil, chainerr.NewHeightError(chainerr.EPinHeight, uint32(height))
		}
		if e.replay.Contains(t.Id) || seenInBody[t.Id] {
			return nil, chainerr.NewHeightError(chainerr.ENonce, uint32(height))
		}
		seenInBody[t.Id] = true
		from, ok := e.accounts.get(t.Id.AccountId)
		if !ok {
			return nil, chainerr.NewHeightError(chainerr.EInvAccount, uint32(height))
		}
		digest := chainhash.HashFunc(t.Serialize())
		addr, err := crypto.RecoverAddress(t.Signature, digest)
		if err != nil || addr != from.address {
			return nil, chainerr.NewHeightError(chainerr.ECorruptedSig, uint32(height))
		}
		total := t.Amount + t.Fee
		already := spent[t.Id.AccountId]
		if from.balance < already+total {
			return nil, chainerr.NewHeightError(chainerr.EBalance, uint32(height))
		}
		spent[t.Id.AccountId] = already + total
		if !knownOrPending(t.ToAccount) {
			return nil, chainerr.NewHeightError(chainerr.EInvAccount, uint32(height))
		}
	}

	// Pass 2: mutate.
	undo := &undoEntry{balanceDeltas: make(map[primitives.AccountId]int64), target: target}
	for _, addr := range body.NewAccounts {
		id := e.accounts.create(addr)
		undo.newAccounts = append(undo.newAccounts, addr)
		undo.newAccountIDs = append(undo.newAccountIDs, id)
	}
	for _, r := range body.Rewards {
		acc, _ := e.accounts.get(r.ToAccount)
		acc.balance += r.Amount
		undo.balanceDeltas[r.ToAccount] += int64(r.Amount)
		e.appendHistory(r.ToAccount, height, chainhash.HashFunc(r.Serialize()), int64(r.Amount))
	}
	for _, t := range body.Transfers {
		from, _ := e.accounts.get(t.Id.AccountId)
		to, _ := e.accounts.get(t.ToAccount)
		total := t.Amount + t.Fee
		from.balance -= total
		to.balance += t.Amount
		undo.balanceDeltas[t.Id.AccountId] -= int64(total)
		undo.balanceDeltas[t.ToAccount] += int64(t.Amount)
		if !e.replay.Insert(height, t.Id) {
			panic("blockchain: duplicate TxId reached Pass 2 after Pass 1 uniqueness check")
		}
		undo.txIds = append(undo.txIds, t.Id)
		undo.transfersSpent = append(undo.transfersSpent, t)
		e.appendHistory(t.Id.AccountId, height, chainhash.HashFunc(t.Serialize()), -int64(total))
		e.appendHistory(t.ToAccount, height, chainhash.HashFunc(t.Serialize()), int64(t.Amount))
		if removeFromPool {
			e.mempool.Remove(t.Id)
		}
	}
	return undo, nil
}

func (e *Engine) appendHistory(id primitives.AccountId, height primitives.Height, txHash chainhash.Hash, delta int64) {
	e.history[id] = append(e.history[id], historyEntry{height: height, txHash: txHash, delta: delta})
}

// evictMempoolOutsideWindow drops mempool entries whose pin height has
// fallen out of the replay window as the chain has grown.
func (e *Engine) evictMempoolOutsideWindow() {
	e.mempool.EvictBelow(e.pinWindowStart(e.consensus.length()))
}
