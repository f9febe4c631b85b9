package chain

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// NoHash is the previous hash of the genesis block. It is written as null
// in the wire and digest forms.
const NoHash = ""

// TimestampLayout is the ISO-8601 form used for block timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultDifficulty is used when no difficulty is requested for mining.
const DefaultDifficulty uint = 4

// progressEvery is how many attempts pass between mining progress events.
const progressEvery = 1_000_000

// =============================================================================

// Block represents a group of transactions batched together. The type
// parameter is the transaction payload, which can be any value that encodes
// to JSON.
type Block[T any] struct {
	Index         uint64 // Position in the chain, 0 for genesis.
	Timestamp     string // Creation time in TimestampLayout.
	Transactions  []T    // Order is preserved, may be empty.
	PrevBlockHash string // Digest of the previous block or NoHash.
	Nonce         string // Empty until the block is mined.
	Hash          string // Digest of every field above.
}

// BlockData is the wire form of a block. Field names match the digest input
// so a block digest can be reproduced from its JSON by any client.
type BlockData[T any] struct {
	Index        uint64  `json:"index"`
	Timestamp    string  `json:"timestamp"`
	Transactions []T     `json:"transactions"`
	PreviousHash *string `json:"previousHash"`
	Nonce        *string `json:"nonce"`
	Hash         string  `json:"hash,omitempty"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData[T any](b Block[T]) BlockData[T] {
	trans := b.Transactions
	if trans == nil {
		trans = []T{}
	}

	return BlockData[T]{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Transactions: trans,
		PreviousHash: nullable(b.PrevBlockHash),
		Nonce:        nullable(b.Nonce),
		Hash:         b.Hash,
	}
}

// ToBlock converts the wire form back into a block.
func ToBlock[T any](bd BlockData[T]) Block[T] {
	b := Block[T]{
		Index:        bd.Index,
		Timestamp:    bd.Timestamp,
		Transactions: bd.Transactions,
		Hash:         bd.Hash,
	}
	if bd.PreviousHash != nil {
		b.PrevBlockHash = *bd.PreviousHash
	}
	if bd.Nonce != nil {
		b.Nonce = *bd.Nonce
	}

	return b
}

// MarshalJSON implements the json.Marshaler interface.
func (b Block[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(NewBlockData(b))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *Block[T]) UnmarshalJSON(data []byte) error {
	var bd BlockData[T]
	if err := json.Unmarshal(data, &bd); err != nil {
		return err
	}

	*b = ToBlock(bd)
	return nil
}

// Digest returns the canonical digest of the block's current fields. The
// stored Hash is never part of the input.
func (b Block[T]) Digest() (string, error) {
	return digest.Hash(NewBlockData(b))
}

// SetNonce sets the nonce to test during mining.
func (b *Block[T]) SetNonce(nonce string) {
	b.Nonce = nonce
}

// IsMined reports whether a nonce has been committed to the block.
func (b Block[T]) IsMined() bool {
	return b.Nonce != ""
}

// IsSolved recomputes the digest and checks it clears the bound for the
// difficulty.
func (b Block[T]) IsSolved(difficulty uint) (bool, error) {
	hash, err := b.Digest()
	if err != nil {
		return false, err
	}

	return pow.IsAcceptable(hash, difficulty)
}

// clone returns a copy of the block that shares no memory with it.
func (b Block[T]) clone() Block[T] {
	b.Transactions = slices.Clone(b.Transactions)
	return b
}

// =============================================================================

// MineBlock performs the proof of work on a copy of the block and returns the
// copy with the winning nonce and its final hash. The original block is left
// untouched, which lets callers mine without holding any lock on the chain.
func MineBlock[T any](ctx context.Context, b Block[T], difficulty uint, ev EventHandler) (Block[T], error) {
	ev = safe(ev)

	if b.IsMined() {
		return Block[T]{}, ErrAlreadyMined
	}

	candidate := b.clone()

	ev(Event{Kind: EventMiningStarted, Index: b.Index, Hash: b.Hash, PrevHash: b.PrevBlockHash, Difficulty: difficulty})

	progress := func(a pow.Attempt) {
		if a.Number%progressEvery == 0 {
			ev(Event{Kind: EventMiningProgress, Index: b.Index, Attempts: a.Number, Difficulty: difficulty})
		}
	}

	res, err := pow.Mine(ctx, &candidate, difficulty, progress)
	if err != nil {
		ev(Event{Kind: EventMiningStopped, Index: b.Index, Attempts: res.Attempts, Duration: res.Duration, Difficulty: difficulty, Err: err})
		return Block[T]{}, err
	}

	candidate.Nonce = res.Nonce
	candidate.Hash = res.Hash

	ev(Event{Kind: EventBlockMined, Index: b.Index, Hash: res.Hash, PrevHash: b.PrevBlockHash, Nonce: res.Nonce, Attempts: res.Attempts, Duration: res.Duration, Difficulty: difficulty})

	return candidate, nil
}

// Timestamp formats the time the way blocks record it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// =============================================================================

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
