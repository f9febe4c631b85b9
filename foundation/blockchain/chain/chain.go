// Package chain maintains the append-only sequence of blocks, the buffer of
// transactions waiting to be included in the next block and the set of known
// peers. A Chain has no internal synchronization. Callers sharing a Chain
// between goroutines must serialize access themselves.
package chain

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Chain owns the blocks, the pending transactions and the known peers.
type Chain[T any] struct {
	blocks  []Block[T]
	pending []T
	peers   *peer.PeerSet
	ev      EventHandler
}

// New constructs a chain holding only the genesis block. The event handler
// is optional.
func New[T any](ev EventHandler) (*Chain[T], error) {
	c := Chain[T]{
		pending: []T{},
		peers:   peer.NewPeerSet(),
		ev:      safe(ev),
	}

	if _, err := c.NewBlock(NoHash); err != nil {
		return nil, fmt.Errorf("creating genesis: %w", err)
	}

	return &c, nil
}

// =============================================================================

// AddPeer adds the host to the set of known peers. It reports false when
// the host was already known.
func (c *Chain[T]) AddPeer(host string) bool {
	return c.peers.Add(peer.New(host))
}

// Peers returns the known peer hosts in sorted order.
func (c *Chain[T]) Peers() []string {
	return c.peers.Hosts()
}

// PeerSet provides access to the underlying set of peers.
func (c *Chain[T]) PeerSet() *peer.PeerSet {
	return c.peers
}

// =============================================================================

// AddTransaction appends the transaction to the pending buffer.
func (c *Chain[T]) AddTransaction(tx T) {
	c.pending = append(c.pending, tx)
}

// Pending returns a copy of the transactions waiting for the next block.
func (c *Chain[T]) Pending() []T {
	return slices.Clone(c.pending)
}

// =============================================================================

// NewBlock creates the next block from the pending transactions, linked to
// the specified previous hash, and appends it to the chain. The previous hash
// is not checked against the last block; use ExtendChain for that. The block
// hash is provisional until the block is mined.
func (c *Chain[T]) NewBlock(prevHash string) (Block[T], error) {
	b := Block[T]{
		Index:         uint64(len(c.blocks)),
		Timestamp:     Timestamp(time.Now()),
		Transactions:  c.pending,
		PrevBlockHash: prevHash,
	}

	// On failure the chain and the pending buffer are left as they were.
	hash, err := b.Digest()
	if err != nil {
		return Block[T]{}, fmt.Errorf("hashing block %d: %w", b.Index, err)
	}
	b.Hash = hash

	c.blocks = append(c.blocks, b)
	c.pending = []T{}

	c.ev(Event{Kind: EventBlockCreated, Index: b.Index, Hash: b.Hash, PrevHash: b.PrevBlockHash})

	return b.clone(), nil
}

// ExtendChain creates the next block linked to the hash of the last block.
func (c *Chain[T]) ExtendChain() (Block[T], error) {
	prevHash := NoHash
	if last, ok := c.LastBlock(); ok {
		prevHash = last.Hash
	}

	return c.NewBlock(prevHash)
}

// LastBlock returns the most recently appended block. The boolean is false
// only when the chain holds no blocks.
func (c *Chain[T]) LastBlock() (Block[T], bool) {
	if len(c.blocks) == 0 {
		return Block[T]{}, false
	}

	return c.blocks[len(c.blocks)-1].clone(), true
}

// Block returns the block at the specified index.
func (c *Chain[T]) Block(index uint64) (Block[T], error) {
	if index >= uint64(len(c.blocks)) {
		return Block[T]{}, fmt.Errorf("block %d: %w", index, ErrBlockNotFound)
	}

	return c.blocks[index].clone(), nil
}

// Blocks returns a copy of every block in the chain.
func (c *Chain[T]) Blocks() []Block[T] {
	blocks := make([]Block[T], len(c.blocks))
	for i, b := range c.blocks {
		blocks[i] = b.clone()
	}

	return blocks
}

// Len returns the number of blocks in the chain.
func (c *Chain[T]) Len() int {
	return len(c.blocks)
}

// =============================================================================

// Mine performs the proof of work on the block at the specified index and
// commits the winning nonce and final hash in place.
func (c *Chain[T]) Mine(ctx context.Context, index uint64, difficulty uint) (Block[T], error) {
	b, err := c.Block(index)
	if err != nil {
		return Block[T]{}, err
	}

	mined, err := MineBlock(ctx, b, difficulty, c.ev)
	if err != nil {
		return Block[T]{}, err
	}

	if err := c.Commit(mined, difficulty); err != nil {
		return Block[T]{}, err
	}

	return mined, nil
}

// MineLatest mines the last block in the chain.
func (c *Chain[T]) MineLatest(ctx context.Context, difficulty uint) (Block[T], error) {
	return c.Mine(ctx, uint64(len(c.blocks)-1), difficulty)
}

// Commit stores a block mined outside of the chain. The stored block must
// still be unmined, the mined block must differ from it only by nonce and
// hash, and its hash must clear the difficulty.
func (c *Chain[T]) Commit(mined Block[T], difficulty uint) error {
	if mined.Index >= uint64(len(c.blocks)) {
		return fmt.Errorf("block %d: %w", mined.Index, ErrBlockNotFound)
	}

	current := c.blocks[mined.Index]
	if current.IsMined() {
		return fmt.Errorf("block %d: %w", mined.Index, ErrAlreadyMined)
	}

	current.Nonce = mined.Nonce
	hash, err := current.Digest()
	if err != nil {
		return err
	}

	if hash != mined.Hash {
		return fmt.Errorf("block %d: got %s, exp %s: %w", mined.Index, mined.Hash, hash, ErrBlockMismatch)
	}

	ok, err := pow.IsAcceptable(hash, difficulty)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("block %d: hash %s: %w", mined.Index, hash, ErrNotSolved)
	}

	current.Hash = hash
	c.blocks[mined.Index] = current

	return nil
}
