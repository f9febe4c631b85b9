package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
)

// MineNewBlock creates a block from the pending transactions and performs
// the proof of work for it using the node difficulty.
func (s *State) MineNewBlock(ctx context.Context) (Block, error) {
	s.mu.Lock()
	if len(s.chain.Pending()) == 0 {
		s.mu.Unlock()
		return Block{}, ErrNoTransactions
	}

	block, err := s.chain.ExtendChain()
	s.mu.Unlock()

	if err != nil {
		return Block{}, err
	}

	return s.MineBlock(ctx, block.Index, s.difficulty)
}

// MineLatest performs the proof of work for the last block in the chain.
func (s *State) MineLatest(ctx context.Context, difficulty uint) (Block, error) {
	s.mu.RLock()
	index := uint64(s.chain.Len() - 1)
	s.mu.RUnlock()

	return s.MineBlock(ctx, index, difficulty)
}

// MineBlock performs the proof of work for the block at the specified index.
// The lock is only held to copy the block and to commit the result, so the
// chain stays available while the search runs. The search is bounded by the
// context and the configured mine timeout.
func (s *State) MineBlock(ctx context.Context, index uint64, difficulty uint) (Block, error) {
	s.mu.RLock()
	block, err := s.chain.Block(index)
	s.mu.RUnlock()

	if err != nil {
		return Block{}, err
	}

	if s.mineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.mineTimeout)
		defer cancel()
	}

	mined, err := chain.MineBlock(ctx, block, difficulty, s.evHandler)
	if err != nil {
		return Block{}, fmt.Errorf("mining block %d: %w", index, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.Commit(mined, difficulty); err != nil {
		return Block{}, err
	}

	return mined, nil
}
