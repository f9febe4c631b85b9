package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveDifficulty returns the difficulty the node mines with.
func (s *State) RetrieveDifficulty() uint {
	return s.difficulty
}

// RetrieveGenesis returns a copy of the genesis block.
func (s *State) RetrieveGenesis() Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genesis, _ := s.chain.Block(0)
	return genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, _ := s.chain.LastBlock()
	return block
}

// RetrieveBlock returns a copy of the block at the specified index.
func (s *State) RetrieveBlock(index uint64) (Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Block(index)
}

// RetrieveBlocks returns a copy of every block in the chain.
func (s *State) RetrieveBlocks() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Blocks()
}

// RetrievePending returns a copy of the pending transactions.
func (s *State) RetrievePending() []Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Pending()
}

// RetrieveKnownPeers retrieves a copy of the known peer list without
// this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.PeerSet().Copy(s.host)
}

// RetrieveStatus returns the status this node reports to its peers.
func (s *State) RetrieveStatus() peer.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, _ := s.chain.LastBlock()

	return peer.Status{
		LatestBlockHash:   latest.Hash,
		LatestBlockNumber: latest.Index,
		Pending:           len(s.chain.Pending()),
		KnownPeers:        s.chain.PeerSet().Copy(s.host),
	}
}

// QueryPendingLength returns the number of pending transactions.
func (s *State) QueryPendingLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chain.Pending())
}
