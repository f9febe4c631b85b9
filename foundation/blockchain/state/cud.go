package state

// UpsertTransaction adds the transaction to the pending buffer and returns
// the number of transactions now pending.
func (s *State) UpsertTransaction(tx Tx) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain.AddTransaction(tx)
	return len(s.chain.Pending())
}

// NewBlock creates the next block linked to the specified previous hash. The
// hash is not checked against the last block.
func (s *State) NewBlock(prevHash string) (Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.NewBlock(prevHash)
}

// ExtendChain creates the next block linked to the last block.
func (s *State) ExtendChain() (Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.ExtendChain()
}

// AddPeer adds the host to the known peers. It reports false when the host
// was already known.
func (s *State) AddPeer(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.AddPeer(host)
}
