// Package peer maintains the set of known peer addresses. It is bookkeeping
// only: hosts are never contacted or validated.
package peer

import (
	"slices"
	"strings"
	"sync"
)

// Peer represents a known node in the network.
type Peer struct {
	Host string `json:"host"`
}

// New contructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Status represents information a node reports about itself.
type Status struct {
	LatestBlockHash   string `json:"latest_block_hash"`
	LatestBlockNumber uint64 `json:"latest_block_number"`
	Pending           int    `json:"pending"`
	KnownPeers        []Peer `json:"known_peers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set. It reports false when the peer was
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers sorted by host, leaving out the peer
// matching the exclude host. Pass an empty host to get every peer.
func (ps *PeerSet) Copy(exclude string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if exclude != "" && peer.Match(exclude) {
			continue
		}
		peers = append(peers, peer)
	}

	slices.SortFunc(peers, func(a, b Peer) int {
		return strings.Compare(a.Host, b.Host)
	})

	return peers
}

// Hosts returns the sorted host names of every known peer.
func (ps *PeerSet) Hosts() []string {
	peers := ps.Copy("")

	hosts := make([]string, len(peers))
	for i, peer := range peers {
		hosts[i] = peer.Host
	}

	return hosts
}
