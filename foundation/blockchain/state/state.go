// Package state is the core API for the node. It wraps a chain with the
// locking the chain itself does not provide so the chain can be shared by
// the web handlers and the mining worker.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// ErrNoTransactions is returned when a block is requested to be mined
// and there are no pending transactions.
var ErrNoTransactions = errors.New("no pending transactions")

// Tx is a transaction as the node stores it. The node does not look inside
// a transaction, any JSON value is accepted.
type Tx = json.RawMessage

// Block is a block of node transactions.
type Block = chain.Block[Tx]

// EventHandler defines a function that is called when events occur in
// the processing of blocks.
type EventHandler = chain.EventHandler

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Host        string
	Difficulty  uint
	MineTimeout time.Duration
	KnownPeers  []string
	EvHandler   EventHandler
}

// State manages the chain for the node.
type State struct {
	mu sync.RWMutex

	host        string
	difficulty  uint
	mineTimeout time.Duration
	evHandler   EventHandler

	chain *chain.Chain[Tx]

	Worker Worker
}

// New constructs the node state with a new chain.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(e chain.Event) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(e)
		}
	}

	// Fail fast on a difficulty mining can never use.
	if _, err := pow.Bound(cfg.Difficulty); err != nil {
		return nil, err
	}

	c, err := chain.New[Tx](ev)
	if err != nil {
		return nil, fmt.Errorf("constructing chain: %w", err)
	}

	for _, host := range cfg.KnownPeers {
		c.AddPeer(host)
	}

	state := State{
		host:        cfg.Host,
		difficulty:  cfg.Difficulty,
		mineTimeout: cfg.MineTimeout,
		evHandler:   ev,
		chain:       c,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
