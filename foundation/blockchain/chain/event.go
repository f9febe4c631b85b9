package chain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind identifies what happened to the chain.
type EventKind string

// Set of events the chain reports.
const (
	EventBlockCreated   EventKind = "block-created"
	EventMiningStarted  EventKind = "mining-started"
	EventMiningProgress EventKind = "mining-progress"
	EventMiningStopped  EventKind = "mining-stopped"
	EventBlockMined     EventKind = "block-mined"
)

// Event describes a change in the life of a block.
type Event struct {
	Kind       EventKind
	Index      uint64
	Hash       string
	PrevHash   string
	Nonce      string
	Difficulty uint
	Attempts   uint64
	Duration   time.Duration
	Err        error
}

// String implements the fmt.Stringer interface.
func (e Event) String() string {
	switch e.Kind {
	case EventBlockCreated:
		return fmt.Sprintf("chain: %s: blk[%d]: hash[%s]: prev[%s]", e.Kind, e.Index, e.Hash, e.PrevHash)
	case EventMiningStarted:
		return fmt.Sprintf("chain: %s: blk[%d]: difficulty[%d]", e.Kind, e.Index, e.Difficulty)
	case EventMiningProgress:
		return fmt.Sprintf("chain: %s: blk[%d]: attempts[%d]", e.Kind, e.Index, e.Attempts)
	case EventMiningStopped:
		return fmt.Sprintf("chain: %s: blk[%d]: attempts[%d]: duration[%v]: %v", e.Kind, e.Index, e.Attempts, e.Duration, e.Err)
	case EventBlockMined:
		return fmt.Sprintf("chain: %s: blk[%d]: hash[%s]: nonce[%s]: attempts[%d]: duration[%v]", e.Kind, e.Index, e.Hash, e.Nonce, e.Attempts, e.Duration)
	}

	return fmt.Sprintf("chain: %s: blk[%d]", e.Kind, e.Index)
}

// MarshalJSON implements the json.Marshaler interface so events can be
// streamed to clients.
func (e Event) MarshalJSON() ([]byte, error) {
	var errText string
	if e.Err != nil {
		errText = e.Err.Error()
	}

	ev := struct {
		Kind       EventKind `json:"kind"`
		Index      uint64    `json:"index"`
		Hash       string    `json:"hash,omitempty"`
		PrevHash   string    `json:"previousHash,omitempty"`
		Nonce      string    `json:"nonce,omitempty"`
		Difficulty uint      `json:"difficulty,omitempty"`
		Attempts   uint64    `json:"attempts,omitempty"`
		Duration   string    `json:"duration,omitempty"`
		Err        string    `json:"error,omitempty"`
	}{
		Kind:       e.Kind,
		Index:      e.Index,
		Hash:       e.Hash,
		PrevHash:   e.PrevHash,
		Nonce:      e.Nonce,
		Difficulty: e.Difficulty,
		Attempts:   e.Attempts,
		Err:        errText,
	}

	if e.Duration > 0 {
		ev.Duration = e.Duration.String()
	}

	return json.Marshal(ev)
}

// EventHandler receives the events produced by the chain. The chain does no
// logging of its own.
type EventHandler func(ev Event)

// safe returns a handler that can always be called.
func safe(ev EventHandler) EventHandler {
	if ev == nil {
		return func(Event) {}
	}
	return ev
}
