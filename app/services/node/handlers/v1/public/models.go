package public

import "github.com/ardanlabs/powledger/foundation/blockchain/state"

// newBlockRequest asks for a block linked to the provided hash. A missing
// or null hash creates an unlinked block.
type newBlockRequest struct {
	PreviousHash *string `json:"previous_hash" validate:"omitempty,len=64,hexadecimal"`
}

// mineRequest selects the block to mine and the difficulty to mine it with.
// The last block and the node difficulty are used when they are missing.
type mineRequest struct {
	Index      *uint64 `json:"index"`
	Difficulty *uint   `json:"difficulty" validate:"omitempty,max=256"`
}

type submitResponse struct {
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

type signalResponse struct {
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

type pendingResponse struct {
	Count        int        `json:"count"`
	Transactions []state.Tx `json:"transactions"`
}
