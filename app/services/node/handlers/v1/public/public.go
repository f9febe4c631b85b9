// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxTxSize is the largest transaction body the node accepts.
const maxTxSize = 1 << 20

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide chain events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// Blocks returns every block in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// LatestBlock returns the last block in the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveLatestBlock(), http.StatusOK)
}

// BlockByIndex returns the block at the index in the path.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(index)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitTransaction adds the JSON value in the body to the pending
// transactions.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTxSize+1))
	if err != nil {
		return fmt.Errorf("unable to read payload: %w", err)
	}

	switch {
	case len(data) > maxTxSize:
		return errs.NewTrusted(errors.New("transaction too large"), http.StatusRequestEntityTooLarge)
	case !json.Valid(data):
		return errs.NewTrusted(errors.New("transaction must be a JSON value"), http.StatusBadRequest)
	}

	pending := h.State.UpsertTransaction(state.Tx(data))
	h.Log.Infow("add tran", "traceid", v.TraceID, "size", len(data), "pending", pending)

	resp := submitResponse{
		Status:  "transaction added to pending",
		Pending: pending,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the set of uncommitted transactions.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.State.RetrievePending()

	resp := pendingResponse{
		Count:        len(trans),
		Transactions: trans,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ExtendChain creates a block from the pending transactions linked to the
// last block.
func (h Handlers) ExtendChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.ExtendChain()
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// NewBlock creates a block from the pending transactions linked to the hash
// provided by the caller.
func (h Handlers) NewBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req newBlockRequest
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	prevHash := chain.NoHash
	if req.PreviousHash != nil {
		prevHash = *req.PreviousHash
	}

	block, err := h.State.NewBlock(prevHash)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// MineBlock performs the proof of work for a block and waits for the result.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineRequest
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	difficulty := h.State.RetrieveDifficulty()
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	var block state.Block
	switch req.Index {
	case nil:
		block, err = h.State.MineLatest(ctx, difficulty)
	default:
		block, err = h.State.MineBlock(ctx, *req.Index, difficulty)
	}

	if err != nil {
		return toTrusted(err)
	}

	h.Log.Infow("mined", "traceid", v.TraceID, "index", block.Index, "hash", block.Hash, "difficulty", difficulty)

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SignalMining asks the worker to mine the pending transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining worker not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := signalResponse{
		Status:  "mining signaled",
		Pending: h.State.QueryPendingLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// toTrusted maps the chain errors callers can act on to a status.
func toTrusted(err error) error {
	switch {
	case errors.Is(err, chain.ErrBlockNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, chain.ErrAlreadyMined):
		return errs.NewTrusted(err, http.StatusConflict)
	case errors.Is(err, pow.ErrInvalidDifficulty):
		return errs.NewTrusted(err, http.StatusBadRequest)
	case errors.Is(err, pow.ErrTimeout):
		return errs.NewTrusted(err, http.StatusRequestTimeout)
	case errors.Is(err, pow.ErrCancelled):
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}
	return err
}
