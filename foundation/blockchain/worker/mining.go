package worker

import (
	"context"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"golang.org/x/sync/errgroup"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation takes all the pending transactions, creates a new block
// linked to the last block and performs the proof of work for it.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Make sure there are transactions to mine.
	length := w.state.QueryPendingLength()
	if length == 0 {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		length := w.state.QueryPendingLength()
		if length > 0 && !w.isShutdown() {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			w.SignalStartMining()
		}
	}()

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var g errgroup.Group

	// This G exists to cancel the mining operation.
	g.Go(func() error {
		defer cancel()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-ctx.Done():
		}

		return nil
	})

	// This G is performing the mining.
	g.Go(func() error {
		defer cancel()

		block, err := w.state.MineNewBlock(ctx)
		if err != nil {
			switch {
			case errors.Is(err, state.ErrNoTransactions):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: no transactions pending")
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return err
		}

		w.evHandler("worker: runMiningOperation: MINING: SOLVED: blk[%d]: hash[%s]: nonce[%s]", block.Index, block.Hash, block.Nonce)
		return nil
	})

	// Wait for both G's to terminate. Errors were reported above.
	_ = g.Wait()
}
