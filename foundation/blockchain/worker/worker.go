// Package worker implements background mining for the node.
package worker

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// Worker manages the POW workflows for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	shutOnce     sync.Once
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan bool
	evHandler    func(v string, args ...any)
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler func(v string, args ...any)) *Worker {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan bool, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Calls after the first
// return immediately.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: signal cancel mining")
		w.SignalCancelMining()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
