package mid

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/foundation/web"
)

// Metrics updates program counters.
func Metrics(m *metrics.Metrics) web.Middleware {

	var requests atomic.Int64

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request counter and sample goroutines every 100 requests.
			m.Requests.Inc()
			if requests.Add(1)%100 == 0 {
				m.Goroutines.Set(float64(runtime.NumGoroutine()))
			}

			// Increment the errors counter if an error occurred on this request.
			if err != nil {
				m.Errors.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
