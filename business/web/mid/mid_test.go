package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/business/web/mid"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newApp(m *metrics.Metrics) *web.App {
	log := zap.NewNop().Sugar()

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(m),
		mid.Cors("*"),
		mid.Panics(m),
	)

	app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	})
	app.Handle(http.MethodGet, "v1", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.FieldErrors{{Field: "host", Err: "host is a required field"}}
	})
	app.Handle(http.MethodGet, "v1", "/untrusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("disk on fire")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	return app
}

func TestMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	app := newApp(m)

	tt := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"ok", "/v1/ok", http.StatusOK, `{"status":"ok"}`},
		{"trusted", "/v1/trusted", http.StatusNotFound, `{"error":"block not found"}`},
		{"fields", "/v1/fields", http.StatusBadRequest, `{"error":"data validation error","fields":{"host":"host is a required field"}}`},
		{"untrusted", "/v1/untrusted", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		{"panic", "/v1/panic", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tst.path, nil))

			assert.Equal(t, tst.status, w.Code)
			assert.JSONEq(t, tst.body, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Requests))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Errors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Panics))
}
