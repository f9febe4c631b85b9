// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/latest", pbl.LatestBlock)
	app.Handle(http.MethodGet, version, "/blocks/index/:index", pbl.BlockByIndex)
	app.Handle(http.MethodPost, version, "/blocks/extend", pbl.ExtendChain)
	app.Handle(http.MethodPost, version, "/blocks/new", pbl.NewBlock)
	app.Handle(http.MethodPost, version, "/blocks/mine", pbl.MineBlock)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Pending)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/peers/list", prv.Peers)
	app.Handle(http.MethodPost, version, "/node/peers/add", prv.AddPeer)
}
