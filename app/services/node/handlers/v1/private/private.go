// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// Peers returns the peers this node knows about.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// AddPeer adds a node to the known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req addPeerRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	if !h.State.AddPeer(req.Host) {
		resp := addPeerResponse{
			Status: "peer already known",
			Host:   req.Host,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	h.Log.Infow("add peer", "traceid", v.TraceID, "host", req.Host)

	resp := addPeerResponse{
		Status: "peer added",
		Host:   req.Host,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}
