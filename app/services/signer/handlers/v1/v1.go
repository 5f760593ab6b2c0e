// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/helios-protocol/microblock/app/services/signer/handlers/v1/blockgrp"
	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/events"
	"github.com/helios-protocol/microblock/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	Core     *blocksign.Core
	Schedule fork.Schedule
	Evts     *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	bgh := blockgrp.Handlers{
		Log:      cfg.Log,
		Core:     cfg.Core,
		Schedule: cfg.Schedule,
		Evts:     cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/block/sign", bgh.Sign)
	app.Handle(http.MethodPost, version, "/block/decode", bgh.Decode)
	app.Handle(http.MethodGet, version, "/forks/:chainid/:timestamp", bgh.Fork)
	app.Handle(http.MethodGet, version, "/events", bgh.Events)
}
