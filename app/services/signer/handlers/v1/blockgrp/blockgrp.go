// Package blockgrp maintains the group of handlers for signing and decoding
// blocks.
package blockgrp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/helios-protocol/microblock/business/sys/metrics"
	"github.com/helios-protocol/microblock/business/web/errs"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
	"github.com/helios-protocol/microblock/foundation/events"
	"github.com/helios-protocol/microblock/foundation/validate"
	"github.com/helios-protocol/microblock/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of block endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Core     *blocksign.Core
	Schedule fork.Schedule
	WS       websocket.Upgrader
	Evts     *events.Events
}

// Sign assembles, signs and encodes a block.
func (h Handlers) Sign(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req SignRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	privateKey, err := signature.HexToPrivateKey(req.PrivateKey)
	if err != nil {
		return errs.FromFault(err)
	}

	started := time.Now()
	res, err := h.Core.SignBlock(req.Request, privateKey)
	metrics.ObserveSign(res.Fork, err, started)
	if err != nil {
		return errs.FromFault(err)
	}

	h.Log.Infow("sign block", "traceid", v.TraceID, "chain", res.ChainAddress, "fork", res.Fork, "hash", res.BlockHash, "sends", len(res.SendTxHashes), "receives", len(res.ReceiveTxHashes))

	return web.Respond(ctx, w, res, http.StatusOK)
}

// Decode parses and verifies an encoded block.
func (h Handlers) Decode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req DecodeRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	d, err := h.Core.Decode(req.RawBlock, req.ChainID, req.Fork)
	if err != nil {
		return errs.FromFault(err)
	}

	return web.Respond(ctx, w, d, http.StatusOK)
}

// Fork returns the fork active on a chain at a unix time.
func (h Handlers) Fork(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chainID, err := strconv.ParseUint(web.Param(r, "chainid"), 10, 64)
	if err != nil || chainID == 0 {
		return errs.NewTrusted(fmt.Errorf("invalid chain id %q", web.Param(r, "chainid")), http.StatusBadRequest)
	}

	timestamp, err := strconv.ParseInt(web.Param(r, "timestamp"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid timestamp %q", web.Param(r, "timestamp")), http.StatusBadRequest)
	}

	info := ForkInfo{
		ChainID:         chainID,
		Timestamp:       timestamp,
		Fork:            h.Core.Fork(chainID, timestamp),
		PhotonTimestamp: h.Schedule.PhotonTimestamp(chainID),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Events handles a web socket to provide pipeline events to a client.
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
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
