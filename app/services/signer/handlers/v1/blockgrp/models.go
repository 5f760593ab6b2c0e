package blockgrp

import (
	"github.com/helios-protocol/microblock/business/core/blocksign"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
)

// SignRequest is a signing request along with the key of the chain. The
// key is used for the single request and never stored or logged.
type SignRequest struct {
	blocksign.Request `validate:"-"`
	PrivateKey        string `json:"privateKey" validate:"required"`
}

// DecodeRequest names a block to decode and the chain it belongs to.
type DecodeRequest struct {
	RawBlock string     `json:"rawBlock" validate:"required,hexadecimal"`
	ChainID  uint64     `json:"chainId" validate:"required"`
	Fork     *fork.Fork `json:"fork,omitempty"`
}

// ForkInfo is the fork active on a chain at a point in time.
type ForkInfo struct {
	ChainID         uint64    `json:"chainId"`
	Timestamp       int64     `json:"timestamp"`
	Fork            fork.Fork `json:"fork"`
	PhotonTimestamp int64     `json:"photonTimestamp"`
}
