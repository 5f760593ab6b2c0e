// Package blocksign is the core API for assembling, signing and serializing
// micro blocks. A signing request moves through a fixed set of stages and
// either produces a fully encoded block or fails without partial output.
package blocksign

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/microblock"
	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
)

// EventHandler defines a function that is called when events occur in the
// processing of a signing request.
type EventHandler func(v string, args ...any)

// Stage identifies how far a signing request has progressed.
type Stage int

// Set of stages in the order a request moves through them.
const (
	Received Stage = iota
	Normalized
	ForkSelected
	TransactionsBuilt
	RootsComputed
	HeaderSigned
	Serialized
)

// String implements the fmt.Stringer interface.
func (s Stage) String() string {
	switch s {
	case Received:
		return "received"
	case Normalized:
		return "normalized"
	case ForkSelected:
		return "fork selected"
	case TransactionsBuilt:
		return "transactions built"
	case RootsComputed:
		return "roots computed"
	case HeaderSigned:
		return "header signed"
	case Serialized:
		return "serialized"
	}

	return fmt.Sprintf("stage(%d)", int(s))
}

// =============================================================================

// Config represents the configuration required to construct the core.
type Config struct {
	Schedule  fork.Schedule
	Now       func() time.Time
	EvHandler EventHandler
}

// Core manages the signing pipeline. It holds no state between requests so
// a single value can serve concurrent callers.
type Core struct {
	schedule  fork.Schedule
	now       func() time.Time
	evHandler EventHandler
}

// NewCore constructs a core for signing blocks.
func NewCore(cfg Config) (*Core, error) {
	if cfg.Schedule == nil {
		return nil, errors.New("fork schedule is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := Core{
		schedule:  cfg.Schedule,
		now:       now,
		evHandler: ev,
	}

	return &c, nil
}

// Fork returns the fork active on the chain at the unix time.
func (c *Core) Fork(chainID uint64, timestamp int64) fork.Fork {
	return fork.Select(c.schedule, chainID, timestamp)
}

// =============================================================================

// Request is the set of inputs for signing a block. Fork and Timestamp are
// optional overrides of the schedule and the wall clock.
type Request struct {
	Header              normalize.HeaderInput      `json:"header"`
	SendTransactions    []normalize.SendTxInput    `json:"sendTransactions"`
	ReceiveTransactions []normalize.ReceiveTxInput `json:"receiveTransactions"`
	Fork                *fork.Fork                 `json:"fork,omitempty"`
	Timestamp           normalize.Value            `json:"timestamp,omitempty"`
}

// Result is the signed and encoded block along with the metadata callers
// need before the network accepts it.
type Result struct {
	RawBlock        string         `json:"rawBlock"`
	SendTxHashes    []common.Hash  `json:"send_tx_hashes"`
	ReceiveTxHashes []common.Hash  `json:"receive_tx_hashes"`
	V               *hexutil.Big   `json:"v"`
	R               *hexutil.Big   `json:"r"`
	S               *hexutil.Big   `json:"s"`
	Fork            fork.Fork      `json:"fork"`
	ChainID         uint64         `json:"chainId"`
	ChainAddress    common.Address `json:"chainAddress"`
	Timestamp       uint64         `json:"timestamp"`
	BlockHash       common.Hash    `json:"blockHash"`
}

// SignBlock runs the request through every stage and returns the encoded
// block. The private key is only used for signing and is never logged.
func (c *Core) SignBlock(req Request, privateKey *ecdsa.PrivateKey) (Result, error) {
	c.evHandler("blocksign: SignBlock: stage[%s]: sends[%d] receives[%d]", Received, len(req.SendTransactions), len(req.ReceiveTransactions))

	res, err := c.signBlock(req, privateKey)
	if err != nil {
		c.evHandler("blocksign: SignBlock: failed[%s]: %s", fault.KindOf(err), err)
		return Result{}, err
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: chain[%d]: hash[%s]", Serialized, res.ChainID, res.BlockHash)
	return res, nil
}

func (c *Core) signBlock(req Request, privateKey *ecdsa.PrivateKey) (Result, error) {
	if privateKey == nil {
		return Result{}, fault.New(fault.Signing, "received", "privateKey", errors.New("no private key provided"))
	}

	// Normalize every input field before anything is hashed or signed.
	in, err := normalizeRequest(req)
	if err != nil {
		return Result{}, err
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: chain[%d]", Normalized, in.chainID)

	// Choose the fork once. Every schema used below is bound to it.
	timestamp := uint64(c.now().Unix())
	if req.Timestamp.IsSet() {
		if timestamp, err = normalize.ToUint64("timestamp", req.Timestamp); err != nil {
			return Result{}, err
		}
	}

	f := c.Fork(in.chainID, int64(timestamp))
	if req.Fork != nil {
		f = *req.Fork
	}

	if err := f.Check("fork"); err != nil {
		return Result{}, err
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: fork[%s] timestamp[%d]", ForkSelected, f, timestamp)

	// Build and sign the outgoing transactions in the caller's order.
	sends := make([]microblock.SendTx, len(in.sends))
	for i, n := range in.sends {
		tx, err := microblock.NewSendTx(f, n)
		if err != nil {
			return Result{}, err
		}

		if sends[i], err = tx.Sign(privateKey, in.chainID); err != nil {
			return Result{}, err
		}
	}

	receives := make([]microblock.ReceiveTx, len(in.receives))
	for i, n := range in.receives {
		receives[i] = microblock.NewReceiveTx(n)
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: sends[%d] receives[%d]", TransactionsBuilt, len(sends), len(receives))

	// The roots commit to the signed transactions.
	sendRoot, err := microblock.TransactionRoot(sends)
	if err != nil {
		return Result{}, err
	}

	receiveRoot, err := microblock.ReceiveTransactionRoot(receives)
	if err != nil {
		return Result{}, err
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: tx[%s] rx[%s]", RootsComputed, sendRoot, receiveRoot)

	reward := microblock.NewRewardBundle()

	h := microblock.Header{
		ChainAddress:           crypto.PubkeyToAddress(privateKey.PublicKey),
		ParentHash:             in.header.ParentHash,
		TransactionRoot:        sendRoot,
		ReceiveTransactionRoot: receiveRoot,
		BlockNumber:            in.header.BlockNumber,
		Timestamp:              timestamp,
		ExtraData:              in.header.ExtraData,
		RewardHash:             reward.Hash(),
	}

	if h, err = h.Sign(privateKey, in.chainID); err != nil {
		return Result{}, err
	}

	c.evHandler("blocksign: SignBlock: stage[%s]: chain[%s] num[%d]", HeaderSigned, h.ChainAddress, h.BlockNumber)

	block := microblock.Block{
		Fork:                f,
		Header:              h.Micro(),
		SendTransactions:    sends,
		ReceiveTransactions: receives,
		RewardBundle:        reward,
	}

	raw, err := block.EncodeHex()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RawBlock:        raw,
		SendTxHashes:    block.SendTxHashes(),
		ReceiveTxHashes: block.ReceiveTxHashes(),
		V:               (*hexutil.Big)(h.V),
		R:               (*hexutil.Big)(h.R),
		S:               (*hexutil.Big)(h.S),
		Fork:            f,
		ChainID:         in.chainID,
		ChainAddress:    h.ChainAddress,
		Timestamp:       timestamp,
		BlockHash:       h.Hash(),
	}

	return res, nil
}

// =============================================================================

// normalized is the canonical form of a request.
type normalized struct {
	header   normalize.Header
	sends    []normalize.SendTx
	receives []normalize.ReceiveTx
	chainID  uint64
}

func normalizeRequest(req Request) (normalized, error) {
	header, err := normalize.NormalizeHeader(req.Header)
	if err != nil {
		return normalized{}, err
	}

	sends := make([]normalize.SendTx, len(req.SendTransactions))
	for i, in := range req.SendTransactions {
		if sends[i], err = normalize.NormalizeSendTx(i, in); err != nil {
			return normalized{}, err
		}
	}

	receives := make([]normalize.ReceiveTx, len(req.ReceiveTransactions))
	for i, in := range req.ReceiveTransactions {
		if receives[i], err = normalize.NormalizeReceiveTx(i, in); err != nil {
			return normalized{}, err
		}
	}

	chainID := normalize.ResolveChainID(header, sends)

	// Every transaction in the block is signed for the block's chain.
	for i, tx := range sends {
		if tx.ChainID != 0 && tx.ChainID != chainID {
			return normalized{}, fault.Newf(fault.Validation, "normalize", fmt.Sprintf("sendTransactions[%d].chainId", i), "chain id %d does not match block chain id %d", tx.ChainID, chainID)
		}
	}

	n := normalized{
		header:   header,
		sends:    sends,
		receives: receives,
		chainID:  chainID,
	}

	return n, nil
}
