package blocksign

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
	"github.com/helios-protocol/microblock/foundation/hls"
)

// DefaultGas is the gas limit given to an outgoing transaction that does not
// name one. It covers a plain value transfer.
const DefaultGas = 21000

// Node represents the behavior required from a node to prepare and submit
// blocks.
type Node interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	GetBlockCreationParams(ctx context.Context, chainAddress common.Address) (hls.BlockCreationParams, error)
	SendRawBlock(ctx context.Context, rawBlock hexutil.Bytes) error
}

// Prepare fills in the header and the per transaction fields the node
// decides for the chain of the private key. Nonces are assigned in order
// starting from the chain's next nonce and the gas price is one gwei above
// the node's minimum.
func (c *Core) Prepare(ctx context.Context, node Node, privateKey *ecdsa.PrivateKey, sends []normalize.SendTxInput) (Request, error) {
	if privateKey == nil {
		return Request{}, errors.New("no private key provided")
	}

	chainAddress := crypto.PubkeyToAddress(privateKey.PublicKey)

	bcp, err := node.GetBlockCreationParams(ctx, chainAddress)
	if err != nil {
		return Request{}, fmt.Errorf("block creation params: %w", err)
	}

	minGasPrice, err := node.GasPrice(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("gas price: %w", err)
	}

	gasPrice := new(big.Int).Add(minGasPrice, common.Big1)
	gasPrice.Mul(gasPrice, big.NewInt(params.GWei))

	prepared := make([]normalize.SendTxInput, len(sends))
	nonce := uint64(bcp.Nonce)
	for i, tx := range sends {
		if !tx.Gas.IsSet() {
			tx.Gas = normalize.Uint(DefaultGas)
		}
		tx.Nonce = normalize.Uint(nonce)
		tx.GasPrice = normalize.Big(gasPrice)
		prepared[i] = tx

		nonce++
	}

	c.evHandler("blocksign: Prepare: chain[%s] num[%d] nonce[%d] gasPrice[%s]", chainAddress, uint64(bcp.BlockNumber), uint64(bcp.Nonce), gasPrice)

	req := Request{
		Header: normalize.HeaderInput{
			ParentHash:  normalize.Hex(bcp.ParentHash.Hex()),
			BlockNumber: normalize.Uint(uint64(bcp.BlockNumber)),
		},
		SendTransactions: prepared,
	}

	return req, nil
}

// Submit prepares the transactions, signs the block and sends it to the node.
func (c *Core) Submit(ctx context.Context, node Node, privateKey *ecdsa.PrivateKey, sends []normalize.SendTxInput) (Result, error) {
	req, err := c.Prepare(ctx, node, privateKey, sends)
	if err != nil {
		return Result{}, err
	}

	res, err := c.SignBlock(req, privateKey)
	if err != nil {
		return Result{}, err
	}

	raw, err := hexutil.Decode(res.RawBlock)
	if err != nil {
		return Result{}, fmt.Errorf("raw block: %w", err)
	}

	if err := node.SendRawBlock(ctx, raw); err != nil {
		return Result{}, fmt.Errorf("send raw block: %w", err)
	}

	c.evHandler("blocksign: Submit: hash[%s]", res.BlockHash)

	return res, nil
}
