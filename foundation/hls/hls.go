// Package hls provides a client for the hls namespace of a Helios node's
// JSON-RPC API. It covers the calls needed to prepare and submit blocks.
package hls

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// BlockCreationParams are the values a node provides for building the next
// block on a chain.
type BlockCreationParams struct {
	BlockNumber hexutil.Uint64 `json:"block_number"`
	ParentHash  common.Hash    `json:"parent_hash"`
	Nonce       hexutil.Uint64 `json:"nonce"`
}

// Client represents a connection to a node.
type Client struct {
	rpc *rpc.Client
}

// Dial connects a client to the node at the url. The url can be http, ws or
// an IPC path.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return NewClient(c), nil
}

// NewClient constructs a client over an existing rpc connection.
func NewClient(c *rpc.Client) *Client {
	return &Client{
		rpc: c,
	}
}

// Close closes the connection to the node.
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID returns the chain id the node signs for.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &id, "hls_chainId"); err != nil {
		return 0, err
	}

	return uint64(id), nil
}

// GasPrice returns the minimum gas price the node accepts, in gwei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := c.rpc.CallContext(ctx, &price, "hls_gasPrice"); err != nil {
		return nil, err
	}

	return (*big.Int)(&price), nil
}

// GetBlockCreationParams returns the values for building the next block on
// the chain.
func (c *Client) GetBlockCreationParams(ctx context.Context, chainAddress common.Address) (BlockCreationParams, error) {
	var bcp BlockCreationParams
	if err := c.rpc.CallContext(ctx, &bcp, "hls_getBlockCreationParams", chainAddress); err != nil {
		return BlockCreationParams{}, err
	}

	return bcp, nil
}

// SendRawBlock submits an encoded block to the node.
func (c *Client) SendRawBlock(ctx context.Context, rawBlock hexutil.Bytes) error {
	return c.rpc.CallContext(ctx, nil, "hls_sendRawBlock", rawBlock)
}
