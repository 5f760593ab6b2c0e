package microblock

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
)

// Header represents common information required for each block. The chain
// address identifies the chain the block extends and is the signer's address.
type Header struct {
	ChainAddress           common.Address `json:"chainAddress"`           // Address of the chain, derived from the signing key.
	ParentHash             common.Hash    `json:"parentHash"`             // Hash of the previous block on the chain.
	TransactionRoot        common.Hash    `json:"transactionRoot"`        // Trie root of the signed outgoing transactions.
	ReceiveTransactionRoot common.Hash    `json:"receiveTransactionRoot"` // Trie root of the incoming transactions.
	BlockNumber            uint64         `json:"blockNumber"`            // Height of the block on the chain.
	Timestamp              uint64         `json:"timestamp"`              // Unix time the block was signed, in seconds.
	ExtraData              hexutil.Bytes  `json:"extraData"`              // Arbitrary caller data.
	RewardHash             common.Hash    `json:"rewardHash"`             // Hash of the reward bundle.
	V                      *big.Int       `json:"v"`
	R                      *big.Int       `json:"r"`
	S                      *big.Int       `json:"s"`
}

// Sign uses the specified private key to sign the header for the chain. The
// chain address is set to the address of the key when it is empty and must
// match it otherwise.
func (h Header) Sign(privateKey *ecdsa.PrivateKey, chainID uint64) (Header, error) {
	if privateKey == nil {
		return Header{}, fault.New(fault.Signing, "header", "privateKey", errors.New("no private key provided"))
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	switch h.ChainAddress {
	case common.Address{}:
		h.ChainAddress = address
	case address:
	default:
		return Header{}, fault.Newf(fault.Signing, "header", "chainAddress", "chain address %s does not belong to the signing key", h.ChainAddress)
	}

	v, r, s, err := signature.Sign(h.Micro().unsigned(), chainID, privateKey)
	if err != nil {
		return Header{}, err
	}

	h.V, h.R, h.S = v, r, s
	return h, nil
}

// Hash returns the hash of the encoded header.
func (h Header) Hash() common.Hash {
	return signature.Hash(h)
}

// Micro returns the compact form of the header carried inside a block.
func (h Header) Micro() MicroHeader {
	return MicroHeader{
		ParentHash:             h.ParentHash,
		TransactionRoot:        h.TransactionRoot,
		ReceiveTransactionRoot: h.ReceiveTransactionRoot,
		BlockNumber:            h.BlockNumber,
		Timestamp:              h.Timestamp,
		ExtraData:              h.ExtraData,
		RewardHash:             h.RewardHash,
		V:                      h.V,
		R:                      h.R,
		S:                      h.S,
	}
}

// =============================================================================

// MicroHeader is the header without the chain address. The address is
// recovered from the signature.
type MicroHeader struct {
	ParentHash             common.Hash   `json:"parentHash"`
	TransactionRoot        common.Hash   `json:"transactionRoot"`
	ReceiveTransactionRoot common.Hash   `json:"receiveTransactionRoot"`
	BlockNumber            uint64        `json:"blockNumber"`
	Timestamp              uint64        `json:"timestamp"`
	ExtraData              hexutil.Bytes `json:"extraData"`
	RewardHash             common.Hash   `json:"rewardHash"`
	V                      *big.Int      `json:"v"`
	R                      *big.Int      `json:"r"`
	S                      *big.Int      `json:"s"`
}

// ChainAddress recovers the address that signed the header.
func (m MicroHeader) ChainAddress(chainID uint64) (common.Address, error) {
	return signature.FromAddress(m.unsigned(), chainID, m.V, m.R, m.S)
}

// Header restores the full header by recovering the chain address.
func (m MicroHeader) Header(chainID uint64) (Header, error) {
	address, err := m.ChainAddress(chainID)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		ChainAddress:           address,
		ParentHash:             m.ParentHash,
		TransactionRoot:        m.TransactionRoot,
		ReceiveTransactionRoot: m.ReceiveTransactionRoot,
		BlockNumber:            m.BlockNumber,
		Timestamp:              m.Timestamp,
		ExtraData:              m.ExtraData,
		RewardHash:             m.RewardHash,
		V:                      m.V,
		R:                      m.R,
		S:                      m.S,
	}

	return h, nil
}

func (m MicroHeader) unsigned() []any {
	return []any{m.ParentHash, m.TransactionRoot, m.ReceiveTransactionRoot, m.BlockNumber, m.Timestamp, []byte(m.ExtraData), m.RewardHash}
}
