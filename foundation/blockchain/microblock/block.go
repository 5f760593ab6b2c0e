package microblock

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/merkle"
)

// Block is a signed micro block under a single fork.
type Block struct {
	Fork                fork.Fork    `json:"fork"`
	Header              MicroHeader  `json:"header"`
	SendTransactions    []SendTx     `json:"sendTransactions"`
	ReceiveTransactions []ReceiveTx  `json:"receiveTransactions"`
	RewardBundle        RewardBundle `json:"rewardBundle"`
}

// container is the wire layout of a block. The outgoing transaction type
// fixes the fork.
type container[T SendTx] struct {
	Header              MicroHeader
	Transactions        []T
	ReceiveTransactions []ReceiveTx
	RewardBundle        RewardBundle
}

// Encode serializes the block using the container schema of its fork.
func (b Block) Encode() ([]byte, error) {
	switch b.Fork {
	case fork.Boson:
		return encode[BosonTx](b)
	case fork.Photon:
		return encode[PhotonTx](b)
	}

	return nil, b.Fork.Check("serialize")
}

// EncodeHex serializes the block and returns it as a 0x prefixed string.
func (b Block) EncodeHex() (string, error) {
	data, err := b.Encode()
	if err != nil {
		return "", err
	}

	return hexutil.Encode(data), nil
}

// Decode parses a serialized block using the container schema of the fork.
func Decode(f fork.Fork, data []byte) (Block, error) {
	switch f {
	case fork.Boson:
		return decode[BosonTx](f, data)
	case fork.Photon:
		return decode[PhotonTx](f, data)
	}

	return Block{}, f.Check("decode")
}

// SendTxHashes returns the hash of every outgoing transaction in order.
func (b Block) SendTxHashes() []common.Hash {
	hashes := make([]common.Hash, len(b.SendTransactions))
	for i, tx := range b.SendTransactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// ReceiveTxHashes returns the hash of every incoming transaction in order.
func (b Block) ReceiveTxHashes() []common.Hash {
	hashes := make([]common.Hash, len(b.ReceiveTransactions))
	for i, tx := range b.ReceiveTransactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// Verify checks the header commits to the transactions and reward bundle
// carried by the block and that every outgoing transaction was signed by the
// chain. It returns the full header.
func (b Block) Verify(chainID uint64) (Header, error) {
	const stage = "verify"

	h, err := b.Header.Header(chainID)
	if err != nil {
		return Header{}, err
	}

	sendRoot, err := TransactionRoot(b.SendTransactions)
	if err != nil {
		return Header{}, err
	}
	if sendRoot != h.TransactionRoot {
		return Header{}, fault.Newf(fault.Validation, stage, "transactionRoot", "root %s does not match transactions %s", h.TransactionRoot, sendRoot)
	}

	receiveRoot, err := ReceiveTransactionRoot(b.ReceiveTransactions)
	if err != nil {
		return Header{}, err
	}
	if receiveRoot != h.ReceiveTransactionRoot {
		return Header{}, fault.Newf(fault.Validation, stage, "receiveTransactionRoot", "root %s does not match transactions %s", h.ReceiveTransactionRoot, receiveRoot)
	}

	if rh := b.RewardBundle.Hash(); rh != h.RewardHash {
		return Header{}, fault.Newf(fault.Validation, stage, "rewardHash", "hash %s does not match reward bundle %s", h.RewardHash, rh)
	}

	for i, tx := range b.SendTransactions {
		from, err := tx.FromAddress(chainID)
		if err != nil {
			return Header{}, err
		}
		if from != h.ChainAddress {
			return Header{}, fault.Newf(fault.Signing, stage, fmt.Sprintf("sendTransactions[%d]", i), "signed by %s, not the chain %s", from, h.ChainAddress)
		}
	}

	return h, nil
}

// =============================================================================

// TransactionRoot returns the trie root of the signed outgoing transactions.
func TransactionRoot(txs []SendTx) (common.Hash, error) {
	root, err := merkle.Root(txs)
	if err != nil {
		return common.Hash{}, fault.New(fault.Encoding, "roots", "sendTransactions", err)
	}
	return root, nil
}

// ReceiveTransactionRoot returns the trie root of the incoming transactions.
func ReceiveTransactionRoot(txs []ReceiveTx) (common.Hash, error) {
	root, err := merkle.Root(txs)
	if err != nil {
		return common.Hash{}, fault.New(fault.Encoding, "roots", "receiveTransactions", err)
	}
	return root, nil
}

// =============================================================================

func encode[T SendTx](b Block) ([]byte, error) {
	txs := make([]T, len(b.SendTransactions))
	for i, tx := range b.SendTransactions {
		typed, ok := tx.(T)
		if !ok {
			return nil, fault.Newf(fault.UnsupportedFork, "serialize", fmt.Sprintf("sendTransactions[%d]", i), "%s transaction in a %s block", tx.Fork(), b.Fork)
		}
		txs[i] = typed
	}

	c := container[T]{
		Header:              b.Header,
		Transactions:        txs,
		ReceiveTransactions: nonNil(b.ReceiveTransactions),
		RewardBundle:        b.RewardBundle,
	}

	data, err := rlp.EncodeToBytes(c)
	if err != nil {
		return nil, fault.New(fault.Encoding, "serialize", "", err)
	}

	return data, nil
}

func decode[T SendTx](f fork.Fork, data []byte) (Block, error) {
	if len(data) == 0 {
		return Block{}, fault.New(fault.Encoding, "decode", "", errors.New("empty block"))
	}

	var c container[T]
	if err := rlp.DecodeBytes(data, &c); err != nil {
		return Block{}, fault.New(fault.Encoding, "decode", "", err)
	}

	txs := make([]SendTx, len(c.Transactions))
	for i, tx := range c.Transactions {
		txs[i] = tx
	}

	b := Block{
		Fork:                f,
		Header:              c.Header,
		SendTransactions:    txs,
		ReceiveTransactions: nonNil(c.ReceiveTransactions),
		RewardBundle:        c.RewardBundle,
	}

	if b.RewardBundle.RewardType2.Proof == nil {
		b.RewardBundle.RewardType2.Proof = []RewardProof{}
	}

	return b, nil
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
