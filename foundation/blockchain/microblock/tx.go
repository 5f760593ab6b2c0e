// Package microblock defines the transactions, header and container that make
// up a Helios micro block along with their canonical encodings. The schemas
// differ per protocol fork: each fork owns its exact field set and every
// dispatch on the fork happens in one switch.
package microblock

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
)

// SendTx is an outgoing transaction built under a specific fork. The set of
// implementations is closed to this package.
type SendTx interface {
	Fork() fork.Fork
	Hash() common.Hash
	Sign(privateKey *ecdsa.PrivateKey, chainID uint64) (SendTx, error)
	FromAddress(chainID uint64) (common.Address, error)
	Signature() (v, r, s *big.Int)
	unsigned() []any
}

// NewSendTx constructs the unsigned outgoing transaction for the fork. The
// signature fields are set to zero.
func NewSendTx(f fork.Fork, in normalize.SendTx) (SendTx, error) {
	switch f {
	case fork.Boson:
		return newBosonTx(in), nil
	case fork.Photon:
		return newPhotonTx(in), nil
	}

	return nil, f.Check("transaction")
}

// =============================================================================

// BosonTx is the outgoing transaction schema before the Photon fork.
type BosonTx struct {
	Nonce    uint64         `json:"nonce"`    // Ethereum: Sequence number of the sending chain.
	GasPrice *big.Int       `json:"gasPrice"` // Ethereum: Price of one unit of gas in wei.
	Gas      uint64         `json:"gas"`      // Ethereum: Maximum units of gas to spend.
	To       common.Address `json:"to"`       // Ethereum: Account receiving the value.
	Value    *big.Int       `json:"value"`    // Ethereum: Amount transferred in wei.
	Data     hexutil.Bytes  `json:"data"`     // Ethereum: Call data.
	V        *big.Int       `json:"v"`        // Recovery id bound to the chain id.
	R        *big.Int       `json:"r"`        // First coordinate of the ECDSA signature.
	S        *big.Int       `json:"s"`        // Second coordinate of the ECDSA signature.
}

func newBosonTx(in normalize.SendTx) BosonTx {
	return BosonTx{
		Nonce:    in.Nonce,
		GasPrice: in.GasPrice,
		Gas:      in.Gas,
		To:       in.To,
		Value:    in.Value,
		Data:     in.Data,
		V:        new(big.Int),
		R:        new(big.Int),
		S:        new(big.Int),
	}
}

// Fork returns the fork this schema belongs to.
func (tx BosonTx) Fork() fork.Fork {
	return fork.Boson
}

// Sign uses the specified private key to sign the transaction for the chain.
func (tx BosonTx) Sign(privateKey *ecdsa.PrivateKey, chainID uint64) (SendTx, error) {
	v, r, s, err := signature.Sign(tx.unsigned(), chainID, privateKey)
	if err != nil {
		return nil, err
	}

	tx.V, tx.R, tx.S = v, r, s
	return tx, nil
}

// Hash returns the hash of the encoded transaction.
func (tx BosonTx) Hash() common.Hash {
	return signature.Hash(tx)
}

// FromAddress extracts the address of the account that signed the transaction.
func (tx BosonTx) FromAddress(chainID uint64) (common.Address, error) {
	return signature.FromAddress(tx.unsigned(), chainID, tx.V, tx.R, tx.S)
}

// Signature returns the signature values.
func (tx BosonTx) Signature() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

// String implements the fmt.Stringer interface for logging.
func (tx BosonTx) String() string {
	return fmt.Sprintf("boson:%d:%s", tx.Nonce, tx.To)
}

func (tx BosonTx) unsigned() []any {
	return []any{tx.Nonce, tx.GasPrice, tx.Gas, tx.To, tx.Value, []byte(tx.Data)}
}

// =============================================================================

// PhotonTx is the outgoing transaction schema from the Photon fork onward.
// It adds the code address to run and whether to run it on send.
type PhotonTx struct {
	Nonce         uint64         `json:"nonce"`
	GasPrice      *big.Int       `json:"gasPrice"`
	Gas           uint64         `json:"gas"`
	To            common.Address `json:"to"`
	Value         *big.Int       `json:"value"`
	Data          hexutil.Bytes  `json:"data"`
	CodeAddress   hexutil.Bytes  `json:"codeAddress"`   // Empty or the 20 byte address of the code to run.
	ExecuteOnSend bool           `json:"executeOnSend"` // Run the code on the sending chain.
	V             *big.Int       `json:"v"`
	R             *big.Int       `json:"r"`
	S             *big.Int       `json:"s"`
}

func newPhotonTx(in normalize.SendTx) PhotonTx {
	return PhotonTx{
		Nonce:         in.Nonce,
		GasPrice:      in.GasPrice,
		Gas:           in.Gas,
		To:            in.To,
		Value:         in.Value,
		Data:          in.Data,
		CodeAddress:   in.CodeAddress,
		ExecuteOnSend: in.ExecuteOnSend,
		V:             new(big.Int),
		R:             new(big.Int),
		S:             new(big.Int),
	}
}

// Fork returns the fork this schema belongs to.
func (tx PhotonTx) Fork() fork.Fork {
	return fork.Photon
}

// Sign uses the specified private key to sign the transaction for the chain.
func (tx PhotonTx) Sign(privateKey *ecdsa.PrivateKey, chainID uint64) (SendTx, error) {
	v, r, s, err := signature.Sign(tx.unsigned(), chainID, privateKey)
	if err != nil {
		return nil, err
	}

	tx.V, tx.R, tx.S = v, r, s
	return tx, nil
}

// Hash returns the hash of the encoded transaction.
func (tx PhotonTx) Hash() common.Hash {
	return signature.Hash(tx)
}

// FromAddress extracts the address of the account that signed the transaction.
func (tx PhotonTx) FromAddress(chainID uint64) (common.Address, error) {
	return signature.FromAddress(tx.unsigned(), chainID, tx.V, tx.R, tx.S)
}

// Signature returns the signature values.
func (tx PhotonTx) Signature() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

// String implements the fmt.Stringer interface for logging.
func (tx PhotonTx) String() string {
	return fmt.Sprintf("photon:%d:%s", tx.Nonce, tx.To)
}

func (tx PhotonTx) unsigned() []any {
	return []any{tx.Nonce, tx.GasPrice, tx.Gas, tx.To, tx.Value, []byte(tx.Data), []byte(tx.CodeAddress), tx.ExecuteOnSend}
}
