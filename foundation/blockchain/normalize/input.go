package normalize

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/validate"
)

// DefaultChainID is used when neither the header nor the first outgoing
// transaction name a chain.
const DefaultChainID = 1

// =============================================================================

// HeaderInput is the caller supplied header skeleton.
type HeaderInput struct {
	ParentHash  Value `json:"parentHash" validate:"required"`
	BlockNumber Value `json:"blockNumber" validate:"required"`
	ExtraData   Value `json:"extraData"`
	ChainID     Value `json:"chainId"`
}

// SendTxInput is the caller supplied description of an outgoing transaction.
type SendTxInput struct {
	Nonce         Value `json:"nonce" validate:"required"`
	GasPrice      Value `json:"gasPrice" validate:"required"`
	Gas           Value `json:"gas" validate:"required"`
	To            Value `json:"to" validate:"required"`
	Value         Value `json:"value" validate:"required"`
	Data          Value `json:"data"`
	CodeAddress   Value `json:"codeAddress"`
	ExecuteOnSend Value `json:"executeOnSend"`
	ChainID       Value `json:"chainId"`
}

// ReceiveTxInput is the caller supplied description of an incoming transaction.
type ReceiveTxInput struct {
	SenderBlockHash     Value `json:"senderBlockHash" validate:"required"`
	SendTransactionHash Value `json:"sendTransactionHash" validate:"required"`
	IsRefund            Value `json:"isRefund" validate:"required"`
	RemainingRefund     Value `json:"remainingRefund" validate:"required"`
}

// =============================================================================

// Header is the canonical form of the header skeleton. A ChainID of zero
// means the caller did not name a chain.
type Header struct {
	ParentHash  common.Hash
	BlockNumber uint64
	ExtraData   []byte
	ChainID     uint64
}

// SendTx is the canonical form of an outgoing transaction. CodeAddress and
// ExecuteOnSend are only carried into blocks whose fork knows them.
type SendTx struct {
	Nonce         uint64
	GasPrice      *big.Int
	Gas           uint64
	To            common.Address
	Value         *big.Int
	Data          []byte
	CodeAddress   []byte
	ExecuteOnSend bool
	ChainID       uint64
}

// ReceiveTx is the canonical form of an incoming transaction.
type ReceiveTx struct {
	SenderBlockHash     common.Hash
	SendTransactionHash common.Hash
	IsRefund            bool
	RemainingRefund     *big.Int
}

// =============================================================================

// NormalizeHeader converts the header input into canonical form.
func NormalizeHeader(in HeaderInput) (Header, error) {
	if err := required("", in); err != nil {
		return Header{}, err
	}

	var h Header
	var err error

	if h.ParentHash, err = ToHash("parentHash", in.ParentHash); err != nil {
		return Header{}, err
	}

	if h.BlockNumber, err = ToUint64("blockNumber", in.BlockNumber); err != nil {
		return Header{}, err
	}

	if h.ExtraData, err = ToOptionalBytes("extraData", in.ExtraData); err != nil {
		return Header{}, err
	}

	if h.ChainID, err = chainID("chainId", in.ChainID); err != nil {
		return Header{}, err
	}

	return h, nil
}

// NormalizeSendTx converts an outgoing transaction input into canonical form.
// The index is used to name the offending field in errors.
func NormalizeSendTx(index int, in SendTxInput) (SendTx, error) {
	prefix := fmt.Sprintf("sendTransactions[%d].", index)

	if err := required(prefix, in); err != nil {
		return SendTx{}, err
	}

	var tx SendTx
	var err error

	if tx.Nonce, err = ToUint64(prefix+"nonce", in.Nonce); err != nil {
		return SendTx{}, err
	}

	if tx.GasPrice, err = ToBig(prefix+"gasPrice", in.GasPrice); err != nil {
		return SendTx{}, err
	}

	if tx.Gas, err = ToUint64(prefix+"gas", in.Gas); err != nil {
		return SendTx{}, err
	}

	if tx.To, err = ToAddress(prefix+"to", in.To); err != nil {
		return SendTx{}, err
	}

	if tx.Value, err = ToBig(prefix+"value", in.Value); err != nil {
		return SendTx{}, err
	}

	if tx.Data, err = ToOptionalBytes(prefix+"data", in.Data); err != nil {
		return SendTx{}, err
	}

	if tx.CodeAddress, err = ToOptionalAddress(prefix+"codeAddress", in.CodeAddress); err != nil {
		return SendTx{}, err
	}

	if tx.ExecuteOnSend, err = ToOptionalBool(prefix+"executeOnSend", in.ExecuteOnSend); err != nil {
		return SendTx{}, err
	}

	if tx.ChainID, err = chainID(prefix+"chainId", in.ChainID); err != nil {
		return SendTx{}, err
	}

	return tx, nil
}

// NormalizeReceiveTx converts an incoming transaction input into canonical
// form. The index is used to name the offending field in errors.
func NormalizeReceiveTx(index int, in ReceiveTxInput) (ReceiveTx, error) {
	prefix := fmt.Sprintf("receiveTransactions[%d].", index)

	if err := required(prefix, in); err != nil {
		return ReceiveTx{}, err
	}

	var tx ReceiveTx
	var err error

	if tx.SenderBlockHash, err = ToHash(prefix+"senderBlockHash", in.SenderBlockHash); err != nil {
		return ReceiveTx{}, err
	}

	if tx.SendTransactionHash, err = ToHash(prefix+"sendTransactionHash", in.SendTransactionHash); err != nil {
		return ReceiveTx{}, err
	}

	if tx.IsRefund, err = ToBool(prefix+"isRefund", in.IsRefund); err != nil {
		return ReceiveTx{}, err
	}

	if tx.RemainingRefund, err = ToBig(prefix+"remainingRefund", in.RemainingRefund); err != nil {
		return ReceiveTx{}, err
	}

	return tx, nil
}

// ResolveChainID picks the chain id for the block: the header's, else the
// first outgoing transaction's, else the default chain.
func ResolveChainID(h Header, sends []SendTx) uint64 {
	if h.ChainID != 0 {
		return h.ChainID
	}

	if len(sends) > 0 && sends[0].ChainID != 0 {
		return sends[0].ChainID
	}

	return DefaultChainID
}

// =============================================================================

// required checks the required tags on the input and reports the first
// missing field as a validation fault.
func required(prefix string, in any) error {
	err := validate.Check(in)
	if err == nil {
		return nil
	}

	fields := validate.GetFieldErrors(err)
	if len(fields) == 0 {
		return fault.New(fault.Validation, stage, prefix, err)
	}

	return fault.New(fault.Validation, stage, prefix+fields[0].Field, errors.New(fields[0].Err))
}

// chainID converts an optional chain id. An explicit zero is rejected since
// zero is reserved to mean not provided.
func chainID(field string, v Value) (uint64, error) {
	if !v.IsSet() {
		return 0, nil
	}

	id, err := ToUint64(field, v)
	if err != nil {
		return 0, err
	}

	if id == 0 {
		return 0, fault.New(fault.Validation, stage, field, errors.New("chain id must be positive"))
	}

	return id, nil
}
