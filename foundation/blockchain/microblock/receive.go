package microblock

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
)

// ReceiveTx is an incoming transaction that credits a transfer sent from
// another chain. It is not signed on its own, the block signature covers it.
type ReceiveTx struct {
	SenderBlockHash     common.Hash `json:"senderBlockHash"`     // Block on the sending chain holding the send.
	SendTransactionHash common.Hash `json:"sendTransactionHash"` // Hash of the send being received.
	IsRefund            bool        `json:"isRefund"`            // The send is returning unused funds.
	RemainingRefund     *big.Int    `json:"remainingRefund"`     // Amount still owed back in wei.
}

// NewReceiveTx constructs an incoming transaction. The schema is the same
// under every known fork.
func NewReceiveTx(in normalize.ReceiveTx) ReceiveTx {
	return ReceiveTx{
		SenderBlockHash:     in.SenderBlockHash,
		SendTransactionHash: in.SendTransactionHash,
		IsRefund:            in.IsRefund,
		RemainingRefund:     in.RemainingRefund,
	}
}

// Hash returns the hash of the encoded transaction.
func (tx ReceiveTx) Hash() common.Hash {
	return signature.Hash(tx)
}

// String implements the fmt.Stringer interface for logging.
func (tx ReceiveTx) String() string {
	return fmt.Sprintf("receive:%s", tx.SendTransactionHash)
}
