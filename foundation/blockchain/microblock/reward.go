package microblock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/helios-protocol/microblock/foundation/blockchain/signature"
)

// RewardProof is a node staking score attesting to a reward claim.
type RewardProof struct {
	RecipientNodeWalletAddress common.Address `json:"recipientNodeWalletAddress"`
	Score                      uint64         `json:"score"`
	SinceBlockNumber           uint64         `json:"sinceBlockNumber"`
	Timestamp                  uint64         `json:"timestamp"`
	HeadHashOfSenderChain      common.Hash    `json:"headHashOfSenderChain"`
	V                          *big.Int       `json:"v"`
	R                          *big.Int       `json:"r"`
	S                          *big.Int       `json:"s"`
}

// RewardType1 is the stake based reward.
type RewardType1 struct {
	Amount *big.Int `json:"amount"`
}

// RewardType2 is the node score based reward with the proofs backing it.
type RewardType2 struct {
	Amount *big.Int      `json:"amount"`
	Proof  []RewardProof `json:"proof"`
}

// RewardBundle carries the rewards claimed by a block.
type RewardBundle struct {
	RewardType1 RewardType1 `json:"rewardType1"`
	RewardType2 RewardType2 `json:"rewardType2"`
}

// NewRewardBundle constructs the bundle for a block that claims no rewards.
func NewRewardBundle() RewardBundle {
	return RewardBundle{
		RewardType1: RewardType1{Amount: new(big.Int)},
		RewardType2: RewardType2{Amount: new(big.Int), Proof: []RewardProof{}},
	}
}

// Hash returns the hash of the encoded bundle.
func (rb RewardBundle) Hash() common.Hash {
	return signature.Hash(rb)
}

// Empty reports whether the bundle claims nothing.
func (rb RewardBundle) Empty() bool {
	zero := func(v *big.Int) bool { return v == nil || v.Sign() == 0 }
	return zero(rb.RewardType1.Amount) && zero(rb.RewardType2.Amount) && len(rb.RewardType2.Proof) == 0
}
