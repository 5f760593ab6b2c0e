package blocksign

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/microblock"
)

// Decoded is a verified block along with the header restored from it.
type Decoded struct {
	Fork      fork.Fork         `json:"fork"`
	ChainID   uint64            `json:"chainId"`
	Header    microblock.Header `json:"header"`
	Block     microblock.Block  `json:"block"`
	BlockHash common.Hash       `json:"blockHash"`
}

// Decode parses a hex encoded block and verifies it against the chain. When
// no fork is named the schemas are tried from newest to oldest and a block
// both parse is assigned the fork its timestamp selects.
func (c *Core) Decode(rawBlock string, chainID uint64, f *fork.Fork) (Decoded, error) {
	data, err := hexutil.Decode(rawBlock)
	if err != nil {
		return Decoded{}, fault.New(fault.Encoding, "decode", "rawBlock", err)
	}

	if chainID == 0 {
		return Decoded{}, fault.New(fault.Validation, "decode", "chainId", errors.New("chain id must be positive"))
	}

	candidates := []fork.Fork{fork.Photon, fork.Boson}
	if f != nil {
		candidates = []fork.Fork{*f}
	}

	var found []microblock.Block
	for _, candidate := range candidates {
		block, err := microblock.Decode(candidate, data)
		if err != nil {
			if len(candidates) == 1 {
				return Decoded{}, err
			}
			continue
		}
		found = append(found, block)
	}

	if len(found) == 0 {
		return Decoded{}, fault.New(fault.Encoding, "decode", "rawBlock", errors.New("block does not match any fork schema"))
	}

	block := found[0]
	for _, b := range found[1:] {
		if b.Fork == c.Fork(chainID, int64(b.Header.Timestamp)) {
			block = b
		}
	}

	h, err := block.Verify(chainID)
	if err != nil {
		return Decoded{}, err
	}

	c.evHandler("blocksign: Decode: fork[%s]: chain[%s] num[%d]", block.Fork, h.ChainAddress, h.BlockNumber)

	d := Decoded{
		Fork:      block.Fork,
		ChainID:   chainID,
		Header:    h,
		Block:     block,
		BlockHash: h.Hash(),
	}

	return d, nil
}
