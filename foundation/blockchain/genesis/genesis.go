// Package genesis maintains access to the chain configuration file. The file
// names every known chain and the time its protocol forks activate.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Chain represents the configuration for a single chain id.
type Chain struct {
	ChainID         uint64 `json:"chain_id"`         // The chain id signatures are bound to.
	Name            string `json:"name"`             // Human readable name of the network.
	PhotonTimestamp int64  `json:"photon_timestamp"` // Unix time the Photon fork activates.
}

// Genesis represents the genesis file.
type Genesis struct {
	Date   time.Time `json:"date"`
	Chains []Chain   `json:"chains"`
}

// =============================================================================

// Default returns the configuration for the public Helios networks.
func Default() Genesis {
	return Genesis{
		Date: time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC),
		Chains: []Chain{
			{ChainID: 1, Name: "mainnet", PhotonTimestamp: 1561939200},
			{ChainID: 42, Name: "testnet", PhotonTimestamp: 1559347200},
		},
	}
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	seen := make(map[uint64]bool, len(genesis.Chains))
	for _, chain := range genesis.Chains {
		if chain.ChainID == 0 {
			return Genesis{}, fmt.Errorf("genesis %s: chain %q has no chain id", path, chain.Name)
		}
		if seen[chain.ChainID] {
			return Genesis{}, fmt.Errorf("genesis %s: chain id %d listed twice", path, chain.ChainID)
		}
		seen[chain.ChainID] = true
	}

	return genesis, nil
}

// PhotonTimestamp returns the Photon activation time for the chain. Chains
// missing from the file have Photon active from the start.
func (g Genesis) PhotonTimestamp(chainID uint64) int64 {
	for _, chain := range g.Chains {
		if chain.ChainID == chainID {
			return chain.PhotonTimestamp
		}
	}

	return 0
}
