package fork_test

import (
	"testing"

	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Select(t *testing.T) {
	const activation = 1_600_000_000

	gen := genesis.Genesis{
		Chains: []genesis.Chain{{ChainID: 1, PhotonTimestamp: activation}},
	}

	type table struct {
		name      string
		chainID   uint64
		timestamp int64
		exp       fork.Fork
	}

	tt := []table{
		{name: "before", chainID: 1, timestamp: activation - 1, exp: fork.Boson},
		{name: "at", chainID: 1, timestamp: activation, exp: fork.Photon},
		{name: "after", chainID: 1, timestamp: activation + 1, exp: fork.Photon},
		{name: "unknown-chain", chainID: 99, timestamp: 0, exp: fork.Photon},
	}

	t.Log("Given the need to select the fork from the signing time.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := fork.Select(gen, tst.chainID, tst.timestamp)
				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould select the right fork.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould select the right fork.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Parse(t *testing.T) {
	t.Log("Given the need to name forks.")
	{
		for _, exp := range []fork.Fork{fork.Boson, fork.Photon} {
			text, err := exp.MarshalText()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to marshal %s: %v", failed, exp, err)
			}

			var got fork.Fork
			if err := got.UnmarshalText(text); err != nil || got != exp {
				t.Fatalf("\t%s\tShould get back %s: %v", failed, exp, err)
			}
		}
		t.Logf("\t%s\tShould be able to name every known fork.", success)

		if _, err := fork.Parse("tachyon"); !fault.Is(err, fault.UnsupportedFork) {
			t.Fatalf("\t%s\tShould reject an unknown name: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unknown name.", success)

		if err := fork.Fork(9).Check("serialize"); !fault.Is(err, fault.UnsupportedFork) {
			t.Fatalf("\t%s\tShould reject an unknown fork id: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unknown fork id.", success)
	}
}
