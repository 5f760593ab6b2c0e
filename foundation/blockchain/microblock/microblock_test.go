package microblock_test

import (
	"bytes"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/helios-protocol/microblock/foundation/blockchain/merkle"
	"github.com/helios-protocol/microblock/foundation/blockchain/microblock"
	"github.com/helios-protocol/microblock/foundation/blockchain/normalize"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	chainID  = 1
)

// =============================================================================

func Test_SendTxSchemas(t *testing.T) {
	pk := privateKey(t)

	in := sendInput(0)
	in.CodeAddress = common.HexToAddress("0x0000000000000000000000000000000000000abc").Bytes()
	in.ExecuteOnSend = true

	tt := []struct {
		fork   fork.Fork
		fields int
	}{
		{fork: fork.Boson, fields: 9},
		{fork: fork.Photon, fields: 11},
	}

	t.Log("Given the need to build outgoing transactions per fork.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				tx, err := microblock.NewSendTx(tst.fork, in)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to build the transaction: %v", failed, testID, err)
				}

				signed, err := tx.Sign(pk, chainID)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to sign the transaction.", success, testID)

				if signed.Fork() != tst.fork {
					t.Fatalf("\t%s\tTest %d:\tShould keep the fork, got %s.", failed, testID, signed.Fork())
				}

				enc, err := rlp.EncodeToBytes(signed)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to encode the transaction: %v", failed, testID, err)
				}

				content, _, err := rlp.SplitList(enc)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould encode a list: %v", failed, testID, err)
				}

				n, err := rlp.CountValues(content)
				if err != nil || n != tst.fields {
					t.Fatalf("\t%s\tTest %d:\tShould encode %d fields, got %d: %v", failed, testID, tst.fields, n, err)
				}
				t.Logf("\t%s\tTest %d:\tShould encode %d fields.", success, testID, tst.fields)

				if signed.Hash() != crypto.Keccak256Hash(enc) {
					t.Fatalf("\t%s\tTest %d:\tShould hash the signed encoding.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould hash the signed encoding.", success, testID)

				from, err := signed.FromAddress(chainID)
				if err != nil || from != crypto.PubkeyToAddress(pk.PublicKey) {
					t.Fatalf("\t%s\tTest %d:\tShould recover the signer: %s %v", failed, testID, from, err)
				}
				t.Logf("\t%s\tTest %d:\tShould recover the signer.", success, testID)
			}

			t.Run(tst.fork.String(), f)
		}
	}
}

func Test_SendTxDefaults(t *testing.T) {
	t.Log("Given the need to treat a missing data field as empty.")
	{
		t.Logf("\tTest 0:\tWhen data is nil or empty.")
		{
			withNil := sendInput(0)
			withNil.Data = nil

			withEmpty := sendInput(0)
			withEmpty.Data = []byte{}

			tx1, _ := microblock.NewSendTx(fork.Photon, withNil)
			tx2, _ := microblock.NewSendTx(fork.Photon, withEmpty)

			if tx1.Hash() != tx2.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould produce the same hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the same hash.", success)
		}

		t.Logf("\tTest 1:\tWhen the fork is unknown.")
		{
			_, err := microblock.NewSendTx(fork.Fork(7), sendInput(0))
			if !fault.Is(err, fault.UnsupportedFork) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with an unsupported fork fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with an unsupported fork fault.", success)
		}
	}
}

func Test_Header(t *testing.T) {
	pk := privateKey(t)

	t.Log("Given the need to sign a block header.")
	{
		t.Logf("\tTest 0:\tWhen signing with the chain's key.")
		{
			h := header(t, pk)

			if h.ChainAddress != crypto.PubkeyToAddress(pk.PublicKey) {
				t.Fatalf("\t%s\tTest 0:\tShould set the chain address from the key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould set the chain address from the key.", success)

			addr, err := h.Micro().ChainAddress(chainID)
			if err != nil || addr != h.ChainAddress {
				t.Fatalf("\t%s\tTest 0:\tShould recover the chain address: %s %v", failed, addr, err)
			}
			t.Logf("\t%s\tTest 0:\tShould recover the chain address.", success)

			full, err := h.Micro().Header(chainID)
			if err != nil || full.Hash() != h.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould restore the full header: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould restore the full header.", success)
		}

		t.Logf("\tTest 1:\tWhen the chain address belongs to another key.")
		{
			h := microblock.Header{ChainAddress: common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")}
			if _, err := h.Sign(pk, chainID); !fault.Is(err, fault.Signing) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with a signing fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with a signing fault.", success)
		}
	}
}

func Test_RewardBundle(t *testing.T) {
	t.Log("Given the need to commit to the default reward bundle.")
	{
		t.Logf("\tTest 0:\tWhen hashing the default bundle.")
		{
			exp, err := rlp.EncodeToBytes([]any{[]any{uint(0)}, []any{uint(0), []any{}}})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode the expected layout: %v", failed, err)
			}

			rb := microblock.NewRewardBundle()
			if rb.Hash() != crypto.Keccak256Hash(exp) {
				t.Fatalf("\t%s\tTest 0:\tShould hash the two reward types with an empty proof list.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hash the two reward types with an empty proof list.", success)

			if !rb.Empty() {
				t.Fatalf("\t%s\tTest 0:\tShould report the default bundle as empty.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the default bundle as empty.", success)
		}
	}
}

func Test_BlockRoundTrip(t *testing.T) {
	pk := privateKey(t)

	t.Log("Given the need to serialize and decode micro blocks.")
	{
		for testID, f := range []fork.Fork{fork.Boson, fork.Photon} {
			fn := func(t *testing.T) {
				block, h := signedBlock(t, pk, f, 3, 2)

				data, err := block.Encode()
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to encode the block: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to encode the block.", success, testID)

				decoded, err := microblock.Decode(f, data)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to decode the block.", success, testID)

				again, err := decoded.Encode()
				if err != nil || !bytes.Equal(data, again) {
					t.Fatalf("\t%s\tTest %d:\tShould encode the decoded block to the same bytes: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould encode the decoded block to the same bytes.", success, testID)

				full, err := decoded.Verify(chainID)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould verify the decoded block: %v", failed, testID, err)
				}
				if full.Hash() != h.Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould restore the signed header.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould verify the decoded block.", success, testID)

				for i, hash := range decoded.SendTxHashes() {
					if hash != block.SendTransactions[i].Hash() {
						t.Fatalf("\t%s\tTest %d:\tShould keep the transaction order at %d.", failed, testID, i)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould keep the transaction order.", success, testID)
			}

			t.Run(f.String(), fn)
		}
	}
}

func Test_BlockFailures(t *testing.T) {
	pk := privateKey(t)

	t.Log("Given the need to reject inconsistent blocks.")
	{
		t.Logf("\tTest 0:\tWhen a transaction is built for another fork.")
		{
			block, _ := signedBlock(t, pk, fork.Photon, 1, 0)
			block.Fork = fork.Boson

			if _, err := block.Encode(); !fault.Is(err, fault.UnsupportedFork) {
				t.Fatalf("\t%s\tTest 0:\tShould fail with an unsupported fork fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould fail with an unsupported fork fault.", success)
		}

		t.Logf("\tTest 1:\tWhen the fork is unknown.")
		{
			if _, err := microblock.Decode(fork.Fork(9), []byte{0xc0}); !fault.Is(err, fault.UnsupportedFork) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with an unsupported fork fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with an unsupported fork fault.", success)
		}

		t.Logf("\tTest 2:\tWhen the bytes are not a block.")
		{
			if _, err := microblock.Decode(fork.Photon, []byte{0x01, 0x02}); !fault.Is(err, fault.Encoding) {
				t.Fatalf("\t%s\tTest 2:\tShould fail with an encoding fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould fail with an encoding fault.", success)
		}

		t.Logf("\tTest 3:\tWhen the transactions are reordered after signing.")
		{
			block, _ := signedBlock(t, pk, fork.Photon, 2, 0)
			block.SendTransactions[0], block.SendTransactions[1] = block.SendTransactions[1], block.SendTransactions[0]

			if _, err := block.Verify(chainID); !fault.Is(err, fault.Validation) {
				t.Fatalf("\t%s\tTest 3:\tShould fail with a validation fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould fail with a validation fault.", success)
		}

		t.Logf("\tTest 4:\tWhen verifying on another chain.")
		{
			block, _ := signedBlock(t, pk, fork.Photon, 1, 0)

			if _, err := block.Verify(chainID + 1); !fault.Is(err, fault.Signing) {
				t.Fatalf("\t%s\tTest 4:\tShould fail with a signing fault: %v", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould fail with a signing fault.", success)
		}
	}
}

func Test_EmptyBlock(t *testing.T) {
	pk := privateKey(t)

	t.Log("Given the need to sign a block without transactions.")
	{
		t.Logf("\tTest 0:\tWhen both lists are empty.")
		{
			_, h := signedBlock(t, pk, fork.Photon, 0, 0)

			if h.TransactionRoot != merkle.EmptyRoot || h.ReceiveTransactionRoot != merkle.EmptyRoot {
				t.Fatalf("\t%s\tTest 0:\tShould use the empty root for both lists.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould use the empty root for both lists.", success)
		}
	}
}

// =============================================================================

func privateKey(t *testing.T) *ecdsa.PrivateKey {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	return pk
}

func sendInput(nonce uint64) normalize.SendTx {
	return normalize.SendTx{
		Nonce:    nonce,
		GasPrice: big.NewInt(1_000_000_001),
		Gas:      21000,
		To:       common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"),
		Value:    big.NewInt(1000),
		Data:     []byte{},
	}
}

func header(t *testing.T, pk *ecdsa.PrivateKey) microblock.Header {
	h := microblock.Header{
		ParentHash:             common.HexToHash("0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"),
		TransactionRoot:        merkle.EmptyRoot,
		ReceiveTransactionRoot: merkle.EmptyRoot,
		BlockNumber:            12,
		Timestamp:              1_600_000_000,
		ExtraData:              []byte{},
		RewardHash:             microblock.NewRewardBundle().Hash(),
	}

	signed, err := h.Sign(pk, chainID)
	if err != nil {
		t.Fatalf("Should be able to sign the header: %s", err)
	}
	return signed
}

func signedBlock(t *testing.T, pk *ecdsa.PrivateKey, f fork.Fork, sends int, receives int) (microblock.Block, microblock.Header) {
	txs := make([]microblock.SendTx, sends)
	for i := range txs {
		tx, err := microblock.NewSendTx(f, sendInput(uint64(i)))
		if err != nil {
			t.Fatalf("Should be able to build a transaction: %s", err)
		}
		if txs[i], err = tx.Sign(pk, chainID); err != nil {
			t.Fatalf("Should be able to sign a transaction: %s", err)
		}
	}

	rxs := make([]microblock.ReceiveTx, receives)
	for i := range rxs {
		rxs[i] = microblock.NewReceiveTx(normalize.ReceiveTx{
			SenderBlockHash:     common.BigToHash(big.NewInt(int64(i + 1))),
			SendTransactionHash: common.BigToHash(big.NewInt(int64(i + 100))),
			IsRefund:            i%2 == 1,
			RemainingRefund:     big.NewInt(int64(i)),
		})
	}

	sendRoot, err := microblock.TransactionRoot(txs)
	if err != nil {
		t.Fatalf("Should be able to compute the transaction root: %s", err)
	}

	receiveRoot, err := microblock.ReceiveTransactionRoot(rxs)
	if err != nil {
		t.Fatalf("Should be able to compute the receive root: %s", err)
	}

	reward := microblock.NewRewardBundle()

	h := microblock.Header{
		ParentHash:             common.HexToHash("0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"),
		TransactionRoot:        sendRoot,
		ReceiveTransactionRoot: receiveRoot,
		BlockNumber:            12,
		Timestamp:              1_600_000_000,
		ExtraData:              []byte("helios"),
		RewardHash:             reward.Hash(),
	}

	h, err = h.Sign(pk, chainID)
	if err != nil {
		t.Fatalf("Should be able to sign the header: %s", err)
	}

	block := microblock.Block{
		Fork:                f,
		Header:              h.Micro(),
		SendTransactions:    txs,
		ReceiveTransactions: rxs,
		RewardBundle:        reward,
	}

	return block, h
}
