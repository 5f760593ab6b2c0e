// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// chainIDOffset is added to the recovery id along with twice the chain id so
// a signature is only valid on the chain it was produced for.
const chainIDOffset = 35

// stage is the pipeline stage reported in faults from this package.
const stage = "sign"

// =============================================================================

// Hash returns the keccak256 hash of the canonical encoding of the value.
func Hash(value any) common.Hash {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return common.Hash{}
	}

	return crypto.Keccak256Hash(data)
}

// Digest returns the 32 byte message that is signed for the specified
// unsigned fields. The chain id and two empty values are appended so the
// signature commits to the chain.
func Digest(fields []any, chainID uint64) ([]byte, error) {
	payload := make([]any, 0, len(fields)+3)
	payload = append(payload, fields...)
	payload = append(payload, chainID, uint(0), uint(0))

	data, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, fault.New(fault.Encoding, stage, "", err)
	}

	return crypto.Keccak256(data), nil
}

// Sign uses the specified private key to sign the unsigned fields for the
// specified chain.
func Sign(fields []any, chainID uint64, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	if privateKey == nil {
		return nil, nil, nil, fault.New(fault.Signing, stage, "privateKey", errors.New("no private key provided"))
	}

	// Prepare the data for signing.
	data, err := Digest(fields, chainID)
	if err != nil {
		return nil, nil, nil, err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, fault.New(fault.Signing, stage, "privateKey", err)
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, fault.New(fault.Signing, stage, "", err)
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, nil, nil, fault.New(fault.Signing, stage, "", errors.New("invalid signature"))
	}

	// Convert the 65 byte signature into the [R|S|V] format.
	v, r, s = toSignatureValues(sig, chainID)

	return v, r, s, nil
}

// VerifySignature verifies the signature values are well formed for the
// specified chain.
func VerifySignature(chainID uint64, v, r, s *big.Int) error {
	recID, err := recoveryID(chainID, v)
	if err != nil {
		return err
	}

	// Check the signature values are valid.
	if r == nil || s == nil || !crypto.ValidateSignatureValues(recID, r, s, true) {
		return fault.New(fault.Signing, stage, "", errors.New("invalid signature values"))
	}

	return nil
}

// FromAddress extracts the address for the account that signed the fields.
func FromAddress(fields []any, chainID uint64, v, r, s *big.Int) (common.Address, error) {

	// NOTE: If the same exact fields for the given signature are not provided
	// we will get the wrong address back. The public key is being extracted
	// from the data and signature.

	if err := VerifySignature(chainID, v, r, s); err != nil {
		return common.Address{}, err
	}

	// Prepare the data for public key extraction.
	data, err := Digest(fields, chainID)
	if err != nil {
		return common.Address{}, err
	}

	// Convert the [R|S|V] format into the original 65 bytes.
	sig, err := ToSignatureBytes(chainID, v, r, s)
	if err != nil {
		return common.Address{}, err
	}

	// Capture the public key associated with this data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return common.Address{}, fault.New(fault.Signing, stage, "", err)
	}

	// Extract the account address from the public key.
	return crypto.PubkeyToAddress(*publicKey), nil
}

// SignatureString returns the signature as a string.
func SignatureString(chainID uint64, v, r, s *big.Int) string {
	sig, err := ToSignatureBytes(chainID, v, r, s)
	if err != nil {
		return ""
	}
	return hexutil.Encode(sig)
}

// ToSignatureBytes converts the r, s, v values into the 65 byte form with
// the chain offset removed from v.
func ToSignatureBytes(chainID uint64, v, r, s *big.Int) ([]byte, error) {
	recID, err := recoveryID(chainID, v)
	if err != nil {
		return nil, err
	}

	if r == nil || s == nil || r.Sign() < 0 || s.Sign() < 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return nil, fault.New(fault.Signing, stage, "", errors.New("signature values out of range"))
	}

	sig := make([]byte, crypto.SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[crypto.RecoveryIDOffset] = recID

	return sig, nil
}

// =============================================================================

// HexToPrivateKey parses a hex encoded private key, with or without the 0x
// prefix.
func HexToPrivateKey(key string) (*ecdsa.PrivateKey, error) {
	if len(key) >= 2 && key[0] == '0' && (key[1] == 'x' || key[1] == 'X') {
		key = key[2:]
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, fault.New(fault.Signing, stage, "privateKey", errors.New("malformed private key"))
	}

	return privateKey, nil
}

// ToPrivateKey parses a raw 32 byte private key.
func ToPrivateKey(key []byte) (*ecdsa.PrivateKey, error) {
	privateKey, err := crypto.ToECDSA(key)
	if err != nil {
		return nil, fault.New(fault.Signing, stage, "privateKey", errors.New("malformed private key"))
	}

	return privateKey, nil
}

// =============================================================================

// toSignatureValues converts the signature into the r, s, v values.
func toSignatureValues(sig []byte, chainID uint64) (v, r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetUint64(chainID)
	v.Lsh(v, 1)
	v.Add(v, big.NewInt(int64(sig[crypto.RecoveryIDOffset])+chainIDOffset))

	return v, r, s
}

// recoveryID removes the chain offset from v and checks the remaining
// recovery id is 0 or 1.
func recoveryID(chainID uint64, v *big.Int) (byte, error) {
	if v == nil {
		return 0, fault.New(fault.Signing, stage, "v", errors.New("missing recovery id"))
	}

	offset := new(big.Int).SetUint64(chainID)
	offset.Lsh(offset, 1)
	offset.Add(offset, big.NewInt(chainIDOffset))

	id := new(big.Int).Sub(v, offset)
	if !id.IsInt64() || (id.Int64() != 0 && id.Int64() != 1) {
		return 0, fault.New(fault.Signing, stage, "v", errors.New("invalid recovery id for chain"))
	}

	return byte(id.Int64()), nil
}
