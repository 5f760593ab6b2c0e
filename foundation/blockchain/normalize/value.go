// Package normalize coerces loosely typed block and transaction fields into
// their canonical fixed width forms. A field arrives as a raw JSON token: a
// string holding hex (with or without the 0x prefix), a number, or a boolean.
// There is one conversion function per field kind and every failure is
// reported as a validation or encoding fault naming the field.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
)

// stage is the pipeline stage reported in faults from this package.
const stage = "normalize"

// Value is a raw input field as received from the caller. A nil Value means
// the field was not provided.
type Value []byte

// Hex constructs a value from a hex string.
func Hex(s string) Value {
	d, _ := json.Marshal(s)
	return Value(d)
}

// Bytes constructs a value from raw bytes.
func Bytes(b []byte) Value {
	return Hex(hexutil.Encode(b))
}

// Uint constructs a value from an unsigned integer.
func Uint(n uint64) Value {
	return Value(strconv.FormatUint(n, 10))
}

// Big constructs a value from a big integer.
func Big(n *big.Int) Value {
	if n == nil {
		return nil
	}
	return Value(n.String())
}

// Bool constructs a value from a boolean.
func Bool(b bool) Value {
	return Value(strconv.FormatBool(b))
}

// IsSet reports whether the field was provided.
func (v Value) IsSet() bool {
	return v != nil
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. A JSON null leaves
// the value unset.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	*v = append((*v)[0:0], data...)
	return nil
}

// =============================================================================

// token kinds a raw value can hold.
const (
	tokenString = iota
	tokenNumber
	tokenBool
)

// token classifies the raw value and returns its content. Strings are
// returned unquoted.
func (v Value) token(field string) (int, string, error) {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return 0, "", fault.New(fault.Validation, stage, field, errors.New("field is required"))
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return 0, "", fault.Newf(fault.Encoding, stage, field, "invalid string: %s", err)
		}
		return tokenString, strings.TrimSpace(s), nil

	case c == '-' || (c >= '0' && c <= '9'):
		return tokenNumber, raw, nil

	case raw == "true" || raw == "false":
		return tokenBool, raw, nil
	}

	return 0, "", fault.Newf(fault.Encoding, stage, field, "unsupported value %s", raw)
}

// trimHex removes an optional 0x prefix.
func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// =============================================================================

// ToBytes converts a hex string value into bytes. Odd length hex is padded
// with a leading zero nibble.
func ToBytes(field string, v Value) ([]byte, error) {
	kind, s, err := v.token(field)
	if err != nil {
		return nil, err
	}

	if kind != tokenString {
		return nil, fault.Newf(fault.Encoding, stage, field, "expected hex string, got %s", string(v))
	}

	h := trimHex(s)
	if len(h)%2 == 1 {
		h = "0" + h
	}

	b, err := hexutil.Decode("0x" + h)
	if err != nil {
		return nil, fault.Newf(fault.Encoding, stage, field, "invalid hex %q: %s", s, err)
	}

	return b, nil
}

// ToOptionalBytes converts the value into bytes, returning an empty byte
// string when the field was not provided.
func ToOptionalBytes(field string, v Value) ([]byte, error) {
	if !v.IsSet() {
		return []byte{}, nil
	}
	return ToBytes(field, v)
}

// ToAddress converts the value into a 20 byte address.
func ToAddress(field string, v Value) (common.Address, error) {
	b, err := ToBytes(field, v)
	if err != nil {
		return common.Address{}, err
	}

	if len(b) != common.AddressLength {
		return common.Address{}, fault.Newf(fault.Validation, stage, field, "address must be %d bytes, got %d", common.AddressLength, len(b))
	}

	return common.BytesToAddress(b), nil
}

// ToOptionalAddress converts the value into either an empty byte string or
// a 20 byte address.
func ToOptionalAddress(field string, v Value) ([]byte, error) {
	b, err := ToOptionalBytes(field, v)
	if err != nil {
		return nil, err
	}

	if len(b) != 0 && len(b) != common.AddressLength {
		return nil, fault.Newf(fault.Validation, stage, field, "address must be empty or %d bytes, got %d", common.AddressLength, len(b))
	}

	return b, nil
}

// ToHash converts the value into a 32 byte digest.
func ToHash(field string, v Value) (common.Hash, error) {
	b, err := ToBytes(field, v)
	if err != nil {
		return common.Hash{}, err
	}

	if len(b) != common.HashLength {
		return common.Hash{}, fault.Newf(fault.Validation, stage, field, "hash must be %d bytes, got %d", common.HashLength, len(b))
	}

	return common.BytesToHash(b), nil
}

// ToBig converts a number or hex string value into a non-negative integer.
func ToBig(field string, v Value) (*big.Int, error) {
	kind, s, err := v.token(field)
	if err != nil {
		return nil, err
	}

	var n *big.Int
	var ok bool

	switch kind {
	case tokenNumber:
		n, ok = new(big.Int).SetString(s, 10)

	case tokenString:
		h := trimHex(s)
		if h != "" {
			n, ok = new(big.Int).SetString(h, 16)
		}

	default:
		return nil, fault.Newf(fault.Encoding, stage, field, "expected integer, got %s", s)
	}

	if !ok {
		return nil, fault.Newf(fault.Encoding, stage, field, "invalid integer %q", s)
	}

	if n.Sign() < 0 {
		return nil, fault.Newf(fault.Validation, stage, field, "must not be negative, got %s", n)
	}

	return n, nil
}

// ToUint64 converts a number or hex string value into an unsigned 64 bit
// integer.
func ToUint64(field string, v Value) (uint64, error) {
	n, err := ToBig(field, v)
	if err != nil {
		return 0, err
	}

	if !n.IsUint64() {
		return 0, fault.Newf(fault.Validation, stage, field, "value %s overflows 64 bits", n)
	}

	return n.Uint64(), nil
}

// ToBool converts a boolean, number or hex encoded integer into a boolean.
// Zero is false and any other integer is true.
func ToBool(field string, v Value) (bool, error) {
	kind, s, err := v.token(field)
	if err != nil {
		return false, err
	}

	if kind == tokenBool {
		return s == "true", nil
	}

	n, err := ToBig(field, v)
	if err != nil {
		return false, err
	}

	return n.Sign() != 0, nil
}

// ToOptionalBool converts the value into a boolean, returning false when the
// field was not provided.
func ToOptionalBool(field string, v Value) (bool, error) {
	if !v.IsSet() {
		return false, nil
	}
	return ToBool(field, v)
}
