// Package merkle computes the root of the ordered trie committing to a list
// of transactions. Each item is stored under the canonical encoding of its
// index so the root changes with the content, count and order of the list.
package merkle

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
)

// EmptyRoot is the root of a list with no items.
var EmptyRoot = types.EmptyRootHash

// Root returns the trie root for the ordered set of values. Each value is
// stored as its canonical encoding.
func Root[T any](values []T) (common.Hash, error) {
	if len(values) == 0 {
		return EmptyRoot, nil
	}

	items, err := Encode(values)
	if err != nil {
		return common.Hash{}, err
	}

	return types.DeriveSha(items, trie.NewStackTrie(nil)), nil
}

// Encode converts the ordered set of values into their canonical encodings.
func Encode[T any](values []T) (EncodedList, error) {
	items := make(EncodedList, len(values))
	for i, value := range values {
		data, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, fmt.Errorf("encoding item %d: %w", i, err)
		}
		items[i] = data
	}

	return items, nil
}

// =============================================================================

// EncodedList is a list of already encoded items that can be hashed into a
// trie.
type EncodedList [][]byte

// Len returns the number of items in the list.
func (el EncodedList) Len() int {
	return len(el)
}

// EncodeIndex writes the encoding of the item at index i.
func (el EncodedList) EncodeIndex(i int, w *bytes.Buffer) {
	w.Write(el[i])
}

// Root returns the trie root for the items in the list.
func (el EncodedList) Root() common.Hash {
	if len(el) == 0 {
		return EmptyRoot
	}

	return types.DeriveSha(el, trie.NewStackTrie(nil))
}
