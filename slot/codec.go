// Package slot maps logical keys onto fixed-size storage slots and packs
// scalar, string and collection values across them. Every persistent field
// of a ledger contract is addressed through this package; nothing above it
// touches raw storage keys.
package slot

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tokenvault/host"
)

// Namespace distinguishes the logical fields of one contract. Ids are
// assigned once, in a fixed order, at contract composition time and must
// never be reused or reordered between deployments: storage addresses are
// derived from them.
type Namespace uint16

// SubkeyLength is the number of address bytes available to the subkey after
// the 2-byte namespace. Subkeys that fit are embedded verbatim; longer
// subkeys are reduced with Keccak256 first and then truncated. Truncating a
// uniformly distributed 32-byte value to 30 bytes keeps the collision
// probability cryptographically negligible.
const SubkeyLength = 30

// WordSize is the width of one storage slot.
const WordSize = 32

// Word is the raw content of a single slot.
type Word [WordSize]byte

// AddressOf derives the storage address for (namespace, subkey). It is pure
// and deterministic: equal inputs always yield equal addresses.
func AddressOf(ns Namespace, subkey []byte) host.SlotAddress {
	var addr host.SlotAddress
	binary.BigEndian.PutUint16(addr[:2], uint16(ns))
	if len(subkey) > SubkeyLength {
		subkey = ethcrypto.Keccak256(subkey)
	}
	copy(addr[2:], subkey)
	return addr
}

// elementKey derives the subkey of the i-th continuation or element slot of
// a multi-slot value rooted at subkey.
func elementKey(subkey []byte, i uint64) []byte {
	key := make([]byte, len(subkey)+8)
	copy(key, subkey)
	binary.BigEndian.PutUint64(key[len(subkey):], i)
	return key
}

// concatKeys joins an outer and inner map key into one subkey.
func concatKeys(outer, inner []byte) []byte {
	key := make([]byte, len(outer)+len(inner))
	copy(key, outer)
	copy(key[len(outer):], inner)
	return key
}
