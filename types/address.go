package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix is the human-readable part used when rendering addresses.
type AddressPrefix string

// Prefix under which all tokenvault account addresses are rendered.
const Prefix AddressPrefix = "tv"

// AddressLength is the raw size of an account identifier. Addresses are
// ed25519 public keys (or blake3 digests for local contract accounts), so
// every address is a uniformly distributed 32-byte value.
const AddressLength = 32

// Address is a raw 32-byte account identifier. Equality is byte-wise.
type Address [AddressLength]byte

// ZeroAddress is the reserved burn address. It never owns a balance and is
// rejected as a transfer recipient.
var ZeroAddress Address

// BytesToAddress copies b into an Address, left-truncating values that are
// too long and zero-padding values that are too short, mirroring the
// fixed-width storage encoding.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns the raw 32-byte representation.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is the reserved burn address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Equal reports byte-wise equality with other.
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

// String renders the address as bech32 with the tokenvault prefix.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(Prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Hex renders the address as 0x-prefixed lowercase hex.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAddress decodes a bech32-encoded address and validates its prefix and
// length.
func ParseAddress(s string) (Address, error) {
	prefix, decoded, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != string(Prefix) {
		return Address{}, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	if len(conv) != AddressLength {
		return Address{}, fmt.Errorf("address must be %d bytes long (got %d)", AddressLength, len(conv))
	}
	return BytesToAddress(conv), nil
}

// TokenID identifies a single token within the non-fungible and multi-id
// ledgers. The width is fixed at 64 bits so owner-enumeration arrays can
// pack four ids per storage slot.
type TokenID uint64
