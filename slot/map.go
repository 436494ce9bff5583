package slot

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"tokenvault/types"
)

// Map is a single-level key map under one namespace: every key owns one
// slot. Entries are created lazily on first write and deleted by writing
// the zero word, so a missing entry and a stored default are the same
// observation.
type Map struct {
	store  *Store
	ns     Namespace
	prefix []byte
}

// Map opens the map stored under ns.
func (s *Store) Map(ns Namespace) *Map {
	return &Map{store: s, ns: ns}
}

func (m *Map) key(k []byte) []byte {
	if len(m.prefix) == 0 {
		return k
	}
	return concatKeys(m.prefix, k)
}

// U256 reads the 256-bit value stored under key; absent entries read zero.
func (m *Map) U256(key []byte) (*uint256.Int, error) {
	w, err := m.store.Word(AddressOf(m.ns, m.key(key)))
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(w[:]), nil
}

// SetU256 stores v under key.
func (m *Map) SetU256(key []byte, v *uint256.Int) error {
	return m.store.SetWord(AddressOf(m.ns, m.key(key)), Word(v.Bytes32()))
}

// U64 reads the 64-bit value stored in the trailing bytes of key's slot.
func (m *Map) U64(key []byte) (uint64, error) {
	w, err := m.store.Word(AddressOf(m.ns, m.key(key)))
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(w[WordSize-8:]), nil
}

// SetU64 stores v under key.
func (m *Map) SetU64(key []byte, v uint64) error {
	var w Word
	binary.BigEndian.PutUint64(w[WordSize-8:], v)
	return m.store.SetWord(AddressOf(m.ns, m.key(key)), w)
}

// Address reads the account address stored under key; absent entries read
// the zero address.
func (m *Map) Address(key []byte) (types.Address, error) {
	w, err := m.store.Word(AddressOf(m.ns, m.key(key)))
	if err != nil {
		return types.Address{}, err
	}
	return types.BytesToAddress(w[:]), nil
}

// SetAddress stores v under key.
func (m *Map) SetAddress(key []byte, v types.Address) error {
	var w Word
	copy(w[:], v.Bytes())
	return m.store.SetWord(AddressOf(m.ns, m.key(key)), w)
}

// Bool reads the flag stored under key.
func (m *Map) Bool(key []byte) (bool, error) {
	w, err := m.store.Word(AddressOf(m.ns, m.key(key)))
	if err != nil {
		return false, err
	}
	return !w.IsZero(), nil
}

// SetBool stores v under key.
func (m *Map) SetBool(key []byte, v bool) error {
	var w Word
	if v {
		w[WordSize-1] = 1
	}
	return m.store.SetWord(AddressOf(m.ns, m.key(key)), w)
}

// Delete writes the zero word under key.
func (m *Map) Delete(key []byte) error {
	return m.store.Zero(AddressOf(m.ns, m.key(key)))
}

// NestedMap is a two-level key map. The effective subkey is the
// concatenation outer-key then inner-key, reduced by AddressOf's hashing
// rule, so state persists across calls without any in-memory table.
type NestedMap struct {
	store *Store
	ns    Namespace
}

// NestedMap opens the two-level map stored under ns.
func (s *Store) NestedMap(ns Namespace) *NestedMap {
	return &NestedMap{store: s, ns: ns}
}

// Inner returns the view of the inner map under outer. Missing outer keys
// yield a fresh, empty view; the lookup itself cannot fail.
func (n *NestedMap) Inner(outer []byte) *Map {
	prefix := make([]byte, len(outer))
	copy(prefix, outer)
	return &Map{store: n.store, ns: n.ns, prefix: prefix}
}
