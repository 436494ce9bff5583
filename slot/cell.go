package slot

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"tokenvault/host"
	"tokenvault/types"
)

// The scalar cells expose one logical value backed by exactly one slot.
// Reads go through a single cached value so repeated access within one
// execution touches storage once; writes go through to storage immediately
// and refresh the cache.

// U256Cell is a 256-bit unsigned integer cell.
type U256Cell struct {
	store *Store
	addr  host.SlotAddress
	cache *uint256.Int
}

// U256Cell opens the cell at (ns, subkey).
func (s *Store) U256Cell(ns Namespace, subkey []byte) *U256Cell {
	return &U256Cell{store: s, addr: AddressOf(ns, subkey)}
}

// Get returns the stored value; absent cells read as zero. The returned
// integer is the caller's to mutate.
func (c *U256Cell) Get() (*uint256.Int, error) {
	if c.cache == nil {
		w, err := c.store.Word(c.addr)
		if err != nil {
			return nil, err
		}
		c.cache = new(uint256.Int).SetBytes(w[:])
	}
	return new(uint256.Int).Set(c.cache), nil
}

// Set commits v to storage and caches it.
func (c *U256Cell) Set(v *uint256.Int) error {
	w := Word(v.Bytes32())
	if err := c.store.SetWord(c.addr, w); err != nil {
		return err
	}
	c.cache = new(uint256.Int).Set(v)
	return nil
}

// U64Cell is an unsigned 64-bit cell stored in the trailing bytes of its
// slot.
type U64Cell struct {
	store *Store
	addr  host.SlotAddress
	cache *uint64
}

func (s *Store) U64Cell(ns Namespace, subkey []byte) *U64Cell {
	return &U64Cell{store: s, addr: AddressOf(ns, subkey)}
}

func (c *U64Cell) Get() (uint64, error) {
	if c.cache == nil {
		w, err := c.store.Word(c.addr)
		if err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint64(w[WordSize-8:])
		c.cache = &v
	}
	return *c.cache, nil
}

func (c *U64Cell) Set(v uint64) error {
	var w Word
	binary.BigEndian.PutUint64(w[WordSize-8:], v)
	if err := c.store.SetWord(c.addr, w); err != nil {
		return err
	}
	c.cache = &v
	return nil
}

// Add increments the stored value by delta and returns the new value.
func (c *U64Cell) Add(delta uint64) (uint64, error) {
	v, err := c.Get()
	if err != nil {
		return 0, err
	}
	v += delta
	if err := c.Set(v); err != nil {
		return 0, err
	}
	return v, nil
}

// BoolCell is a boolean cell; any non-zero word reads as true.
type BoolCell struct {
	store *Store
	addr  host.SlotAddress
	cache *bool
}

func (s *Store) BoolCell(ns Namespace, subkey []byte) *BoolCell {
	return &BoolCell{store: s, addr: AddressOf(ns, subkey)}
}

func (c *BoolCell) Get() (bool, error) {
	if c.cache == nil {
		w, err := c.store.Word(c.addr)
		if err != nil {
			return false, err
		}
		v := !w.IsZero()
		c.cache = &v
	}
	return *c.cache, nil
}

func (c *BoolCell) Set(v bool) error {
	var w Word
	if v {
		w[WordSize-1] = 1
	}
	if err := c.store.SetWord(c.addr, w); err != nil {
		return err
	}
	c.cache = &v
	return nil
}

// AddressCell stores one 32-byte account address.
type AddressCell struct {
	store *Store
	addr  host.SlotAddress
	cache *types.Address
}

func (s *Store) AddressCell(ns Namespace, subkey []byte) *AddressCell {
	return &AddressCell{store: s, addr: AddressOf(ns, subkey)}
}

// Get returns the stored address; absent cells read as the zero address.
func (c *AddressCell) Get() (types.Address, error) {
	if c.cache == nil {
		w, err := c.store.Word(c.addr)
		if err != nil {
			return types.Address{}, err
		}
		v := types.BytesToAddress(w[:])
		c.cache = &v
	}
	return *c.cache, nil
}

func (c *AddressCell) Set(v types.Address) error {
	var w Word
	copy(w[:], v.Bytes())
	if err := c.store.SetWord(c.addr, w); err != nil {
		return err
	}
	c.cache = &v
	return nil
}
