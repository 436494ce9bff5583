package slot

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when an array access lies outside the
// current length.
var ErrIndexOutOfRange = errors.New("slot: index out of range")

const (
	// elemsPerSlot is the number of packed uint64 elements per slot.
	elemsPerSlot = WordSize / 8
)

// IndexedArray is a growable sequence of uint64 elements stored as one
// header slot plus element slots packing four elements each. The header
// packs the length and a start offset; logical index i lives at absolute
// index start+i with natural wraparound over the 64-bit index space, so
// Shift can advance the start without moving elements.
//
// SwapRemove overwrites the removed element with the last one, which keeps
// removal O(1) at the cost of insertion order. Callers that need positions
// (e.g. token enumeration) maintain their own position map.
type IndexedArray struct {
	store  *Store
	ns     Namespace
	subkey []byte
}

// IndexedArray opens the array rooted at (ns, subkey).
func (s *Store) IndexedArray(ns Namespace, subkey []byte) *IndexedArray {
	key := make([]byte, len(subkey))
	copy(key, subkey)
	return &IndexedArray{store: s, ns: ns, subkey: key}
}

func (a *IndexedArray) header() (length, start uint64, err error) {
	w, err := a.store.Word(AddressOf(a.ns, a.subkey))
	if err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint64(w[:8]), binary.BigEndian.Uint64(w[8:16]), nil
}

func (a *IndexedArray) setHeader(length, start uint64) error {
	var w Word
	binary.BigEndian.PutUint64(w[:8], length)
	binary.BigEndian.PutUint64(w[8:16], start)
	return a.store.SetWord(AddressOf(a.ns, a.subkey), w)
}

// Len returns the number of stored elements.
func (a *IndexedArray) Len() (uint64, error) {
	length, _, err := a.header()
	return length, err
}

func (a *IndexedArray) elemAddr(absolute uint64) [32]byte {
	return AddressOf(a.ns, elementKey(a.subkey, absolute/elemsPerSlot))
}

func (a *IndexedArray) readLane(absolute uint64) (uint64, error) {
	w, err := a.store.Word(a.elemAddr(absolute))
	if err != nil {
		return 0, err
	}
	lane := (absolute % elemsPerSlot) * 8
	return binary.BigEndian.Uint64(w[lane : lane+8]), nil
}

func (a *IndexedArray) writeLane(absolute, v uint64) error {
	addr := a.elemAddr(absolute)
	w, err := a.store.Word(addr)
	if err != nil {
		return err
	}
	lane := (absolute % elemsPerSlot) * 8
	binary.BigEndian.PutUint64(w[lane:lane+8], v)
	return a.store.SetWord(addr, w)
}

// Get returns the element at logical index i.
func (a *IndexedArray) Get(i uint64) (uint64, error) {
	length, start, err := a.header()
	if err != nil {
		return 0, err
	}
	if i >= length {
		return 0, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, i, length)
	}
	return a.readLane(start + i)
}

// Set overwrites the element at logical index i.
func (a *IndexedArray) Set(i, v uint64) error {
	length, start, err := a.header()
	if err != nil {
		return err
	}
	if i >= length {
		return fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, i, length)
	}
	return a.writeLane(start+i, v)
}

// Push appends v at the end of the sequence.
func (a *IndexedArray) Push(v uint64) error {
	length, start, err := a.header()
	if err != nil {
		return err
	}
	if err := a.writeLane(start+length, v); err != nil {
		return err
	}
	return a.setHeader(length+1, start)
}

// Shift removes and returns the first element, advancing the start offset.
func (a *IndexedArray) Shift() (uint64, error) {
	length, start, err := a.header()
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, fmt.Errorf("%w: shift on empty array", ErrIndexOutOfRange)
	}
	v, err := a.readLane(start)
	if err != nil {
		return 0, err
	}
	if err := a.writeLane(start, 0); err != nil {
		return 0, err
	}
	return v, a.setHeader(length-1, start+1)
}

// SwapRemove deletes the element at logical index i by overwriting it with
// the last element and shrinking the length. It returns the element that
// was moved into position i (equal to the removed value when i was last) so
// callers can repair any auxiliary position index.
func (a *IndexedArray) SwapRemove(i uint64) (moved uint64, err error) {
	length, start, err := a.header()
	if err != nil {
		return 0, err
	}
	if i >= length {
		return 0, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, i, length)
	}
	last, err := a.readLane(start + length - 1)
	if err != nil {
		return 0, err
	}
	if i != length-1 {
		if err := a.writeLane(start+i, last); err != nil {
			return 0, err
		}
	}
	if err := a.writeLane(start+length-1, 0); err != nil {
		return 0, err
	}
	return last, a.setHeader(length-1, start)
}
