package slot

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrValueTooLong is returned when a write would exceed a cell's configured
// maximum length. The check happens before any slot is touched.
var ErrValueTooLong = errors.New("slot: value exceeds maximum length")

const (
	// headerDataLen is the number of payload bytes carried by the header
	// slot after its 4-byte big-endian length field.
	headerDataLen = WordSize - 4
)

// BytesCell stores a variable-length byte string as a header slot plus
// full-width continuation slots. The header holds the big-endian byte
// length in its first four bytes and the first 28 payload bytes. An
// all-zero header reads as the empty value.
type BytesCell struct {
	store  *Store
	ns     Namespace
	subkey []byte
	maxLen uint32
}

// BytesCell opens the cell at (ns, subkey) with the given maximum length.
func (s *Store) BytesCell(ns Namespace, subkey []byte, maxLen uint32) *BytesCell {
	key := make([]byte, len(subkey))
	copy(key, subkey)
	return &BytesCell{store: s, ns: ns, subkey: key, maxLen: maxLen}
}

// StringCell is a BytesCell with string accessors.
type StringCell struct {
	BytesCell
}

func (s *Store) StringCell(ns Namespace, subkey []byte, maxLen uint32) *StringCell {
	return &StringCell{BytesCell: *s.BytesCell(ns, subkey, maxLen)}
}

func (c *StringCell) GetString() (string, error) {
	b, err := c.Get()
	return string(b), err
}

func (c *StringCell) SetString(v string) error {
	return c.Set([]byte(v))
}

// occupiedSlots is the number of slots an encoding of n bytes spans,
// including the header. Zero-length values occupy no slots because absence
// and emptiness share the all-zero header.
func occupiedSlots(n uint32) uint64 {
	if n == 0 {
		return 0
	}
	if n <= headerDataLen {
		return 1
	}
	rest := uint64(n) - headerDataLen
	return 1 + (rest+WordSize-1)/WordSize
}

func (c *BytesCell) slotAddr(i uint64) [32]byte {
	if i == 0 {
		return AddressOf(c.ns, c.subkey)
	}
	return AddressOf(c.ns, elementKey(c.subkey, i))
}

// Get reads the stored byte string. Absent cells read as empty.
func (c *BytesCell) Get() ([]byte, error) {
	header, err := c.store.Word(c.slotAddr(0))
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:4])
	if length == 0 {
		return nil, nil
	}
	if length > c.maxLen {
		return nil, fmt.Errorf("slot: stored length %d exceeds maximum %d", length, c.maxLen)
	}
	out := make([]byte, 0, length)
	if length <= headerDataLen {
		return append(out, header[4:4+length]...), nil
	}
	out = append(out, header[4:]...)
	remaining := length - headerDataLen
	for i := uint64(1); remaining > 0; i++ {
		w, err := c.store.Word(c.slotAddr(i))
		if err != nil {
			return nil, err
		}
		take := uint32(WordSize)
		if remaining < take {
			take = remaining
		}
		out = append(out, w[:take]...)
		remaining -= take
	}
	return out, nil
}

// Set replaces the stored value. The maximum length is enforced before any
// write, and the slots occupied by the previous value are zeroed first so
// shorter replacements leave no residual bytes of the old encoding.
func (c *BytesCell) Set(value []byte) error {
	if uint64(len(value)) > uint64(c.maxLen) {
		return fmt.Errorf("%w: %d > %d", ErrValueTooLong, len(value), c.maxLen)
	}
	header, err := c.store.Word(c.slotAddr(0))
	if err != nil {
		return err
	}
	oldLen := binary.BigEndian.Uint32(header[:4])
	for i := uint64(0); i < occupiedSlots(oldLen); i++ {
		if err := c.store.Zero(c.slotAddr(i)); err != nil {
			return err
		}
	}
	if len(value) == 0 {
		return nil
	}
	var newHeader Word
	binary.BigEndian.PutUint32(newHeader[:4], uint32(len(value)))
	n := copy(newHeader[4:], value)
	if err := c.store.SetWord(c.slotAddr(0), newHeader); err != nil {
		return err
	}
	rest := value[n:]
	for i := uint64(1); len(rest) > 0; i++ {
		var w Word
		taken := copy(w[:], rest)
		if err := c.store.SetWord(c.slotAddr(i), w); err != nil {
			return err
		}
		rest = rest[taken:]
	}
	return nil
}
