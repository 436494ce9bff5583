package slot

import (
	"fmt"

	"tokenvault/host"
)

// Store provides word-level access to slot storage through a host
// environment. Slots that were never written read as the zero word; cells
// are created lazily on first write and logically deleted by writing the
// zero encoding back.
type Store struct {
	env host.Env
}

// NewStore wraps the host environment.
func NewStore(env host.Env) *Store {
	return &Store{env: env}
}

// Env exposes the backing environment for callers that need the host's
// non-storage primitives.
func (s *Store) Env() host.Env {
	return s.env
}

// Word reads the slot at addr. Absent slots yield the zero word.
func (s *Store) Word(addr host.SlotAddress) (Word, error) {
	var w Word
	raw, err := s.env.StorageGet(addr)
	if err != nil {
		return w, fmt.Errorf("slot: read %x: %w", addr, err)
	}
	if len(raw) == 0 {
		return w, nil
	}
	if len(raw) != WordSize {
		return w, fmt.Errorf("slot: slot %x holds %d bytes, want %d", addr, len(raw), WordSize)
	}
	copy(w[:], raw)
	return w, nil
}

// SetWord writes the slot at addr.
func (s *Store) SetWord(addr host.SlotAddress, w Word) error {
	if err := s.env.StorageSet(addr, w[:]); err != nil {
		return fmt.Errorf("slot: write %x: %w", addr, err)
	}
	return nil
}

// Zero writes the zero word at addr, logically deleting the cell.
func (s *Store) Zero(addr host.SlotAddress) error {
	return s.SetWord(addr, Word{})
}

// IsZero reports whether w is the all-zero word.
func (w Word) IsZero() bool {
	return w == Word{}
}
