// Package guard implements the two-level reentrancy guard protecting
// ledger mutators against unsafe reentry through receiver callbacks.
package guard

import (
	"errors"
	"fmt"

	"tokenvault/dispatch"
	"tokenvault/slot"
)

// ErrReentrancy is returned when an entry would exceed the mode's permitted
// call depth.
var ErrReentrancy = errors.New("guard: reentrant call rejected")

// Mode selects how many nested guarded entries a contract tolerates. It is
// fixed per contract at composition time.
type Mode uint8

const (
	// Standard rejects any entry while the guard is already held.
	Standard Mode = iota
	// Callback permits exactly one nested entry, intended for receiver
	// acceptance callbacks triggered mid-transfer.
	Callback
)

const maxDepth = 2

// Guard is the persistent call-depth state machine. Depth and lock live in
// dedicated storage cells so the state survives the synchronous host calls
// a transfer can make.
type Guard struct {
	mode  Mode
	ops   *dispatch.Registry
	lock  *slot.BoolCell
	depth *slot.U64Cell
}

// New composes a guard over the given lock/depth namespaces.
func New(store *slot.Store, mode Mode, ops *dispatch.Registry, lockNS, depthNS slot.Namespace) *Guard {
	return &Guard{
		mode:  mode,
		ops:   ops,
		lock:  store.BoolCell(lockNS, nil),
		depth: store.U64Cell(depthNS, nil),
	}
}

// Enter admits op into the guarded region, incrementing the depth. Receiver
// callback operations registered guard-exempt pass through untouched; they
// run inside the outer call's window.
func (g *Guard) Enter(op dispatch.Op) error {
	if g.ops.GuardExempt(op) {
		return nil
	}
	depth, err := g.depth.Get()
	if err != nil {
		return err
	}
	switch g.mode {
	case Standard:
		if depth >= 1 {
			return fmt.Errorf("%w: %s while locked", ErrReentrancy, op)
		}
	case Callback:
		if depth >= maxDepth {
			return fmt.Errorf("%w: %s at depth %d", ErrReentrancy, op, depth)
		}
	}
	if depth == 0 {
		if err := g.lock.Set(true); err != nil {
			return err
		}
	}
	return g.depth.Set(depth + 1)
}

// Exit leaves the guarded region, decrementing the depth. Exempt operations
// never entered and so never exit. Decrementing past zero is an internal
// consistency violation and panics.
func (g *Guard) Exit(op dispatch.Op) error {
	if g.ops.GuardExempt(op) {
		return nil
	}
	depth, err := g.depth.Get()
	if err != nil {
		return err
	}
	if depth == 0 {
		panic("guard: exit below depth zero")
	}
	if depth == 1 {
		if err := g.lock.Set(false); err != nil {
			return err
		}
	}
	return g.depth.Set(depth - 1)
}

// Locked reports whether the guard is currently held.
func (g *Guard) Locked() (bool, error) {
	return g.lock.Get()
}

// Depth returns the current nesting depth.
func (g *Guard) Depth() (uint64, error) {
	return g.depth.Get()
}
