package fungible

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"tokenvault/guard"
	"tokenvault/token"
	"tokenvault/types"
)

// ackReceiver acknowledges every transfer with the expected magic.
type ackReceiver struct{ calls int }

func (r *ackReceiver) Invoke(payload []byte) ([]byte, error) {
	r.calls++
	return token.FungibleReceivedMagic[:], nil
}

// rejectReceiver responds with a wrong acknowledgment.
type rejectReceiver struct{}

func (rejectReceiver) Invoke([]byte) ([]byte, error) {
	return []byte{0xde, 0xad, 0xbe, 0xef}, nil
}

// shortReceiver responds with fewer bytes than the magic.
type shortReceiver struct{}

func (shortReceiver) Invoke([]byte) ([]byte, error) {
	return []byte{0x01}, nil
}

// reentrantReceiver re-enters the ledger's transfer path from inside the
// acceptance callback.
type reentrantReceiver struct {
	tok  *Token
	self types.Address
	err  error
}

func (r *reentrantReceiver) Invoke([]byte) ([]byte, error) {
	r.err = r.tok.Transfer(r.self, carol, uint256.NewInt(1))
	return token.FungibleReceivedMagic[:], nil
}

func TestSafeTransferToAccountSkipsHandshake(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, 10)
	if err := tok.SafeTransfer(alice, bob, uint256.NewInt(10), nil); err != nil {
		t.Fatalf("safe transfer to plain account: %v", err)
	}
}

func TestSafeTransferRequiresAck(t *testing.T) {
	tok, env, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, 100)

	receiver := &ackReceiver{}
	target := env.Register(receiver)
	if err := tok.SafeTransfer(alice, target, uint256.NewInt(5), []byte("hello")); err != nil {
		t.Fatalf("safe transfer: %v", err)
	}
	if receiver.calls != 1 {
		t.Fatalf("receiver invoked %d times", receiver.calls)
	}
	if got := balance(t, tok, target); got != 5 {
		t.Fatalf("receiver balance: %d", got)
	}

	rejecting := env.Register(rejectReceiver{})
	if err := tok.SafeTransfer(alice, rejecting, uint256.NewInt(5), nil); !errors.Is(err, token.ErrReceiverRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}

	short := env.Register(shortReceiver{})
	if err := tok.SafeTransfer(alice, short, uint256.NewInt(5), nil); !errors.Is(err, token.ErrReceiverRejected) {
		t.Fatalf("expected short-response rejection, got %v", err)
	}
}

func TestCallbackModeAllowsOneNestedTransfer(t *testing.T) {
	tok, env, _ := newToken(t, guard.Callback)
	mustMint(t, tok, alice, 100)

	receiver := &reentrantReceiver{tok: tok}
	receiver.self = env.Register(receiver)

	if err := tok.SafeTransfer(alice, receiver.self, uint256.NewInt(50), nil); err != nil {
		t.Fatalf("safe transfer: %v", err)
	}
	if receiver.err != nil {
		t.Fatalf("nested transfer inside callback should pass: %v", receiver.err)
	}
	if got := balance(t, tok, carol); got != 1 {
		t.Fatalf("nested transfer not applied: %d", got)
	}
	if depth, _ := tok.guard.Depth(); depth != 0 {
		t.Fatalf("guard depth not unwound: %d", depth)
	}
}

func TestStandardModeRejectsReentrantTransfer(t *testing.T) {
	tok, env, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, 100)

	receiver := &reentrantReceiver{tok: tok}
	receiver.self = env.Register(receiver)

	if err := tok.SafeTransfer(alice, receiver.self, uint256.NewInt(50), nil); err != nil {
		t.Fatalf("safe transfer: %v", err)
	}
	if !errors.Is(receiver.err, guard.ErrReentrancy) {
		t.Fatalf("nested transfer should be rejected, got %v", receiver.err)
	}
}

func TestSafeTransferFromSpendsAllowance(t *testing.T) {
	tok, env, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, 100)
	if err := tok.IncreaseAllowance(alice, carol, uint256.NewInt(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	receiver := &ackReceiver{}
	target := env.Register(receiver)
	if err := tok.SafeTransferFrom(carol, alice, target, uint256.NewInt(60), nil); err != nil {
		t.Fatalf("safe transferFrom: %v", err)
	}
	remaining, _ := tok.Allowance(alice, carol)
	if !remaining.IsZero() {
		t.Fatalf("allowance not consumed: %s", remaining)
	}
}
