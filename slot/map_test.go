package slot

import (
	"testing"

	"github.com/holiman/uint256"

	"tokenvault/types"
)

func TestNestedMapIsolation(t *testing.T) {
	store := newTestStore(t)
	allowances := store.NestedMap(6)

	owner := types.BytesToAddress([]byte("owner"))
	other := types.BytesToAddress([]byte("other"))
	spender := types.BytesToAddress([]byte("spender"))

	if err := allowances.Inner(owner.Bytes()).SetU256(spender.Bytes(), uint256.NewInt(77)); err != nil {
		t.Fatalf("set allowance: %v", err)
	}

	got, err := allowances.Inner(owner.Bytes()).U256(spender.Bytes())
	if err != nil {
		t.Fatalf("get allowance: %v", err)
	}
	if got.Uint64() != 77 {
		t.Fatalf("unexpected allowance: %s", got)
	}

	// A missing outer key yields an empty inner map, never an error.
	empty, err := allowances.Inner(other.Bytes()).U256(spender.Bytes())
	if err != nil {
		t.Fatalf("missing outer key: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("expected empty inner map, got %s", empty)
	}
}

func TestMapTypedAccessors(t *testing.T) {
	store := newTestStore(t)
	owners := store.Map(7)

	owner := types.BytesToAddress([]byte("holder"))
	key := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2a}

	if err := owners.SetAddress(key, owner); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if got, _ := owners.Address(key); !got.Equal(owner) {
		t.Fatalf("unexpected owner: %s", got)
	}

	if err := owners.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := owners.Address(key); !got.IsZero() {
		t.Fatalf("deleted entry should read zero, got %s", got)
	}

	flags := store.Map(8)
	if err := flags.SetBool([]byte("approved"), true); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if v, _ := flags.Bool([]byte("approved")); !v {
		t.Fatalf("bool entry not persisted")
	}
}
