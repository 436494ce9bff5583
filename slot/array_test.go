package slot

import (
	"errors"
	"testing"
)

func TestIndexedArrayPushGet(t *testing.T) {
	store := newTestStore(t)
	arr := store.IndexedArray(9, []byte("tokens"))

	// Cross a slot boundary: elements pack four per slot.
	for i := uint64(0); i < 10; i++ {
		if err := arr.Push(100 + i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if n, _ := arr.Len(); n != 10 {
		t.Fatalf("unexpected length: %d", n)
	}
	for i := uint64(0); i < 10; i++ {
		v, err := arr.Get(i)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if v != 100+i {
			t.Fatalf("element %d: got %d", i, v)
		}
	}
	if _, err := arr.Get(10); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestIndexedArraySwapRemove(t *testing.T) {
	store := newTestStore(t)
	arr := store.IndexedArray(9, []byte("tokens"))
	for _, v := range []uint64{1, 2, 3, 4, 5} {
		if err := arr.Push(v); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	moved, err := arr.SwapRemove(1)
	if err != nil {
		t.Fatalf("swap remove: %v", err)
	}
	if moved != 5 {
		t.Fatalf("expected last element moved, got %d", moved)
	}
	if n, _ := arr.Len(); n != 4 {
		t.Fatalf("unexpected length after removal: %d", n)
	}
	if v, _ := arr.Get(1); v != 5 {
		t.Fatalf("removed position should hold previous tail, got %d", v)
	}

	// Removing the tail itself moves nothing else.
	moved, err = arr.SwapRemove(3)
	if err != nil {
		t.Fatalf("swap remove tail: %v", err)
	}
	if moved != 4 {
		t.Fatalf("unexpected tail: %d", moved)
	}
	if n, _ := arr.Len(); n != 3 {
		t.Fatalf("unexpected length: %d", n)
	}
}

func TestIndexedArrayShift(t *testing.T) {
	store := newTestStore(t)
	arr := store.IndexedArray(9, []byte("queue"))
	for _, v := range []uint64{11, 22, 33} {
		if err := arr.Push(v); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	v, err := arr.Shift()
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if v != 11 {
		t.Fatalf("unexpected head: %d", v)
	}
	if got, _ := arr.Get(0); got != 22 {
		t.Fatalf("start offset not advanced: %d", got)
	}
	// Pushes after a shift land behind the existing tail.
	if err := arr.Push(44); err != nil {
		t.Fatalf("push after shift: %v", err)
	}
	if got, _ := arr.Get(2); got != 44 {
		t.Fatalf("unexpected tail after shift: %d", got)
	}
	if _, err := store.IndexedArray(9, []byte("empty")).Shift(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range on empty shift, got %v", err)
	}
}
