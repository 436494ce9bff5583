package storage

import (
	"bytes"
	"testing"
)

func TestMemDBMissingKey(t *testing.T) {
	db := NewMemDB()
	v, err := db.Get([]byte("absent"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != nil {
		t.Fatalf("missing key should read nil, got %x", v)
	}
	has, err := db.Has([]byte("absent"))
	if err != nil || has {
		t.Fatalf("has on missing key: %v %v", has, err)
	}
}

func TestMemDBDefensiveCopies(t *testing.T) {
	db := NewMemDB()
	value := []byte{1, 2, 3}
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 9

	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("stored value aliased caller slice: %x", got)
	}
	got[1] = 9
	again, _ := db.Get([]byte("k"))
	if !bytes.Equal(again, []byte{1, 2, 3}) {
		t.Fatalf("returned value aliased store: %x", again)
	}
}

func TestPrefixDBIsolation(t *testing.T) {
	base := NewMemDB()
	a := NewPrefixDB(base, []byte("a/"))
	b := NewPrefixDB(base, []byte("b/"))

	if err := a.Put([]byte("slot"), []byte{1}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := b.Put([]byte("slot"), []byte{2}); err != nil {
		t.Fatalf("put b: %v", err)
	}

	av, _ := a.Get([]byte("slot"))
	bv, _ := b.Get([]byte("slot"))
	if !bytes.Equal(av, []byte{1}) || !bytes.Equal(bv, []byte{2}) {
		t.Fatalf("prefixes collided: a=%x b=%x", av, bv)
	}

	has, err := b.Has([]byte("other"))
	if err != nil || has {
		t.Fatalf("phantom key under prefix: %v %v", has, err)
	}
	// Closing a view must not close the shared store.
	if err := a.Close(); err != nil {
		t.Fatalf("close view: %v", err)
	}
	if v, _ := b.Get([]byte("slot")); !bytes.Equal(v, []byte{2}) {
		t.Fatalf("underlying store closed with the view")
	}
}
