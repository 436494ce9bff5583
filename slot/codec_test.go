package slot

import (
	"bytes"
	"encoding/binary"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestAddressOfEmbedsShortSubkeys(t *testing.T) {
	subkey := []byte("total-supply")
	addr := AddressOf(7, subkey)

	if got := binary.BigEndian.Uint16(addr[:2]); got != 7 {
		t.Fatalf("unexpected namespace prefix: %d", got)
	}
	if !bytes.Equal(addr[2:2+len(subkey)], subkey) {
		t.Fatalf("subkey not embedded: %x", addr)
	}
	for _, b := range addr[2+len(subkey):] {
		if b != 0 {
			t.Fatalf("expected zero padding: %x", addr)
		}
	}
}

func TestAddressOfHashesLongSubkeys(t *testing.T) {
	subkey := make([]byte, 64)
	for i := range subkey {
		subkey[i] = byte(i)
	}
	addr := AddressOf(3, subkey)

	want := ethcrypto.Keccak256(subkey)[:SubkeyLength]
	if !bytes.Equal(addr[2:], want) {
		t.Fatalf("long subkey not reduced: got %x want %x", addr[2:], want)
	}
}

func TestAddressOfDeterministic(t *testing.T) {
	subkey := []byte{0xde, 0xad, 0xbe, 0xef}
	if AddressOf(1, subkey) != AddressOf(1, subkey) {
		t.Fatalf("equal inputs yielded different addresses")
	}
	if AddressOf(1, subkey) == AddressOf(2, subkey) {
		t.Fatalf("distinct namespaces collided")
	}
}
