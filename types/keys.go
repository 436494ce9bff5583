package types

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// --- Key Management ---

// PrivateKey wraps an ed25519 signing key. The matching public key doubles
// as the account address.
type PrivateKey struct {
	ed25519.PrivateKey
}

// PublicKey wraps an ed25519 verification key.
type PublicKey struct {
	ed25519.PublicKey
}

// GeneratePrivateKey creates a fresh ed25519 key pair.
func GeneratePrivateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return []byte(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{k.PrivateKey.Public().(ed25519.PublicKey)}
}

// Address derives the account address, which is simply the 32-byte public
// key.
func (k *PrivateKey) Address() Address {
	return k.PubKey().Address()
}

// Sign produces a 64-byte ed25519 signature over the supplied digest.
func (k *PrivateKey) Sign(digest []byte) []byte {
	return ed25519.Sign(k.PrivateKey, digest)
}

// Address returns the 32-byte account address backed by this key.
func (k *PublicKey) Address() Address {
	return BytesToAddress(k.PublicKey)
}

// PrivateKeyFromBytes reconstructs a private key from its raw seed or full
// encoding.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	switch len(b) {
	case ed25519.SeedSize:
		return &PrivateKey{ed25519.NewKeyFromSeed(b)}, nil
	case ed25519.PrivateKeySize:
		key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
		copy(key, b)
		return &PrivateKey{key}, nil
	default:
		return nil, fmt.Errorf("private key must be %d or %d bytes long (got %d)",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(b))
	}
}
