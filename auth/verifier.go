package auth

import (
	"errors"
	"fmt"

	"tokenvault/host"
	"tokenvault/slot"
	"tokenvault/types"
)

var (
	// ErrSignatureLength indicates the raw signature has the wrong size.
	ErrSignatureLength = errors.New("auth: signature must be 64 bytes")
	// ErrSignatureExpired indicates the deadline lies before the current
	// block height.
	ErrSignatureExpired = errors.New("auth: signature deadline expired")
	// ErrSignatureInvalid indicates the host primitive rejected the
	// signature for the claimed signer.
	ErrSignatureInvalid = errors.New("auth: signature verification failed")
)

// signatureLength is the size of the host's raw signature encoding
// (ed25519).
const signatureLength = 64

// Authorization describes one signed request prior to verification.
type Authorization struct {
	TypeHash     [32]byte
	Signer       types.Address
	Counterparty types.Address
	// Payload carries the operation-specific word: an amount, an approval
	// flag, a token id or a batch digest.
	Payload  [32]byte
	Deadline uint64
}

// Verifier validates authorizations and advances per-signer nonces. It is
// shared by all three ledger variants; each composes it over its own nonce
// namespace.
type Verifier struct {
	env        host.Env
	nonces     *slot.Map
	chainID    uint64
	protocolID uint64
}

// NewVerifier composes a verifier whose nonces live under nonceNS.
func NewVerifier(store *slot.Store, nonceNS slot.Namespace, chainID, protocolID uint64) *Verifier {
	return &Verifier{
		env:        store.Env(),
		nonces:     store.Map(nonceNS),
		chainID:    chainID,
		protocolID: protocolID,
	}
}

// Nonce returns the next expected nonce for signer.
func (v *Verifier) Nonce(signer types.Address) (uint64, error) {
	return v.nonces.U64(signer.Bytes())
}

// DomainSeparator recomputes the separator for the live deployment.
func (v *Verifier) DomainSeparator() [32]byte {
	return DomainSeparator(v.env.ContractAddress(), v.chainID, v.protocolID)
}

// DigestFor builds the digest a signer must sign for the given
// authorization at the given nonce. Exposed for clients and tests; the
// verifier itself always binds the signer's current stored nonce.
func (v *Verifier) DigestFor(a Authorization, nonce uint64) [32]byte {
	structHash := StructHash(a.TypeHash, a.Signer, a.Counterparty, a.Payload, nonce, a.Deadline)
	return Digest(v.DomainSeparator(), structHash)
}

// Authorize verifies sig over the authorization bound to the signer's
// current nonce. On success the nonce advances by exactly one, so the same
// signature can never be accepted twice. On any failure no state changes.
func (v *Verifier) Authorize(a Authorization, sig []byte) error {
	if len(sig) != signatureLength {
		return fmt.Errorf("%w (got %d)", ErrSignatureLength, len(sig))
	}
	height := v.env.BlockHeight()
	if a.Deadline < height {
		return fmt.Errorf("%w: deadline %d, height %d", ErrSignatureExpired, a.Deadline, height)
	}
	nonce, err := v.Nonce(a.Signer)
	if err != nil {
		return err
	}
	digest := v.DigestFor(a, nonce)
	if !v.env.VerifySignature(a.Signer, digest, sig) {
		return ErrSignatureInvalid
	}
	return v.nonces.SetU64(a.Signer.Bytes(), nonce+1)
}
