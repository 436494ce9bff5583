package fungible

import (
	"github.com/holiman/uint256"

	"tokenvault/auth"
	"tokenvault/types"
)

// The signature entry points let an owner authorize allowance changes
// without being the caller. Verification consumes the owner's nonce, so an
// accepted signature can never be replayed.

// IncreaseAllowanceBySignature applies IncreaseAllowance on behalf of
// owner, authorized by sig over the typed-data digest.
func (t *Token) IncreaseAllowanceBySignature(owner, spender types.Address, amount *uint256.Int, deadline uint64, sig []byte) error {
	return t.guarded("increaseAllowanceBySignature", func() error {
		a := auth.Authorization{
			TypeHash:     auth.IncreaseAllowanceTypeHash,
			Signer:       owner,
			Counterparty: spender,
			Payload:      auth.AmountWord(amount),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		return t.increaseAllowance(owner, spender, amount)
	})
}

// DecreaseAllowanceBySignature applies DecreaseAllowance on behalf of
// owner, authorized by sig over the typed-data digest.
func (t *Token) DecreaseAllowanceBySignature(owner, spender types.Address, amount *uint256.Int, deadline uint64, sig []byte) error {
	return t.guarded("decreaseAllowanceBySignature", func() error {
		a := auth.Authorization{
			TypeHash:     auth.DecreaseAllowanceTypeHash,
			Signer:       owner,
			Counterparty: spender,
			Payload:      auth.AmountWord(amount),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		return t.decreaseAllowance(owner, spender, amount)
	})
}

// AuthorizationDigest exposes the digest a client must sign for the given
// allowance change at the owner's current nonce.
func (t *Token) AuthorizationDigest(typeHash [32]byte, owner, spender types.Address, amount *uint256.Int, deadline uint64) ([32]byte, error) {
	nonce, err := t.verifier.Nonce(owner)
	if err != nil {
		return [32]byte{}, err
	}
	a := auth.Authorization{
		TypeHash:     typeHash,
		Signer:       owner,
		Counterparty: spender,
		Payload:      auth.AmountWord(amount),
		Deadline:     deadline,
	}
	return t.verifier.DigestFor(a, nonce), nil
}
