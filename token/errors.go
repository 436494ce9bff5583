// Package token carries the pieces shared by the three ledger variants:
// the failure taxonomy, the unlimited-allowance sentinel and the
// receiver-acceptance handshake.
package token

import (
	"errors"

	"github.com/holiman/uint256"
)

// All failures abort the enclosing operation; the host transaction model
// guarantees no partial effects survive. The sentinels below group into the
// four classes dispatchers care about: validation, authorization,
// consistency and external-call rejection.
var (
	// validation
	ErrZeroAddress    = errors.New("token: zero address")
	ErrZeroAmount     = errors.New("token: zero amount")
	ErrSelfTransfer   = errors.New("token: transfer to self")
	ErrLengthMismatch = errors.New("token: ids and amounts length mismatch")

	// authorization
	ErrNotDeployer           = errors.New("token: caller is not the deployer")
	ErrNotAuthorized         = errors.New("token: caller is not owner or approved")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// consistency
	ErrSupplyCeiling      = errors.New("token: max supply exceeded")
	ErrAlreadyInitialized = errors.New("token: already initialized")
	ErrUnknownToken       = errors.New("token: unknown token id")
	ErrTokenExists        = errors.New("token: token id already minted")

	// external-call rejection
	ErrReceiverRejected = errors.New("token: receiver did not acknowledge transfer")
)

// UnlimitedAllowance is the reserved maximum allowance value. A stored
// sentinel means "unlimited approval" and is never decremented by spending.
func UnlimitedAllowance() *uint256.Int {
	max := new(uint256.Int)
	return max.Not(max)
}

// IsUnlimited reports whether v is the unlimited-allowance sentinel.
func IsUnlimited(v *uint256.Int) bool {
	return v.Eq(UnlimitedAllowance())
}
