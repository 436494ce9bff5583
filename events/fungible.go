package events

import (
	"github.com/holiman/uint256"

	"tokenvault/types"
)

const (
	// TypeTransfer is emitted for fungible balance movements, including
	// mints (zero from) and burns (zero to).
	TypeTransfer = "fungible.transfer"
	// TypeApproval is emitted when an allowance changes.
	TypeApproval = "fungible.approval"
)

// Transfer describes a fungible balance movement.
type Transfer struct {
	From   types.Address
	To     types.Address
	Amount *uint256.Int
}

func (Transfer) EventType() string { return TypeTransfer }

// Approval describes the new allowance granted by Owner to Spender.
type Approval struct {
	Owner   types.Address
	Spender types.Address
	Amount  *uint256.Int
}

func (Approval) EventType() string { return TypeApproval }
