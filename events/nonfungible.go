package events

import (
	"tokenvault/types"
)

const (
	// TypeNFTTransfer is emitted when a token changes owner, including
	// mints (zero from) and burns (zero to).
	TypeNFTTransfer = "nft.transfer"
	// TypeNFTApproval is emitted when a single-token approval changes.
	TypeNFTApproval = "nft.approval"
	// TypeApprovalForAll is emitted when an operator approval changes.
	TypeApprovalForAll = "nft.approvalForAll"
)

// NFTTransfer describes an ownership change of one token.
type NFTTransfer struct {
	From    types.Address
	To      types.Address
	TokenID types.TokenID
}

func (NFTTransfer) EventType() string { return TypeNFTTransfer }

// NFTApproval describes the account approved to move one token.
type NFTApproval struct {
	Owner    types.Address
	Approved types.Address
	TokenID  types.TokenID
}

func (NFTApproval) EventType() string { return TypeNFTApproval }

// ApprovalForAll describes an operator approval spanning all of Owner's
// tokens. Shared by the non-fungible and multi-id ledgers.
type ApprovalForAll struct {
	Owner    types.Address
	Operator types.Address
	Approved bool
}

func (ApprovalForAll) EventType() string { return TypeApprovalForAll }
