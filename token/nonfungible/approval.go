package nonfungible

import (
	"tokenvault/auth"
	"tokenvault/events"
	"tokenvault/token"
	"tokenvault/types"
)

// Approve grants approved the right to move id. The caller must be the
// owner or an approved operator; the zero address clears the approval.
func (t *Token) Approve(caller, approved types.Address, id types.TokenID) error {
	return t.guarded("approve", func() error {
		owner, err := t.OwnerOf(id)
		if err != nil {
			return err
		}
		return t.approve(caller, owner, approved, id)
	})
}

// SetApprovalForAll grants or revokes operator over all of the caller's
// tokens.
func (t *Token) SetApprovalForAll(caller, operator types.Address, approved bool) error {
	return t.guarded("setApprovalForAll", func() error {
		return t.setApprovalForAll(caller, operator, approved)
	})
}

// ApproveBySignature applies Approve on behalf of the token owner,
// authorized by sig over the typed-data digest.
func (t *Token) ApproveBySignature(owner, approved types.Address, id types.TokenID, deadline uint64, sig []byte) error {
	return t.guarded("approveBySignature", func() error {
		a := auth.Authorization{
			TypeHash:     auth.ApproveTypeHash,
			Signer:       owner,
			Counterparty: approved,
			Payload:      auth.TokenIDWord(id),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		actual, err := t.OwnerOf(id)
		if err != nil {
			return err
		}
		return t.approve(owner, actual, approved, id)
	})
}

// SetApprovalForAllBySignature applies SetApprovalForAll on behalf of
// owner, authorized by sig over the typed-data digest.
func (t *Token) SetApprovalForAllBySignature(owner, operator types.Address, approved bool, deadline uint64, sig []byte) error {
	return t.guarded("setApprovalForAllBySignature", func() error {
		a := auth.Authorization{
			TypeHash:     auth.SetApprovalForAllTypeHash,
			Signer:       owner,
			Counterparty: operator,
			Payload:      auth.BoolWord(approved),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		return t.setApprovalForAll(owner, operator, approved)
	})
}

// ApprovalDigest exposes the digest a client must sign to approve one
// token at the owner's current nonce.
func (t *Token) ApprovalDigest(owner, approved types.Address, id types.TokenID, deadline uint64) ([32]byte, error) {
	nonce, err := t.verifier.Nonce(owner)
	if err != nil {
		return [32]byte{}, err
	}
	a := auth.Authorization{
		TypeHash:     auth.ApproveTypeHash,
		Signer:       owner,
		Counterparty: approved,
		Payload:      auth.TokenIDWord(id),
		Deadline:     deadline,
	}
	return t.verifier.DigestFor(a, nonce), nil
}

// OperatorApprovalDigest exposes the digest a client must sign for an
// operator approval at the owner's current nonce.
func (t *Token) OperatorApprovalDigest(owner, operator types.Address, approved bool, deadline uint64) ([32]byte, error) {
	nonce, err := t.verifier.Nonce(owner)
	if err != nil {
		return [32]byte{}, err
	}
	a := auth.Authorization{
		TypeHash:     auth.SetApprovalForAllTypeHash,
		Signer:       owner,
		Counterparty: operator,
		Payload:      auth.BoolWord(approved),
		Deadline:     deadline,
	}
	return t.verifier.DigestFor(a, nonce), nil
}

func (t *Token) approve(caller, owner, approved types.Address, id types.TokenID) error {
	if !caller.Equal(owner) {
		operator, err := t.IsApprovedForAll(owner, caller)
		if err != nil {
			return err
		}
		if !operator {
			return token.ErrNotAuthorized
		}
	}
	if err := t.approvals.SetAddress(tokenKey(id), approved); err != nil {
		return err
	}
	t.emitter.Emit(events.NFTApproval{Owner: owner, Approved: approved, TokenID: id})
	return nil
}

func (t *Token) setApprovalForAll(owner, operator types.Address, approved bool) error {
	if operator.IsZero() {
		return token.ErrZeroAddress
	}
	if err := t.operators.Inner(owner.Bytes()).SetBool(operator.Bytes(), approved); err != nil {
		return err
	}
	t.emitter.Emit(events.ApprovalForAll{Owner: owner, Operator: operator, Approved: approved})
	return nil
}
