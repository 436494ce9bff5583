package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"

	"tokenvault/auth"
	"tokenvault/events"
	"tokenvault/token"
	"tokenvault/types"
)

// TransferBySignature moves amount of id out of from's holdings,
// authorized by from's signature instead of a direct call.
func (t *Token) TransferBySignature(from, to types.Address, id types.TokenID, amount *uint256.Int, deadline uint64, sig []byte) error {
	return t.guarded("transferBySignature", func() error {
		a := auth.Authorization{
			TypeHash:     auth.TransferTypeHash,
			Signer:       from,
			Counterparty: to,
			Payload:      transferPayloadWord(id, amount),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		if err := t.move(from, to, id, amount); err != nil {
			return err
		}
		t.emitter.Emit(events.TransferSingle{Operator: from, From: from, To: to, ID: id, Amount: amount.Clone()})
		return nil
	})
}

// BatchTransferBySignature is the batched form; the signature covers a
// digest of the full id and amount lists.
func (t *Token) BatchTransferBySignature(from, to types.Address, ids []types.TokenID, amounts []*uint256.Int, deadline uint64, sig []byte) error {
	return t.guarded("batchTransferBySignature", func() error {
		if len(ids) != len(amounts) {
			return fmt.Errorf("%w: %d ids, %d amounts", token.ErrLengthMismatch, len(ids), len(amounts))
		}
		a := auth.Authorization{
			TypeHash:     auth.BatchTransferTypeHash,
			Signer:       from,
			Counterparty: to,
			Payload:      auth.BatchWord(ids, amounts),
			Deadline:     deadline,
		}
		if err := t.verifier.Authorize(a, sig); err != nil {
			return err
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		for i := range ids {
			if err := t.move(from, to, ids[i], amounts[i]); err != nil {
				return err
			}
		}
		events.EmitBatches(t.emitter, from, from, to, ids, amounts)
		return nil
	})
}

// TransferDigest exposes the digest a client must sign for a single-id
// transfer at the signer's current nonce.
func (t *Token) TransferDigest(from, to types.Address, id types.TokenID, amount *uint256.Int, deadline uint64) ([32]byte, error) {
	nonce, err := t.verifier.Nonce(from)
	if err != nil {
		return [32]byte{}, err
	}
	a := auth.Authorization{
		TypeHash:     auth.TransferTypeHash,
		Signer:       from,
		Counterparty: to,
		Payload:      transferPayloadWord(id, amount),
		Deadline:     deadline,
	}
	return t.verifier.DigestFor(a, nonce), nil
}

// BatchTransferDigest exposes the digest a client must sign for a batch
// transfer at the signer's current nonce.
func (t *Token) BatchTransferDigest(from, to types.Address, ids []types.TokenID, amounts []*uint256.Int, deadline uint64) ([32]byte, error) {
	if len(ids) != len(amounts) {
		return [32]byte{}, token.ErrLengthMismatch
	}
	nonce, err := t.verifier.Nonce(from)
	if err != nil {
		return [32]byte{}, err
	}
	a := auth.Authorization{
		TypeHash:     auth.BatchTransferTypeHash,
		Signer:       from,
		Counterparty: to,
		Payload:      auth.BatchWord(ids, amounts),
		Deadline:     deadline,
	}
	return t.verifier.DigestFor(a, nonce), nil
}

// transferPayloadWord folds the id and amount of a single-id transfer into
// one payload word.
func transferPayloadWord(id types.TokenID, amount *uint256.Int) [32]byte {
	return auth.BatchWord([]types.TokenID{id}, []*uint256.Int{amount})
}
