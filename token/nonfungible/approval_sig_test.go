package nonfungible

import (
	"errors"
	"testing"

	"tokenvault/auth"
	"tokenvault/token"
	"tokenvault/types"
)

func TestApproveBySignature(t *testing.T) {
	tok, _, _ := newToken(t)
	key, err := types.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.Address()
	mustMint(t, tok, owner, 7)

	digest, err := tok.ApprovalDigest(owner, carol, 7, 100)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig := key.Sign(digest[:])

	if err := tok.ApproveBySignature(owner, carol, 7, 100, sig); err != nil {
		t.Fatalf("approveBySignature: %v", err)
	}
	if approved, _ := tok.GetApproved(7); !approved.Equal(carol) {
		t.Fatalf("approval not applied: %s", approved)
	}

	// The consumed nonce makes the same signature worthless.
	if err := tok.ApproveBySignature(owner, carol, 7, 100, sig); !errors.Is(err, auth.ErrSignatureInvalid) {
		t.Fatalf("expected replay rejection, got %v", err)
	}
}

func TestApproveBySignatureForeignToken(t *testing.T) {
	tok, _, _ := newToken(t)
	key, _ := types.GeneratePrivateKey()
	signer := key.Address()
	mustMint(t, tok, alice, 7)

	digest, _ := tok.ApprovalDigest(signer, carol, 7, 100)
	sig := key.Sign(digest[:])
	// The signature is genuine but the signer does not own the token.
	if err := tok.ApproveBySignature(signer, carol, 7, 100, sig); !errors.Is(err, token.ErrNotAuthorized) {
		t.Fatalf("expected authorization failure, got %v", err)
	}
}

func TestSetApprovalForAllBySignature(t *testing.T) {
	tok, _, _ := newToken(t)
	key, _ := types.GeneratePrivateKey()
	owner := key.Address()
	mustMint(t, tok, owner, 1)

	digest, err := tok.OperatorApprovalDigest(owner, carol, true, 100)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if err := tok.SetApprovalForAllBySignature(owner, carol, true, 100, key.Sign(digest[:])); err != nil {
		t.Fatalf("setApprovalForAllBySignature: %v", err)
	}
	if ok, _ := tok.IsApprovedForAll(owner, carol); !ok {
		t.Fatalf("operator approval not applied")
	}
	if err := tok.TransferFrom(carol, owner, bob, 1); err != nil {
		t.Fatalf("operator transfer: %v", err)
	}
}
