package multitoken

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"tokenvault/auth"
	"tokenvault/guard"
	"tokenvault/token"
	"tokenvault/types"
)

func TestTransferBySignature(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	key, err := types.GeneratePrivateKey()
	require.NoError(t, err)
	holder := key.Address()
	mustMint(t, tok, holder, gold, 100)

	amount := uint256.NewInt(35)
	digest, err := tok.TransferDigest(holder, bob, gold, amount, 50)
	require.NoError(t, err)
	sig := key.Sign(digest[:])

	// A relayer submits the signed transfer; the holder never calls in.
	require.NoError(t, tok.TransferBySignature(holder, bob, gold, amount, 50, sig))
	require.Equal(t, uint64(65), balanceOf(t, tok, holder, gold))
	require.Equal(t, uint64(35), balanceOf(t, tok, bob, gold))

	nonce, err := tok.NonceOf(holder)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	// The consumed signature no longer verifies against the new nonce.
	err = tok.TransferBySignature(holder, bob, gold, amount, 50, sig)
	require.ErrorIs(t, err, auth.ErrSignatureInvalid)
	require.Equal(t, uint64(65), balanceOf(t, tok, holder, gold))
}

func TestTransferBySignatureExpired(t *testing.T) {
	tok, env, _ := newToken(t, guard.Standard)
	key, _ := types.GeneratePrivateKey()
	holder := key.Address()
	mustMint(t, tok, holder, gold, 10)

	digest, err := tok.TransferDigest(holder, bob, gold, uint256.NewInt(1), 5)
	require.NoError(t, err)
	sig := key.Sign(digest[:])

	env.SetBlockHeight(6)
	err = tok.TransferBySignature(holder, bob, gold, uint256.NewInt(1), 5, sig)
	require.ErrorIs(t, err, auth.ErrSignatureExpired)
}

func TestTransferBySignatureBindsParameters(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	key, _ := types.GeneratePrivateKey()
	holder := key.Address()
	mustMint(t, tok, holder, gold, 100)
	mustMint(t, tok, holder, silver, 100)

	digest, err := tok.TransferDigest(holder, bob, gold, uint256.NewInt(10), 50)
	require.NoError(t, err)
	sig := key.Sign(digest[:])

	// Swapping the id invalidates the signature.
	err = tok.TransferBySignature(holder, bob, silver, uint256.NewInt(10), 50, sig)
	require.ErrorIs(t, err, auth.ErrSignatureInvalid)
	// So does raising the amount.
	err = tok.TransferBySignature(holder, bob, gold, uint256.NewInt(11), 50, sig)
	require.ErrorIs(t, err, auth.ErrSignatureInvalid)
	// The signed parameters still pass.
	require.NoError(t, tok.TransferBySignature(holder, bob, gold, uint256.NewInt(10), 50, sig))
}

func TestBatchTransferBySignature(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	key, _ := types.GeneratePrivateKey()
	holder := key.Address()
	mustMint(t, tok, holder, gold, 100)
	mustMint(t, tok, holder, silver, 100)

	ids := []types.TokenID{gold, silver}
	vals := amounts(20, 30)
	digest, err := tok.BatchTransferDigest(holder, carol, ids, vals, 50)
	require.NoError(t, err)
	sig := key.Sign(digest[:])

	require.NoError(t, tok.BatchTransferBySignature(holder, carol, ids, vals, 50, sig))
	require.Equal(t, uint64(20), balanceOf(t, tok, carol, gold))
	require.Equal(t, uint64(30), balanceOf(t, tok, carol, silver))

	// Reordering the signed lists yields a different batch digest.
	digest2, err := tok.BatchTransferDigest(holder, carol, []types.TokenID{silver, gold}, amounts(30, 20), 50)
	require.NoError(t, err)
	sig2 := key.Sign(digest2[:])
	err = tok.BatchTransferBySignature(holder, carol, ids, vals, 50, sig2)
	require.ErrorIs(t, err, auth.ErrSignatureInvalid)
}

func TestBatchTransferBySignatureLengthMismatch(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	key, _ := types.GeneratePrivateKey()
	holder := key.Address()

	_, err := tok.BatchTransferDigest(holder, bob, []types.TokenID{gold}, amounts(1, 2), 50)
	require.ErrorIs(t, err, token.ErrLengthMismatch)

	sig := make([]byte, 64)
	err = tok.BatchTransferBySignature(holder, bob, []types.TokenID{gold}, amounts(1, 2), 50, sig)
	require.ErrorIs(t, err, token.ErrLengthMismatch)
}
