package multitoken

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"tokenvault/events"
	"tokenvault/guard"
	"tokenvault/host/local"
	"tokenvault/storage"
	"tokenvault/token"
	"tokenvault/types"
)

var (
	deployer = types.BytesToAddress([]byte("deployer"))
	alice    = types.BytesToAddress([]byte("alice"))
	bob      = types.BytesToAddress([]byte("bob"))
	carol    = types.BytesToAddress([]byte("carol"))
)

const (
	gold   types.TokenID = 1
	silver types.TokenID = 2
	relic  types.TokenID = 7
)

func newToken(t *testing.T, mode guard.Mode) (*Token, *local.Env, *events.Recorder) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(func() { db.Close() })
	env := local.NewEnv(db, types.BytesToAddress([]byte("vault-contract")), deployer)
	rec := &events.Recorder{}
	tok := New(env, rec, mode, 1, 7)
	require.NoError(t, tok.Initialize("https://vault.example/meta/{id}.json"))
	return tok, env, rec
}

func mustMint(t *testing.T, tok *Token, to types.Address, id types.TokenID, amount uint64) {
	t.Helper()
	require.NoError(t, tok.Mint(deployer, to, id, uint256.NewInt(amount)))
}

func balanceOf(t *testing.T, tok *Token, account types.Address, id types.TokenID) uint64 {
	t.Helper()
	v, err := tok.BalanceOf(account, id)
	require.NoError(t, err)
	return v.Uint64()
}

func amounts(vs ...uint64) []*uint256.Int {
	out := make([]*uint256.Int, len(vs))
	for i, v := range vs {
		out[i] = uint256.NewInt(v)
	}
	return out
}

func TestInitializeOnce(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	require.ErrorIs(t, tok.Initialize("https://other.example/{id}"), token.ErrAlreadyInitialized)
}

func TestURITemplate(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	uri, err := tok.URI(relic)
	require.NoError(t, err)
	require.Equal(t, "https://vault.example/meta/7.json", uri)
}

func TestSetURI(t *testing.T) {
	tok, _, rec := newToken(t, guard.Standard)
	require.ErrorIs(t, tok.SetURI(alice, "https://x/{id}"), token.ErrNotDeployer)
	require.NoError(t, tok.SetURI(deployer, "ipfs://bafy/{id}"))
	uri, err := tok.URI(gold)
	require.NoError(t, err)
	require.Equal(t, "ipfs://bafy/1", uri)
	require.Len(t, rec.OfType(events.TypeURI), 1)
}

func TestMintAndBalances(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 100)
	mustMint(t, tok, alice, silver, 5)
	mustMint(t, tok, bob, gold, 40)

	require.Equal(t, uint64(100), balanceOf(t, tok, alice, gold))
	require.Equal(t, uint64(5), balanceOf(t, tok, alice, silver))
	require.Equal(t, uint64(40), balanceOf(t, tok, bob, gold))
	require.Equal(t, uint64(0), balanceOf(t, tok, carol, gold))

	supply, err := tok.TotalSupply(gold)
	require.NoError(t, err)
	require.Equal(t, uint64(140), supply.Uint64())

	exists, err := tok.Exists(silver)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = tok.Exists(relic)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMintRestrictions(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	require.ErrorIs(t, tok.Mint(alice, alice, gold, uint256.NewInt(1)), token.ErrNotDeployer)
	require.ErrorIs(t, tok.Mint(deployer, types.ZeroAddress, gold, uint256.NewInt(1)), token.ErrZeroAddress)
}

func TestMintSupplyOverflow(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	max := new(uint256.Int).SetAllOne()
	require.NoError(t, tok.Mint(deployer, alice, gold, max))
	require.ErrorIs(t, tok.Mint(deployer, bob, gold, uint256.NewInt(1)), token.ErrSupplyCeiling)
	// The failed mint left both supply and balances untouched.
	require.Equal(t, uint64(0), balanceOf(t, tok, bob, gold))
	supply, err := tok.TotalSupply(gold)
	require.NoError(t, err)
	require.Equal(t, max, supply)
}

func TestBalanceOfBatch(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 10)
	mustMint(t, tok, bob, silver, 20)

	balances, err := tok.BalanceOfBatch(
		[]types.Address{alice, bob, alice},
		[]types.TokenID{gold, silver, silver},
	)
	require.NoError(t, err)
	require.Equal(t, amounts(10, 20, 0), balances)

	_, err = tok.BalanceOfBatch([]types.Address{alice}, []types.TokenID{gold, silver})
	require.ErrorIs(t, err, token.ErrLengthMismatch)
}

func TestSafeTransferFrom(t *testing.T) {
	tok, _, rec := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 100)

	require.NoError(t, tok.SafeTransferFrom(alice, alice, bob, gold, uint256.NewInt(30), nil))
	require.Equal(t, uint64(70), balanceOf(t, tok, alice, gold))
	require.Equal(t, uint64(30), balanceOf(t, tok, bob, gold))

	err := tok.SafeTransferFrom(alice, alice, bob, gold, uint256.NewInt(71), nil)
	require.ErrorIs(t, err, token.ErrInsufficientBalance)

	// mint + transfer
	require.Len(t, rec.OfType(events.TypeTransferSingle), 2)
}

func TestSafeTransferZeroAmount(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	// Zero-amount movements of an id nobody holds are still legal.
	require.NoError(t, tok.SafeTransferFrom(alice, alice, bob, relic, uint256.NewInt(0), nil))
	require.Equal(t, uint64(0), balanceOf(t, tok, bob, relic))
}

func TestTransferAuthorization(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 50)

	err := tok.SafeTransferFrom(bob, alice, carol, gold, uint256.NewInt(10), nil)
	require.ErrorIs(t, err, token.ErrNotAuthorized)

	require.NoError(t, tok.SetApprovalForAll(alice, bob, true))
	require.NoError(t, tok.SafeTransferFrom(bob, alice, carol, gold, uint256.NewInt(10), nil))
	require.Equal(t, uint64(10), balanceOf(t, tok, carol, gold))

	require.NoError(t, tok.SetApprovalForAll(alice, bob, false))
	err = tok.SafeTransferFrom(bob, alice, carol, gold, uint256.NewInt(10), nil)
	require.ErrorIs(t, err, token.ErrNotAuthorized)
}

func TestSetApprovalForAllZeroOperator(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	require.ErrorIs(t, tok.SetApprovalForAll(alice, types.ZeroAddress, true), token.ErrZeroAddress)
}

func TestTransferToZeroAddress(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 10)
	err := tok.SafeTransferFrom(alice, alice, types.ZeroAddress, gold, uint256.NewInt(1), nil)
	require.ErrorIs(t, err, token.ErrZeroAddress)
}

func TestBatchTransfer(t *testing.T) {
	tok, _, rec := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 100)
	mustMint(t, tok, alice, silver, 100)

	require.NoError(t, tok.SafeBatchTransferFrom(alice, alice, bob,
		[]types.TokenID{gold, silver}, amounts(25, 0), nil))
	require.Equal(t, uint64(25), balanceOf(t, tok, bob, gold))
	require.Equal(t, uint64(0), balanceOf(t, tok, bob, silver))
	require.Equal(t, uint64(100), balanceOf(t, tok, alice, silver))

	batches := rec.OfType(events.TypeTransferBatch)
	require.Len(t, batches, 1)
	batch := batches[0].(events.TransferBatch)
	require.Equal(t, []types.TokenID{gold, silver}, batch.IDs)
}

func TestBatchLengthMismatch(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 100)

	err := tok.SafeBatchTransferFrom(alice, alice, bob,
		[]types.TokenID{gold, silver}, amounts(10), nil)
	require.ErrorIs(t, err, token.ErrLengthMismatch)
	// Nothing moved before the check.
	require.Equal(t, uint64(100), balanceOf(t, tok, alice, gold))
}

func TestBatchEventSplitting(t *testing.T) {
	tok, _, rec := newToken(t, guard.Standard)

	n := events.MaxBatchSpan*2 + 5
	ids := make([]types.TokenID, n)
	vals := make([]*uint256.Int, n)
	for i := range ids {
		ids[i] = types.TokenID(i + 1)
		vals[i] = uint256.NewInt(uint64(i + 1))
	}
	require.NoError(t, tok.MintBatch(deployer, alice, ids, vals))

	batches := rec.OfType(events.TypeTransferBatch)
	require.Len(t, batches, 3)
	require.Len(t, batches[0].(events.TransferBatch).IDs, events.MaxBatchSpan)
	require.Len(t, batches[1].(events.TransferBatch).IDs, events.MaxBatchSpan)
	require.Len(t, batches[2].(events.TransferBatch).IDs, 5)
	// Order survives the split.
	last := batches[2].(events.TransferBatch)
	require.Equal(t, types.TokenID(n), last.IDs[len(last.IDs)-1])
}

func TestMintBatchLengthMismatch(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	err := tok.MintBatch(deployer, alice, []types.TokenID{gold}, amounts(1, 2))
	require.ErrorIs(t, err, token.ErrLengthMismatch)
}

func TestBurn(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 100)

	require.ErrorIs(t, tok.Burn(bob, alice, gold, uint256.NewInt(10)), token.ErrNotAuthorized)
	require.NoError(t, tok.Burn(alice, alice, gold, uint256.NewInt(40)))
	require.Equal(t, uint64(60), balanceOf(t, tok, alice, gold))
	supply, err := tok.TotalSupply(gold)
	require.NoError(t, err)
	require.Equal(t, uint64(60), supply.Uint64())

	require.ErrorIs(t, tok.Burn(alice, alice, gold, uint256.NewInt(61)), token.ErrInsufficientBalance)

	// Operators may burn on the holder's behalf.
	require.NoError(t, tok.SetApprovalForAll(alice, bob, true))
	require.NoError(t, tok.Burn(bob, alice, gold, uint256.NewInt(60)))
	exists, err := tok.Exists(gold)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBurnBatch(t *testing.T) {
	tok, _, _ := newToken(t, guard.Standard)
	mustMint(t, tok, alice, gold, 10)
	mustMint(t, tok, alice, silver, 20)

	require.NoError(t, tok.BurnBatch(alice, alice, []types.TokenID{gold, silver}, amounts(10, 5)))
	require.Equal(t, uint64(0), balanceOf(t, tok, alice, gold))
	require.Equal(t, uint64(15), balanceOf(t, tok, alice, silver))

	err := tok.BurnBatch(alice, alice, []types.TokenID{gold, silver}, amounts(1))
	require.ErrorIs(t, err, token.ErrLengthMismatch)
}
