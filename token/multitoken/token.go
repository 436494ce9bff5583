// Package multitoken implements the multi-id ledger: per-(account, id)
// balances, per-id supplies, operator approvals and batched operations
// that split notifications to respect the host payload ceiling.
package multitoken

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"tokenvault/auth"
	"tokenvault/dispatch"
	"tokenvault/events"
	"tokenvault/guard"
	"tokenvault/host"
	"tokenvault/slot"
	"tokenvault/token"
	"tokenvault/types"
)

// Storage namespaces. The ids are part of the persisted layout: never
// reuse or reorder them between deployments.
const (
	nsURI slot.Namespace = iota
	nsBalance
	nsSupply
	nsOperatorApproval
	nsNonce
	nsGuardLock
	nsGuardDepth
)

const maxURILength = 256

// idPlaceholder in the URI template is replaced by the decimal token id.
const idPlaceholder = "{id}"

// Token is the multi-id ledger state machine.
type Token struct {
	env       host.Env
	store     *slot.Store
	guard     *guard.Guard
	verifier  *auth.Verifier
	emitter   events.Emitter
	balances  *slot.NestedMap
	supplies  *slot.Map
	operators *slot.NestedMap
	uri       *slot.StringCell
}

// New composes the ledger over the host environment.
func New(env host.Env, emitter events.Emitter, mode guard.Mode, chainID, protocolID uint64) *Token {
	store := slot.NewStore(env)
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Token{
		env:       env,
		store:     store,
		guard:     guard.New(store, mode, dispatch.MultiTokenOps(), nsGuardLock, nsGuardDepth),
		verifier:  auth.NewVerifier(store, nsNonce, chainID, protocolID),
		emitter:   emitter,
		balances:  store.NestedMap(nsBalance),
		supplies:  store.Map(nsSupply),
		operators: store.NestedMap(nsOperatorApproval),
		uri:       store.StringCell(nsURI, nil, maxURILength),
	}
}

// Initialize writes the URI template; a second call fails.
func (t *Token) Initialize(uriTemplate string) error {
	if existing, err := t.uri.GetString(); err != nil {
		return err
	} else if existing != "" {
		return token.ErrAlreadyInitialized
	}
	return t.uri.SetString(uriTemplate)
}

func idKey(id types.TokenID) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(id))
	return key[:]
}

func (t *Token) guarded(op dispatch.Op, fn func() error) error {
	if err := t.guard.Enter(op); err != nil {
		return err
	}
	opErr := fn()
	if exitErr := t.guard.Exit(op); opErr == nil {
		return exitErr
	}
	return opErr
}

// --- Views ---

// BalanceOf returns account's balance of id; absent entries read zero.
func (t *Token) BalanceOf(account types.Address, id types.TokenID) (*uint256.Int, error) {
	return t.balances.Inner(account.Bytes()).U256(idKey(id))
}

// BalanceOfBatch resolves parallel account/id lists in one call.
func (t *Token) BalanceOfBatch(accounts []types.Address, ids []types.TokenID) ([]*uint256.Int, error) {
	if len(accounts) != len(ids) {
		return nil, token.ErrLengthMismatch
	}
	out := make([]*uint256.Int, len(accounts))
	for i := range accounts {
		balance, err := t.BalanceOf(accounts[i], ids[i])
		if err != nil {
			return nil, err
		}
		out[i] = balance
	}
	return out, nil
}

// TotalSupply returns the outstanding amount of id.
func (t *Token) TotalSupply(id types.TokenID) (*uint256.Int, error) {
	return t.supplies.U256(idKey(id))
}

// Exists reports whether any amount of id is outstanding.
func (t *Token) Exists(id types.TokenID) (bool, error) {
	supply, err := t.TotalSupply(id)
	if err != nil {
		return false, err
	}
	return !supply.IsZero(), nil
}

// URI renders the metadata URI of id from the stored template.
func (t *Token) URI(id types.TokenID) (string, error) {
	template, err := t.uri.GetString()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(template, idPlaceholder, strconv.FormatUint(uint64(id), 10)), nil
}

// SetURI replaces the URI template. Deployer only.
func (t *Token) SetURI(caller types.Address, uriTemplate string) error {
	return t.guarded("setURI", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		if err := t.uri.SetString(uriTemplate); err != nil {
			return err
		}
		t.emitter.Emit(events.URI{Value: uriTemplate})
		return nil
	})
}

// IsApprovedForAll reports whether operator may act on all of owner's ids.
func (t *Token) IsApprovedForAll(owner, operator types.Address) (bool, error) {
	return t.operators.Inner(owner.Bytes()).Bool(operator.Bytes())
}

// SetApprovalForAll grants or revokes operator over all of the caller's
// ids.
func (t *Token) SetApprovalForAll(caller, operator types.Address, approved bool) error {
	return t.guarded("setApprovalForAll", func() error {
		if operator.IsZero() {
			return token.ErrZeroAddress
		}
		if err := t.operators.Inner(caller.Bytes()).SetBool(operator.Bytes(), approved); err != nil {
			return err
		}
		t.emitter.Emit(events.ApprovalForAll{Owner: caller, Operator: operator, Approved: approved})
		return nil
	})
}

// NonceOf returns the next signature nonce expected from signer.
func (t *Token) NonceOf(signer types.Address) (uint64, error) {
	return t.verifier.Nonce(signer)
}

// DomainSeparator returns the live typed-data domain separator.
func (t *Token) DomainSeparator() [32]byte {
	return t.verifier.DomainSeparator()
}

// canAct reports whether operator may move from's holdings.
func (t *Token) canAct(operator, from types.Address) (bool, error) {
	if operator.Equal(from) {
		return true, nil
	}
	return t.IsApprovedForAll(from, operator)
}
