// Package nonfungible implements the NFT ledger: per-token ownership,
// single-token and operator approvals, and O(1) owner enumeration kept
// consistent through swap-removal.
package nonfungible

import (
	"encoding/binary"
	"fmt"
	"strconv"

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
	nsName slot.Namespace = iota
	nsSymbol
	nsBaseURI
	nsTotalSupply
	nsMaxSupply
	nsBalance
	nsOwner
	nsTokenApproval
	nsOperatorApproval
	nsOwnerIndex
	nsTokenPosition
	nsNonce
	nsGuardLock
	nsGuardDepth
)

const (
	maxNameLength    = 128
	maxSymbolLength  = 32
	maxBaseURILength = 256
)

// Config fixes the immutable collection metadata. MaxSupply zero means the
// collection is unbounded.
type Config struct {
	Name      string
	Symbol    string
	BaseURI   string
	MaxSupply uint64
}

// Token is the non-fungible ledger state machine.
type Token struct {
	env         host.Env
	store       *slot.Store
	guard       *guard.Guard
	verifier    *auth.Verifier
	emitter     events.Emitter
	owners      *slot.Map
	balances    *slot.Map
	approvals   *slot.Map
	operators   *slot.NestedMap
	positions   *slot.Map
	name        *slot.StringCell
	symbol      *slot.StringCell
	baseURI     *slot.StringCell
	totalSupply *slot.U64Cell
	maxSupply   *slot.U64Cell
}

// New composes the ledger over the host environment.
func New(env host.Env, emitter events.Emitter, mode guard.Mode, chainID, protocolID uint64) *Token {
	store := slot.NewStore(env)
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Token{
		env:         env,
		store:       store,
		guard:       guard.New(store, mode, dispatch.NonFungibleOps(), nsGuardLock, nsGuardDepth),
		verifier:    auth.NewVerifier(store, nsNonce, chainID, protocolID),
		emitter:     emitter,
		owners:      store.Map(nsOwner),
		balances:    store.Map(nsBalance),
		approvals:   store.Map(nsTokenApproval),
		operators:   store.NestedMap(nsOperatorApproval),
		positions:   store.Map(nsTokenPosition),
		name:        store.StringCell(nsName, nil, maxNameLength),
		symbol:      store.StringCell(nsSymbol, nil, maxSymbolLength),
		baseURI:     store.StringCell(nsBaseURI, nil, maxBaseURILength),
		totalSupply: store.U64Cell(nsTotalSupply, nil),
		maxSupply:   store.U64Cell(nsMaxSupply, nil),
	}
}

// Initialize writes the immutable metadata; a second call fails.
func (t *Token) Initialize(cfg Config) error {
	if existing, err := t.symbol.GetString(); err != nil {
		return err
	} else if existing != "" {
		return token.ErrAlreadyInitialized
	}
	if err := t.name.SetString(cfg.Name); err != nil {
		return err
	}
	if err := t.symbol.SetString(cfg.Symbol); err != nil {
		return err
	}
	if err := t.baseURI.SetString(cfg.BaseURI); err != nil {
		return err
	}
	return t.maxSupply.Set(cfg.MaxSupply)
}

func tokenKey(id types.TokenID) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(id))
	return key[:]
}

func (t *Token) ownerEnum(owner types.Address) *slot.IndexedArray {
	return t.store.IndexedArray(nsOwnerIndex, owner.Bytes())
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

func (t *Token) Name() (string, error)   { return t.name.GetString() }
func (t *Token) Symbol() (string, error) { return t.symbol.GetString() }

func (t *Token) TotalSupply() (uint64, error) { return t.totalSupply.Get() }

// BalanceOf returns the number of tokens owner holds. It always equals the
// length of the owner's enumeration.
func (t *Token) BalanceOf(owner types.Address) (uint64, error) {
	if owner.IsZero() {
		return 0, token.ErrZeroAddress
	}
	return t.balances.U64(owner.Bytes())
}

// OwnerOf returns the owner of id. A zero stored owner means the token
// does not exist.
func (t *Token) OwnerOf(id types.TokenID) (types.Address, error) {
	owner, err := t.owners.Address(tokenKey(id))
	if err != nil {
		return types.Address{}, err
	}
	if owner.IsZero() {
		return types.Address{}, fmt.Errorf("%w: %d", token.ErrUnknownToken, id)
	}
	return owner, nil
}

// GetApproved returns the account approved to move id, zero when none.
func (t *Token) GetApproved(id types.TokenID) (types.Address, error) {
	if _, err := t.OwnerOf(id); err != nil {
		return types.Address{}, err
	}
	return t.approvals.Address(tokenKey(id))
}

// IsApprovedForAll reports whether operator may act on all of owner's
// tokens.
func (t *Token) IsApprovedForAll(owner, operator types.Address) (bool, error) {
	return t.operators.Inner(owner.Bytes()).Bool(operator.Bytes())
}

// TokenOfOwnerByIndex returns the i-th token of owner's enumeration. The
// order is not the insertion order: removal swaps with the last element.
func (t *Token) TokenOfOwnerByIndex(owner types.Address, i uint64) (types.TokenID, error) {
	v, err := t.ownerEnum(owner).Get(i)
	if err != nil {
		return 0, err
	}
	return types.TokenID(v), nil
}

// TokenURI renders the metadata URI of id: the base URI with the decimal
// id appended.
func (t *Token) TokenURI(id types.TokenID) (string, error) {
	if _, err := t.OwnerOf(id); err != nil {
		return "", err
	}
	base, err := t.baseURI.GetString()
	if err != nil {
		return "", err
	}
	if base == "" {
		return "", nil
	}
	return base + strconv.FormatUint(uint64(id), 10), nil
}

// SetBaseURI replaces the collection base URI. Deployer only.
func (t *Token) SetBaseURI(caller types.Address, base string) error {
	return t.guarded("setBaseURI", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		return t.baseURI.SetString(base)
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

// --- Mint / Burn ---

// Mint creates id under to's ownership. Restricted to the deployer and
// bounded by the max-supply ceiling when one is set.
func (t *Token) Mint(caller, to types.Address, id types.TokenID) error {
	return t.guarded("mint", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		existing, err := t.owners.Address(tokenKey(id))
		if err != nil {
			return err
		}
		if !existing.IsZero() {
			return fmt.Errorf("%w: %d", token.ErrTokenExists, id)
		}
		supply, err := t.totalSupply.Get()
		if err != nil {
			return err
		}
		max, err := t.maxSupply.Get()
		if err != nil {
			return err
		}
		if max != 0 && supply+1 > max {
			return fmt.Errorf("%w: %d + 1 > %d", token.ErrSupplyCeiling, supply, max)
		}
		if err := t.attach(to, id); err != nil {
			return err
		}
		if err := t.totalSupply.Set(supply + 1); err != nil {
			return err
		}
		t.emitter.Emit(events.NFTTransfer{From: types.ZeroAddress, To: to, TokenID: id})
		return nil
	})
}

// Burn destroys id. The caller must be the owner, the approved account or
// an approved operator.
func (t *Token) Burn(caller types.Address, id types.TokenID) error {
	return t.guarded("burn", func() error {
		owner, err := t.OwnerOf(id)
		if err != nil {
			return err
		}
		authorized, err := t.isAuthorized(caller, owner, id)
		if err != nil {
			return err
		}
		if !authorized {
			return token.ErrNotAuthorized
		}
		if err := t.detach(owner, id); err != nil {
			return err
		}
		supply, err := t.totalSupply.Get()
		if err != nil {
			return err
		}
		if err := t.totalSupply.Set(supply - 1); err != nil {
			return err
		}
		t.emitter.Emit(events.NFTTransfer{From: owner, To: types.ZeroAddress, TokenID: id})
		return nil
	})
}

// attach gives to ownership of id and appends it to the enumeration.
func (t *Token) attach(to types.Address, id types.TokenID) error {
	if err := t.owners.SetAddress(tokenKey(id), to); err != nil {
		return err
	}
	enum := t.ownerEnum(to)
	pos, err := enum.Len()
	if err != nil {
		return err
	}
	if err := enum.Push(uint64(id)); err != nil {
		return err
	}
	if err := t.positions.SetU64(tokenKey(id), pos); err != nil {
		return err
	}
	balance, err := t.balances.U64(to.Bytes())
	if err != nil {
		return err
	}
	return t.balances.SetU64(to.Bytes(), balance+1)
}

// detach removes id from owner: approval cleared, enumeration swap-removed
// with the position index repaired, ownership zeroed.
func (t *Token) detach(owner types.Address, id types.TokenID) error {
	if err := t.approvals.Delete(tokenKey(id)); err != nil {
		return err
	}
	pos, err := t.positions.U64(tokenKey(id))
	if err != nil {
		return err
	}
	moved, err := t.ownerEnum(owner).SwapRemove(pos)
	if err != nil {
		return err
	}
	if moved != uint64(id) {
		if err := t.positions.SetU64(tokenKey(types.TokenID(moved)), pos); err != nil {
			return err
		}
	}
	if err := t.positions.Delete(tokenKey(id)); err != nil {
		return err
	}
	if err := t.owners.Delete(tokenKey(id)); err != nil {
		return err
	}
	balance, err := t.balances.U64(owner.Bytes())
	if err != nil {
		return err
	}
	return t.balances.SetU64(owner.Bytes(), balance-1)
}

// isAuthorized reports whether caller may move id owned by owner.
func (t *Token) isAuthorized(caller, owner types.Address, id types.TokenID) (bool, error) {
	if caller.Equal(owner) {
		return true, nil
	}
	approved, err := t.approvals.Address(tokenKey(id))
	if err != nil {
		return false, err
	}
	if caller.Equal(approved) && !approved.IsZero() {
		return true, nil
	}
	return t.IsApprovedForAll(owner, caller)
}
