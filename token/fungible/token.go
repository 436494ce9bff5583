// Package fungible implements the fungible token ledger: balances,
// allowances with an unlimited sentinel, deployer-restricted minting and a
// receiver-acceptance handshake on safe transfers.
package fungible

import (
	"fmt"

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
	nsName slot.Namespace = iota
	nsSymbol
	nsDecimals
	nsTotalSupply
	nsMaxSupply
	nsBalance
	nsAllowance
	nsNonce
	nsGuardLock
	nsGuardDepth
)

const (
	maxNameLength   = 128
	maxSymbolLength = 32
)

// Config fixes the immutable metadata written at initialization. A nil or
// zero MaxSupply means the supply is unbounded.
type Config struct {
	Name      string
	Symbol    string
	Decimals  uint8
	MaxSupply *uint256.Int
}

// Token is the fungible ledger state machine. All reads and writes funnel
// through the slot layer; the dispatcher supplies the caller identity per
// operation.
type Token struct {
	env         host.Env
	store       *slot.Store
	guard       *guard.Guard
	verifier    *auth.Verifier
	emitter     events.Emitter
	balances    *slot.Map
	allowances  *slot.NestedMap
	name        *slot.StringCell
	symbol      *slot.StringCell
	decimals    *slot.U64Cell
	totalSupply *slot.U256Cell
	maxSupply   *slot.U256Cell
}

// New composes the ledger over the host environment. The guard mode and
// chain/protocol identifiers are fixed per deployment.
func New(env host.Env, emitter events.Emitter, mode guard.Mode, chainID, protocolID uint64) *Token {
	store := slot.NewStore(env)
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Token{
		env:         env,
		store:       store,
		guard:       guard.New(store, mode, dispatch.FungibleOps(), nsGuardLock, nsGuardDepth),
		verifier:    auth.NewVerifier(store, nsNonce, chainID, protocolID),
		emitter:     emitter,
		balances:    store.Map(nsBalance),
		allowances:  store.NestedMap(nsAllowance),
		name:        store.StringCell(nsName, nil, maxNameLength),
		symbol:      store.StringCell(nsSymbol, nil, maxSymbolLength),
		decimals:    store.U64Cell(nsDecimals, nil),
		totalSupply: store.U256Cell(nsTotalSupply, nil),
		maxSupply:   store.U256Cell(nsMaxSupply, nil),
	}
}

// Initialize writes the immutable metadata. It runs once per deployment;
// a second call is a consistency failure.
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
	if err := t.decimals.Set(uint64(cfg.Decimals)); err != nil {
		return err
	}
	max := cfg.MaxSupply
	if max == nil {
		max = new(uint256.Int)
	}
	return t.maxSupply.Set(max)
}

// guarded runs fn inside the reentrancy guard window for op.
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

func (t *Token) Decimals() (uint8, error) {
	v, err := t.decimals.Get()
	return uint8(v), err
}

func (t *Token) TotalSupply() (*uint256.Int, error) { return t.totalSupply.Get() }
func (t *Token) MaxSupply() (*uint256.Int, error)   { return t.maxSupply.Get() }

// BalanceOf returns account's balance; absent entries read zero.
func (t *Token) BalanceOf(account types.Address) (*uint256.Int, error) {
	return t.balances.U256(account.Bytes())
}

// Allowance returns the amount spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender types.Address) (*uint256.Int, error) {
	return t.allowances.Inner(owner.Bytes()).U256(spender.Bytes())
}

// NonceOf returns the next signature nonce expected from signer.
func (t *Token) NonceOf(signer types.Address) (uint64, error) {
	return t.verifier.Nonce(signer)
}

// DomainSeparator returns the live typed-data domain separator.
func (t *Token) DomainSeparator() [32]byte {
	return t.verifier.DomainSeparator()
}

// --- Mutations ---

// Transfer moves amount from the caller to recipient.
func (t *Token) Transfer(caller, to types.Address, amount *uint256.Int) error {
	return t.guarded("transfer", func() error {
		return t.move(caller, to, amount)
	})
}

// TransferFrom spends the caller's allowance on from's balance.
func (t *Token) TransferFrom(caller, from, to types.Address, amount *uint256.Int) error {
	return t.guarded("transferFrom", func() error {
		if err := t.spendAllowance(from, caller, amount); err != nil {
			return err
		}
		return t.move(from, to, amount)
	})
}

// SafeTransfer is Transfer plus the receiver-acceptance handshake when the
// recipient carries code.
func (t *Token) SafeTransfer(caller, to types.Address, amount *uint256.Int, data []byte) error {
	return t.guarded("safeTransfer", func() error {
		if err := t.move(caller, to, amount); err != nil {
			return err
		}
		return t.notifyReceiver(caller, to, amount, data)
	})
}

// SafeTransferFrom is TransferFrom plus the receiver-acceptance handshake.
func (t *Token) SafeTransferFrom(caller, from, to types.Address, amount *uint256.Int, data []byte) error {
	return t.guarded("safeTransferFrom", func() error {
		if err := t.spendAllowance(from, caller, amount); err != nil {
			return err
		}
		if err := t.move(from, to, amount); err != nil {
			return err
		}
		return t.notifyReceiver(from, to, amount, data)
	})
}

// Mint credits amount to recipient, growing the total supply. Restricted
// to the deployer and bounded by the max-supply ceiling when one is set.
func (t *Token) Mint(caller, to types.Address, amount *uint256.Int) error {
	return t.guarded("mint", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		if amount.IsZero() {
			return token.ErrZeroAmount
		}
		supply, err := t.totalSupply.Get()
		if err != nil {
			return err
		}
		newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
		if overflow {
			return token.ErrSupplyCeiling
		}
		max, err := t.maxSupply.Get()
		if err != nil {
			return err
		}
		if !max.IsZero() && newSupply.Gt(max) {
			return fmt.Errorf("%w: %s + %s > %s", token.ErrSupplyCeiling, supply, amount, max)
		}
		if err := t.credit(to, amount); err != nil {
			return err
		}
		if err := t.totalSupply.Set(newSupply); err != nil {
			return err
		}
		t.emitter.Emit(events.Transfer{From: types.ZeroAddress, To: to, Amount: amount.Clone()})
		return nil
	})
}

// Burn debits amount from the caller's balance, shrinking the total
// supply.
func (t *Token) Burn(caller types.Address, amount *uint256.Int) error {
	return t.guarded("burn", func() error {
		if amount.IsZero() {
			return token.ErrZeroAmount
		}
		if err := t.debit(caller, amount); err != nil {
			return err
		}
		supply, err := t.totalSupply.Get()
		if err != nil {
			return err
		}
		if err := t.totalSupply.Set(supply.Sub(supply, amount)); err != nil {
			return err
		}
		t.emitter.Emit(events.Transfer{From: caller, To: types.ZeroAddress, Amount: amount.Clone()})
		return nil
	})
}

// IncreaseAllowance raises the allowance granted to spender, saturating at
// the unlimited sentinel on overflow.
func (t *Token) IncreaseAllowance(caller, spender types.Address, amount *uint256.Int) error {
	return t.guarded("increaseAllowance", func() error {
		return t.increaseAllowance(caller, spender, amount)
	})
}

// DecreaseAllowance lowers the allowance granted to spender, flooring at
// zero. A sentinel allowance stays unlimited unless the decrease itself is
// the sentinel value, which revokes the approval entirely.
func (t *Token) DecreaseAllowance(caller, spender types.Address, amount *uint256.Int) error {
	return t.guarded("decreaseAllowance", func() error {
		return t.decreaseAllowance(caller, spender, amount)
	})
}

// --- Internals ---

// move validates and applies one balance movement, then notifies.
func (t *Token) move(from, to types.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return token.ErrZeroAddress
	}
	if amount.IsZero() {
		return token.ErrZeroAmount
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	if err := t.credit(to, amount); err != nil {
		return err
	}
	t.emitter.Emit(events.Transfer{From: from, To: to, Amount: amount.Clone()})
	return nil
}

func (t *Token) debit(account types.Address, amount *uint256.Int) error {
	balance, err := t.balances.U256(account.Bytes())
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", token.ErrInsufficientBalance, balance, amount)
	}
	return t.balances.SetU256(account.Bytes(), balance.Sub(balance, amount))
}

func (t *Token) credit(account types.Address, amount *uint256.Int) error {
	balance, err := t.balances.U256(account.Bytes())
	if err != nil {
		return err
	}
	return t.balances.SetU256(account.Bytes(), balance.Add(balance, amount))
}

// spendAllowance consumes amount from the allowance (owner → spender). A
// stored sentinel means unlimited approval and is never decremented.
func (t *Token) spendAllowance(owner, spender types.Address, amount *uint256.Int) error {
	if owner.Equal(spender) {
		return nil
	}
	inner := t.allowances.Inner(owner.Bytes())
	current, err := inner.U256(spender.Bytes())
	if err != nil {
		return err
	}
	if token.IsUnlimited(current) {
		return nil
	}
	if current.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", token.ErrInsufficientAllowance, current, amount)
	}
	return inner.SetU256(spender.Bytes(), current.Sub(current, amount))
}

func (t *Token) increaseAllowance(owner, spender types.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return token.ErrZeroAddress
	}
	inner := t.allowances.Inner(owner.Bytes())
	current, err := inner.U256(spender.Bytes())
	if err != nil {
		return err
	}
	updated, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		updated = token.UnlimitedAllowance()
	}
	if err := inner.SetU256(spender.Bytes(), updated); err != nil {
		return err
	}
	t.emitter.Emit(events.Approval{Owner: owner, Spender: spender, Amount: updated.Clone()})
	return nil
}

func (t *Token) decreaseAllowance(owner, spender types.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return token.ErrZeroAddress
	}
	inner := t.allowances.Inner(owner.Bytes())
	current, err := inner.U256(spender.Bytes())
	if err != nil {
		return err
	}
	var updated *uint256.Int
	switch {
	case token.IsUnlimited(current) && !token.IsUnlimited(amount):
		updated = current
	case amount.Gt(current) || token.IsUnlimited(amount):
		updated = new(uint256.Int)
	default:
		updated = new(uint256.Int).Sub(current, amount)
	}
	if err := inner.SetU256(spender.Bytes(), updated); err != nil {
		return err
	}
	t.emitter.Emit(events.Approval{Owner: owner, Spender: spender, Amount: updated.Clone()})
	return nil
}

// notifyReceiver runs the acceptance handshake for contract recipients.
func (t *Token) notifyReceiver(from, to types.Address, amount *uint256.Int, data []byte) error {
	if !t.env.IsContract(to) {
		return nil
	}
	return token.RequireAck(t.env, to, receivedPayload(from, to, amount, data), token.FungibleReceivedMagic)
}

// receivedPayload encodes the onFungibleReceived call: selector, fixed
// width from/to/amount, then the opaque data tail.
func receivedPayload(from, to types.Address, amount *uint256.Int, data []byte) []byte {
	amountWord := amount.Bytes32()
	payload := make([]byte, 0, 4+3*32+len(data))
	payload = append(payload, token.FungibleReceivedMagic[:]...)
	payload = append(payload, from.Bytes()...)
	payload = append(payload, to.Bytes()...)
	payload = append(payload, amountWord[:]...)
	return append(payload, data...)
}
