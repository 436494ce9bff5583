package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"

	"tokenvault/events"
	"tokenvault/token"
	"tokenvault/types"
)

// Mint credits amount of id to recipient and grows the per-id supply.
// Restricted to the deployer.
func (t *Token) Mint(caller, to types.Address, id types.TokenID, amount *uint256.Int) error {
	return t.guarded("mint", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		if err := t.mintOne(to, id, amount); err != nil {
			return err
		}
		t.emitter.Emit(events.TransferSingle{Operator: caller, From: types.ZeroAddress, To: to, ID: id, Amount: amount.Clone()})
		return nil
	})
}

// MintBatch credits several ids at once. Restricted to the deployer; the
// id and amount lists must have equal length.
func (t *Token) MintBatch(caller, to types.Address, ids []types.TokenID, amounts []*uint256.Int) error {
	return t.guarded("mintBatch", func() error {
		if !caller.Equal(t.env.Deployer()) {
			return token.ErrNotDeployer
		}
		if to.IsZero() {
			return token.ErrZeroAddress
		}
		if len(ids) != len(amounts) {
			return fmt.Errorf("%w: %d ids, %d amounts", token.ErrLengthMismatch, len(ids), len(amounts))
		}
		for i := range ids {
			if err := t.mintOne(to, ids[i], amounts[i]); err != nil {
				return err
			}
		}
		events.EmitBatches(t.emitter, caller, types.ZeroAddress, to, ids, amounts)
		return nil
	})
}

// Burn debits amount of id from holder. The caller must be the holder or
// an approved operator.
func (t *Token) Burn(caller, from types.Address, id types.TokenID, amount *uint256.Int) error {
	return t.guarded("burn", func() error {
		if err := t.authorizeBurn(caller, from); err != nil {
			return err
		}
		if err := t.burnOne(from, id, amount); err != nil {
			return err
		}
		t.emitter.Emit(events.TransferSingle{Operator: caller, From: from, To: types.ZeroAddress, ID: id, Amount: amount.Clone()})
		return nil
	})
}

// BurnBatch debits several ids at once.
func (t *Token) BurnBatch(caller, from types.Address, ids []types.TokenID, amounts []*uint256.Int) error {
	return t.guarded("burnBatch", func() error {
		if err := t.authorizeBurn(caller, from); err != nil {
			return err
		}
		if len(ids) != len(amounts) {
			return fmt.Errorf("%w: %d ids, %d amounts", token.ErrLengthMismatch, len(ids), len(amounts))
		}
		for i := range ids {
			if err := t.burnOne(from, ids[i], amounts[i]); err != nil {
				return err
			}
		}
		events.EmitBatches(t.emitter, caller, from, types.ZeroAddress, ids, amounts)
		return nil
	})
}

func (t *Token) authorizeBurn(caller, from types.Address) error {
	ok, err := t.canAct(caller, from)
	if err != nil {
		return err
	}
	if !ok {
		return token.ErrNotAuthorized
	}
	return nil
}

func (t *Token) mintOne(to types.Address, id types.TokenID, amount *uint256.Int) error {
	supply, err := t.supplies.U256(idKey(id))
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return fmt.Errorf("%w: id %d supply overflow", token.ErrSupplyCeiling, id)
	}
	balances := t.balances.Inner(to.Bytes())
	balance, err := balances.U256(idKey(id))
	if err != nil {
		return err
	}
	if err := balances.SetU256(idKey(id), balance.Add(balance, amount)); err != nil {
		return err
	}
	return t.supplies.SetU256(idKey(id), newSupply)
}

func (t *Token) burnOne(from types.Address, id types.TokenID, amount *uint256.Int) error {
	balances := t.balances.Inner(from.Bytes())
	balance, err := balances.U256(idKey(id))
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: id %d, have %s, need %s", token.ErrInsufficientBalance, id, balance, amount)
	}
	if err := balances.SetU256(idKey(id), balance.Sub(balance, amount)); err != nil {
		return err
	}
	supply, err := t.supplies.U256(idKey(id))
	if err != nil {
		return err
	}
	return t.supplies.SetU256(idKey(id), supply.Sub(supply, amount))
}
