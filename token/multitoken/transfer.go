package multitoken

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"tokenvault/events"
	"tokenvault/token"
	"tokenvault/types"
)

// SafeTransferFrom moves amount of id from one account to another. The
// caller must be the holder or an approved operator; contract recipients
// must acknowledge.
func (t *Token) SafeTransferFrom(caller, from, to types.Address, id types.TokenID, amount *uint256.Int, data []byte) error {
	return t.guarded("safeTransferFrom", func() error {
		if err := t.authorizeMove(caller, from, to); err != nil {
			return err
		}
		if err := t.move(from, to, id, amount); err != nil {
			return err
		}
		t.emitter.Emit(events.TransferSingle{Operator: caller, From: from, To: to, ID: id, Amount: amount.Clone()})
		return t.notifySingle(caller, from, to, id, amount, data)
	})
}

// SafeBatchTransferFrom moves several ids at once. The id and amount lists
// must have equal length; nothing mutates before that check passes.
// Notifications are emitted in fixed-size groups.
func (t *Token) SafeBatchTransferFrom(caller, from, to types.Address, ids []types.TokenID, amounts []*uint256.Int, data []byte) error {
	return t.guarded("safeBatchTransferFrom", func() error {
		if len(ids) != len(amounts) {
			return fmt.Errorf("%w: %d ids, %d amounts", token.ErrLengthMismatch, len(ids), len(amounts))
		}
		if err := t.authorizeMove(caller, from, to); err != nil {
			return err
		}
		for i := range ids {
			if err := t.move(from, to, ids[i], amounts[i]); err != nil {
				return err
			}
		}
		events.EmitBatches(t.emitter, caller, from, to, ids, amounts)
		return t.notifyBatch(caller, from, to, ids, amounts, data)
	})
}

func (t *Token) authorizeMove(caller, from, to types.Address) error {
	if to.IsZero() {
		return token.ErrZeroAddress
	}
	ok, err := t.canAct(caller, from)
	if err != nil {
		return err
	}
	if !ok {
		return token.ErrNotAuthorized
	}
	return nil
}

// move applies one per-id balance movement. Zero amounts are legal here,
// unlike the fungible ledger: batch entries may deliberately carry zero.
func (t *Token) move(from, to types.Address, id types.TokenID, amount *uint256.Int) error {
	fromBalances := t.balances.Inner(from.Bytes())
	balance, err := fromBalances.U256(idKey(id))
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: id %d, have %s, need %s", token.ErrInsufficientBalance, id, balance, amount)
	}
	if err := fromBalances.SetU256(idKey(id), balance.Sub(balance, amount)); err != nil {
		return err
	}
	toBalances := t.balances.Inner(to.Bytes())
	current, err := toBalances.U256(idKey(id))
	if err != nil {
		return err
	}
	return toBalances.SetU256(idKey(id), current.Add(current, amount))
}

func (t *Token) notifySingle(operator, from, to types.Address, id types.TokenID, amount *uint256.Int, data []byte) error {
	if !t.env.IsContract(to) {
		return nil
	}
	amountWord := amount.Bytes32()
	payload := make([]byte, 0, 4+3*32+8+32+len(data))
	payload = append(payload, token.MultiTokenReceivedMagic[:]...)
	payload = append(payload, operator.Bytes()...)
	payload = append(payload, from.Bytes()...)
	payload = append(payload, to.Bytes()...)
	payload = appendID(payload, id)
	payload = append(payload, amountWord[:]...)
	payload = append(payload, data...)
	return token.RequireAck(t.env, to, payload, token.MultiTokenReceivedMagic)
}

func (t *Token) notifyBatch(operator, from, to types.Address, ids []types.TokenID, amounts []*uint256.Int, data []byte) error {
	if !t.env.IsContract(to) {
		return nil
	}
	payload := make([]byte, 0, 4+3*32+8+len(ids)*40+len(data))
	payload = append(payload, token.MultiTokenBatchReceivedMagic[:]...)
	payload = append(payload, operator.Bytes()...)
	payload = append(payload, from.Bytes()...)
	payload = append(payload, to.Bytes()...)
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(ids)))
	payload = append(payload, count[:]...)
	for _, id := range ids {
		payload = appendID(payload, id)
	}
	for _, amount := range amounts {
		w := amount.Bytes32()
		payload = append(payload, w[:]...)
	}
	payload = append(payload, data...)
	return token.RequireAck(t.env, to, payload, token.MultiTokenBatchReceivedMagic)
}

func appendID(payload []byte, id types.TokenID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(payload, b[:]...)
}
