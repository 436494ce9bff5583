package nonfungible

import (
	"encoding/binary"
	"fmt"

	"tokenvault/events"
	"tokenvault/token"
	"tokenvault/types"
)

// Transfer moves id from the caller to recipient.
func (t *Token) Transfer(caller, to types.Address, id types.TokenID) error {
	return t.guarded("transfer", func() error {
		return t.move(caller, caller, to, id)
	})
}

// TransferFrom moves id out of from's ownership. The caller must be the
// owner, the approved account or an approved operator.
func (t *Token) TransferFrom(caller, from, to types.Address, id types.TokenID) error {
	return t.guarded("transferFrom", func() error {
		return t.move(caller, from, to, id)
	})
}

// SafeTransfer is Transfer plus the receiver-acceptance handshake when the
// recipient carries code.
func (t *Token) SafeTransfer(caller, to types.Address, id types.TokenID, data []byte) error {
	return t.guarded("safeTransfer", func() error {
		if err := t.move(caller, caller, to, id); err != nil {
			return err
		}
		return t.notifyReceiver(caller, to, id, data)
	})
}

// SafeTransferFrom is TransferFrom plus the receiver-acceptance handshake.
func (t *Token) SafeTransferFrom(caller, from, to types.Address, id types.TokenID, data []byte) error {
	return t.guarded("safeTransferFrom", func() error {
		if err := t.move(caller, from, to, id); err != nil {
			return err
		}
		return t.notifyReceiver(from, to, id, data)
	})
}

// move validates the transfer, clears the single-token approval and
// repairs both enumerations.
func (t *Token) move(caller, from, to types.Address, id types.TokenID) error {
	owner, err := t.OwnerOf(id)
	if err != nil {
		return err
	}
	if !owner.Equal(from) {
		return fmt.Errorf("%w: %s does not own token %d", token.ErrNotAuthorized, from, id)
	}
	authorized, err := t.isAuthorized(caller, owner, id)
	if err != nil {
		return err
	}
	if !authorized {
		return token.ErrNotAuthorized
	}
	if to.IsZero() {
		return token.ErrZeroAddress
	}
	if from.Equal(to) {
		return fmt.Errorf("%w: token %d", token.ErrSelfTransfer, id)
	}
	if err := t.detach(from, id); err != nil {
		return err
	}
	if err := t.attach(to, id); err != nil {
		return err
	}
	t.emitter.Emit(events.NFTTransfer{From: from, To: to, TokenID: id})
	return nil
}

func (t *Token) notifyReceiver(from, to types.Address, id types.TokenID, data []byte) error {
	if !t.env.IsContract(to) {
		return nil
	}
	payload := make([]byte, 0, 4+2*32+8+len(data))
	payload = append(payload, token.NFTReceivedMagic[:]...)
	payload = append(payload, from.Bytes()...)
	payload = append(payload, to.Bytes()...)
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], uint64(id))
	payload = append(payload, idBytes[:]...)
	payload = append(payload, data...)
	return token.RequireAck(t.env, to, payload, token.NFTReceivedMagic)
}
