package token

import (
	"bytes"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tokenvault/host"
	"tokenvault/types"
)

// Receiver-acceptance magic values. A contract recipient must echo the
// 4-byte magic of the callback it was invoked with, otherwise the whole
// operation fails. The values are the leading bytes of the callback
// signature digests, so each variant has a distinct acknowledgment.
var (
	FungibleReceivedMagic        = magic("onFungibleReceived(address,address,uint256,bytes)")
	NFTReceivedMagic             = magic("onNFTReceived(address,address,uint64,bytes)")
	MultiTokenReceivedMagic      = magic("onMultiTokenReceived(address,address,address,uint64,uint256,bytes)")
	MultiTokenBatchReceivedMagic = magic("onMultiTokenBatchReceived(address,address,address,uint64[],uint256[],bytes)")
)

func magic(signature string) [4]byte {
	var m [4]byte
	copy(m[:], ethcrypto.Keccak256([]byte(signature)))
	return m
}

// RequireAck performs the receiver-acceptance handshake: it invokes the
// recipient contract with the callback payload and demands the matching
// magic as the leading bytes of the response. A failing call, a short
// response or a wrong acknowledgment all abort the operation; the host
// transaction model rolls back any balance mutation already applied.
func RequireAck(env host.Env, to types.Address, payload []byte, want [4]byte) error {
	resp, err := env.Call(to, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReceiverRejected, err)
	}
	if len(resp) < len(want) {
		return fmt.Errorf("%w: response too short (%d bytes)", ErrReceiverRejected, len(resp))
	}
	if !bytes.Equal(resp[:len(want)], want[:]) {
		return fmt.Errorf("%w: unexpected acknowledgment %x", ErrReceiverRejected, resp[:len(want)])
	}
	return nil
}
