// Package auth implements the meta-transaction authorization protocol:
// domain-separated structured-data hashing, signature checks against the
// host primitive, and replay-preventing per-signer nonces.
package auth

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"tokenvault/types"
)

// Version is the protocol version folded into every domain separator.
const Version = "1"

var (
	domainTypeHash = ethcrypto.Keccak256([]byte(
		"Domain(bytes32 contract,bytes32 version,uint64 chainId,uint64 protocolId)"))
	versionHash = ethcrypto.Keccak256([]byte(Version))

	// TypeHashes of the signature-authorized operations. The strings are
	// part of the wire protocol; changing one invalidates outstanding
	// signatures.
	IncreaseAllowanceTypeHash = typeHash(
		"IncreaseAllowance(address owner,address spender,uint256 amount,uint64 nonce,uint64 deadline)")
	DecreaseAllowanceTypeHash = typeHash(
		"DecreaseAllowance(address owner,address spender,uint256 amount,uint64 nonce,uint64 deadline)")
	ApproveTypeHash = typeHash(
		"Approve(address owner,address approved,uint64 tokenId,uint64 nonce,uint64 deadline)")
	SetApprovalForAllTypeHash = typeHash(
		"SetApprovalForAll(address owner,address operator,bool approved,uint64 nonce,uint64 deadline)")
	TransferTypeHash = typeHash(
		"Transfer(address from,address to,uint64 id,uint256 amount,uint64 nonce,uint64 deadline)")
	BatchTransferTypeHash = typeHash(
		"BatchTransfer(address from,address to,bytes32 idsHash,bytes32 amountsHash,uint64 nonce,uint64 deadline)")
)

func typeHash(signature string) [32]byte {
	var h [32]byte
	copy(h[:], ethcrypto.Keccak256([]byte(signature)))
	return h
}

// DomainSeparator binds signatures to one deployment: it folds in the
// executing contract's address, the protocol version and the chain and
// protocol identifiers. It is recomputed from the live contract address on
// every use, never stored, so it always reflects the current deployment.
func DomainSeparator(contract types.Address, chainID, protocolID uint64) [32]byte {
	var chain, protocol [8]byte
	binary.BigEndian.PutUint64(chain[:], chainID)
	binary.BigEndian.PutUint64(protocol[:], protocolID)
	var sep [32]byte
	copy(sep[:], ethcrypto.Keccak256(
		domainTypeHash,
		ethcrypto.Keccak256(contract.Bytes()),
		versionHash,
		chain[:],
		protocol[:],
	))
	return sep
}

// StructHash builds the hash of one structured message: typeHash, signer,
// counterparty, the operation payload word, the signer's current nonce and
// the deadline, each in its fixed-width encoding.
func StructHash(opTypeHash [32]byte, signer, counterparty types.Address, payload [32]byte, nonce, deadline uint64) [32]byte {
	var nonceWord, deadlineWord [32]byte
	binary.BigEndian.PutUint64(nonceWord[24:], nonce)
	binary.BigEndian.PutUint64(deadlineWord[24:], deadline)
	var h [32]byte
	copy(h[:], ethcrypto.Keccak256(
		opTypeHash[:],
		signer.Bytes(),
		counterparty.Bytes(),
		payload[:],
		nonceWord[:],
		deadlineWord[:],
	))
	return h
}

// Digest wraps a struct hash with the two-byte prefix and the domain
// separator to obtain the value that is actually signed.
func Digest(domainSeparator, structHash [32]byte) [32]byte {
	var d [32]byte
	copy(d[:], ethcrypto.Keccak256(
		[]byte{0x19, 0x01},
		domainSeparator[:],
		structHash[:],
	))
	return d
}

// AmountWord encodes a 256-bit amount as a payload word.
func AmountWord(v *uint256.Int) [32]byte {
	return v.Bytes32()
}

// BoolWord encodes an approval flag as a payload word.
func BoolWord(v bool) [32]byte {
	var w [32]byte
	if v {
		w[31] = 1
	}
	return w
}

// TokenIDWord encodes a token id as a payload word.
func TokenIDWord(id types.TokenID) [32]byte {
	var w [32]byte
	binary.BigEndian.PutUint64(w[24:], uint64(id))
	return w
}

// BatchWord reduces parallel id/amount lists into one payload word by
// hashing their fixed-width encodings. The lists must already be validated
// to equal length.
func BatchWord(ids []types.TokenID, amounts []*uint256.Int) [32]byte {
	idBytes := make([]byte, 8*len(ids))
	for i, id := range ids {
		binary.BigEndian.PutUint64(idBytes[i*8:], uint64(id))
	}
	amountBytes := make([]byte, 32*len(amounts))
	for i, amount := range amounts {
		b := amount.Bytes32()
		copy(amountBytes[i*32:], b[:])
	}
	var w [32]byte
	copy(w[:], ethcrypto.Keccak256(
		ethcrypto.Keccak256(idBytes),
		ethcrypto.Keccak256(amountBytes),
	))
	return w
}
