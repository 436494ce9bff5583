// Package host declares the environment interface the ledger framework
// consumes. The production environment is the surrounding virtual machine;
// host/local provides an in-process reference implementation backed by a
// storage.Database for tests and tooling.
package host

import (
	"errors"

	"tokenvault/types"
)

// SlotAddress is a fully derived 32-byte storage address.
type SlotAddress [32]byte

var (
	// ErrCallFailed indicates a synchronous cross-account call was rejected
	// by the callee or the target does not exist.
	ErrCallFailed = errors.New("host: call failed")
)

// Env is the set of primitives the ledger consumes from its execution
// environment. All operations are synchronous; a failed call aborts the
// enclosing operation and the host's transaction boundary provides
// all-or-nothing rollback.
type Env interface {
	// StorageGet returns the raw bytes stored at addr, or nil when the slot
	// has never been written.
	StorageGet(addr SlotAddress) ([]byte, error)
	// StorageSet stores value at addr, creating the slot on first write.
	StorageSet(addr SlotAddress, value []byte) error
	// StorageHas reports whether addr has ever been written.
	StorageHas(addr SlotAddress) (bool, error)

	// Call synchronously invokes another account with the given payload and
	// returns its response. A failing callee fails the whole operation.
	Call(target types.Address, payload []byte) ([]byte, error)

	// IsContract reports whether the account carries code. Transfers to
	// contract accounts trigger the receiver-acceptance callback.
	IsContract(account types.Address) bool

	// VerifySignature checks sig over digest against the claimed signer.
	VerifySignature(signer types.Address, digest [32]byte, sig []byte) bool

	// BlockHeight is the current block height, used for signature deadlines.
	BlockHeight() uint64

	// ContractAddress is the address of the executing contract.
	ContractAddress() types.Address

	// Deployer is the account that deployed the executing contract.
	Deployer() types.Address
}
