// Package local provides an in-process host.Env backed by a
// storage.Database. It exists for tests and the CLI: contracts are plain Go
// values registered under blake3-derived addresses, signatures are ed25519
// and block height advances only when the harness says so.
package local

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"sync"

	"lukechampine.com/blake3"

	"tokenvault/host"
	"tokenvault/storage"
	"tokenvault/types"
)

// Contract is an in-process account with code. Invoke receives the raw call
// payload and returns the response bytes.
type Contract interface {
	Invoke(payload []byte) ([]byte, error)
}

// Env implements host.Env over a storage.Database.
type Env struct {
	mu        sync.RWMutex
	db        storage.Database
	contracts map[types.Address]Contract
	height    uint64
	self      types.Address
	deployer  types.Address
	seq       uint64
}

// NewEnv creates an environment with the given executing contract address
// and deployer. The database carries all slot state.
func NewEnv(db storage.Database, self, deployer types.Address) *Env {
	return &Env{
		db:        db,
		contracts: make(map[types.Address]Contract),
		self:      self,
		deployer:  deployer,
	}
}

// Register installs a contract account and returns its assigned address.
// Addresses are blake3 digests of a registration counter, so they are
// uniformly distributed like real account keys.
func (e *Env) Register(c Contract) types.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], e.seq)
	addr := types.BytesToAddress(blake3Sum(seed[:]))
	e.contracts[addr] = c
	return addr
}

// RegisterAt installs a contract under a fixed address, overwriting any
// previous registration.
func (e *Env) RegisterAt(addr types.Address, c Contract) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contracts[addr] = c
}

// SetBlockHeight moves the environment clock.
func (e *Env) SetBlockHeight(height uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.height = height
}

func (e *Env) StorageGet(addr host.SlotAddress) ([]byte, error) {
	return e.db.Get(addr[:])
}

func (e *Env) StorageSet(addr host.SlotAddress, value []byte) error {
	return e.db.Put(addr[:], value)
}

func (e *Env) StorageHas(addr host.SlotAddress) (bool, error) {
	return e.db.Has(addr[:])
}

func (e *Env) Call(target types.Address, payload []byte) ([]byte, error) {
	e.mu.RLock()
	contract, ok := e.contracts[target]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no contract at %s", host.ErrCallFailed, target)
	}
	resp, err := contract.Invoke(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", host.ErrCallFailed, err)
	}
	return resp, nil
}

func (e *Env) IsContract(account types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.contracts[account]
	return ok
}

// VerifySignature treats the signer address as an ed25519 public key and
// checks the 64-byte signature over the digest.
func (e *Env) VerifySignature(signer types.Address, digest [32]byte, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signer.Bytes()), digest[:], sig)
}

func (e *Env) BlockHeight() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.height
}

func (e *Env) ContractAddress() types.Address {
	return e.self
}

func (e *Env) Deployer() types.Address {
	return e.deployer
}

// ShortDigest computes the host's 20-byte digest variant.
func ShortDigest(data []byte) [20]byte {
	var out [20]byte
	sum := blake3Sum(data)
	copy(out[:], sum[:20])
	return out
}

func blake3Sum(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}
