// Package dispatch models the contract's exposed operation sets as closed,
// explicitly registered tables. The selector router living outside this
// module matches decoded calls against these descriptors; the reentrancy
// guard consults the GuardExempt flag.
package dispatch

import "fmt"

// Op names one exposed contract operation.
type Op string

// Receiver-acceptance callbacks. They run inside the outer call's guard
// window and are therefore exempt from guarding themselves.
const (
	OpOnFungibleReceived        Op = "onFungibleReceived"
	OpOnNFTReceived             Op = "onNFTReceived"
	OpOnMultiTokenReceived      Op = "onMultiTokenReceived"
	OpOnMultiTokenBatchReceived Op = "onMultiTokenBatchReceived"
)

// Descriptor carries the routing metadata of one operation.
type Descriptor struct {
	Name        Op
	Mutating    bool
	GuardExempt bool
}

// Registry is the closed operation set of one contract variant.
type Registry struct {
	ops map[Op]Descriptor
}

// NewRegistry builds a registry from the given descriptors. Duplicate names
// are a composition bug and panic immediately.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{ops: make(map[Op]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, exists := r.ops[d.Name]; exists {
			panic(fmt.Sprintf("dispatch: duplicate operation %q", d.Name))
		}
		r.ops[d.Name] = d
	}
	return r
}

// Lookup returns the descriptor for op.
func (r *Registry) Lookup(op Op) (Descriptor, bool) {
	d, ok := r.ops[op]
	return d, ok
}

// GuardExempt reports whether op bypasses the reentrancy guard. Unknown
// operations are never exempt.
func (r *Registry) GuardExempt(op Op) bool {
	d, ok := r.ops[op]
	return ok && d.GuardExempt
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}

// FungibleOps is the operation set of the fungible ledger.
func FungibleOps() *Registry {
	return NewRegistry(
		Descriptor{Name: "name"},
		Descriptor{Name: "symbol"},
		Descriptor{Name: "decimals"},
		Descriptor{Name: "totalSupply"},
		Descriptor{Name: "maxSupply"},
		Descriptor{Name: "balanceOf"},
		Descriptor{Name: "allowance"},
		Descriptor{Name: "nonceOf"},
		Descriptor{Name: "domainSeparator"},
		Descriptor{Name: "transfer", Mutating: true},
		Descriptor{Name: "transferFrom", Mutating: true},
		Descriptor{Name: "safeTransfer", Mutating: true},
		Descriptor{Name: "safeTransferFrom", Mutating: true},
		Descriptor{Name: "increaseAllowance", Mutating: true},
		Descriptor{Name: "decreaseAllowance", Mutating: true},
		Descriptor{Name: "increaseAllowanceBySignature", Mutating: true},
		Descriptor{Name: "decreaseAllowanceBySignature", Mutating: true},
		Descriptor{Name: "mint", Mutating: true},
		Descriptor{Name: "burn", Mutating: true},
		Descriptor{Name: OpOnFungibleReceived, GuardExempt: true},
	)
}

// NonFungibleOps is the operation set of the non-fungible ledger.
func NonFungibleOps() *Registry {
	return NewRegistry(
		Descriptor{Name: "name"},
		Descriptor{Name: "symbol"},
		Descriptor{Name: "totalSupply"},
		Descriptor{Name: "balanceOf"},
		Descriptor{Name: "ownerOf"},
		Descriptor{Name: "getApproved"},
		Descriptor{Name: "isApprovedForAll"},
		Descriptor{Name: "tokenOfOwnerByIndex"},
		Descriptor{Name: "tokenURI"},
		Descriptor{Name: "nonceOf"},
		Descriptor{Name: "domainSeparator"},
		Descriptor{Name: "transfer", Mutating: true},
		Descriptor{Name: "transferFrom", Mutating: true},
		Descriptor{Name: "safeTransfer", Mutating: true},
		Descriptor{Name: "safeTransferFrom", Mutating: true},
		Descriptor{Name: "approve", Mutating: true},
		Descriptor{Name: "setApprovalForAll", Mutating: true},
		Descriptor{Name: "approveBySignature", Mutating: true},
		Descriptor{Name: "setApprovalForAllBySignature", Mutating: true},
		Descriptor{Name: "setBaseURI", Mutating: true},
		Descriptor{Name: "mint", Mutating: true},
		Descriptor{Name: "burn", Mutating: true},
		Descriptor{Name: OpOnNFTReceived, GuardExempt: true},
	)
}

// MultiTokenOps is the operation set of the multi-id ledger.
func MultiTokenOps() *Registry {
	return NewRegistry(
		Descriptor{Name: "balanceOf"},
		Descriptor{Name: "balanceOfBatch"},
		Descriptor{Name: "isApprovedForAll"},
		Descriptor{Name: "totalSupply"},
		Descriptor{Name: "exists"},
		Descriptor{Name: "uri"},
		Descriptor{Name: "nonceOf"},
		Descriptor{Name: "domainSeparator"},
		Descriptor{Name: "safeTransferFrom", Mutating: true},
		Descriptor{Name: "safeBatchTransferFrom", Mutating: true},
		Descriptor{Name: "setApprovalForAll", Mutating: true},
		Descriptor{Name: "transferBySignature", Mutating: true},
		Descriptor{Name: "batchTransferBySignature", Mutating: true},
		Descriptor{Name: "setURI", Mutating: true},
		Descriptor{Name: "mint", Mutating: true},
		Descriptor{Name: "mintBatch", Mutating: true},
		Descriptor{Name: "burn", Mutating: true},
		Descriptor{Name: "burnBatch", Mutating: true},
		Descriptor{Name: OpOnMultiTokenReceived, GuardExempt: true},
		Descriptor{Name: OpOnMultiTokenBatchReceived, GuardExempt: true},
	)
}
