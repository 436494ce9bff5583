package events

import (
	"github.com/holiman/uint256"

	"tokenvault/types"
)

const (
	// TypeTransferSingle is emitted for single-id multi-token movements.
	TypeTransferSingle = "multitoken.transferSingle"
	// TypeTransferBatch is emitted for batched multi-token movements.
	TypeTransferBatch = "multitoken.transferBatch"
	// TypeURI is emitted when the metadata URI template changes.
	TypeURI = "multitoken.uri"
)

// TransferSingle describes a movement of one token id.
type TransferSingle struct {
	Operator types.Address
	From     types.Address
	To       types.Address
	ID       types.TokenID
	Amount   *uint256.Int
}

func (TransferSingle) EventType() string { return TypeTransferSingle }

// TransferBatch describes a movement of several token ids. A single event
// never spans more than MaxBatchSpan pairs; EmitBatches splits longer
// lists.
type TransferBatch struct {
	Operator types.Address
	From     types.Address
	To       types.Address
	IDs      []types.TokenID
	Amounts  []*uint256.Int
}

func (TransferBatch) EventType() string { return TypeTransferBatch }

// URI announces the new metadata URI template.
type URI struct {
	Value string
}

func (URI) EventType() string { return TypeURI }

// EmitBatches splits an id/amount list into MaxBatchSpan groups and emits
// one TransferBatch per group, preserving order. The lists must already be
// validated to equal length.
func EmitBatches(emitter Emitter, operator, from, to types.Address, ids []types.TokenID, amounts []*uint256.Int) {
	for offset := 0; offset < len(ids); offset += MaxBatchSpan {
		end := offset + MaxBatchSpan
		if end > len(ids) {
			end = len(ids)
		}
		emitter.Emit(TransferBatch{
			Operator: operator,
			From:     from,
			To:       to,
			IDs:      ids[offset:end],
			Amounts:  amounts[offset:end],
		})
	}
}
