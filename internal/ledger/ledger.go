package ledger

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the requested box or account state does not exist
var ErrNotFound = errors.New("not found on ledger")

//go:generate mockgen -destination=../mocks/mock_ledger.go -package=mocks arc56/internal/ledger Ledger

// Ledger is everything the client needs from the network: group submission,
// storage reads and program compilation.
type Ledger interface {
	// Submit signs and sends the calls as one atomic group and waits for confirmation.
	// Returns holds exactly one entry per call, in submission order.
	Submit(ctx context.Context, group *Group) (*GroupResult, error)
	GlobalState(ctx context.Context, appID uint64) ([]StateEntry, error)
	LocalState(ctx context.Context, appID uint64, address string) ([]StateEntry, error)
	// Box and LocalState return ErrNotFound when nothing is stored
	Box(ctx context.Context, appID uint64, name []byte) ([]byte, error)
	Compile(ctx context.Context, program []byte) ([]byte, error)
}

// ValueType tags a stored value as bytes or uint
type ValueType uint64

const (
	ValueBytes ValueType = 1
	ValueUint  ValueType = 2
)

// TealValue is a stored value as the ledger reports it
type TealValue struct {
	Type  ValueType
	Bytes []byte
	Uint  uint64
}

// StateEntry is one key/value pair of global or local state
type StateEntry struct {
	Key   []byte
	Value TealValue
}

// Schema reserves state slots at creation
type Schema struct {
	GlobalInts  uint64
	GlobalBytes uint64
	LocalInts   uint64
	LocalBytes  uint64
}

// BoxReference makes a box available to a call
type BoxReference struct {
	AppID uint64 `mapstructure:"app_id"`
	Name  []byte `mapstructure:"name"`
}

// MethodCall is the full parameter set of one application call transaction
type MethodCall struct {
	Sender     string
	AppID      uint64
	Method     abi.Method
	Args       [][]byte
	OnComplete types.OnCompletion

	// Values holds reference and transaction arguments by position, as given
	// by the caller. Args is nil at those positions and Values nil elsewhere.
	Values []any

	// Creation only
	ApprovalProgram []byte
	ClearProgram    []byte
	Schema          *Schema
	ExtraPages      uint32

	Fee            uint64
	FlatFee        bool
	FirstValid     uint64
	LastValid      uint64
	ValidityWindow uint64
	Note           []byte
	Lease          [32]byte
	RekeyTo        string

	Accounts []string
	Apps     []uint64
	Assets   []uint64
	Boxes    []BoxReference

	// Extra carries caller options the client does not interpret
	Extra map[string]any
}

// Group is a batch of calls submitted atomically
type Group struct {
	Calls []*MethodCall
}

// Confirmation reports where a transaction landed
type Confirmation struct {
	TxID  string
	AppID uint64
	Round uint64
}

// Return is the raw ABI return value of one call, without the log prefix
type Return struct {
	TxID string
	Raw  []byte
}

// GroupResult is the outcome of a confirmed group
type GroupResult struct {
	TxIDs         []string
	Confirmations []Confirmation
	Returns       []Return
}

// Round returns the confirmed round of the group
func (r *GroupResult) Round() uint64 {
	var round uint64
	for _, c := range r.Confirmations {
		if c.Round > round {
			round = c.Round
		}
	}
	return round
}
