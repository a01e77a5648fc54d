package client

import (
	"encoding/json"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/ledger"
)

// reservedParams name the fields Params sets itself; Extra may not carry them
var reservedParams = map[string]struct{}{
	"sender":     {},
	"appId":      {},
	"method":     {},
	"args":       {},
	"onComplete": {},
}

// CallOptions are the caller supplied parts of a method call.
// Explicit fields (sender, application, method, encoded args) are set first and
// options never replace them: Extra keys naming one of them are rejected.
type CallOptions struct {
	Sender string `mapstructure:"sender"`
	Args   []any  `mapstructure:"args"`

	Fee            uint64 `mapstructure:"fee"`
	FlatFee        bool   `mapstructure:"flat_fee"`
	FirstValid     uint64 `mapstructure:"first_valid"`
	LastValid      uint64 `mapstructure:"last_valid"`
	ValidityWindow uint64 `mapstructure:"validity_window"`
	Note           string `mapstructure:"note"`
	Lease          []byte `mapstructure:"lease"`
	RekeyTo        string `mapstructure:"rekey_to"`

	Accounts []string              `mapstructure:"accounts"`
	Apps     []uint64              `mapstructure:"apps"`
	Assets   []uint64              `mapstructure:"assets"`
	Boxes    []ledger.BoxReference `mapstructure:"boxes"`

	Extra map[string]any `mapstructure:",remain"`
}

// Params builds the call parameters of a method without submitting anything
func (c *AppClient) Params(methodName string, opts CallOptions) (*ledger.MethodCall, error) {
	method, err := c.method(methodName)
	if err != nil {
		return nil, err
	}

	sender := opts.Sender
	if sender == "" {
		sender = c.defaultSender
	}
	if sender == "" {
		return nil, ErrMissingSender
	}

	if len(opts.Args) != len(method.Args) {
		return nil, errors.Wrapf(ErrArgumentCount, "%s takes %d, got %d", method.Name, len(method.Args), len(opts.Args))
	}
	args := make([][]byte, len(method.Args))
	var values []any
	for i, arg := range method.Args {
		if isPassthroughType(arg.Type) {
			value, err := passthroughArg(arg.Type, opts.Args[i])
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d (%s) of %s", i, arg.Name, method.Name)
			}
			if values == nil {
				values = make([]any, len(method.Args))
			}
			values[i] = value
			continue
		}
		encoded, err := c.codec.Encode(arg.TypeRef(), opts.Args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d (%s) of %s", i, arg.Name, method.Name)
		}
		args[i] = encoded
	}

	for key := range opts.Extra {
		if _, ok := reservedParams[key]; ok {
			return nil, errors.Wrapf(ErrReservedParam, "%q", key)
		}
	}
	if len(opts.Lease) > 32 {
		return nil, errors.Errorf("lease is %d bytes, at most 32 allowed", len(opts.Lease))
	}

	call := &ledger.MethodCall{
		Sender: sender,
		AppID:  c.appID,
		Method: abiMethod(method),
		Args:   args,
		Values: values,
	}
	applyOptions(call, opts)
	return call, nil
}

// ArgsFromJSON converts one JSON document per argument into values Params accepts
func (c *AppClient) ArgsFromJSON(methodName string, raw []json.RawMessage) ([]any, error) {
	method, err := c.method(methodName)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(method.Args) {
		return nil, errors.Wrapf(ErrArgumentCount, "%s takes %d, got %d", method.Name, len(method.Args), len(raw))
	}

	args := make([]any, len(raw))
	for i, arg := range method.Args {
		if isPassthroughType(arg.Type) {
			if args[i], err = referenceFromJSON(arg.Type, raw[i]); err != nil {
				return nil, errors.Wrapf(err, "argument %d (%s) of %s", i, arg.Name, method.Name)
			}
			continue
		}
		if args[i], err = c.codec.FromJSON(arg.TypeRef(), raw[i]); err != nil {
			return nil, errors.Wrapf(err, "argument %d (%s) of %s", i, arg.Name, method.Name)
		}
	}
	return args, nil
}

// isPassthroughType reports whether arguments of typ go to the composer as given
// instead of being ARC-4 encoded: foreign references and preceding transactions.
func isPassthroughType(typ string) bool {
	return abi.IsReferenceType(typ) || abi.IsTransactionType(typ)
}

// passthroughArg checks a reference or transaction argument and normalizes it.
// Accounts become address strings, assets and applications uint64 ids and
// transactions a TransactionWithSigner whose type matches the declared one.
func passthroughArg(typ string, value any) (any, error) {
	switch {
	case typ == abi.AccountReferenceType:
		switch v := value.(type) {
		case string:
			if _, err := types.DecodeAddress(v); err != nil {
				return nil, errors.Wrapf(ErrArgumentType, "account %q: %v", v, err)
			}
			return v, nil
		case types.Address:
			return v.String(), nil
		}
		return nil, errors.Wrapf(ErrArgumentType, "account must be an address, got %T", value)

	case abi.IsReferenceType(typ):
		switch v := value.(type) {
		case uint64:
			return v, nil
		case uint32:
			return uint64(v), nil
		case uint:
			return uint64(v), nil
		case int:
			if v >= 0 {
				return uint64(v), nil
			}
		case int64:
			if v >= 0 {
				return uint64(v), nil
			}
		}
		return nil, errors.Wrapf(ErrArgumentType, "%s must be a non-negative id, got %v", typ, value)
	}

	var txn transaction.TransactionWithSigner
	switch v := value.(type) {
	case transaction.TransactionWithSigner:
		txn = v
	case *transaction.TransactionWithSigner:
		if v == nil {
			return nil, errors.Wrapf(ErrArgumentType, "%s transaction is nil", typ)
		}
		txn = *v
	default:
		return nil, errors.Wrapf(ErrArgumentType, "%s must be a transaction with signer, got %T", typ, value)
	}
	if typ != abi.AnyTransactionType && string(txn.Txn.Type) != typ {
		return nil, errors.Wrapf(ErrArgumentType, "expected a %s transaction, got %s", typ, txn.Txn.Type)
	}
	return txn, nil
}

// referenceFromJSON reads an account as a JSON string and an asset or application as a JSON number
func referenceFromJSON(typ string, data []byte) (any, error) {
	switch {
	case typ == abi.AccountReferenceType:
		var addr string
		if err := json.Unmarshal(data, &addr); err != nil {
			return nil, errors.Wrapf(ErrArgumentType, "account must be a JSON string: %v", err)
		}
		return addr, nil
	case abi.IsReferenceType(typ):
		var id uint64
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, errors.Wrapf(ErrArgumentType, "%s must be a JSON integer: %v", typ, err)
		}
		return id, nil
	}
	return nil, errors.Wrapf(ErrArgumentType, "%s transactions cannot be given as JSON", typ)
}

func applyOptions(call *ledger.MethodCall, opts CallOptions) {
	call.Fee = opts.Fee
	call.FlatFee = opts.FlatFee
	call.FirstValid = opts.FirstValid
	call.LastValid = opts.LastValid
	call.ValidityWindow = opts.ValidityWindow
	if opts.Note != "" {
		call.Note = []byte(opts.Note)
	}
	copy(call.Lease[:], opts.Lease)
	call.RekeyTo = opts.RekeyTo
	call.Accounts = opts.Accounts
	call.Apps = opts.Apps
	call.Assets = opts.Assets
	call.Boxes = opts.Boxes
	if len(opts.Extra) > 0 {
		call.Extra = make(map[string]any, len(opts.Extra))
		for k, v := range opts.Extra {
			call.Extra[k] = v
		}
	}
}

func abiMethod(m *arc56.Method) abi.Method {
	out := abi.Method{
		Name: m.Name,
		Desc: m.Desc,
		Returns: abi.Return{
			Type: m.Returns.Type,
			Desc: m.Returns.Desc,
		},
	}
	if out.Returns.Type == "" {
		out.Returns.Type = arc56.TypeVoid
	}
	for _, a := range m.Args {
		out.Args = append(out.Args, abi.Arg{Name: a.Name, Type: a.Type, Desc: a.Desc})
	}
	return out
}
