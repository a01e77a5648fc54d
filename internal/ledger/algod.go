package ledger

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"arc56/internal/logging"
	"arc56/internal/metrics"
)

// DefaultWaitRounds is how long Submit waits for confirmation
const DefaultWaitRounds = 4

// AlgodLedger implements Ledger against an algod node
type AlgodLedger struct {
	client     *algod.Client
	signer     transaction.TransactionSigner
	waitRounds uint64
	log        logging.Logger
}

// NewAlgodLedger creates an algod backed ledger.
// signer may be nil for read-only use; Submit then fails.
func NewAlgodLedger(url, token string, signer transaction.TransactionSigner, waitRounds uint64, log logging.Logger) (*AlgodLedger, error) {
	client, err := algod.MakeClient(url, token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create algod client")
	}
	if waitRounds == 0 {
		waitRounds = DefaultWaitRounds
	}
	return &AlgodLedger{
		client:     client,
		signer:     signer,
		waitRounds: waitRounds,
		log:        log,
	}, nil
}

// Submit composes the calls into one atomic group, signs and sends it
func (l *AlgodLedger) Submit(ctx context.Context, group *Group) (*GroupResult, error) {
	if l.signer == nil {
		return nil, errors.New("no transaction signer configured")
	}
	if len(group.Calls) == 0 {
		return nil, errors.New("empty group")
	}

	sp, err := l.client.SuggestedParams().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get suggested params")
	}

	var atc transaction.AtomicTransactionComposer
	for i, call := range group.Calls {
		params, err := l.methodCallParams(call, sp)
		if err != nil {
			return nil, errors.Wrapf(err, "call %d (%s)", i, call.Method.Name)
		}
		if err := atc.AddMethodCall(params); err != nil {
			return nil, errors.Wrapf(err, "failed to add call %d (%s)", i, call.Method.Name)
		}
	}

	start := time.Now()
	res, err := atc.Execute(l.client, ctx, l.waitRounds)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	out := &GroupResult{TxIDs: res.TxIDs}
	for _, mr := range res.MethodResults {
		out.Confirmations = append(out.Confirmations, Confirmation{
			TxID:  mr.TxID,
			AppID: mr.TransactionInfo.ApplicationIndex,
			Round: mr.TransactionInfo.ConfirmedRound,
		})
		out.Returns = append(out.Returns, Return{TxID: mr.TxID, Raw: mr.RawReturnValue})
	}

	l.log.Debugw("Group confirmed",
		"tx_count", len(res.TxIDs),
		"round", res.ConfirmedRound,
		"duration_ms", logging.Since(start),
	)
	return out, nil
}

func (l *AlgodLedger) methodCallParams(call *MethodCall, sp types.SuggestedParams) (transaction.AddMethodCallParams, error) {
	sender, err := types.DecodeAddress(call.Sender)
	if err != nil {
		return transaction.AddMethodCallParams{}, errors.Wrap(err, "invalid sender")
	}

	args, err := decodeArgs(call.Method, call.Args, call.Values)
	if err != nil {
		return transaction.AddMethodCallParams{}, err
	}

	if call.Fee > 0 {
		sp.Fee = types.MicroAlgos(call.Fee)
		sp.FlatFee = call.FlatFee
	}
	if call.FirstValid > 0 {
		sp.FirstRoundValid = types.Round(call.FirstValid)
	}
	switch {
	case call.LastValid > 0:
		sp.LastRoundValid = types.Round(call.LastValid)
	case call.ValidityWindow > 0:
		sp.LastRoundValid = sp.FirstRoundValid + types.Round(call.ValidityWindow)
	}

	params := transaction.AddMethodCallParams{
		AppID:           call.AppID,
		Method:          call.Method,
		MethodArgs:      args,
		Sender:          sender,
		SuggestedParams: sp,
		OnComplete:      call.OnComplete,
		ApprovalProgram: call.ApprovalProgram,
		ClearProgram:    call.ClearProgram,
		ExtraPages:      call.ExtraPages,
		Note:            call.Note,
		Lease:           call.Lease,
		ForeignAccounts: call.Accounts,
		ForeignApps:     call.Apps,
		ForeignAssets:   call.Assets,
		Signer:          l.signer,
	}
	if call.Schema != nil {
		params.GlobalSchema = types.StateSchema{NumUint: call.Schema.GlobalInts, NumByteSlice: call.Schema.GlobalBytes}
		params.LocalSchema = types.StateSchema{NumUint: call.Schema.LocalInts, NumByteSlice: call.Schema.LocalBytes}
	}
	if call.RekeyTo != "" {
		rekey, err := types.DecodeAddress(call.RekeyTo)
		if err != nil {
			return transaction.AddMethodCallParams{}, errors.Wrap(err, "invalid rekey address")
		}
		params.RekeyTo = rekey
	}
	for _, b := range call.Boxes {
		params.BoxReferences = append(params.BoxReferences, types.AppBoxReference{AppID: b.AppID, Name: b.Name})
	}
	for key := range call.Extra {
		l.log.Debugw("Ignoring unrecognised call option", "option", key, "method", call.Method.Name)
	}
	return params, nil
}

// decodeArgs turns the encoded arguments back into values the composer re-encodes.
// Reference and transaction arguments are taken from values as given.
func decodeArgs(method abi.Method, encoded [][]byte, values []any) ([]interface{}, error) {
	if len(encoded) != len(method.Args) {
		return nil, errors.Errorf("method %s takes %d arguments, got %d", method.Name, len(method.Args), len(encoded))
	}
	args := make([]interface{}, len(encoded))
	for i, arg := range method.Args {
		var value any
		if i < len(values) {
			value = values[i]
		}

		switch {
		case abi.IsTransactionType(arg.Type):
			txn, ok := value.(transaction.TransactionWithSigner)
			if !ok {
				return nil, errors.Errorf("argument %d (%s) needs a transaction with signer, got %T", i, arg.Type, value)
			}
			args[i] = txn
		case arg.Type == abi.AccountReferenceType:
			s, ok := value.(string)
			if !ok {
				return nil, errors.Errorf("argument %d (account) needs an address, got %T", i, value)
			}
			addr, err := types.DecodeAddress(s)
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d", i)
			}
			args[i] = addr
		case abi.IsReferenceType(arg.Type):
			id, ok := value.(uint64)
			if !ok {
				return nil, errors.Errorf("argument %d (%s) needs a uint64 id, got %T", i, arg.Type, value)
			}
			args[i] = id
		default:
			t, err := abi.TypeOf(arg.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d has unsupported type %s", i, arg.Type)
			}
			if args[i], err = t.Decode(encoded[i]); err != nil {
				return nil, errors.Wrapf(err, "argument %d", i)
			}
		}
	}
	return args, nil
}

// GlobalState reads the application's global key/value store
func (l *AlgodLedger) GlobalState(ctx context.Context, appID uint64) ([]StateEntry, error) {
	app, err := l.client.GetApplicationByID(appID).Do(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get application %d", appID)
	}
	return convertKeyValues(app.Params.GlobalState)
}

// LocalState reads an account's local key/value store for the application
func (l *AlgodLedger) LocalState(ctx context.Context, appID uint64, address string) ([]StateEntry, error) {
	info, err := l.client.AccountApplicationInformation(address, appID).Do(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get local state of %s for application %d", address, appID)
	}
	return convertKeyValues(info.AppLocalState.KeyValue)
}

// Box reads one box of the application
func (l *AlgodLedger) Box(ctx context.Context, appID uint64, name []byte) ([]byte, error) {
	box, err := l.client.GetApplicationBoxByName(appID, name).Do(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get box of application %d", appID)
	}
	return box.Value, nil
}

// Compile asks the node to assemble a TEAL program
func (l *AlgodLedger) Compile(ctx context.Context, program []byte) ([]byte, error) {
	start := time.Now()
	resp, err := l.client.TealCompile(program).Do(ctx)
	metrics.CompileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile program")
	}
	compiled, err := base64.StdEncoding.DecodeString(resp.Result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode compiled program")
	}
	return compiled, nil
}

func convertKeyValues(kvs []models.TealKeyValue) ([]StateEntry, error) {
	entries := make([]StateEntry, 0, len(kvs))
	for _, kv := range kvs {
		key, err := base64.StdEncoding.DecodeString(kv.Key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode state key")
		}
		entry := StateEntry{
			Key:   key,
			Value: TealValue{Type: ValueType(kv.Value.Type), Uint: kv.Value.Uint},
		}
		if entry.Value.Type == ValueBytes {
			if entry.Value.Bytes, err = base64.StdEncoding.DecodeString(kv.Value.Bytes); err != nil {
				return nil, errors.Wrap(err, "failed to decode state value")
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "404") || strings.Contains(msg, "not found") {
		return errors.Wrapf(ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}
