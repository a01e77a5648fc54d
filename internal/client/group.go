package client

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/ledger"
	"arc56/internal/metrics"
	"arc56/internal/models"
)

type groupEntry struct {
	client  *AppClient
	method  *arc56.Method
	action  arc56.OnComplete
	call    *ledger.MethodCall
	outcome *models.CallOutcome
}

// Group batches method calls of one or more clients into a single atomic submission
type Group struct {
	ledger  ledger.Ledger
	entries []groupEntry
}

// GroupResult is a confirmed group; Values holds one decoded return per call, in order
type GroupResult struct {
	TxIDs         []string
	Confirmations []ledger.Confirmation
	Round         uint64

	// Values is nil at the index of a void method
	Values []any
}

// NewGroup creates an empty group submitted through l
func NewGroup(l ledger.Ledger) *Group {
	return &Group{ledger: l}
}

// AddCall appends a call built by client. The call is validated here so a bad
// entry is rejected before anything is sent.
func (g *Group) AddCall(client *AppClient, methodName string, action arc56.OnComplete, opts CallOptions) error {
	call, err := client.Params(methodName, opts)
	if err != nil {
		return err
	}
	method, _ := client.contract.Method(methodName)
	if err := client.checkAction(method, action); err != nil {
		return err
	}
	code, _ := action.Code()
	call.OnComplete = types.OnCompletion(code)

	outcome := client.newOutcome(method, action, call.Sender)
	outcome.GroupIndex = len(g.entries)
	g.entries = append(g.entries, groupEntry{
		client:  client,
		method:  method,
		action:  action,
		call:    call,
		outcome: outcome,
	})
	return nil
}

// Len returns the number of queued calls
func (g *Group) Len() int {
	return len(g.entries)
}

// Execute submits every queued call as one group
func (g *Group) Execute(ctx context.Context) (*GroupResult, error) {
	if len(g.entries) == 0 {
		return nil, errors.New("group has no calls")
	}

	calls := make([]*ledger.MethodCall, len(g.entries))
	for i, e := range g.entries {
		calls[i] = e.call
	}

	res, err := g.ledger.Submit(ctx, &ledger.Group{Calls: calls})
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("submit").Inc()
		err = g.translate(err)
		for _, e := range g.entries {
			e.client.notify(ctx, failedOutcome(e.outcome, err))
		}
		return nil, err
	}
	if len(res.Returns) != len(g.entries) {
		return nil, errors.Wrapf(ErrMissingReturn, "group of %d calls reported %d returns", len(g.entries), len(res.Returns))
	}
	metrics.GroupsSubmitted.Inc()

	result := &GroupResult{
		TxIDs:         res.TxIDs,
		Confirmations: res.Confirmations,
		Round:         res.Round(),
		Values:        make([]any, len(g.entries)),
	}
	for i, e := range g.entries {
		metrics.CallsSubmitted.WithLabelValues(e.method.Name, string(e.action)).Inc()
		if !e.method.Returns.Void() {
			value, err := e.client.codec.Decode(e.method.Returns.TypeRef(), res.Returns[i].Raw)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to decode return value of call %d (%s)", i, e.method.Name)
			}
			result.Values[i] = value
		}

		e.outcome.Success = true
		e.outcome.Round = result.Round
		e.outcome.ReturnValue = result.Values[i]
		e.outcome.TxIDs = []string{res.Returns[i].TxID}
		e.client.notify(ctx, e.outcome)
	}
	return result, nil
}

// translate gives each participating client a chance to claim the failure
func (g *Group) translate(err error) error {
	seen := make(map[*AppClient]struct{}, len(g.entries))
	for _, e := range g.entries {
		if _, ok := seen[e.client]; ok {
			continue
		}
		seen[e.client] = struct{}{}

		translated := e.client.translate(err)
		if translated != err {
			return translated
		}
	}
	return err
}
