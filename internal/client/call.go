package client

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/ledger"
	"arc56/internal/metrics"
)

// Result is the outcome of a confirmed call
type Result struct {
	TxIDs         []string
	Confirmations []ledger.Confirmation
	Returns       []ledger.Return
	Round         uint64

	// ReturnValue is nil for void methods
	ReturnValue any
}

// TxID returns the id of the call transaction
func (r *Result) TxID() string {
	if len(r.TxIDs) == 0 {
		return ""
	}
	return r.TxIDs[len(r.TxIDs)-1]
}

// CallWithAction submits a method call with the given OnComplete action.
// The action must be allowed by the method in the current context (create when
// the client has no application yet, call otherwise); nothing is submitted if not.
func (c *AppClient) CallWithAction(ctx context.Context, methodName string, action arc56.OnComplete, opts CallOptions) (*Result, error) {
	call, err := c.Params(methodName, opts)
	if err != nil {
		return nil, err
	}
	method, _ := c.contract.Method(methodName)

	outcome := c.newOutcome(method, action, call.Sender)
	result, err := c.dispatch(ctx, method, call, action)
	if err != nil {
		if !errors.Is(err, ErrActionNotSupported) {
			c.notify(ctx, failedOutcome(outcome, err))
		}
		return nil, err
	}

	outcome.Success = true
	outcome.TxIDs = result.TxIDs
	outcome.Round = result.Round
	outcome.ReturnValue = result.ReturnValue
	c.notify(ctx, outcome)
	return result, nil
}

// Call submits a NoOp call
func (c *AppClient) Call(ctx context.Context, methodName string, opts CallOptions) (*Result, error) {
	return c.CallWithAction(ctx, methodName, arc56.NoOp, opts)
}

// OptIn submits an OptIn call
func (c *AppClient) OptIn(ctx context.Context, methodName string, opts CallOptions) (*Result, error) {
	return c.CallWithAction(ctx, methodName, arc56.OptIn, opts)
}

// CloseOut submits a CloseOut call
func (c *AppClient) CloseOut(ctx context.Context, methodName string, opts CallOptions) (*Result, error) {
	return c.CallWithAction(ctx, methodName, arc56.CloseOut, opts)
}

// Delete submits a DeleteApplication call
func (c *AppClient) Delete(ctx context.Context, methodName string, opts CallOptions) (*Result, error) {
	return c.CallWithAction(ctx, methodName, arc56.DeleteApplication, opts)
}

func (c *AppClient) checkAction(method *arc56.Method, action arc56.OnComplete) error {
	creating := c.appID == 0
	if action.Valid() && method.Actions.Allows(creating, action) {
		return nil
	}
	phase := "call"
	if creating {
		phase = "create"
	}
	return errors.Wrapf(ErrActionNotSupported, "%s is not a valid %s action for %s", action, phase, method.Name)
}

// dispatch validates the action, submits the single call and decodes its return value
func (c *AppClient) dispatch(ctx context.Context, method *arc56.Method, call *ledger.MethodCall, action arc56.OnComplete) (*Result, error) {
	if err := c.checkAction(method, action); err != nil {
		return nil, err
	}
	code, _ := action.Code()
	call.OnComplete = types.OnCompletion(code)

	res, err := c.submit(ctx, &ledger.Group{Calls: []*ledger.MethodCall{call}})
	if err != nil {
		return nil, err
	}
	metrics.CallsSubmitted.WithLabelValues(method.Name, string(action)).Inc()

	result := &Result{
		TxIDs:         res.TxIDs,
		Confirmations: res.Confirmations,
		Returns:       res.Returns,
		Round:         res.Round(),
	}
	if method.Returns.Void() {
		return result, nil
	}

	if len(res.Returns) == 0 {
		return nil, errors.Wrapf(ErrMissingReturn, "method %s", method.Name)
	}
	last := res.Returns[len(res.Returns)-1]
	if result.ReturnValue, err = c.codec.Decode(method.Returns.TypeRef(), last.Raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode return value of %s", method.Name)
	}
	return result, nil
}

// submit sends a group and translates execution failures of this application
func (c *AppClient) submit(ctx context.Context, group *ledger.Group) (*ledger.GroupResult, error) {
	res, err := c.ledger.Submit(ctx, group)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("submit").Inc()
		return nil, c.translate(err)
	}
	return res, nil
}
