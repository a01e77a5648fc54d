package client

import (
	"context"

	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/ledger"
)

// CreateOptions are the options of a creating call
type CreateOptions struct {
	CallOptions `mapstructure:",squash"`

	// OnComplete defaults to NoOp
	OnComplete        arc56.OnComplete `mapstructure:"on_complete"`
	TemplateVariables map[string]any   `mapstructure:"template_variables"`
	ExtraPages        uint32           `mapstructure:"extra_pages"`
}

// CreateResult is a confirmed creation
type CreateResult struct {
	*Result
	AppID      uint64
	AppAddress string
}

// UpdateOptions are the options of an UpdateApplication call
type UpdateOptions struct {
	CallOptions       `mapstructure:",squash"`
	TemplateVariables map[string]any `mapstructure:"template_variables"`
}

// Create deploys the contract by calling methodName with a create action.
// On success the client is bound to the new application.
func (c *AppClient) Create(ctx context.Context, methodName string, opts CreateOptions) (*CreateResult, error) {
	if c.appID != 0 {
		return nil, errors.Wrapf(ErrAlreadyCreated, "app %d", c.appID)
	}
	if len(opts.TemplateVariables) != len(c.contract.TemplateVariables) {
		return nil, errors.Wrapf(ErrTemplateVariableCountMismatch,
			"contract declares %d, got %d", len(c.contract.TemplateVariables), len(opts.TemplateVariables))
	}

	action := opts.OnComplete
	if action == "" {
		action = arc56.NoOp
	}
	call, method, err := c.prepare(methodName, action, opts.CallOptions)
	if err != nil {
		return nil, err
	}

	if call.ApprovalProgram, call.ClearProgram, err = c.compilePrograms(ctx, opts.TemplateVariables); err != nil {
		return nil, err
	}
	schema := c.contract.State.Schema
	call.Schema = &ledger.Schema{
		GlobalInts:  schema.Global.Ints,
		GlobalBytes: schema.Global.Bytes,
		LocalInts:   schema.Local.Ints,
		LocalBytes:  schema.Local.Bytes,
	}
	call.ExtraPages = opts.ExtraPages

	outcome := c.newOutcome(method, action, call.Sender)
	outcome.Created = true
	outcome.TemplateVariables = opts.TemplateVariables

	result, err := c.dispatch(ctx, method, call, action)
	if err != nil {
		c.notify(ctx, failedOutcome(outcome, err))
		return nil, err
	}

	var appID uint64
	if n := len(result.Confirmations); n > 0 {
		appID = result.Confirmations[n-1].AppID
	}
	if appID == 0 {
		err := errors.Errorf("creation of %s confirmed without an application id", c.contract.Name)
		outcome.TxIDs = result.TxIDs
		outcome.Round = result.Round
		c.notify(ctx, failedOutcome(outcome, err))
		return nil, err
	}
	c.setAppID(appID)
	c.log.Infow("Application created",
		"contract", c.contract.Name,
		"app_id", appID,
		"app_address", c.appAddress,
		"tx_id", result.TxID(),
	)

	outcome.AppID = appID
	outcome.AppAddress = c.appAddress
	outcome.Success = true
	outcome.TxIDs = result.TxIDs
	outcome.Round = result.Round
	outcome.ReturnValue = result.ReturnValue
	c.notify(ctx, outcome)

	return &CreateResult{Result: result, AppID: appID, AppAddress: c.appAddress}, nil
}

// Update replaces the programs of the bound application through an UpdateApplication call
func (c *AppClient) Update(ctx context.Context, methodName string, opts UpdateOptions) (*Result, error) {
	if len(opts.TemplateVariables) != len(c.contract.TemplateVariables) {
		return nil, errors.Wrapf(ErrTemplateVariableCountMismatch,
			"contract declares %d, got %d", len(c.contract.TemplateVariables), len(opts.TemplateVariables))
	}

	call, method, err := c.prepare(methodName, arc56.UpdateApplication, opts.CallOptions)
	if err != nil {
		return nil, err
	}
	if call.ApprovalProgram, call.ClearProgram, err = c.compilePrograms(ctx, opts.TemplateVariables); err != nil {
		return nil, err
	}

	outcome := c.newOutcome(method, arc56.UpdateApplication, call.Sender)
	result, err := c.dispatch(ctx, method, call, arc56.UpdateApplication)
	if err != nil {
		c.notify(ctx, failedOutcome(outcome, err))
		return nil, err
	}
	outcome.Success = true
	outcome.TxIDs = result.TxIDs
	outcome.Round = result.Round
	outcome.ReturnValue = result.ReturnValue
	c.notify(ctx, outcome)
	return result, nil
}

// prepare builds the call and checks the action before anything is compiled
func (c *AppClient) prepare(methodName string, action arc56.OnComplete, opts CallOptions) (*ledger.MethodCall, *arc56.Method, error) {
	call, err := c.Params(methodName, opts)
	if err != nil {
		return nil, nil, err
	}
	method, _ := c.contract.Method(methodName)
	if err := c.checkAction(method, action); err != nil {
		return nil, nil, err
	}
	return call, method, nil
}

func (c *AppClient) compilePrograms(ctx context.Context, values map[string]any) ([]byte, []byte, error) {
	approval, clearProg, ok := c.contract.Programs()
	if !ok {
		return nil, nil, ErrNoProgram
	}

	compiled := make([][]byte, 2)
	for i, program := range [][]byte{approval, clearProg} {
		source, err := substituteTemplates(program, c.contract.TemplateVariables, values)
		if err != nil {
			return nil, nil, err
		}
		if compiled[i], err = c.ledger.Compile(ctx, source); err != nil {
			return nil, nil, errors.Wrap(err, "failed to compile program")
		}
	}
	return compiled[0], compiled[1], nil
}
