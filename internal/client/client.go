package client

import (
	"context"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/codec"
	"arc56/internal/ledger"
	"arc56/internal/logging"
	"arc56/internal/metrics"
	"arc56/internal/models"
	"arc56/internal/orchestrator"
	"arc56/internal/state"
)

var (
	ErrMissingSender                 = errors.New("no sender given and no default sender configured")
	ErrMethodNotFound                = errors.New("method not found")
	ErrArgumentCount                 = errors.New("wrong number of arguments")
	ErrArgumentType                  = errors.New("argument does not match its declared type")
	ErrReservedParam                 = errors.New("call option may not override an explicit call field")
	ErrActionNotSupported            = errors.New("action not supported")
	ErrAlreadyCreated                = errors.New("application already created")
	ErrTemplateVariableCountMismatch = errors.New("template variable count mismatch")
	ErrMissingTemplateVariable       = errors.New("missing template variable")
	ErrTemplateOpcode                = errors.New("template placeholder used with an opcode of the wrong kind")
	ErrNoProgram                     = errors.New("contract carries no approval and clear programs")
	ErrMissingReturn                 = errors.New("no return value in result")
)

// Config wires an AppClient
type Config struct {
	Contract *arc56.Contract
	Ledger   ledger.Ledger

	// AppID is 0 when the application has not been created yet
	AppID         uint64
	DefaultSender string
	CacheSize     int

	// Hooks, when set, receive every settled call
	Hooks  *orchestrator.Orchestrator
	Logger logging.Logger
}

// AppClient binds one ARC-56 contract to one application on the ledger
type AppClient struct {
	contract *arc56.Contract
	ledger   ledger.Ledger
	codec    *codec.Codec
	state    *state.Accessor
	hooks    *orchestrator.Orchestrator
	log      logging.Logger

	appID         uint64
	appAddress    string
	defaultSender string
}

// New creates an AppClient
func New(cfg Config) (*AppClient, error) {
	if cfg.Contract == nil {
		return nil, errors.New("contract is required")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("ledger is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	resolver, err := codec.NewResolver(cfg.Contract.Structs, cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	c := &AppClient{
		contract:      cfg.Contract,
		ledger:        cfg.Ledger,
		codec:         codec.New(resolver),
		hooks:         cfg.Hooks,
		log:           log,
		defaultSender: cfg.DefaultSender,
	}
	c.setAppID(cfg.AppID)
	c.state = state.NewAccessor(cfg.Contract, c.codec, cfg.Ledger, c, log)

	for _, name := range cfg.Contract.State.Collisions() {
		log.Warnw("Storage name declared in several namespaces, lookups resolve global then local then box",
			"contract", cfg.Contract.Name,
			"name", name,
		)
	}
	return c, nil
}

// AppID returns the bound application id, 0 before creation
func (c *AppClient) AppID() uint64 {
	return c.appID
}

// AppAddress returns the account address of the bound application
func (c *AppClient) AppAddress() string {
	return c.appAddress
}

// Contract returns the contract description
func (c *AppClient) Contract() *arc56.Contract {
	return c.contract
}

// Codec returns the codec used for arguments, returns and storage
func (c *AppClient) Codec() *codec.Codec {
	return c.codec
}

// State returns the storage accessor for the bound application
func (c *AppClient) State() *state.Accessor {
	return c.state
}

// DefaultSender returns the sender used when a call names none
func (c *AppClient) DefaultSender() string {
	return c.defaultSender
}

func (c *AppClient) setAppID(appID uint64) {
	c.appID = appID
	c.appAddress = ""
	if appID != 0 {
		c.appAddress = crypto.GetApplicationAddress(appID).String()
	}
	metrics.CurrentAppID.Set(float64(appID))
}

// DecodeReturn decodes a raw return value of the named method
func (c *AppClient) DecodeReturn(methodName string, raw []byte) (any, error) {
	method, err := c.method(methodName)
	if err != nil {
		return nil, err
	}
	if method.Returns.Void() {
		return nil, nil
	}
	return c.codec.Decode(method.Returns.TypeRef(), raw)
}

func (c *AppClient) method(name string) (*arc56.Method, error) {
	method, ok := c.contract.Method(name)
	if !ok {
		return nil, errors.Wrapf(ErrMethodNotFound, "%q in contract %s", name, c.contract.Name)
	}
	return method, nil
}

func (c *AppClient) newOutcome(method *arc56.Method, action arc56.OnComplete, sender string) *models.CallOutcome {
	return &models.CallOutcome{
		Contract: c.contract.Name,
		AppID:    c.appID,
		Method:   method.Name,
		Action:   string(action),
		Sender:   sender,
		Time:     time.Now().UTC(),
	}
}

func (c *AppClient) notify(ctx context.Context, outcome *models.CallOutcome) {
	if c.hooks == nil {
		return
	}
	c.hooks.Process(ctx, outcome)
}

func failedOutcome(outcome *models.CallOutcome, err error) *models.CallOutcome {
	outcome.Success = false
	outcome.FailureReason = err.Error()
	var translated *TranslatedExecutionError
	if errors.As(err, &translated) && translated.TxID != "" {
		outcome.TxIDs = []string{translated.TxID}
	}
	return outcome
}
