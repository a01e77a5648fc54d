package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/client"
	"arc56/internal/codec"
	"arc56/internal/ledger"
	"arc56/internal/models"
	"arc56/internal/state"
	"arc56/internal/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// callRequest is the body of the params and call endpoints
type callRequest struct {
	Args    []json.RawMessage `json:"args"`
	Action  string            `json:"action"`
	Options map[string]any    `json:"options"`
}

// BuildContractResponse summarizes the contract the client is bound to
func BuildContractResponse(c *client.AppClient) models.ContractResponse {
	contract := c.Contract()
	structs := make([]string, 0, len(contract.Structs))
	for name := range contract.Structs {
		structs = append(structs, name)
	}
	sort.Strings(structs)

	namespaces := make(map[string]models.StorageNamespace, len(arc56.Namespaces))
	for _, ns := range arc56.Namespaces {
		entry := models.StorageNamespace{Keys: []string{}, Maps: []string{}}
		for _, k := range contract.State.KeysIn(ns) {
			entry.Keys = append(entry.Keys, k.Name)
		}
		for _, m := range contract.State.MapsIn(ns) {
			entry.Maps = append(entry.Maps, m.Name)
		}
		namespaces[string(ns)] = entry
	}

	return models.ContractResponse{
		Name:              contract.Name,
		Description:       contract.Desc,
		Arcs:              contract.Arcs,
		AppID:             c.AppID(),
		AppAddress:        c.AppAddress(),
		Methods:           len(contract.Methods),
		Structs:           structs,
		TemplateVariables: contract.TemplateVariables,
		Storage:           namespaces,
		StorageCollisions: contract.State.Collisions(),
	}
}

// BuildMethodResponse describes one method
func BuildMethodResponse(m *arc56.Method) models.MethodResponse {
	returns := m.Returns.TypeRef()
	if m.Returns.Void() {
		returns = arc56.TypeVoid
	}
	return models.MethodResponse{
		Name:        m.Name,
		Signature:   m.Signature(),
		Description: m.Desc,
		ReadOnly:    m.ReadOnly,
		Create:      actionNames(m.Actions.Create),
		Call:        actionNames(m.Actions.Call),
		Returns:     returns,
	}
}

// BuildParamsResponse renders built call parameters with hex encoded arguments.
// Reference arguments are shown as given and transactions by their type.
func BuildParamsResponse(m *arc56.Method, call *ledger.MethodCall) models.ParamsResponse {
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		if i < len(call.Values) && call.Values[i] != nil {
			args[i] = referenceText(call.Values[i])
			continue
		}
		args[i] = hex.EncodeToString(a)
	}
	return models.ParamsResponse{
		Method:    m.Name,
		Signature: m.Signature(),
		Sender:    call.Sender,
		AppID:     call.AppID,
		Args:      args,
	}
}

func referenceText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case uint64:
		return strconv.FormatUint(v, 10)
	case transaction.TransactionWithSigner:
		return string(v.Txn.Type) + " transaction"
	}
	return ""
}

func actionNames(actions []arc56.OnComplete) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// decodeCallOptions converts a request body into call options
func decodeCallOptions(appClient *client.AppClient, m *arc56.Method, req callRequest) (client.CallOptions, error) {
	var opts client.CallOptions
	if len(req.Options) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &opts,
		})
		if err != nil {
			return opts, err
		}
		if err := dec.Decode(req.Options); err != nil {
			return opts, err
		}
	}

	args, err := appClient.ArgsFromJSON(m.Name, req.Args)
	if err != nil {
		return opts, err
	}
	opts.Args = args
	return opts, nil
}

// parsePagination reads limit and offset query parameters
func parsePagination(c *gin.Context) (int, int) {
	limit := defaultLimit
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= maxLimit {
		limit = parsed
	}
	offset := 0
	if parsed, err := strconv.Atoi(c.Query("offset")); err == nil && parsed >= 0 {
		offset = parsed
	}
	return limit, offset
}

// errorStatus maps a client or storage error to an HTTP status
func errorStatus(err error) int {
	var translated *client.TranslatedExecutionError
	switch {
	case errors.As(err, &translated):
		return http.StatusUnprocessableEntity
	case errors.Is(err, client.ErrMethodNotFound),
		errors.Is(err, state.ErrUnknownStorageName),
		errors.Is(err, state.ErrStateEntryNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, client.ErrArgumentCount),
		errors.Is(err, client.ErrReservedParam),
		errors.Is(err, client.ErrActionNotSupported),
		errors.Is(err, client.ErrMissingSender),
		errors.Is(err, state.ErrAddressRequired),
		errors.Is(err, codec.ErrMissingField),
		errors.Is(err, codec.ErrShapeMismatch),
		errors.Is(err, codec.ErrRawValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// sendError sends a JSON error response
func sendError(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.JSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Details: err.Error(),
	})
}
