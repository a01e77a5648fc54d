package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"arc56/internal/arc56"
	"arc56/internal/ledger"
	"arc56/internal/logging"
	"arc56/internal/mocks"
	"arc56/internal/models"
	"arc56/internal/orchestrator"
)

const (
	testAppID  = uint64(1234)
	testSender = "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q"
)

type recordingService struct {
	seen []*models.CallOutcome
}

func (s *recordingService) Process(_ context.Context, outcome *models.CallOutcome) error {
	s.seen = append(s.seen, outcome)
	return nil
}

func (s *recordingService) Name() string { return "recording" }

func loadContract(t *testing.T) *arc56.Contract {
	t.Helper()
	contract, err := arc56.Load("../arc56/testdata/ARC56Test.arc56.json")
	require.NoError(t, err)
	return contract
}

func newClient(t *testing.T, appID uint64) (*AppClient, *mocks.MockLedger, *recordingService) {
	t.Helper()
	mockLedger := mocks.NewMockLedger(gomock.NewController(t))
	recorder := &recordingService{}

	c, err := New(Config{
		Contract:      loadContract(t),
		Ledger:        mockLedger,
		AppID:         appID,
		DefaultSender: testSender,
		Hooks:         orchestrator.New(logging.NewNopLogger(), recorder),
		Logger:        logging.NewNopLogger(),
	})
	require.NoError(t, err)
	return c, mockLedger, recorder
}

func u64(vs ...uint64) []byte {
	out := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		out = binary.BigEndian.AppendUint64(out, v)
	}
	return out
}

func fooInputs() map[string]any {
	return map[string]any{
		"add":      map[string]any{"a": uint64(1), "b": uint64(2)},
		"subtract": map[string]any{"a": uint64(10), "b": uint64(5)},
	}
}

func TestNew_RequiresContractAndLedger(t *testing.T) {
	_, err := New(Config{Ledger: mocks.NewMockLedger(gomock.NewController(t))})
	assert.Error(t, err)

	_, err = New(Config{Contract: loadContract(t)})
	assert.Error(t, err)
}

func TestNew_BindsAppAddress(t *testing.T) {
	c, _, _ := newClient(t, testAppID)
	assert.Equal(t, testAppID, c.AppID())
	assert.Equal(t, crypto.GetApplicationAddress(testAppID).String(), c.AppAddress())

	unbound, _, _ := newClient(t, 0)
	assert.Empty(t, unbound.AppAddress())
}

func TestParams_EncodesStructArgument(t *testing.T) {
	c, _, _ := newClient(t, testAppID)

	call, err := c.Params("foo", CallOptions{
		Args: []any{fooInputs()},
		Fee:  2000,
		Note: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, testSender, call.Sender)
	assert.Equal(t, testAppID, call.AppID)
	assert.Equal(t, "foo", call.Method.Name)
	assert.Equal(t, "(uint64,uint64)", call.Method.Returns.Type)
	require.Len(t, call.Args, 1)
	assert.Equal(t, u64(1, 2, 10, 5), call.Args[0])
	assert.Equal(t, uint64(2000), call.Fee)
	assert.Equal(t, []byte("hello"), call.Note)
}

func TestParams_Errors(t *testing.T) {
	c, _, _ := newClient(t, testAppID)

	tests := []struct {
		name   string
		method string
		opts   CallOptions
		want   error
	}{
		{"unknown method", "bar", CallOptions{}, ErrMethodNotFound},
		{"argument count", "foo", CallOptions{}, ErrArgumentCount},
		{"reserved sender", "optInToApplication", CallOptions{Extra: map[string]any{"sender": "x"}}, ErrReservedParam},
		{"reserved args", "optInToApplication", CallOptions{Extra: map[string]any{"args": []any{}}}, ErrReservedParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Params(tt.method, tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParams_MissingSender(t *testing.T) {
	c, err := New(Config{
		Contract: loadContract(t),
		Ledger:   mocks.NewMockLedger(gomock.NewController(t)),
		AppID:    testAppID,
	})
	require.NoError(t, err)

	_, err = c.Params("optInToApplication", CallOptions{})
	assert.ErrorIs(t, err, ErrMissingSender)

	call, err := c.Params("optInToApplication", CallOptions{Sender: testSender})
	require.NoError(t, err)
	assert.Equal(t, testSender, call.Sender)
}

func TestParams_UnreservedExtraIsKept(t *testing.T) {
	c, _, _ := newClient(t, testAppID)

	call, err := c.Params("optInToApplication", CallOptions{Extra: map[string]any{"signer": "hsm"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"signer": "hsm"}, call.Extra)
}

func TestCall_DecodesStructReturn(t *testing.T) {
	c, l, recorder := newClient(t, testAppID)
	ctx := context.Background()

	l.EXPECT().Submit(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, g *ledger.Group) (*ledger.GroupResult, error) {
		require.Len(t, g.Calls, 1)
		assert.Equal(t, types.NoOpOC, g.Calls[0].OnComplete)
		assert.Equal(t, u64(1, 2, 10, 5), g.Calls[0].Args[0])
		return &ledger.GroupResult{
			TxIDs:         []string{"TX1"},
			Confirmations: []ledger.Confirmation{{TxID: "TX1", AppID: testAppID, Round: 7}},
			Returns:       []ledger.Return{{TxID: "TX1", Raw: u64(3, 5)}},
		}, nil
	})

	result, err := c.Call(ctx, "foo", CallOptions{Args: []any{fooInputs()}})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"sum": uint64(3), "difference": uint64(5)}, result.ReturnValue)
	assert.Equal(t, "TX1", result.TxID())
	assert.Equal(t, uint64(7), result.Round)

	require.Len(t, recorder.seen, 1)
	assert.True(t, recorder.seen[0].Success)
	assert.Equal(t, "foo", recorder.seen[0].Method)
	assert.Equal(t, "NoOp", recorder.seen[0].Action)
}

func TestCall_VoidMethodHasNoReturnValue(t *testing.T) {
	c, l, _ := newClient(t, testAppID)
	ctx := context.Background()

	l.EXPECT().Submit(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, g *ledger.Group) (*ledger.GroupResult, error) {
		assert.Equal(t, types.OptInOC, g.Calls[0].OnComplete)
		return &ledger.GroupResult{TxIDs: []string{"TX2"}, Returns: []ledger.Return{{TxID: "TX2"}}}, nil
	})

	result, err := c.OptIn(ctx, "optInToApplication", CallOptions{})
	require.NoError(t, err)
	assert.Nil(t, result.ReturnValue)
}

func TestCall_MissingReturn(t *testing.T) {
	c, l, _ := newClient(t, testAppID)
	ctx := context.Background()

	l.EXPECT().Submit(ctx, gomock.Any()).Return(&ledger.GroupResult{TxIDs: []string{"TX1"}}, nil)

	_, err := c.Call(ctx, "foo", CallOptions{Args: []any{fooInputs()}})
	assert.ErrorIs(t, err, ErrMissingReturn)
}

func TestCall_ActionNotSupportedSubmitsNothing(t *testing.T) {
	// the mock fails the test on any Submit
	c, _, recorder := newClient(t, testAppID)
	ctx := context.Background()

	_, err := c.CallWithAction(ctx, "foo", arc56.OptIn, CallOptions{Args: []any{fooInputs()}})
	assert.ErrorIs(t, err, ErrActionNotSupported)

	_, err = c.Delete(ctx, "foo", CallOptions{Args: []any{fooInputs()}})
	assert.ErrorIs(t, err, ErrActionNotSupported)

	// createApplication only allows NoOp at creation
	_, err = c.Call(ctx, "createApplication", CallOptions{})
	assert.ErrorIs(t, err, ErrActionNotSupported)

	assert.Empty(t, recorder.seen)
}

func TestDecodeReturn(t *testing.T) {
	c, _, _ := newClient(t, testAppID)

	value, err := c.DecodeReturn("foo", u64(9, 1))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sum": uint64(9), "difference": uint64(1)}, value)

	value, err = c.DecodeReturn("optInToApplication", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = c.DecodeReturn("nope", nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestCreate_AlreadyCreated(t *testing.T) {
	// no Compile or Submit is expected
	c, _, _ := newClient(t, testAppID)

	_, err := c.Create(context.Background(), "createApplication", CreateOptions{
		TemplateVariables: map[string]any{"someNumber": uint64(1)},
	})
	assert.ErrorIs(t, err, ErrAlreadyCreated)
}

func TestCreate_TemplateVariableCountChecked(t *testing.T) {
	c, _, _ := newClient(t, 0)
	ctx := context.Background()

	_, err := c.Create(ctx, "createApplication", CreateOptions{})
	assert.ErrorIs(t, err, ErrTemplateVariableCountMismatch)

	_, err = c.Create(ctx, "createApplication", CreateOptions{
		TemplateVariables: map[string]any{"someNumber": 1, "other": 2},
	})
	assert.ErrorIs(t, err, ErrTemplateVariableCountMismatch)
	assert.Zero(t, c.AppID())
}

func TestCreate_ActionCheckedBeforeCompile(t *testing.T) {
	c, _, _ := newClient(t, 0)

	_, err := c.Create(context.Background(), "foo", CreateOptions{
		CallOptions:       CallOptions{Args: []any{fooInputs()}},
		TemplateVariables: map[string]any{"someNumber": 1},
	})
	assert.ErrorIs(t, err, ErrActionNotSupported)
}

func TestCreate_BindsNewApplication(t *testing.T) {
	c, l, recorder := newClient(t, 0)
	ctx := context.Background()
	const newAppID = uint64(5678)

	var sources [][]byte
	l.EXPECT().Compile(ctx, gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, program []byte) ([]byte, error) {
		sources = append(sources, program)
		return []byte{byte(len(sources))}, nil
	})
	l.EXPECT().Submit(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, g *ledger.Group) (*ledger.GroupResult, error) {
		call := g.Calls[0]
		assert.Zero(t, call.AppID)
		assert.Equal(t, types.NoOpOC, call.OnComplete)
		assert.Equal(t, []byte{1}, call.ApprovalProgram)
		assert.Equal(t, []byte{2}, call.ClearProgram)
		require.NotNil(t, call.Schema)
		assert.Equal(t, ledger.Schema{GlobalInts: 1, GlobalBytes: 37, LocalInts: 1, LocalBytes: 13}, *call.Schema)
		return &ledger.GroupResult{
			TxIDs:         []string{"CREATE"},
			Confirmations: []ledger.Confirmation{{TxID: "CREATE", AppID: newAppID, Round: 3}},
			Returns:       []ledger.Return{{TxID: "CREATE"}},
		}, nil
	})

	result, err := c.Create(ctx, "createApplication", CreateOptions{
		TemplateVariables: map[string]any{"someNumber": uint64(1337)},
	})
	require.NoError(t, err)

	require.Len(t, sources, 2)
	assert.Contains(t, string(sources[0]), "pushint 1337")
	assert.NotContains(t, string(sources[0]), "TMPL_")

	assert.Equal(t, newAppID, result.AppID)
	assert.Equal(t, newAppID, c.AppID())
	assert.Equal(t, crypto.GetApplicationAddress(newAppID).String(), c.AppAddress())
	assert.Equal(t, c.AppAddress(), result.AppAddress)

	require.Len(t, recorder.seen, 1)
	assert.True(t, recorder.seen[0].Created)
	assert.Equal(t, newAppID, recorder.seen[0].AppID)

	// a second creation is refused
	_, err = c.Create(ctx, "createApplication", CreateOptions{
		TemplateVariables: map[string]any{"someNumber": uint64(1337)},
	})
	assert.ErrorIs(t, err, ErrAlreadyCreated)
}

func TestCreate_NoApplicationID(t *testing.T) {
	c, l, recorder := newClient(t, 0)
	ctx := context.Background()

	l.EXPECT().Compile(ctx, gomock.Any()).Times(2).Return([]byte{1}, nil)
	l.EXPECT().Submit(ctx, gomock.Any()).Return(&ledger.GroupResult{TxIDs: []string{"CREATE"}}, nil)

	_, err := c.Create(ctx, "createApplication", CreateOptions{
		TemplateVariables: map[string]any{"someNumber": 1},
	})
	assert.Error(t, err)
	assert.Zero(t, c.AppID())

	require.Len(t, recorder.seen, 1)
	assert.False(t, recorder.seen[0].Success)
	assert.True(t, recorder.seen[0].Created)
	assert.Equal(t, []string{"CREATE"}, recorder.seen[0].TxIDs)
	assert.Contains(t, recorder.seen[0].FailureReason, "without an application id")
}

func TestArgsFromJSON(t *testing.T) {
	c, _, _ := newClient(t, testAppID)

	args, err := c.ArgsFromJSON("foo", []json.RawMessage{
		json.RawMessage(`{"add":{"a":1,"b":"2"},"subtract":{"a":10,"b":5}}`),
	})
	require.NoError(t, err)

	call, err := c.Params("foo", CallOptions{Args: args})
	require.NoError(t, err)
	assert.Equal(t, u64(1, 2, 10, 5), call.Args[0])

	_, err = c.ArgsFromJSON("foo", nil)
	assert.ErrorIs(t, err, ErrArgumentCount)
}
