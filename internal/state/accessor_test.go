package state

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"arc56/internal/arc56"
	"arc56/internal/codec"
	"arc56/internal/ledger"
	"arc56/internal/logging"
	"arc56/internal/mocks"
)

const (
	testAppID   = uint64(1234)
	testAddress = "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q"
)

type fixedApp uint64

func (f fixedApp) AppID() uint64 { return uint64(f) }

func newAccessor(t *testing.T) (*Accessor, *mocks.MockLedger) {
	t.Helper()
	contract, err := arc56.Load("../arc56/testdata/ARC56Test.arc56.json")
	require.NoError(t, err)
	resolver, err := codec.NewResolver(contract.Structs, 0)
	require.NoError(t, err)

	mockLedger := mocks.NewMockLedger(gomock.NewController(t))
	return NewAccessor(contract, codec.New(resolver), mockLedger, fixedApp(testAppID), logging.NewNopLogger()), mockLedger
}

func abiString(s string) []byte {
	return append([]byte{byte(len(s) >> 8), byte(len(s))}, s...)
}

func TestKey_Global(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().GlobalState(ctx, testAppID).Return([]ledger.StateEntry{
		{Key: []byte("other"), Value: ledger.TealValue{Type: ledger.ValueUint, Uint: 1}},
		{Key: []byte("globalKey"), Value: ledger.TealValue{Type: ledger.ValueUint, Uint: 42}},
	}, nil)

	value, err := a.Key(ctx, "globalKey", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value)
}

func TestKey_UintStoredAsBytes(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().GlobalState(ctx, testAppID).Return([]ledger.StateEntry{
		{Key: []byte("globalKey"), Value: ledger.TealValue{Type: ledger.ValueBytes, Bytes: binary.BigEndian.AppendUint64(nil, 42)}},
	}, nil)

	value, err := a.Key(ctx, "globalKey", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), value)
}

func TestKey_Local(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().LocalState(ctx, testAppID, testAddress).Return([]ledger.StateEntry{
		{Key: []byte("localKey"), Value: ledger.TealValue{Type: ledger.ValueUint, Uint: 7}},
	}, nil)

	value, err := a.Key(ctx, "localKey", testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), value)
}

func TestLocal_RequiresAddress(t *testing.T) {
	// no ledger expectations: any query fails the test
	a, _ := newAccessor(t)
	ctx := context.Background()

	_, err := a.Key(ctx, "localKey", "")
	assert.ErrorIs(t, err, ErrAddressRequired)

	_, err = a.Map(ctx, "localMap", "foo", "")
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestKey_Box(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().Box(ctx, testAppID, []byte("boxKey")).Return(abiString("baz"), nil)

	value, err := a.Key(ctx, "boxKey", "")
	require.NoError(t, err)
	assert.Equal(t, "baz", value)
}

func TestKey_Missing(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().GlobalState(ctx, testAppID).Return(nil, nil)
	_, err := a.Key(ctx, "globalKey", "")
	assert.ErrorIs(t, err, ErrStateEntryNotFound)

	l.EXPECT().Box(ctx, testAppID, []byte("boxKey")).Return(nil, ledger.ErrNotFound)
	_, err = a.Key(ctx, "boxKey", "")
	assert.ErrorIs(t, err, ErrStateEntryNotFound)

	_, err = a.Key(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrUnknownStorageName)

	_, err = a.Map(ctx, "nope", "foo", "")
	assert.ErrorIs(t, err, ErrUnknownStorageName)
}

func TestMapKey(t *testing.T) {
	a, _ := newAccessor(t)

	ns, key, err := a.MapKey("globalMap", "foo")
	require.NoError(t, err)
	assert.Equal(t, arc56.Global, ns)
	assert.Equal(t, []byte{'p', 0x00, 0x03, 'f', 'o', 'o'}, key)

	// raw bytes keys are not length prefixed
	ns, key, err = a.MapKey("localMap", "foo")
	require.NoError(t, err)
	assert.Equal(t, arc56.Local, ns)
	assert.Equal(t, []byte("pfoo"), key)
}

func TestMap_Global(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().GlobalState(ctx, testAppID).Return([]ledger.StateEntry{
		{Key: []byte{'p', 0x00, 0x03, 'f', 'o', 'o'}, Value: ledger.TealValue{Type: ledger.ValueBytes, Bytes: []byte{0x00, 0x0d, 0x00, 0x25}}},
	}, nil)

	value, err := a.Map(ctx, "globalMap", "foo", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": uint64(13), "bar": uint64(37)}, value)
}

func TestMap_Local(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().LocalState(ctx, testAppID, testAddress).Return([]ledger.StateEntry{
		{Key: []byte("pfoo"), Value: ledger.TealValue{Type: ledger.ValueBytes, Bytes: abiString("bar")}},
	}, nil)

	value, err := a.Map(ctx, "localMap", "foo", testAddress)
	require.NoError(t, err)
	assert.Equal(t, "bar", value)
}

func TestMap_BoxStructKey(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	inputs := map[string]any{
		"add":      map[string]any{"a": uint64(1), "b": uint64(2)},
		"subtract": map[string]any{"a": uint64(4), "b": uint64(3)},
	}
	boxName := []byte("p")
	for _, v := range []uint64{1, 2, 4, 3} {
		boxName = binary.BigEndian.AppendUint64(boxName, v)
	}
	stored := binary.BigEndian.AppendUint64(binary.BigEndian.AppendUint64(nil, 3), 1)

	l.EXPECT().Box(ctx, testAppID, boxName).Return(stored, nil)

	value, err := a.Map(ctx, "boxMap", inputs, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sum": uint64(3), "difference": uint64(1)}, value)
}

func TestDump(t *testing.T) {
	a, l := newAccessor(t)
	ctx := context.Background()

	l.EXPECT().GlobalState(ctx, testAppID).Return([]ledger.StateEntry{
		{Key: []byte("globalKey"), Value: ledger.TealValue{Type: ledger.ValueUint, Uint: 42}},
	}, nil)
	l.EXPECT().Box(ctx, testAppID, []byte("boxKey")).Return(nil, ledger.ErrNotFound)

	dump, err := a.Dump(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[arc56.Namespace]map[string]any{
		arc56.Global: {"globalKey": uint64(42)},
	}, dump)
}
