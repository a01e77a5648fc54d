package ledger

import (
	"encoding/base64"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestConvertKeyValues(t *testing.T) {
	entries, err := convertKeyValues([]models.TealKeyValue{
		{Key: b64("globalKey"), Value: models.TealValue{Type: 2, Uint: 42}},
		{Key: b64("name"), Value: models.TealValue{Type: 1, Bytes: b64("alice")}},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, []byte("globalKey"), entries[0].Key)
	assert.Equal(t, ValueUint, entries[0].Value.Type)
	assert.Equal(t, uint64(42), entries[0].Value.Uint)

	assert.Equal(t, ValueBytes, entries[1].Value.Type)
	assert.Equal(t, []byte("alice"), entries[1].Value.Bytes)

	_, err = convertKeyValues([]models.TealKeyValue{{Key: "%%%"}})
	assert.Error(t, err)
}

func TestDecodeArgs(t *testing.T) {
	method := abi.Method{
		Name:    "add",
		Args:    []abi.Arg{{Name: "a", Type: "uint64"}, {Name: "s", Type: "string"}},
		Returns: abi.Return{Type: "void"},
	}

	args, err := decodeArgs(method, [][]byte{
		{0, 0, 0, 0, 0, 0, 0, 9},
		{0, 2, 'h', 'i'},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{uint64(9), "hi"}, args)

	_, err = decodeArgs(method, [][]byte{{0}}, nil)
	assert.Error(t, err)
}

func TestDecodeArgs_ReferencesAndTransactions(t *testing.T) {
	const addr = "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q"
	method := abi.Method{
		Name: "mixed",
		Args: []abi.Arg{
			{Name: "who", Type: "account"},
			{Name: "asset", Type: "asset"},
			{Name: "payment", Type: "pay"},
			{Name: "n", Type: "uint64"},
		},
		Returns: abi.Return{Type: "void"},
	}
	payment := transaction.TransactionWithSigner{Txn: types.Transaction{Type: types.PaymentTx}}

	args, err := decodeArgs(method,
		[][]byte{nil, nil, nil, {0, 0, 0, 0, 0, 0, 0, 3}},
		[]any{addr, uint64(31566704), payment, nil},
	)
	require.NoError(t, err)
	require.Len(t, args, 4)

	expected, err := types.DecodeAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, expected, args[0])
	assert.Equal(t, uint64(31566704), args[1])
	assert.Equal(t, payment, args[2])
	assert.Equal(t, uint64(3), args[3])

	_, err = decodeArgs(method, [][]byte{nil, nil, nil, {0, 0, 0, 0, 0, 0, 0, 3}}, nil)
	assert.Error(t, err)
}

func TestWrapNotFound(t *testing.T) {
	err := wrapNotFound(errors.New("HTTP 404 Not Found: box not found"), "failed to get box of application %d", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "application 7")

	err = wrapNotFound(errors.New("connection refused"), "failed")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGroupResultRound(t *testing.T) {
	res := &GroupResult{Confirmations: []Confirmation{{Round: 10}, {Round: 12}, {Round: 11}}}
	assert.Equal(t, uint64(12), res.Round())
	assert.Equal(t, uint64(0), (&GroupResult{}).Round())
}
