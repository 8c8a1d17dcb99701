package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
	"github.com/ledgerwallet/wallet-engine/pkg/keys"
)

func testAddress(t *testing.T) string {
	t.Helper()
	pair, err := keys.RandomKeyPair()
	require.NoError(t, err)
	address, err := pair.Address()
	require.NoError(t, err)
	return address.String()
}

func TestBlobField(t *testing.T) {
	field := NewBlobField("InvoiceID")
	assert.False(t, field.IsSet())

	require.NoError(t, field.Set("deadbeef"))
	value, ok := field.Get()
	assert.True(t, ok)
	assert.Equal(t, "DEADBEEF", value)

	err := field.Set("abc")
	typeErr := &TypeValidationError{}
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "InvoiceID", typeErr.Field)

	err = field.Set("not hex!")
	assert.ErrorAs(t, err, &typeErr)

	// a failed set leaves the previous value intact
	value, ok = field.Get()
	assert.True(t, ok)
	assert.Equal(t, "DEADBEEF", value)

	field.Clear()
	_, ok = field.Get()
	assert.False(t, ok)
	assert.False(t, field.IsSet())
}

func TestUIntField(t *testing.T) {
	field := NewUIntField("DestinationTag", 32)
	require.NoError(t, field.Set(4294967295))
	value, ok := field.Get()
	assert.True(t, ok)
	assert.Equal(t, uint64(4294967295), value)

	err := field.Set(4294967296)
	typeErr := &TypeValidationError{}
	assert.ErrorAs(t, err, &typeErr)

	field.Clear()
	_, ok = field.Get()
	assert.False(t, ok)

	wide := NewUIntField("Fee", 64)
	assert.NoError(t, wide.Set(^uint64(0)))
}

func TestAccountField(t *testing.T) {
	field := NewAccountField("Account")
	address := testAddress(t)
	require.NoError(t, field.Set(codec.Address(address)))
	value, ok := field.Get()
	assert.True(t, ok)
	assert.Equal(t, address, value.String())

	err := field.Set("rNotAValidAddressxxxxxxxxxx")
	typeErr := &TypeValidationError{}
	assert.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "Account", typeErr.Field)
}

func TestAmountField(t *testing.T) {
	field := NewAmountField("Amount")
	native, err := amount.NewNative("100")
	require.NoError(t, err)
	require.NoError(t, field.Set(native))
	value, ok := field.Get()
	assert.True(t, ok)
	assert.Equal(t, "100", value.Value())

	typeErr := &TypeValidationError{}
	assert.ErrorAs(t, field.Set(nil), &typeErr)

	field.Clear()
	assert.False(t, field.IsSet())
}
