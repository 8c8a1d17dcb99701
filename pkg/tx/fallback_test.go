package tx

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

func TestDecodeFallback(t *testing.T) {
	account := testAddress(t)
	raw := fmt.Sprintf(`{
		"TransactionType": "NFTokenBurn",
		"Account": %q,
		"Fee": "12",
		"Sequence": 9,
		"NFTokenID": "000800006203F49C21D5D6E022CB16DE3538F248662FC73C2CE216F9FFFFFFFF"
	}`, account)

	decoded, err := Decode([]byte(raw))
	require.NoError(t, err)
	fallback, ok := decoded.(*Fallback)
	require.True(t, ok)

	assert.Equal(t, KindFallback, fallback.Kind())
	assert.Equal(t, "NFTokenBurn", fallback.TypeName())

	// structural fields are exposed
	gotAccount, ok := fallback.Common().Account().Get()
	assert.True(t, ok)
	assert.Equal(t, account, gotAccount.String())
	fee, _ := fallback.Common().Fee()
	assert.Equal(t, uint64(12), fee)

	// the identifying field survives
	id, ok := fallback.UniqueID()
	assert.True(t, ok)
	assert.Equal(t, "000800006203F49C21D5D6E022CB16DE3538F248662FC73C2CE216F9FFFFFFFF", id)

	// only structural validation applies
	assert.NoError(t, fallback.Validate())

	// the raw field set survives re-serialization
	serialized, err := fallback.JSON()
	require.NoError(t, err)
	fields := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(serialized, &fields))
	assert.Contains(t, fields, "NFTokenID")
	assert.Contains(t, fields, "TransactionType")
}

func TestFallbackWithoutUniqueID(t *testing.T) {
	account := testAddress(t)
	raw := fmt.Sprintf(`{"TransactionType": "AccountDelete", "Account": %q}`, account)
	decoded, err := Decode([]byte(raw))
	require.NoError(t, err)
	fallback := decoded.(*Fallback)

	_, ok := fallback.UniqueID()
	assert.False(t, ok)
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"Account": "rrrrrrrrrrrrrrrrrrrrrhoLvTp"}`))
	assert.ErrorContains(t, err, "TransactionType")

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeSetFee(t *testing.T) {
	raw := `{
		"TransactionType": "SetFee",
		"BaseFee": "000000000000000A",
		"ReferenceFeeUnits": 10,
		"ReserveBase": 20000000,
		"ReserveIncrement": 5000000
	}`
	decoded, err := Decode([]byte(raw))
	require.NoError(t, err)
	setFee, ok := decoded.(*SetFee)
	require.True(t, ok)

	assert.Equal(t, KindPseudo, setFee.Kind())
	// pseudo transactions validate structurally without an account
	assert.NoError(t, setFee.Validate())

	baseFee, ok := setFee.BaseFee()
	assert.True(t, ok)
	assert.Equal(t, "000000000000000A", baseFee)
}

func TestDecodeTrustSet(t *testing.T) {
	account := testAddress(t)
	issuer := testAddress(t)
	raw := fmt.Sprintf(`{
		"TransactionType": "TrustSet",
		"Account": %q,
		"LimitAmount": {"currency": "USD", "issuer": %q, "value": "1000"},
		"Flags": 131072
	}`, account, issuer)

	decoded, err := Decode([]byte(raw))
	require.NoError(t, err)
	trustSet, ok := decoded.(*TrustSet)
	require.True(t, ok)

	assert.Equal(t, KindGenuine, trustSet.Kind())
	assert.NoError(t, trustSet.Validate())
	assert.True(t, trustSet.Common().Flags().Enabled(FlagSetNoRipple))

	limit, ok := trustSet.LimitAmount()
	require.True(t, ok)
	assert.Equal(t, "USD", limit.Currency())

	// a trust line to the own account is rejected
	selfTrust := NewTrustSet()
	require.NoError(t, selfTrust.SetAccount(account))
	selfIssued, err := amount.NewIssued("USD", codec.Address(account), "100")
	require.NoError(t, err)
	require.NoError(t, selfTrust.SetLimitAmount(selfIssued))
	validationErr := &ValidationError{}
	assert.ErrorAs(t, selfTrust.Validate(), &validationErr)
}
