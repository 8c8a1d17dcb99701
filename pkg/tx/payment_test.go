package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

func validPayment(t *testing.T) *Payment {
	t.Helper()
	payment := NewPayment()
	require.NoError(t, payment.SetAccount(testAddress(t)))
	require.NoError(t, payment.SetDestination(testAddress(t)))
	native, err := amount.NewNative("1000000")
	require.NoError(t, err)
	require.NoError(t, payment.SetAmount(native))
	return payment
}

func TestPaymentValidate(t *testing.T) {
	assert.NoError(t, validPayment(t).Validate())

	missingDest := NewPayment()
	require.NoError(t, missingDest.SetAccount(testAddress(t)))
	validationErr := &ValidationError{}
	require.ErrorAs(t, missingDest.Validate(), &validationErr)
	assert.Equal(t, "Destination", validationErr.Field)
	assert.Contains(t, validationErr.Reason, "required")

	selfPayment := validPayment(t)
	account, _ := selfPayment.Common().Account().Get()
	require.NoError(t, selfPayment.SetDestination(account.String()))
	require.ErrorAs(t, selfPayment.Validate(), &validationErr)
	assert.Contains(t, validationErr.Reason, "differ")

	missingAmount := validPayment(t)
	missingAmount.amount.Clear()
	require.ErrorAs(t, missingAmount.Validate(), &validationErr)
	assert.Equal(t, "Amount", validationErr.Field)

	zeroAmount := validPayment(t)
	zero, err := amount.NewNative("0")
	require.NoError(t, err)
	require.NoError(t, zeroAmount.SetAmount(zero))
	require.ErrorAs(t, zeroAmount.Validate(), &validationErr)
	assert.Contains(t, validationErr.Reason, "positive")

	missingAccount := NewPayment()
	require.NoError(t, missingAccount.SetDestination(testAddress(t)))
	require.ErrorAs(t, missingAccount.Validate(), &validationErr)
	assert.Equal(t, "Account", validationErr.Field)
}

func TestPaymentPartialPaymentFlag(t *testing.T) {
	issuer := codec.Address(testAddress(t))

	// issuer charges a transfer rate
	payment := validPayment(t)
	issued, err := amount.NewIssued("USD", issuer, "10")
	require.NoError(t, err)
	require.NoError(t, payment.SetAmount(issued))
	payment.SetTransferRate(amount.TransferRate(1002000000))
	require.NoError(t, payment.Validate())
	assert.True(t, payment.Common().Flags().Enabled(FlagPartialPayment))

	// no rate, third party issuer
	payment = validPayment(t)
	issued, err = amount.NewIssued("USD", issuer, "10")
	require.NoError(t, err)
	require.NoError(t, payment.SetAmount(issued))
	require.NoError(t, payment.Validate())
	assert.False(t, payment.Common().Flags().Enabled(FlagPartialPayment))

	// self issuance
	payment = validPayment(t)
	account, _ := payment.Common().Account().Get()
	issued, err = amount.NewIssued("USD", account, "10")
	require.NoError(t, err)
	require.NoError(t, payment.SetAmount(issued))
	require.NoError(t, payment.Validate())
	assert.True(t, payment.Common().Flags().Enabled(FlagPartialPayment))

	// native amounts never carry it
	payment = validPayment(t)
	payment.SetTransferRate(amount.TransferRate(1002000000))
	require.NoError(t, payment.Validate())
	assert.False(t, payment.Common().Flags().Enabled(FlagPartialPayment))
}

func TestPaymentJSONRoundTrip(t *testing.T) {
	payment := validPayment(t)
	require.NoError(t, payment.SetDestinationTag(7251))
	require.NoError(t, payment.Common().SetFee(12))
	require.NoError(t, payment.Common().SetSequence(42))
	require.NoError(t, payment.Common().AddMemo(Memo{Type: "74657874", Data: "68656c6c6f"}))

	serialized, err := payment.JSON()
	require.NoError(t, err)

	decoded, err := Decode(serialized)
	require.NoError(t, err)
	require.IsType(t, &Payment{}, decoded)
	roundTripped := decoded.(*Payment)

	assert.Equal(t, KindGenuine, roundTripped.Kind())
	assert.Equal(t, TypePayment, roundTripped.TypeName())

	wantAccount, _ := payment.Common().Account().Get()
	gotAccount, _ := roundTripped.Common().Account().Get()
	assert.Equal(t, wantAccount, gotAccount)

	wantDest, _ := payment.Destination()
	gotDest, _ := roundTripped.Destination()
	assert.Equal(t, wantDest, gotDest)

	tag, ok := roundTripped.DestinationTag()
	assert.True(t, ok)
	assert.Equal(t, uint64(7251), tag)

	fee, ok := roundTripped.Common().Fee()
	assert.True(t, ok)
	assert.Equal(t, uint64(12), fee)

	amt, ok := roundTripped.Amount()
	require.True(t, ok)
	assert.Equal(t, "1000000", amt.Value())
	assert.True(t, amt.Native())

	require.Len(t, roundTripped.Common().Memos(), 1)
	assert.Equal(t, "74657874", roundTripped.Common().Memos()[0].Type)

	assert.NoError(t, roundTripped.Validate())
}

func TestFeeWireEncoding(t *testing.T) {
	// the ledger convention is a string of drops, but numeric fees from
	// older emitters are accepted on decode
	decoded, err := Decode([]byte(`{"TransactionType": "Payment", "Fee": 12}`))
	require.NoError(t, err)
	fee, ok := decoded.Common().Fee()
	assert.True(t, ok)
	assert.Equal(t, uint64(12), fee)

	serialized, err := decoded.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(serialized), `"Fee":"12"`)

	_, err = Decode([]byte(`{"TransactionType": "Payment", "Fee": "12drops"}`))
	assert.Error(t, err)
}

func TestPaymentNFTDecodePromotes(t *testing.T) {
	payment := validPayment(t)
	issuer := codec.Address(testAddress(t))
	nft, err := amount.NewNFT("NFT", issuer, 42, amount.DefaultCodec())
	require.NoError(t, err)
	require.NoError(t, payment.SetAmount(nft))

	serialized, err := payment.JSON()
	require.NoError(t, err)

	decoded, err := Decode(serialized)
	require.NoError(t, err)
	amt, ok := decoded.(*Payment).Amount()
	require.True(t, ok)
	assert.Equal(t, amount.FormNFT, amt.Form())
	assert.Equal(t, uint32(42), amt.Ordinal())
}

func TestPaymentSigningPayloadOmitsSignature(t *testing.T) {
	payment := validPayment(t)
	require.NoError(t, payment.Common().SigningPubKey().Set("ed0102"))
	require.NoError(t, payment.Common().TxnSignature().Set("aabb"))

	full, err := payment.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(full), "TxnSignature")

	unsigned, err := payment.SigningPayload()
	require.NoError(t, err)
	assert.NotContains(t, string(unsigned), "TxnSignature")
	assert.Contains(t, string(unsigned), "SigningPubKey")
}
