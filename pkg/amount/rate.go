package amount

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// TransferRateParity is the billionths representation of a 1.0 multiplier,
// meaning the issuer charges no transfer fee.
const TransferRateParity TransferRate = 1000000000

// TransferRate is an issuer's transfer fee multiplier in billionths, as the
// ledger stores it. Zero means the issuer has no rate configured.
type TransferRate uint32

// Charges reports whether the rate expresses an actual fee.
func (r TransferRate) Charges() bool {
	return r > TransferRateParity
}

// Multiplier converts the billionths representation to a decimal factor.
func (r TransferRate) Multiplier() decimal.Decimal {
	if r == 0 {
		return decimal.New(1, 0)
	}
	return decimal.New(int64(r), -9)
}

// RequiresPartialPayment decides whether a payment of an issued currency
// must carry the partial payment flag: whenever the issuer charges a
// transfer rate, or when the payer issues the currency itself, the delivered
// amount is allowed to differ from the deducted amount.
func RequiresPartialPayment(rate TransferRate, sender, issuer codec.Address) bool {
	if rate.Charges() {
		return true
	}
	return !issuer.Empty() && sender == issuer
}
