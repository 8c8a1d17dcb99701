package amount

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// Form tags the active variant of an Amount.
type Form int

const (
	// FormNative is an integer minor-unit quantity of the ledger's native
	// currency.
	FormNative Form = iota
	// FormIssued is a decimal quantity of an issuer-backed currency.
	FormIssued
	// FormNFT is an NFT ordinal carried inside an issued currency value.
	FormNFT
)

var (
	currencyCodeRegex = regexp.MustCompile("^[A-Za-z0-9]{3}$")
	currencyHexRegex  = regexp.MustCompile("^[0-9A-Fa-f]{40}$")

	// ErrNoIssuer is returned when an issued amount misses its issuer.
	ErrNoIssuer = errors.New("issued amount requires an issuer")
)

// ValidCurrency reports whether code is a well-formed currency code:
// three alphanumeric characters or the 40 character hex form.
func ValidCurrency(code string) bool {
	return currencyCodeRegex.MatchString(code) || currencyHexRegex.MatchString(code)
}

// Amount is a tagged union over the three wire forms. Exactly one form is
// active; constructors are the only way to build a valid value.
type Amount struct {
	form     Form
	value    string
	currency string
	issuer   codec.Address
	ordinal  uint32
}

// NewNative builds a native amount from an integer minor-unit string.
func NewNative(units string) (*Amount, error) {
	if _, err := strconv.ParseUint(units, 10, 64); err != nil {
		return nil, fmt.Errorf("native amount must be a non-negative integer but received %q", units)
	}
	return &Amount{form: FormNative, value: units}, nil
}

// NewIssued builds an issued currency amount from a decimal value string.
func NewIssued(currency string, issuer codec.Address, value string) (*Amount, error) {
	if !ValidCurrency(currency) {
		return nil, fmt.Errorf("invalid currency code %q", currency)
	}
	if issuer.Empty() {
		return nil, ErrNoIssuer
	}
	if err := issuer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid issuer: %w", err)
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal value %q: %w", value, err)
	}
	if parsed.IsNegative() {
		return nil, fmt.Errorf("amount %q must not be negative", value)
	}
	return &Amount{form: FormIssued, value: value, currency: currency, issuer: issuer}, nil
}

// NewNFT builds an NFT-encoded amount for ordinal n using c's reserved range.
func NewNFT(currency string, issuer codec.Address, ordinal uint32, c *Codec) (*Amount, error) {
	wire, err := c.ToWire(strconv.FormatUint(uint64(ordinal), 10), true)
	if err != nil {
		return nil, err
	}
	a, err := NewIssued(currency, issuer, wire)
	if err != nil {
		return nil, err
	}
	a.form = FormNFT
	a.ordinal = ordinal
	return a, nil
}

func (a *Amount) Form() Form            { return a.form }
func (a *Amount) Native() bool          { return a.form == FormNative }
func (a *Amount) Value() string         { return a.value }
func (a *Amount) Currency() string      { return a.currency }
func (a *Amount) Issuer() codec.Address { return a.issuer }

// Ordinal returns the NFT ordinal; only meaningful for FormNFT.
func (a *Amount) Ordinal() uint32 { return a.ordinal }

// Positive reports whether the amount is strictly greater than zero.
func (a *Amount) Positive() bool {
	parsed, err := decimal.NewFromString(a.value)
	if err != nil {
		return false
	}
	return parsed.IsPositive()
}

// Display decodes the amount for presentation using c.
func (a *Amount) Display(c *Codec) (*Display, error) {
	return c.FromWire(a.value)
}

// Normalize promotes an issued amount whose value lies in the reserved
// range to the NFT form. Call after deserializing wire data.
func (a *Amount) Normalize(c *Codec) error {
	if a.form != FormIssued || !c.IsNFTEncoded(a.value) {
		return nil
	}
	ordinal, err := c.Ordinal(a.value)
	if err != nil {
		return err
	}
	a.form = FormNFT
	a.ordinal = ordinal
	return nil
}

type issuedJSON struct {
	Currency string        `json:"currency"`
	Issuer   codec.Address `json:"issuer"`
	Value    string        `json:"value"`
}

// MarshalJSON renders the ledger wire shape: a bare string for native
// amounts, an object for issued and NFT-encoded amounts.
func (a *Amount) MarshalJSON() ([]byte, error) {
	if a.form == FormNative {
		return json.Marshal(a.value)
	}
	return json.Marshal(issuedJSON{Currency: a.currency, Issuer: a.issuer, Value: a.value})
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var units string
	if err := json.Unmarshal(b, &units); err == nil {
		parsed, err := NewNative(units)
		if err != nil {
			return err
		}
		*a = *parsed
		return nil
	}
	obj := issuedJSON{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	parsed, err := NewIssued(obj.Currency, obj.Issuer, obj.Value)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}
