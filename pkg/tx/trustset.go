package tx

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
)

// TrustSet is a genuine transaction creating or adjusting a trust line
// towards an issuer.
type TrustSet struct {
	CommonFields
	limitAmount AmountField
	qualityIn   UIntField
	qualityOut  UIntField
}

// NewTrustSet creates an empty trust set draft.
func NewTrustSet() *TrustSet {
	return &TrustSet{
		CommonFields: newCommonFields(TypeTrustSet),
		limitAmount:  NewAmountField("LimitAmount"),
		qualityIn:    NewUIntField("QualityIn", 32),
		qualityOut:   NewUIntField("QualityOut", 32),
	}
}

func (t *TrustSet) TypeName() string      { return TypeTrustSet }
func (t *TrustSet) Kind() Kind            { return KindGenuine }
func (t *TrustSet) Common() *CommonFields { return &t.CommonFields }

func (t *TrustSet) LimitAmount() (*amount.Amount, bool)   { return t.limitAmount.Get() }
func (t *TrustSet) SetLimitAmount(v *amount.Amount) error { return t.limitAmount.Set(v) }
func (t *TrustSet) SetQualityIn(v uint64) error           { return t.qualityIn.Set(v) }
func (t *TrustSet) SetQualityOut(v uint64) error          { return t.qualityOut.Set(v) }

// Validate enforces that the limit refers to a well-formed issued currency.
func (t *TrustSet) Validate() error {
	if err := t.validateStructural(); err != nil {
		return err
	}
	limit, ok := t.limitAmount.Get()
	if !ok {
		return &ValidationError{Field: "LimitAmount", Reason: "limit amount is required"}
	}
	if limit.Native() {
		return &ValidationError{Field: "LimitAmount", Reason: "trust lines cannot hold the native currency"}
	}
	if err := limit.Issuer().Validate(); err != nil {
		return &ValidationError{Field: "LimitAmount", Reason: fmt.Sprintf("malformed issuer: %v", err)}
	}
	account, _ := t.account.Get()
	if limit.Issuer() == account {
		return &ValidationError{Field: "LimitAmount", Reason: "cannot extend a trust line to the own account"}
	}
	return nil
}

func (t *TrustSet) encode(withSignature bool) map[string]interface{} {
	obj := map[string]interface{}{}
	t.CommonFields.encode(obj, withSignature)
	if limit, ok := t.limitAmount.Get(); ok {
		obj["LimitAmount"] = limit
	}
	if in, ok := t.qualityIn.Get(); ok {
		obj["QualityIn"] = in
	}
	if out, ok := t.qualityOut.Get(); ok {
		obj["QualityOut"] = out
	}
	return obj
}

func (t *TrustSet) JSON() ([]byte, error) {
	return json.Marshal(t.encode(true))
}

func (t *TrustSet) SigningPayload() ([]byte, error) {
	return json.Marshal(t.encode(false))
}

type trustSetJSON struct {
	LimitAmount json.RawMessage `json:"LimitAmount"`
	QualityIn   *uint64         `json:"QualityIn"`
	QualityOut  *uint64         `json:"QualityOut"`
}

func (t *TrustSet) decode(raw []byte) error {
	if err := t.CommonFields.decode(raw); err != nil {
		return err
	}
	parsed := trustSetJSON{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid trust set JSON: %w", err)
	}
	if len(parsed.LimitAmount) > 0 {
		limit := &amount.Amount{}
		if err := json.Unmarshal(parsed.LimitAmount, limit); err != nil {
			return &TypeValidationError{Field: "LimitAmount", Reason: err.Error()}
		}
		if err := t.limitAmount.Set(limit); err != nil {
			return err
		}
	}
	if parsed.QualityIn != nil {
		if err := t.qualityIn.Set(*parsed.QualityIn); err != nil {
			return err
		}
	}
	if parsed.QualityOut != nil {
		if err := t.qualityOut.Set(*parsed.QualityOut); err != nil {
			return err
		}
	}
	return nil
}
