package tx

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// Payment is a genuine transaction moving a native, issued or NFT-encoded
// amount from Account to Destination.
type Payment struct {
	CommonFields
	destination    AccountField
	destinationTag UIntField
	amount         AmountField
	sendMax        AmountField
	transferRate   amount.TransferRate
	codec          *amount.Codec
}

// NewPayment creates an empty payment draft using the default amount codec.
func NewPayment() *Payment {
	return NewPaymentWithCodec(amount.DefaultCodec())
}

// NewPaymentWithCodec creates an empty payment draft with a custom codec,
// used when the reserved NFT range boundary is configured.
func NewPaymentWithCodec(c *amount.Codec) *Payment {
	return &Payment{
		CommonFields:   newCommonFields(TypePayment),
		destination:    NewAccountField("Destination"),
		destinationTag: NewUIntField("DestinationTag", 32),
		amount:         NewAmountField("Amount"),
		sendMax:        NewAmountField("SendMax"),
		codec:          c,
	}
}

func (p *Payment) TypeName() string      { return TypePayment }
func (p *Payment) Kind() Kind            { return KindGenuine }
func (p *Payment) Common() *CommonFields { return &p.CommonFields }

func (p *Payment) Destination() (codec.Address, bool) { return p.destination.Get() }
func (p *Payment) SetDestination(v string) error      { return p.destination.Set(codec.Address(v)) }
func (p *Payment) DestinationTag() (uint64, bool)     { return p.destinationTag.Get() }
func (p *Payment) SetDestinationTag(v uint64) error   { return p.destinationTag.Set(v) }
func (p *Payment) ClearDestinationTag()               { p.destinationTag.Clear() }

func (p *Payment) Amount() (*amount.Amount, bool)    { return p.amount.Get() }
func (p *Payment) SetAmount(v *amount.Amount) error  { return p.amount.Set(v) }
func (p *Payment) SendMax() (*amount.Amount, bool)   { return p.sendMax.Get() }
func (p *Payment) SetSendMax(v *amount.Amount) error { return p.sendMax.Set(v) }

// TransferRate returns the issuer transfer rate attached to this draft.
func (p *Payment) TransferRate() amount.TransferRate { return p.transferRate }

// SetTransferRate attaches the issuer's configured transfer rate. Zero
// means the issuer charges none.
func (p *Payment) SetTransferRate(rate amount.TransferRate) {
	p.transferRate = rate
}

// Validate enforces the payment business rules and applies the partial
// payment flag when the transfer rate or self issuance requires it. All
// failures are local; no network side effect has occurred.
func (p *Payment) Validate() error {
	if err := p.validateStructural(); err != nil {
		return err
	}
	destination, ok := p.destination.Get()
	if !ok {
		return &ValidationError{Field: "Destination", Reason: "destination is required"}
	}
	account, _ := p.account.Get()
	if destination == account {
		return &ValidationError{Field: "Destination", Reason: "destination must differ from the sending account"}
	}
	amt, ok := p.amount.Get()
	if !ok {
		return &ValidationError{Field: "Amount", Reason: "amount is required"}
	}
	if !amt.Positive() {
		return &ValidationError{Field: "Amount", Reason: "amount must be positive"}
	}
	if !amt.Native() {
		if !amount.ValidCurrency(amt.Currency()) {
			return &ValidationError{Field: "Amount", Reason: fmt.Sprintf("malformed currency code %q", amt.Currency())}
		}
		if err := amt.Issuer().Validate(); err != nil {
			return &ValidationError{Field: "Amount", Reason: fmt.Sprintf("malformed issuer: %v", err)}
		}
		if amount.RequiresPartialPayment(p.transferRate, account, amt.Issuer()) {
			if err := p.flags.Enable(FlagPartialPayment); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Payment) encode(withSignature bool) map[string]interface{} {
	obj := map[string]interface{}{}
	p.CommonFields.encode(obj, withSignature)
	if destination, ok := p.destination.Get(); ok {
		obj["Destination"] = destination.String()
	}
	if tag, ok := p.destinationTag.Get(); ok {
		obj["DestinationTag"] = tag
	}
	if amt, ok := p.amount.Get(); ok {
		obj["Amount"] = amt
	}
	if sendMax, ok := p.sendMax.Get(); ok {
		obj["SendMax"] = sendMax
	}
	return obj
}

// JSON serializes the payment to its ledger wire shape.
func (p *Payment) JSON() ([]byte, error) {
	return json.Marshal(p.encode(true))
}

// SigningPayload serializes the payment without its signature.
func (p *Payment) SigningPayload() ([]byte, error) {
	return json.Marshal(p.encode(false))
}

type paymentJSON struct {
	Destination    string          `json:"Destination"`
	DestinationTag *uint64         `json:"DestinationTag"`
	Amount         json.RawMessage `json:"Amount"`
	SendMax        json.RawMessage `json:"SendMax"`
}

func (p *Payment) decode(raw []byte) error {
	if err := p.CommonFields.decode(raw); err != nil {
		return err
	}
	parsed := paymentJSON{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid payment JSON: %w", err)
	}
	if parsed.Destination != "" {
		if err := p.SetDestination(parsed.Destination); err != nil {
			return err
		}
	}
	if parsed.DestinationTag != nil {
		if err := p.SetDestinationTag(*parsed.DestinationTag); err != nil {
			return err
		}
	}
	if len(parsed.Amount) > 0 {
		amt, err := p.decodeAmount("Amount", parsed.Amount)
		if err != nil {
			return err
		}
		if err := p.amount.Set(amt); err != nil {
			return err
		}
	}
	if len(parsed.SendMax) > 0 {
		amt, err := p.decodeAmount("SendMax", parsed.SendMax)
		if err != nil {
			return err
		}
		if err := p.sendMax.Set(amt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Payment) decodeAmount(field string, raw json.RawMessage) (*amount.Amount, error) {
	amt := &amount.Amount{}
	if err := json.Unmarshal(raw, amt); err != nil {
		return nil, &TypeValidationError{Field: field, Reason: err.Error()}
	}
	if err := amt.Normalize(p.codec); err != nil {
		return nil, &TypeValidationError{Field: field, Reason: err.Error()}
	}
	return amt, nil
}
