package tx

import (
	"encoding/json"
	"fmt"
)

// uniqueIDFields are checked in order when a fallback transaction is asked
// for its uniquely identifying field.
var uniqueIDFields = []string{"NFTokenID", "CheckID", "OfferSequence", "TicketSequence", "URI"}

// Fallback wraps a transaction type outside the client's catalogue. Only
// the structural common fields are exposed; type specific validation is
// skipped, and the raw fields stay available so nothing is lost on
// round-trip.
type Fallback struct {
	CommonFields
	raw      map[string]json.RawMessage
	typeName string
}

// NewFallback builds a fallback instance around raw transaction JSON.
func NewFallback(typeName string, raw []byte) (*Fallback, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid transaction JSON: %w", err)
	}
	f := &Fallback{
		CommonFields: newCommonFields(typeName),
		raw:          fields,
		typeName:     typeName,
	}
	if err := f.CommonFields.decode(raw); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fallback) TypeName() string      { return f.typeName }
func (f *Fallback) Kind() Kind            { return KindFallback }
func (f *Fallback) Common() *CommonFields { return &f.CommonFields }

// Validate checks structure only; the client does not know this type's
// business rules.
func (f *Fallback) Validate() error {
	return f.validateStructural()
}

// RawField returns the original JSON value of any field.
func (f *Fallback) RawField(name string) (json.RawMessage, bool) {
	value, ok := f.raw[name]
	return value, ok
}

// UniqueID returns the transaction's uniquely identifying field when one of
// the known identifier fields is present.
func (f *Fallback) UniqueID() (string, bool) {
	for _, name := range uniqueIDFields {
		raw, ok := f.raw[name]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, true
		}
		var number uint64
		if err := json.Unmarshal(raw, &number); err == nil {
			return fmt.Sprintf("%d", number), true
		}
	}
	return "", false
}

// JSON re-serializes the original fields untouched, with any mutated common
// fields applied on top.
func (f *Fallback) JSON() ([]byte, error) {
	return f.encodeRaw(true)
}

// SigningPayload serializes the raw fields without the signature.
func (f *Fallback) SigningPayload() ([]byte, error) {
	return f.encodeRaw(false)
}

func (f *Fallback) encodeRaw(withSignature bool) ([]byte, error) {
	obj := map[string]interface{}{}
	for name, value := range f.raw {
		obj[name] = value
	}
	common := map[string]interface{}{}
	f.CommonFields.encode(common, withSignature)
	for name, value := range common {
		obj[name] = value
	}
	if !withSignature {
		delete(obj, "TxnSignature")
	}
	return json.Marshal(obj)
}
