package tx

import (
	"fmt"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// Field descriptors define how one named attribute of a transaction is
// stored and validated. A descriptor owns its storage slot, enforces its
// wire constraint on Set and never fails on Clear. Descriptors perform no
// I/O.

// BlobField stores an opaque hex encoded value.
type BlobField struct {
	name  string
	value codec.Hex
	set   bool
}

// NewBlobField declares a blob field with the given wire name.
func NewBlobField(name string) BlobField {
	return BlobField{name: name}
}

// Set stores a hex string. The value must consist of an even number of
// hexadecimal characters, case-insensitive.
func (f *BlobField) Set(value string) error {
	decoded, err := codec.ParseHex(value)
	if err != nil {
		return &TypeValidationError{Field: f.name, Reason: err.Error()}
	}
	f.value = decoded
	f.set = true
	return nil
}

// Clear unsets the field. Clearing never fails.
func (f *BlobField) Clear() {
	f.value = nil
	f.set = false
}

// Get returns the stored hex string and whether the field is set.
func (f *BlobField) Get() (string, bool) {
	if !f.set {
		return "", false
	}
	return f.value.String(), true
}

// Bytes returns the raw stored bytes.
func (f *BlobField) Bytes() codec.Hex { return f.value }
func (f *BlobField) IsSet() bool      { return f.set }
func (f *BlobField) Name() string     { return f.name }

// UIntField stores an unsigned integer attribute.
type UIntField struct {
	name  string
	value uint64
	max   uint64
	set   bool
}

// NewUIntField declares an unsigned integer field capped at max bits.
func NewUIntField(name string, bits int) UIntField {
	max := uint64(1)<<bits - 1
	if bits >= 64 {
		max = ^uint64(0)
	}
	return UIntField{name: name, max: max}
}

func (f *UIntField) Set(value uint64) error {
	if value > f.max {
		return &TypeValidationError{Field: f.name, Reason: fmt.Sprintf("value %d exceeds maximum %d", value, f.max)}
	}
	f.value = value
	f.set = true
	return nil
}

func (f *UIntField) Clear() {
	f.value = 0
	f.set = false
}

func (f *UIntField) Get() (uint64, bool) {
	if !f.set {
		return 0, false
	}
	return f.value, true
}

func (f *UIntField) IsSet() bool  { return f.set }
func (f *UIntField) Name() string { return f.name }

// AccountField stores a ledger account address.
type AccountField struct {
	name  string
	value codec.Address
	set   bool
}

// NewAccountField declares an address field with the given wire name.
func NewAccountField(name string) AccountField {
	return AccountField{name: name}
}

func (f *AccountField) Set(value codec.Address) error {
	if err := value.Validate(); err != nil {
		return &TypeValidationError{Field: f.name, Reason: err.Error()}
	}
	f.value = value
	f.set = true
	return nil
}

func (f *AccountField) Clear() {
	f.value = ""
	f.set = false
}

func (f *AccountField) Get() (codec.Address, bool) {
	if !f.set {
		return "", false
	}
	return f.value, true
}

func (f *AccountField) IsSet() bool  { return f.set }
func (f *AccountField) Name() string { return f.name }

// AmountField stores an amount value, validated by the amount package's
// constructors before it ever reaches the field.
type AmountField struct {
	name  string
	value *amount.Amount
}

// NewAmountField declares an amount field with the given wire name.
func NewAmountField(name string) AmountField {
	return AmountField{name: name}
}

func (f *AmountField) Set(value *amount.Amount) error {
	if value == nil {
		return &TypeValidationError{Field: f.name, Reason: "amount must not be nil, use Clear to unset"}
	}
	f.value = value
	return nil
}

func (f *AmountField) Clear() {
	f.value = nil
}

func (f *AmountField) Get() (*amount.Amount, bool) {
	if f.value == nil {
		return nil, false
	}
	return f.value, true
}

func (f *AmountField) IsSet() bool  { return f.value != nil }
func (f *AmountField) Name() string { return f.name }
