// Package tx implements the ledger transaction model: typed field
// descriptors, the per-type flag registry and the polymorphic transaction
// hierarchy of genuine, pseudo and fallback instances.
package tx

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// Kind classifies how a transaction instance came to be.
type Kind int

const (
	// KindGenuine is user-authored and ledger-recorded; validation enforces
	// business rules beyond structural correctness.
	KindGenuine Kind = iota
	// KindPseudo is system-generated; validation is structural only.
	KindPseudo
	// KindFallback is any type not in the client's catalogue; only
	// structural fields are exposed.
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindGenuine:
		return "genuine"
	case KindPseudo:
		return "pseudo"
	case KindFallback:
		return "fallback"
	}
	return "unknown"
}

// Concrete type identifiers known to the catalogue.
const (
	TypePayment  = "Payment"
	TypeTrustSet = "TrustSet"
	TypeSetFee   = "SetFee"
)

// Transaction is the capability set shared by every concrete type.
type Transaction interface {
	TypeName() string
	Kind() Kind
	Common() *CommonFields
	// Validate runs the type's validation rules. Genuine types enforce
	// business rules and return *ValidationError; pseudo and fallback
	// types check structure only.
	Validate() error
	// JSON serializes the transaction to its ledger JSON shape.
	JSON() ([]byte, error)
	// SigningPayload serializes the transaction without its signature,
	// producing the bytes the signing capability operates on.
	SigningPayload() ([]byte, error)
}

// Decode builds a concrete transaction from ledger JSON. Types outside the
// catalogue decode to *Fallback rather than failing.
func Decode(raw []byte) (Transaction, error) {
	var peek struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return nil, fmt.Errorf("invalid transaction JSON: %w", err)
	}
	if peek.TransactionType == "" {
		return nil, fmt.Errorf("transaction JSON is missing TransactionType")
	}
	switch peek.TransactionType {
	case TypePayment:
		p := NewPayment()
		if err := p.decode(raw); err != nil {
			return nil, err
		}
		return p, nil
	case TypeTrustSet:
		ts := NewTrustSet()
		if err := ts.decode(raw); err != nil {
			return nil, err
		}
		return ts, nil
	case TypeSetFee:
		sf := NewSetFee()
		if err := sf.decode(raw); err != nil {
			return nil, err
		}
		return sf, nil
	default:
		return NewFallback(peek.TransactionType, raw)
	}
}

// Memo is opaque attached data, each part hex encoded.
type Memo struct {
	Type   string `json:"MemoType,omitempty"`
	Data   string `json:"MemoData,omitempty"`
	Format string `json:"MemoFormat,omitempty"`
}

type memoWrapper struct {
	Memo Memo `json:"Memo"`
}

// CommonFields carries the attributes every transaction shares. Concrete
// types embed it and extend the field set.
type CommonFields struct {
	typeName      string
	account       AccountField
	fee           UIntField
	sequence      UIntField
	lastLedgerSeq UIntField
	signingPubKey BlobField
	txnSignature  BlobField
	flags         FlagsField
	memos         []Memo
}

func newCommonFields(typeName string) CommonFields {
	return CommonFields{
		typeName:      typeName,
		account:       NewAccountField("Account"),
		fee:           NewUIntField("Fee", 64),
		sequence:      NewUIntField("Sequence", 32),
		lastLedgerSeq: NewUIntField("LastLedgerSequence", 32),
		signingPubKey: NewBlobField("SigningPubKey"),
		txnSignature:  NewBlobField("TxnSignature"),
		flags:         NewFlagsField(typeName),
	}
}

func (c *CommonFields) Account() *AccountField             { return &c.account }
func (c *CommonFields) SetAccount(v string) error          { return c.account.Set(codec.Address(v)) }
func (c *CommonFields) Fee() (uint64, bool)                { return c.fee.Get() }
func (c *CommonFields) SetFee(v uint64) error              { return c.fee.Set(v) }
func (c *CommonFields) Sequence() (uint64, bool)           { return c.sequence.Get() }
func (c *CommonFields) SetSequence(v uint64) error         { return c.sequence.Set(v) }
func (c *CommonFields) LastLedgerSequence() (uint64, bool) { return c.lastLedgerSeq.Get() }
func (c *CommonFields) SetLastLedgerSequence(v uint64) error {
	return c.lastLedgerSeq.Set(v)
}
func (c *CommonFields) SigningPubKey() *BlobField { return &c.signingPubKey }
func (c *CommonFields) TxnSignature() *BlobField  { return &c.txnSignature }
func (c *CommonFields) Flags() *FlagsField        { return &c.flags }
func (c *CommonFields) Memos() []Memo             { return c.memos }

// AddMemo attaches a memo. All parts must be valid hex when present.
func (c *CommonFields) AddMemo(memo Memo) error {
	for name, part := range map[string]string{"MemoType": memo.Type, "MemoData": memo.Data, "MemoFormat": memo.Format} {
		if part == "" {
			continue
		}
		field := NewBlobField(name)
		if err := field.Set(part); err != nil {
			return err
		}
	}
	c.memos = append(c.memos, memo)
	return nil
}

// Signed reports whether a signature has been attached.
func (c *CommonFields) Signed() bool {
	return c.txnSignature.IsSet()
}

// validateStructural checks the shared wire level requirements.
func (c *CommonFields) validateStructural() error {
	if !c.account.IsSet() {
		return &ValidationError{Field: "Account", Reason: "signing account is required"}
	}
	return nil
}

// encode writes the common fields into the wire object. withSignature
// controls whether the signature is included, which is how the signing
// payload differs from the full serialization.
func (c *CommonFields) encode(obj map[string]interface{}, withSignature bool) {
	obj["TransactionType"] = c.typeName
	if account, ok := c.account.Get(); ok {
		obj["Account"] = account.String()
	}
	if fee, ok := c.fee.Get(); ok {
		obj["Fee"] = codec.UInt64Str(fee)
	}
	if seq, ok := c.sequence.Get(); ok {
		obj["Sequence"] = seq
	}
	if lls, ok := c.lastLedgerSeq.Get(); ok {
		obj["LastLedgerSequence"] = lls
	}
	if !c.flags.Empty() {
		obj["Flags"] = c.flags.Mask()
	}
	if key, ok := c.signingPubKey.Get(); ok {
		obj["SigningPubKey"] = key
	}
	if withSignature {
		if sig, ok := c.txnSignature.Get(); ok {
			obj["TxnSignature"] = sig
		}
	}
	if len(c.memos) > 0 {
		wrapped := make([]memoWrapper, len(c.memos))
		for i, memo := range c.memos {
			wrapped[i] = memoWrapper{Memo: memo}
		}
		obj["Memos"] = wrapped
	}
}

type commonJSON struct {
	Account            string           `json:"Account"`
	Fee                *codec.UInt64Str `json:"Fee"`
	Sequence           *uint64          `json:"Sequence"`
	LastLedgerSequence *uint64          `json:"LastLedgerSequence"`
	Flags              *uint32          `json:"Flags"`
	SigningPubKey      string           `json:"SigningPubKey"`
	TxnSignature       string           `json:"TxnSignature"`
	Memos              []memoWrapper    `json:"Memos"`
}

func (c *CommonFields) decode(raw []byte) error {
	parsed := commonJSON{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid transaction JSON: %w", err)
	}
	if parsed.Account != "" {
		if err := c.SetAccount(parsed.Account); err != nil {
			return err
		}
	}
	if parsed.Fee != nil {
		if err := c.fee.Set(uint64(*parsed.Fee)); err != nil {
			return err
		}
	}
	if parsed.Sequence != nil {
		if err := c.sequence.Set(*parsed.Sequence); err != nil {
			return err
		}
	}
	if parsed.LastLedgerSequence != nil {
		if err := c.lastLedgerSeq.Set(*parsed.LastLedgerSequence); err != nil {
			return err
		}
	}
	if parsed.Flags != nil {
		c.flags.SetMask(*parsed.Flags)
	}
	if parsed.SigningPubKey != "" {
		if err := c.signingPubKey.Set(parsed.SigningPubKey); err != nil {
			return err
		}
	}
	if parsed.TxnSignature != "" {
		if err := c.txnSignature.Set(parsed.TxnSignature); err != nil {
			return err
		}
	}
	for _, wrapped := range parsed.Memos {
		if err := c.AddMemo(wrapped.Memo); err != nil {
			return err
		}
	}
	return nil
}
