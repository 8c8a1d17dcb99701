package tx

import (
	"encoding/json"
	"fmt"
)

// SetFee is a pseudo transaction: system generated by validators to adjust
// the network fee schedule. It carries no signing account requirements and
// its validation is structural only.
type SetFee struct {
	CommonFields
	baseFee           BlobField
	referenceFeeUnits UIntField
	reserveBase       UIntField
	reserveIncrement  UIntField
}

// NewSetFee creates an empty fee schedule pseudo transaction.
func NewSetFee() *SetFee {
	return &SetFee{
		CommonFields:      newCommonFields(TypeSetFee),
		baseFee:           NewBlobField("BaseFee"),
		referenceFeeUnits: NewUIntField("ReferenceFeeUnits", 32),
		reserveBase:       NewUIntField("ReserveBase", 32),
		reserveIncrement:  NewUIntField("ReserveIncrement", 32),
	}
}

func (s *SetFee) TypeName() string      { return TypeSetFee }
func (s *SetFee) Kind() Kind            { return KindPseudo }
func (s *SetFee) Common() *CommonFields { return &s.CommonFields }

func (s *SetFee) BaseFee() (string, bool)             { return s.baseFee.Get() }
func (s *SetFee) SetBaseFee(v string) error           { return s.baseFee.Set(v) }
func (s *SetFee) SetReferenceFeeUnits(v uint64) error { return s.referenceFeeUnits.Set(v) }
func (s *SetFee) SetReserveBase(v uint64) error       { return s.reserveBase.Set(v) }
func (s *SetFee) SetReserveIncrement(v uint64) error  { return s.reserveIncrement.Set(v) }

// Validate is structural only: pseudo transactions have no authoring
// account and no business rules on the client side.
func (s *SetFee) Validate() error {
	if !s.baseFee.IsSet() {
		return &ValidationError{Field: "BaseFee", Reason: "base fee is required"}
	}
	return nil
}

func (s *SetFee) encode(withSignature bool) map[string]interface{} {
	obj := map[string]interface{}{}
	s.CommonFields.encode(obj, withSignature)
	if baseFee, ok := s.baseFee.Get(); ok {
		obj["BaseFee"] = baseFee
	}
	if units, ok := s.referenceFeeUnits.Get(); ok {
		obj["ReferenceFeeUnits"] = units
	}
	if base, ok := s.reserveBase.Get(); ok {
		obj["ReserveBase"] = base
	}
	if inc, ok := s.reserveIncrement.Get(); ok {
		obj["ReserveIncrement"] = inc
	}
	return obj
}

func (s *SetFee) JSON() ([]byte, error) {
	return json.Marshal(s.encode(true))
}

func (s *SetFee) SigningPayload() ([]byte, error) {
	return json.Marshal(s.encode(false))
}

type setFeeJSON struct {
	BaseFee           string  `json:"BaseFee"`
	ReferenceFeeUnits *uint64 `json:"ReferenceFeeUnits"`
	ReserveBase       *uint64 `json:"ReserveBase"`
	ReserveIncrement  *uint64 `json:"ReserveIncrement"`
}

func (s *SetFee) decode(raw []byte) error {
	if err := s.CommonFields.decode(raw); err != nil {
		return err
	}
	parsed := setFeeJSON{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid set fee JSON: %w", err)
	}
	if parsed.BaseFee != "" {
		if err := s.baseFee.Set(parsed.BaseFee); err != nil {
			return err
		}
	}
	if parsed.ReferenceFeeUnits != nil {
		if err := s.referenceFeeUnits.Set(*parsed.ReferenceFeeUnits); err != nil {
			return err
		}
	}
	if parsed.ReserveBase != nil {
		if err := s.reserveBase.Set(*parsed.ReserveBase); err != nil {
			return err
		}
	}
	if parsed.ReserveIncrement != nil {
		if err := s.reserveIncrement.Set(*parsed.ReserveIncrement); err != nil {
			return err
		}
	}
	return nil
}
