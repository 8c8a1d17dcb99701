// Package amount normalizes ledger amounts between user facing decimal
// strings, the wire decimal representation and the reserved NFT ordinal
// encoding, and derives partial payment requirements from issuer transfer
// rates.
package amount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotNFTEncoded is returned when decoding an ordinal from a value
	// outside the reserved range.
	ErrNotNFTEncoded = errors.New("value is not NFT-encoded")
)

// Truncation marks how a display value differs from the stored value.
type Truncation int

const (
	TruncationNone Truncation = iota
	// TruncationLow means the value is below the displayable minimum and
	// shown as the ellipsis marker.
	TruncationLow
	// TruncationHigh means the value is above the displayable maximum and
	// shown rounded to an integer magnitude.
	TruncationHigh
)

// Display is the display-ready decoding of a wire value. Exact always
// carries the unmodified wire string so the original is recoverable
// regardless of truncation.
type Display struct {
	Text       string
	Truncation Truncation
	NFT        bool
	Ordinal    uint32
	Exact      string
}

// CodecConfig holds the tunable boundaries of the codec. The reserved
// range separating NFT ordinals from ordinary quantities is convention
// defined, so both exponents are configuration rather than constants.
type CodecConfig struct {
	// NFTExponent shifts an ordinal n to its wire value n * 10^NFTExponent.
	NFTExponent int32 `json:"nftExponent" yaml:"nftExponent"`
	// NFTThresholdExponent is the reserved range boundary. Any nonzero wire
	// value strictly below 10^NFTThresholdExponent is NFT-encoded.
	NFTThresholdExponent int32 `json:"nftThresholdExponent" yaml:"nftThresholdExponent"`
	// MinDisplay is the smallest value rendered as digits. Smaller nonzero
	// values render as the ellipsis marker.
	MinDisplay string `json:"minDisplay" yaml:"minDisplay"`
	// MaxDisplay is the largest value rendered with fractional digits.
	MaxDisplay string `json:"maxDisplay" yaml:"maxDisplay"`
	// DisplayDigits is the number of significant digits kept for display.
	DisplayDigits int32 `json:"displayDigits" yaml:"displayDigits"`
}

func (c *CodecConfig) SetDefault() {
	if c.NFTExponent == 0 {
		c.NFTExponent = -81
	}
	if c.NFTThresholdExponent == 0 {
		c.NFTThresholdExponent = -70
	}
	if c.MinDisplay == "" {
		c.MinDisplay = "0.00000001"
	}
	if c.MaxDisplay == "" {
		c.MaxDisplay = "99999"
	}
	if c.DisplayDigits == 0 {
		c.DisplayDigits = 8
	}
}

// Codec converts between display, wire and NFT ordinal representations.
// A codec is immutable after creation and safe for concurrent use.
type Codec struct {
	nftExponent  int32
	nftThreshold decimal.Decimal
	minDisplay   decimal.Decimal
	maxDisplay   decimal.Decimal
	digits       int32
	maxOrdinal   decimal.Decimal
}

// NewCodec creates a codec from cfg, filling zero values with defaults.
func NewCodec(cfg *CodecConfig) (*Codec, error) {
	config := cfg
	if config == nil {
		config = &CodecConfig{}
	}
	config.SetDefault()
	if config.NFTExponent >= config.NFTThresholdExponent {
		return nil, fmt.Errorf("NFT exponent %d must be below the threshold exponent %d", config.NFTExponent, config.NFTThresholdExponent)
	}
	minDisplay, err := decimal.NewFromString(config.MinDisplay)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum display value %q: %w", config.MinDisplay, err)
	}
	maxDisplay, err := decimal.NewFromString(config.MaxDisplay)
	if err != nil {
		return nil, fmt.Errorf("invalid maximum display value %q: %w", config.MaxDisplay, err)
	}
	// ordinals are uint32; the reserved range may admit larger integers,
	// so the ordinal bound is the tighter of the two
	maxOrdinal := decimal.New(1, config.NFTThresholdExponent-config.NFTExponent)
	ordinalCap := decimal.NewFromInt(1 << 32)
	if maxOrdinal.Cmp(ordinalCap) > 0 {
		maxOrdinal = ordinalCap
	}
	return &Codec{
		nftExponent:  config.NFTExponent,
		nftThreshold: decimal.New(1, config.NFTThresholdExponent),
		minDisplay:   minDisplay,
		maxDisplay:   maxDisplay,
		digits:       config.DisplayDigits,
		maxOrdinal:   maxOrdinal,
	}, nil
}

// DefaultCodec returns a codec with all defaults. It never fails.
func DefaultCodec() *Codec {
	c, err := NewCodec(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// ToWire converts a value to its wire representation. When isNFT is set the
// value must be a positive integer ordinal inside the supported range and is
// shifted into the reserved range; otherwise the value must be a valid
// non-negative decimal and passes through unchanged.
func (c *Codec) ToWire(value string, isNFT bool) (string, error) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return "", fmt.Errorf("invalid decimal value %q: %w", value, err)
	}
	if parsed.IsNegative() {
		return "", fmt.Errorf("value %q must not be negative", value)
	}
	if !isNFT {
		return value, nil
	}
	if parsed.IsZero() {
		return "", errors.New("zero is never NFT-encoded")
	}
	if !parsed.IsInteger() {
		return "", fmt.Errorf("NFT ordinal %q must be an integer", value)
	}
	if parsed.Cmp(c.maxOrdinal) >= 0 {
		return "", fmt.Errorf("NFT ordinal %q exceeds the supported range", value)
	}
	return parsed.Shift(c.nftExponent).String(), nil
}

// IsNFTEncoded reports whether a wire value lies in the reserved NFT range.
func (c *Codec) IsNFTEncoded(wire string) bool {
	parsed, err := decimal.NewFromString(wire)
	if err != nil {
		return false
	}
	return c.inReservedRange(parsed)
}

func (c *Codec) inReservedRange(v decimal.Decimal) bool {
	return v.IsPositive() && v.Cmp(c.nftThreshold) < 0
}

// Ordinal decodes the NFT ordinal carried by a wire value in the reserved
// range.
func (c *Codec) Ordinal(wire string) (uint32, error) {
	parsed, err := decimal.NewFromString(wire)
	if err != nil {
		return 0, fmt.Errorf("invalid wire value %q: %w", wire, err)
	}
	if !c.inReservedRange(parsed) {
		return 0, ErrNotNFTEncoded
	}
	ordinal := parsed.Shift(-c.nftExponent)
	if !ordinal.IsInteger() {
		return 0, fmt.Errorf("malformed NFT-encoded value %q", wire)
	}
	if ordinal.Cmp(c.maxOrdinal) >= 0 {
		return 0, fmt.Errorf("NFT-encoded value %q exceeds the ordinal range", wire)
	}
	return uint32(ordinal.IntPart()), nil
}

// FromWire decodes a wire value for display. The stored value is never
// mutated: Display.Exact carries the input verbatim.
func (c *Codec) FromWire(wire string) (*Display, error) {
	parsed, err := decimal.NewFromString(wire)
	if err != nil {
		return nil, fmt.Errorf("invalid wire value %q: %w", wire, err)
	}
	if parsed.IsNegative() {
		return nil, fmt.Errorf("wire value %q must not be negative", wire)
	}
	display := &Display{Exact: wire}
	if parsed.IsZero() {
		display.Text = "0"
		return display, nil
	}
	if c.inReservedRange(parsed) {
		ordinal, err := c.Ordinal(wire)
		if err != nil {
			return nil, err
		}
		display.NFT = true
		display.Ordinal = ordinal
		display.Text = fmt.Sprintf("#%d", ordinal)
		return display, nil
	}
	if parsed.Cmp(c.minDisplay) < 0 {
		display.Text = "0…"
		display.Truncation = TruncationLow
		return display, nil
	}
	if parsed.Cmp(c.maxDisplay) > 0 {
		display.Text = parsed.Round(0).String()
		display.Truncation = TruncationHigh
		return display, nil
	}
	display.Text = roundSignificant(parsed, c.digits).String()
	return display, nil
}

// roundSignificant keeps at most digits significant decimal digits without
// ever widening the value.
func roundSignificant(v decimal.Decimal, digits int32) decimal.Decimal {
	if v.IsZero() {
		return v
	}
	integerDigits := int32(v.NumDigits()) + v.Exponent()
	if integerDigits < 0 {
		integerDigits = 0
	}
	places := digits - integerDigits
	if places < 0 {
		places = 0
	}
	return v.Round(places)
}
