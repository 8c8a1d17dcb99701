// Package codec implements the wire value primitives shared by the
// transaction model: hex encoded blobs, string encoded unsigned integers
// and base58-check ledger addresses.
package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hex is a byte slice which marshals to and from a hex string.
type Hex []byte

// ParseHex decodes a hex string. The string must have an even number of
// hexadecimal characters, case-insensitive.
func ParseHex(str string) (Hex, error) {
	if len(str)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length but received %d", len(str))
	}
	res, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return res, nil
}

// ValidHexString reports whether str is a valid even-length hex string.
func ValidHexString(str string) bool {
	_, err := ParseHex(str)
	return err == nil
}

func (h Hex) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hex) UnmarshalJSON(b []byte) error {
	str := ""
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	res, err := ParseHex(str)
	if err != nil {
		return err
	}
	*h = res
	return nil
}
