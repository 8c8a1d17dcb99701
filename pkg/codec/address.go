package codec

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// addressAlphabet is the base58 dictionary used for ledger account addresses.
var addressAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	// AccountIDLength is the size of the hashed public key an address encodes.
	AccountIDLength = 20

	addressVersion  = 0x00
	checksumLength  = 4
	minAddressChars = 25
	maxAddressChars = 35
)

var (
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

// Address is a base58-check encoded account identifier.
type Address string

// NewAddress encodes a 20 byte account ID into its address representation.
func NewAddress(accountID []byte) (Address, error) {
	if len(accountID) != AccountIDLength {
		return "", fmt.Errorf("account ID must be size of %d but received %d", AccountIDLength, len(accountID))
	}
	payload := make([]byte, 0, 1+AccountIDLength+checksumLength)
	payload = append(payload, addressVersion)
	payload = append(payload, accountID...)
	payload = append(payload, checksum(payload)...)
	return Address(base58.FastBase58EncodingAlphabet(payload, addressAlphabet)), nil
}

// AccountID decodes the address back to the raw account ID.
func (a Address) AccountID() (Hex, error) {
	decoded, err := a.decode()
	if err != nil {
		return nil, err
	}
	return Hex(decoded[1 : 1+AccountIDLength]), nil
}

// Validate checks length, dictionary, version and checksum.
func (a Address) Validate() error {
	_, err := a.decode()
	return err
}

func (a Address) String() string { return string(a) }

// Empty reports whether the address is unset.
func (a Address) Empty() bool { return a == "" }

func (a Address) decode() ([]byte, error) {
	if len(a) < minAddressChars || len(a) > maxAddressChars {
		return nil, fmt.Errorf("address must be between %d and %d characters but received %d", minAddressChars, maxAddressChars, len(a))
	}
	decoded, err := base58.FastBase58DecodingAlphabet(string(a), addressAlphabet)
	if err != nil {
		return nil, fmt.Errorf("invalid address encoding: %w", err)
	}
	if len(decoded) != 1+AccountIDLength+checksumLength {
		return nil, fmt.Errorf("address must decode to %d bytes but received %d", 1+AccountIDLength+checksumLength, len(decoded))
	}
	if decoded[0] != addressVersion {
		return nil, fmt.Errorf("address version must be %d but received %d", addressVersion, decoded[0])
	}
	body := decoded[:1+AccountIDLength]
	if !bytes.Equal(checksum(body), decoded[1+AccountIDLength:]) {
		return nil, ErrInvalidChecksum
	}
	return decoded, nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
