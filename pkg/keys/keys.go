// Package keys provides the signing capability for the transaction
// lifecycle. It supports ed25519 keys derived from a BIP-39 passphrase and
// the ledger's transaction hashing scheme.
package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	ed "golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ledger account IDs are defined over ripemd160

	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// txHashPrefix namespaces transaction hashes from other hashed artifacts.
var txHashPrefix = []byte{0x54, 0x58, 0x4e, 0x00} // "TXN\0"

// edKeyPrefix marks an ed25519 public key on the wire.
const edKeyPrefix = 0xed

// Signer is the opaque signing capability consumed by the lifecycle
// controller. Key material stays behind this interface.
type Signer interface {
	Sign(payload []byte) (codec.Hex, error)
	PublicKey() codec.Hex
}

// SigningError means the signer declined or key material was unavailable.
// No network side effect has occurred when it is returned.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// KeyPair is an in-memory ed25519 signer.
type KeyPair struct {
	privateKey ed.PrivateKey
	publicKey  ed.PublicKey
}

// FromPassphrase derives a keypair from a BIP-39 passphrase.
func FromPassphrase(passphrase string) (*KeyPair, error) {
	if !bip39.IsMnemonicValid(passphrase) {
		return nil, &SigningError{Err: errors.New("invalid passphrase")}
	}
	seed := bip39.NewSeed(passphrase, "")
	digest := sha256.Sum256(seed)
	privateKey := ed.NewKeyFromSeed(digest[:])
	return &KeyPair{
		privateKey: privateKey,
		publicKey:  privateKey.Public().(ed.PublicKey),
	}, nil
}

// RandomKeyPair generates a keypair from fresh entropy, mainly for tests.
func RandomKeyPair() (*KeyPair, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	passphrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	return FromPassphrase(passphrase)
}

// Sign produces an ed25519 signature over the payload.
func (k *KeyPair) Sign(payload []byte) (codec.Hex, error) {
	if len(k.privateKey) != ed.PrivateKeySize {
		return nil, &SigningError{Err: errors.New("key material unavailable")}
	}
	return ed.Sign(k.privateKey, payload), nil
}

// PublicKey returns the prefixed wire form of the public key.
func (k *KeyPair) PublicKey() codec.Hex {
	prefixed := make([]byte, 0, len(k.publicKey)+1)
	prefixed = append(prefixed, edKeyPrefix)
	prefixed = append(prefixed, k.publicKey...)
	return prefixed
}

// Address derives the account address for the keypair: ripemd160 over
// sha256 of the prefixed public key, base58-check encoded.
func (k *KeyPair) Address() (codec.Address, error) {
	inner := sha256.Sum256(k.PublicKey())
	hasher := ripemd160.New()
	hasher.Write(inner[:])
	return codec.NewAddress(hasher.Sum(nil))
}

// Hash is the ledger's sha512-half digest.
func Hash(data []byte) codec.Hex {
	digest := sha512.Sum512(data)
	return digest[:sha512.Size/2]
}

// TxHash computes the ledger transaction hash of a signed serialized blob.
func TxHash(signedBlob []byte) codec.Hex {
	prefixed := make([]byte, 0, len(txHashPrefix)+len(signedBlob))
	prefixed = append(prefixed, txHashPrefix...)
	prefixed = append(prefixed, signedBlob...)
	return Hash(prefixed)
}

// Verify checks an ed25519 signature against a prefixed wire public key.
func Verify(publicKey codec.Hex, payload, signature []byte) bool {
	if len(publicKey) != ed.PublicKeySize+1 || publicKey[0] != edKeyPrefix {
		return false
	}
	return ed.Verify(ed.PublicKey(publicKey[1:]), payload, signature)
}
