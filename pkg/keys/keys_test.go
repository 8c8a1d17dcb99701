package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

func TestFromPassphrase(t *testing.T) {
	entropy, err := bip39.NewEntropy(256)
	require.NoError(t, err)
	passphrase, err := bip39.NewMnemonic(entropy)
	require.NoError(t, err)

	pair, err := FromPassphrase(passphrase)
	require.NoError(t, err)

	// derivation is deterministic
	again, err := FromPassphrase(passphrase)
	require.NoError(t, err)
	assert.Equal(t, pair.PublicKey(), again.PublicKey())

	_, err = FromPassphrase("definitely not a passphrase")
	signingErr := &SigningError{}
	assert.ErrorAs(t, err, &signingErr)
}

func TestSignAndVerify(t *testing.T) {
	pair, err := RandomKeyPair()
	require.NoError(t, err)

	payload := []byte(`{"TransactionType":"Payment"}`)
	signature, err := pair.Sign(payload)
	require.NoError(t, err)
	assert.Len(t, signature, 64)

	assert.True(t, Verify(pair.PublicKey(), payload, signature))
	assert.False(t, Verify(pair.PublicKey(), []byte("tampered"), signature))

	other, err := RandomKeyPair()
	require.NoError(t, err)
	assert.False(t, Verify(other.PublicKey(), payload, signature))
	assert.False(t, Verify(nil, payload, signature))
}

func TestPublicKeyPrefix(t *testing.T) {
	pair, err := RandomKeyPair()
	require.NoError(t, err)
	publicKey := pair.PublicKey()
	assert.Len(t, publicKey, 33)
	assert.Equal(t, byte(0xed), publicKey[0])
}

func TestAddressDerivation(t *testing.T) {
	pair, err := RandomKeyPair()
	require.NoError(t, err)
	address, err := pair.Address()
	require.NoError(t, err)
	assert.NoError(t, address.Validate())

	// same key, same address
	again, err := pair.Address()
	require.NoError(t, err)
	assert.Equal(t, address, again)
}

func TestTxHash(t *testing.T) {
	blob := []byte(`{"TransactionType":"Payment","Fee":"12"}`)
	hash := TxHash(blob)
	assert.Len(t, hash, 32)
	assert.Equal(t, hash, TxHash(blob))
	assert.NotEqual(t, hash, TxHash([]byte("other")))
	// the prefix separates transaction hashes from plain digests
	assert.NotEqual(t, hash, Hash(blob))
}
