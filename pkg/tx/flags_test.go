package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldUnfoldRoundTrip(t *testing.T) {
	subsets := [][]string{
		{},
		{FlagPartialPayment},
		{FlagPartialPayment, FlagLimitQuality},
		{FlagNoDirectRipple, FlagPartialPayment, FlagLimitQuality},
		{FlagFullyCanonicalSig, FlagPartialPayment},
	}
	for _, subset := range subsets {
		mask, err := FoldFlags(TypePayment, subset, 0)
		require.NoError(t, err)
		names, extra := UnfoldFlags(TypePayment, mask)
		assert.Equal(t, uint32(0), extra)
		assert.ElementsMatch(t, subset, names)
	}
}

func TestFoldUnknownName(t *testing.T) {
	_, err := FoldFlags(TypePayment, []string{FlagSetFreeze}, 0)
	unknownErr := &UnknownFlagNameError{}
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, TypePayment, unknownErr.TypeName)
	assert.Equal(t, FlagSetFreeze, unknownErr.Name)

	// the same name is valid for the type that registers it
	_, err = FoldFlags(TypeTrustSet, []string{FlagSetFreeze}, 0)
	assert.NoError(t, err)
}

func TestUnknownBitsSurviveRoundTrip(t *testing.T) {
	// mask with one known flag and two bits no table names
	mask := uint32(0x00020000 | 0x00000800 | 0x01000000)
	names, extra := UnfoldFlags(TypePayment, mask)
	assert.Equal(t, []string{FlagPartialPayment}, names)
	assert.Equal(t, uint32(0x00000800|0x01000000), extra)

	refolded, err := FoldFlags(TypePayment, names, extra)
	require.NoError(t, err)
	assert.Equal(t, mask, refolded)
}

func TestFlagsField(t *testing.T) {
	field := NewFlagsField(TypePayment)
	assert.True(t, field.Empty())

	require.NoError(t, field.Enable(FlagPartialPayment))
	assert.True(t, field.Enabled(FlagPartialPayment))
	assert.Equal(t, uint32(0x00020000), field.Mask())

	typeErr := &TypeValidationError{}
	assert.ErrorAs(t, field.Enable("NoSuchFlag"), &typeErr)

	field.Disable(FlagPartialPayment)
	assert.False(t, field.Enabled(FlagPartialPayment))
	assert.True(t, field.Empty())

	field.SetMask(0x00020000 | 0x00000400)
	assert.True(t, field.Enabled(FlagPartialPayment))
	assert.Equal(t, uint32(0x00000400), field.ExtraBits())
	assert.Equal(t, uint32(0x00020000|0x00000400), field.Mask())
	assert.Equal(t, []string{FlagPartialPayment}, field.Names())
}
