package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTieredMultipliersTwoTiers(t *testing.T) {
	tiers, err := ParseTieredMultipliers("0-500:1.0,500+:1.5")
	require.NoError(t, err)
	require.Len(t, tiers, 2)

	assert.True(t, tiers[0].Min.Equal(d("0")))
	require.NotNil(t, tiers[0].Max)
	assert.True(t, tiers[0].Max.Equal(d("500")))
	assert.True(t, tiers[0].Multiplier.Equal(d("1.0")))

	assert.True(t, tiers[1].Min.Equal(d("500")))
	assert.Nil(t, tiers[1].Max)
	assert.True(t, tiers[1].Multiplier.Equal(d("1.5")))
}

func TestParseTieredMultipliersSortsByMin(t *testing.T) {
	tiers, err := ParseTieredMultipliers("2000+:2.0, 0-500:1.0 ,500-2000:1.5")
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.True(t, tiers[0].Min.Equal(d("0")))
	assert.True(t, tiers[1].Min.Equal(d("500")))
	assert.True(t, tiers[2].Min.Equal(d("2000")))
}

func TestParseTieredMultipliersEmpty(t *testing.T) {
	tiers, err := ParseTieredMultipliers("   ")
	require.NoError(t, err)
	assert.Empty(t, tiers)
}

func TestParseTieredMultipliersErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"missing multiplier", "0-500"},
		{"bad multiplier", "0-500:abc"},
		{"negative multiplier", "0-500:-1"},
		{"negative min", "-10-500:1.0"},
		{"max not above min", "500-500:1.0"},
		{"max below min", "500-100:1.0"},
		{"bad range", "xyz:1.0"},
		{"overlap", "0-600:1.0,500+:1.5"},
		{"open-ended not last", "0+:1.0,500-800:1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTieredMultipliers(tc.in)
			assert.Error(t, err, "input %q", tc.in)
		})
	}
}

func TestTierContains(t *testing.T) {
	tiers, err := ParseTieredMultipliers("100-500:1.2,500+:1.8")
	require.NoError(t, err)

	bounded, open := tiers[0], tiers[1]
	assert.False(t, bounded.Contains(d("99.99")))
	assert.True(t, bounded.Contains(d("100")))
	assert.False(t, bounded.Contains(d("500"))) // half-open range
	assert.True(t, open.Contains(d("500")))
	assert.True(t, open.Contains(d("1e9")))
}
