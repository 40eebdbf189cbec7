package config

import (
	"strings"
	"testing"

	"github.com/GoPolymarket/polycopy/internal/sizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Chain: ChainConfig{
			RPCURL:       "https://polygon-rpc.com",
			USDCContract: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		},
		Account: AccountConfig{
			ProxyWallet: "0x56687bf447db6ffa42ffe2204a05edaa20f55839",
			PrivateKey:  strings.Repeat("ab", 32),
		},
		Tracked: TrackedConfig{
			Wallets: []string{"0x7C3Db723F1D4d8cb9C550095203b686cB11E5C6B"},
		},
		Copy: CopyConfig{
			Strategy:        "PERCENTAGE",
			CopySize:        10,
			MaxOrderSizeUSD: 100,
			MinOrderSizeUSD: 1,
		},
		Feed: FeedConfig{
			ReconnectBaseDelaySecs: 5,
			MaxReconnectAttempts:   10,
			ChannelCapacity:        100,
			DedupCapacity:          1000,
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadTrackedAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Tracked.Wallets = []string{"not-an-address"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyTracked(t *testing.T) {
	cfg := validConfig()
	cfg.Tracked.Wallets = nil
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMinAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.MinOrderSizeUSD = 200
	cfg.Copy.MaxOrderSizeUSD = 100
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTiers(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.TieredMultipliers = "0-600:1.0,500+:1.5"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.Strategy = "MARTINGALE"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsAdaptiveWithoutThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.Strategy = "ADAPTIVE"
	cfg.Copy.AdaptiveThreshold = 0
	assert.Error(t, cfg.Validate())
}

func TestSizingConfigOptionalFields(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.MaxPositionSizeUSD = 500
	cfg.Copy.TradeMultiplier = 1 // unity multiplier is dropped
	cfg.Copy.TieredMultipliers = "0-500:1.0,500+:1.5"

	sc, err := cfg.SizingConfig()
	require.NoError(t, err)

	assert.Equal(t, sizing.StrategyPercentage, sc.Strategy)
	require.NotNil(t, sc.MaxPositionSizeUSD)
	assert.Nil(t, sc.MaxDailyVolumeUSD)
	assert.Nil(t, sc.TradeMultiplier)
	assert.Len(t, sc.Tiers, 2)
}

func TestSizingConfigAdaptiveDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Copy.Strategy = "ADAPTIVE"
	cfg.Copy.AdaptiveThreshold = 500
	// min/max percent unset: both default to copy size

	sc, err := cfg.SizingConfig()
	require.NoError(t, err)
	require.NotNil(t, sc.AdaptiveMinPercent)
	require.NotNil(t, sc.AdaptiveMaxPercent)
	assert.True(t, sc.AdaptiveMinPercent.Equal(sc.CopySize))
	assert.True(t, sc.AdaptiveMaxPercent.Equal(sc.CopySize))
}

func TestTrackedWalletsNormalized(t *testing.T) {
	cfg := validConfig()
	cfg.Tracked.Wallets = []string{"  0x7C3Db723F1D4d8cb9C550095203b686cB11E5C6B "}
	got := cfg.TrackedWallets()
	require.Len(t, got, 1)
	assert.Equal(t, "0x7c3db723f1d4d8cb9c550095203b686cb11e5c6b", got[0])
}
