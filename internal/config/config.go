package config

import (
	"log"
	"strings"
	"time"

	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"github.com/GoPolymarket/polycopy/internal/sizing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Account  AccountConfig  `mapstructure:"account"`
	Tracked  TrackedConfig  `mapstructure:"tracked"`
	Copy     CopyConfig     `mapstructure:"copy"`
	Feed     FeedConfig     `mapstructure:"feed"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ChainConfig struct {
	RPCURL       string `mapstructure:"rpc_url"`
	USDCContract string `mapstructure:"usdc_contract"`
}

type AccountConfig struct {
	// ProxyWallet is the funded Polymarket wallet orders are placed for.
	ProxyWallet string `mapstructure:"proxy_wallet"`
	PrivateKey  string `mapstructure:"private_key"`

	// L2 API credentials for the CLOB.
	ApiKey        string `mapstructure:"api_key"`
	ApiSecret     string `mapstructure:"api_secret"`
	ApiPassphrase string `mapstructure:"api_passphrase"`

	ClobURL    string `mapstructure:"clob_url"`
	DataApiURL string `mapstructure:"data_api_url"`
	RtdsURL    string `mapstructure:"rtds_url"`
}

type TrackedConfig struct {
	// Wallets to mirror, hex addresses. Matched case-insensitively.
	Wallets []string `mapstructure:"wallets"`
}

type CopyConfig struct {
	Strategy           string  `mapstructure:"strategy"` // PERCENTAGE / FIXED / ADAPTIVE
	CopySize           float64 `mapstructure:"copy_size"`
	MaxOrderSizeUSD    float64 `mapstructure:"max_order_size_usd"`
	MinOrderSizeUSD    float64 `mapstructure:"min_order_size_usd"`
	MaxPositionSizeUSD float64 `mapstructure:"max_position_size_usd"` // 0 = unlimited
	MaxDailyVolumeUSD  float64 `mapstructure:"max_daily_volume_usd"`  // 0 = unlimited
	AdaptiveMinPercent float64 `mapstructure:"adaptive_min_percent"`
	AdaptiveMaxPercent float64 `mapstructure:"adaptive_max_percent"`
	AdaptiveThreshold  float64 `mapstructure:"adaptive_threshold_usd"`
	TieredMultipliers  string  `mapstructure:"tiered_multipliers"`
	TradeMultiplier    float64 `mapstructure:"trade_multiplier"`
	MaxEventAgeHours   float64 `mapstructure:"max_event_age_hours"`
}

type FeedConfig struct {
	ReconnectBaseDelaySecs int `mapstructure:"reconnect_base_delay_secs"`
	MaxReconnectAttempts   int `mapstructure:"max_reconnect_attempts"`
	ChannelCapacity        int `mapstructure:"channel_capacity"`
	DedupCapacity          int `mapstructure:"dedup_capacity"`
}

type HTTPConfig struct {
	RequestTimeoutMs int     `mapstructure:"request_timeout_ms"`
	RetryLimit       int     `mapstructure:"retry_limit"`
	RateLimitRPS     float64 `mapstructure:"rate_limit_rps"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. POLYCOPY_ACCOUNT_PRIVATE_KEY
	viper.SetEnvPrefix("polycopy")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8090")
	viper.SetDefault("log.level", "info")

	viper.SetDefault("account.clob_url", "https://clob.polymarket.com")
	viper.SetDefault("account.data_api_url", "https://data-api.polymarket.com")
	viper.SetDefault("account.rtds_url", "wss://ws-live-data.polymarket.com")

	viper.SetDefault("copy.strategy", "PERCENTAGE")
	viper.SetDefault("copy.copy_size", 10.0)
	viper.SetDefault("copy.max_order_size_usd", 100.0)
	viper.SetDefault("copy.min_order_size_usd", 1.0)
	viper.SetDefault("copy.adaptive_threshold_usd", 500.0)
	viper.SetDefault("copy.max_event_age_hours", 24.0)

	viper.SetDefault("feed.reconnect_base_delay_secs", 5)
	viper.SetDefault("feed.max_reconnect_attempts", 10)
	viper.SetDefault("feed.channel_capacity", 100)
	viper.SetDefault("feed.dedup_capacity", 1000)

	viper.SetDefault("http.request_timeout_ms", 10000)
	viper.SetDefault("http.retry_limit", 3)
	viper.SetDefault("http.rate_limit_rps", 10.0)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

// Validate rejects any configuration the process must not run with. All
// failures here are fatal at startup, never deferred to trade time.
func (c *Config) Validate() error {
	if len(c.Tracked.Wallets) == 0 {
		return apperrors.NewConfig("tracked.wallets must contain at least one address")
	}
	for _, addr := range c.Tracked.Wallets {
		if !common.IsHexAddress(strings.TrimSpace(addr)) {
			return apperrors.NewConfigf("invalid tracked wallet address: %s", addr)
		}
	}
	if !common.IsHexAddress(strings.TrimSpace(c.Account.ProxyWallet)) {
		return apperrors.NewConfigf("invalid account.proxy_wallet: %s", c.Account.ProxyWallet)
	}
	if strings.TrimSpace(c.Account.PrivateKey) == "" {
		return apperrors.NewConfig("account.private_key is required")
	}
	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		return apperrors.NewConfig("chain.rpc_url is required")
	}
	if !common.IsHexAddress(strings.TrimSpace(c.Chain.USDCContract)) {
		return apperrors.NewConfigf("invalid chain.usdc_contract: %s", c.Chain.USDCContract)
	}
	if c.Copy.MinOrderSizeUSD > c.Copy.MaxOrderSizeUSD {
		return apperrors.NewConfigf("copy.min_order_size_usd (%v) exceeds copy.max_order_size_usd (%v)",
			c.Copy.MinOrderSizeUSD, c.Copy.MaxOrderSizeUSD)
	}
	if c.Copy.MaxOrderSizeUSD <= 0 {
		return apperrors.NewConfig("copy.max_order_size_usd must be positive")
	}
	switch strings.ToUpper(c.Copy.Strategy) {
	case string(sizing.StrategyPercentage), string(sizing.StrategyFixed), string(sizing.StrategyAdaptive):
	default:
		return apperrors.NewConfigf("unknown copy.strategy: %s", c.Copy.Strategy)
	}
	if strings.EqualFold(c.Copy.Strategy, string(sizing.StrategyAdaptive)) && c.Copy.AdaptiveThreshold <= 0 {
		return apperrors.NewConfig("copy.adaptive_threshold_usd must be positive for the ADAPTIVE strategy")
	}
	if c.Feed.MaxReconnectAttempts <= 0 {
		return apperrors.NewConfig("feed.max_reconnect_attempts must be positive")
	}

	// Tier syntax and the ordering/overlap invariants are load-time errors.
	if _, err := sizing.ParseTieredMultipliers(c.Copy.TieredMultipliers); err != nil {
		return apperrors.New(apperrors.ErrConfig, "invalid copy.tiered_multipliers", err)
	}
	return nil
}

// TrackedWallets returns the tracked addresses lowercased and trimmed.
func (c *Config) TrackedWallets() []string {
	out := make([]string, 0, len(c.Tracked.Wallets))
	for _, addr := range c.Tracked.Wallets {
		out = append(out, strings.ToLower(strings.TrimSpace(addr)))
	}
	return out
}

// SizingConfig converts the validated copy section into the policy config.
func (c *Config) SizingConfig() (sizing.Config, error) {
	tiers, err := sizing.ParseTieredMultipliers(c.Copy.TieredMultipliers)
	if err != nil {
		return sizing.Config{}, err
	}

	cfg := sizing.Config{
		Strategy:        sizing.Strategy(strings.ToUpper(c.Copy.Strategy)),
		CopySize:        decimal.NewFromFloat(c.Copy.CopySize),
		MaxOrderSizeUSD: decimal.NewFromFloat(c.Copy.MaxOrderSizeUSD),
		MinOrderSizeUSD: decimal.NewFromFloat(c.Copy.MinOrderSizeUSD),
		Tiers:           tiers,
	}
	if c.Copy.MaxPositionSizeUSD > 0 {
		v := decimal.NewFromFloat(c.Copy.MaxPositionSizeUSD)
		cfg.MaxPositionSizeUSD = &v
	}
	if c.Copy.MaxDailyVolumeUSD > 0 {
		v := decimal.NewFromFloat(c.Copy.MaxDailyVolumeUSD)
		cfg.MaxDailyVolumeUSD = &v
	}
	if cfg.Strategy == sizing.StrategyAdaptive {
		minPct := decimal.NewFromFloat(c.Copy.AdaptiveMinPercent)
		if c.Copy.AdaptiveMinPercent <= 0 {
			minPct = cfg.CopySize
		}
		maxPct := decimal.NewFromFloat(c.Copy.AdaptiveMaxPercent)
		if c.Copy.AdaptiveMaxPercent <= 0 {
			maxPct = cfg.CopySize
		}
		threshold := decimal.NewFromFloat(c.Copy.AdaptiveThreshold)
		cfg.AdaptiveMinPercent = &minPct
		cfg.AdaptiveMaxPercent = &maxPct
		cfg.AdaptiveThreshold = &threshold
	}
	if c.Copy.TradeMultiplier > 0 {
		v := decimal.NewFromFloat(c.Copy.TradeMultiplier)
		if !v.Equal(decimal.NewFromInt(1)) {
			cfg.TradeMultiplier = &v
		}
	}
	return cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) ReconnectBaseDelay() time.Duration {
	return time.Duration(c.Feed.ReconnectBaseDelaySecs) * time.Second
}

func (c *Config) MaxEventAge() time.Duration {
	return time.Duration(c.Copy.MaxEventAgeHours * float64(time.Hour))
}
