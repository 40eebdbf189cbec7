// Package sizing turns an observed trade's notional into a bounded,
// balance- and position-aware order amount. It is pure policy: no I/O,
// no clock, no shared state.
package sizing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Strategy string

const (
	StrategyPercentage Strategy = "PERCENTAGE"
	StrategyFixed      Strategy = "FIXED"
	StrategyAdaptive   Strategy = "ADAPTIVE"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// balanceMargin keeps 1% of balance in reserve against price movement
	// between sizing and execution.
	balanceMargin = decimal.RequireFromString("0.99")

	// multiplierEpsilon: multipliers closer to 1 than this are not worth a
	// reasoning clause.
	multiplierEpsilon = decimal.New(1, -9)

	defaultAdaptiveThreshold = decimal.NewFromInt(500)
)

// Config selects and bounds the sizing strategy. Loaded once at startup and
// immutable for the process lifetime.
type Config struct {
	Strategy Strategy

	// CopySize is a percent for PERCENTAGE/ADAPTIVE, a USDC amount for FIXED.
	CopySize decimal.Decimal

	MaxOrderSizeUSD decimal.Decimal
	MinOrderSizeUSD decimal.Decimal

	MaxPositionSizeUSD *decimal.Decimal
	MaxDailyVolumeUSD  *decimal.Decimal

	AdaptiveMinPercent *decimal.Decimal
	AdaptiveMaxPercent *decimal.Decimal
	AdaptiveThreshold  *decimal.Decimal

	Tiers           []Tier
	TradeMultiplier *decimal.Decimal
}

// Decision is the audited output of one sizing evaluation.
type Decision struct {
	TraderNotional decimal.Decimal `json:"trader_notional"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Strategy       Strategy        `json:"strategy"`

	CappedByMax      bool `json:"capped_by_max"`
	ReducedByBalance bool `json:"reduced_by_balance"`
	BelowMinimum     bool `json:"below_minimum"`

	// PositionLimited is set when the position cap left no headroom for a
	// viable order; the amount was zeroed before the minimum floor applied.
	PositionLimited bool `json:"position_limited"`

	// Reasoning accumulates one clause per rule that fired, in rule order.
	// Advisory only, never parsed.
	Reasoning string `json:"reasoning"`
}

// Compute runs the sizing rules in fixed order: strategy base amount, tier or
// flat multiplier, max-order cap, optional position cap, balance cap with a
// 1% safety margin, minimum floor. The minimum floor raises sub-minimum
// amounts up to MinOrderSizeUSD rather than rejecting; callers that want
// reject-instead-of-round-up inspect BelowMinimum (and PositionLimited).
func Compute(cfg Config, traderNotional, availableBalance, currentPosition decimal.Decimal) Decision {
	d := Decision{
		TraderNotional: traderNotional,
		Strategy:       cfg.Strategy,
	}

	switch cfg.Strategy {
	case StrategyFixed:
		d.BaseAmount = cfg.CopySize
		d.Reasoning = fmt.Sprintf("Fixed amount: $%s", cfg.CopySize.StringFixed(2))
	case StrategyAdaptive:
		pct := adaptivePercent(cfg, traderNotional)
		d.BaseAmount = traderNotional.Mul(pct).Div(hundred)
		d.Reasoning = fmt.Sprintf("Adaptive %s%% of trader's $%s = $%s",
			pct.StringFixed(1), traderNotional.StringFixed(2), d.BaseAmount.StringFixed(2))
	default:
		d.BaseAmount = traderNotional.Mul(cfg.CopySize).Div(hundred)
		d.Reasoning = fmt.Sprintf("%s%% of trader's $%s = $%s",
			cfg.CopySize, traderNotional.StringFixed(2), d.BaseAmount.StringFixed(2))
	}

	multiplier := Multiplier(cfg, traderNotional)
	amount := d.BaseAmount.Mul(multiplier)
	if multiplier.Sub(one).Abs().GreaterThan(multiplierEpsilon) {
		d.Reasoning += fmt.Sprintf(" -> %sx multiplier: $%s -> $%s",
			multiplier, d.BaseAmount.StringFixed(2), amount.StringFixed(2))
	}

	if amount.GreaterThan(cfg.MaxOrderSizeUSD) {
		amount = cfg.MaxOrderSizeUSD
		d.CappedByMax = true
		d.Reasoning += fmt.Sprintf(" -> Capped at max $%s", cfg.MaxOrderSizeUSD)
	}

	if cfg.MaxPositionSizeUSD != nil {
		if currentPosition.Add(amount).GreaterThan(*cfg.MaxPositionSizeUSD) {
			headroom := decimal.Max(decimal.Zero, cfg.MaxPositionSizeUSD.Sub(currentPosition))
			if headroom.LessThan(cfg.MinOrderSizeUSD) {
				amount = decimal.Zero
				d.PositionLimited = true
				d.Reasoning += " -> Position limit reached"
			} else {
				amount = headroom
				d.Reasoning += " -> Reduced to fit position limit"
			}
		}
	}

	maxAffordable := availableBalance.Mul(balanceMargin)
	if amount.GreaterThan(maxAffordable) {
		amount = maxAffordable
		d.ReducedByBalance = true
		d.Reasoning += fmt.Sprintf(" -> Reduced to fit balance ($%s)", maxAffordable.StringFixed(2))
	}

	if amount.LessThan(cfg.MinOrderSizeUSD) {
		d.BelowMinimum = true
		d.Reasoning += fmt.Sprintf(" -> Below minimum $%s", cfg.MinOrderSizeUSD)
		amount = cfg.MinOrderSizeUSD
	}

	d.FinalAmount = amount
	return d
}

// Multiplier resolves the size multiplier for a trader notional. With tiers
// configured, the first tier containing the notional wins; a notional below
// the lowest tier falls back to the last tier's multiplier. Without tiers the
// flat TradeMultiplier applies (default 1).
func Multiplier(cfg Config, traderNotional decimal.Decimal) decimal.Decimal {
	if len(cfg.Tiers) > 0 {
		for _, tier := range cfg.Tiers {
			if tier.Contains(traderNotional) {
				return tier.Multiplier
			}
		}
		return cfg.Tiers[len(cfg.Tiers)-1].Multiplier
	}
	if cfg.TradeMultiplier != nil {
		return *cfg.TradeMultiplier
	}
	return one
}

// adaptivePercent interpolates the copy percentage around the threshold:
// small trades copy closer to AdaptiveMaxPercent, large trades closer to
// AdaptiveMinPercent, converging on CopySize at the threshold itself.
func adaptivePercent(cfg Config, traderNotional decimal.Decimal) decimal.Decimal {
	minPct := cfg.CopySize
	if cfg.AdaptiveMinPercent != nil {
		minPct = *cfg.AdaptiveMinPercent
	}
	maxPct := cfg.CopySize
	if cfg.AdaptiveMaxPercent != nil {
		maxPct = *cfg.AdaptiveMaxPercent
	}
	threshold := defaultAdaptiveThreshold
	if cfg.AdaptiveThreshold != nil && cfg.AdaptiveThreshold.IsPositive() {
		threshold = *cfg.AdaptiveThreshold
	}

	if traderNotional.GreaterThanOrEqual(threshold) {
		factor := decimal.Min(one, traderNotional.Div(threshold).Sub(one))
		return lerp(cfg.CopySize, minPct, factor)
	}
	factor := traderNotional.Div(threshold)
	return lerp(maxPct, cfg.CopySize, factor)
}

// lerp interpolates from a to b with t clamped to [0, 1].
func lerp(a, b, t decimal.Decimal) decimal.Decimal {
	if t.IsNegative() {
		t = decimal.Zero
	} else if t.GreaterThan(one) {
		t = one
	}
	return a.Add(b.Sub(a).Mul(t))
}
