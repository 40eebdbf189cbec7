package sizing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier maps a contiguous trader-notional range [Min, Max) to a size
// multiplier. A nil Max means the range is open-ended; only the last tier
// may be open-ended.
type Tier struct {
	Min        decimal.Decimal
	Max        *decimal.Decimal
	Multiplier decimal.Decimal
}

// Contains reports whether the notional falls inside the tier's range.
func (t Tier) Contains(notional decimal.Decimal) bool {
	if notional.LessThan(t.Min) {
		return false
	}
	if t.Max == nil {
		return true
	}
	return notional.LessThan(*t.Max)
}

// ParseTieredMultipliers parses a comma separated list of "range:multiplier"
// entries, where range is either "N+" (open-ended) or "N-M". Example:
//
//	"0-500:1.0,500-2000:1.5,2000+:2.0"
//
// The result is sorted ascending by Min and validated: ranges must not
// overlap and only the last tier may be open-ended. Any violation is a
// configuration error.
func ParseTieredMultipliers(raw string) ([]Tier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var tiers []Tier
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rangeStr, multStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid tier %q: missing multiplier", part)
		}
		multiplier, err := decimal.NewFromString(strings.TrimSpace(multStr))
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier in tier %q: %w", part, err)
		}
		if multiplier.IsNegative() {
			return nil, fmt.Errorf("invalid multiplier in tier %q: must not be negative", part)
		}

		rangeStr = strings.TrimSpace(rangeStr)
		switch {
		case strings.HasSuffix(rangeStr, "+"):
			min, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(rangeStr, "+")))
			if err != nil {
				return nil, fmt.Errorf("invalid minimum in tier %q: %w", part, err)
			}
			if min.IsNegative() {
				return nil, fmt.Errorf("invalid minimum in tier %q: must not be negative", part)
			}
			tiers = append(tiers, Tier{Min: min, Multiplier: multiplier})
		case strings.Contains(rangeStr, "-"):
			minStr, maxStr, _ := strings.Cut(rangeStr, "-")
			min, err := decimal.NewFromString(strings.TrimSpace(minStr))
			if err != nil {
				return nil, fmt.Errorf("invalid minimum in tier %q: %w", part, err)
			}
			max, err := decimal.NewFromString(strings.TrimSpace(maxStr))
			if err != nil {
				return nil, fmt.Errorf("invalid maximum in tier %q: %w", part, err)
			}
			if min.IsNegative() {
				return nil, fmt.Errorf("invalid minimum in tier %q: must not be negative", part)
			}
			if !max.GreaterThan(min) {
				return nil, fmt.Errorf("invalid tier %q: max must be greater than min", part)
			}
			tiers = append(tiers, Tier{Min: min, Max: &max, Multiplier: multiplier})
		default:
			return nil, fmt.Errorf("invalid range format in tier %q", part)
		}
	}

	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Min.LessThan(tiers[j].Min)
	})
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func validateTiers(tiers []Tier) error {
	for i := 0; i < len(tiers)-1; i++ {
		cur, next := tiers[i], tiers[i+1]
		if cur.Max == nil {
			return fmt.Errorf("tier with open-ended range must be last")
		}
		if cur.Max.GreaterThan(next.Min) {
			return fmt.Errorf("overlapping tiers: [%s, %s) and [%s, ...)",
				cur.Min, cur.Max, next.Min)
		}
	}
	return nil
}
