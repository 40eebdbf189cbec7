package model

import "github.com/shopspring/decimal"

// Position is one data-api position row for a wallet.
type Position struct {
	ProxyWallet  string          `json:"proxyWallet"`
	Asset        string          `json:"asset"`
	ConditionID  string          `json:"conditionId"`
	Size         decimal.Decimal `json:"size"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	CurPrice     decimal.Decimal `json:"curPrice"`
	InitialValue decimal.Decimal `json:"initialValue"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	CashPnl      decimal.Decimal `json:"cashPnl"`
	PercentPnl   decimal.Decimal `json:"percentPnl"`
	Title        string          `json:"title"`
	Outcome      string          `json:"outcome"`
	Slug         string          `json:"slug"`
}

// FindByCondition returns the first position matching the condition id, or nil.
func FindByCondition(positions []Position, conditionID string) *Position {
	if conditionID == "" {
		return nil
	}
	for i := range positions {
		if positions[i].ConditionID == conditionID {
			return &positions[i]
		}
	}
	return nil
}

// TotalValue sums currentValue across positions. Used as the capital proxy
// for a tracked wallet.
func TotalValue(positions []Position) decimal.Decimal {
	total := decimal.Zero
	for i := range positions {
		total = total.Add(positions[i].CurrentValue)
	}
	return total
}

// PortfolioSummary is the informational startup snapshot for one wallet.
type PortfolioSummary struct {
	Wallet        string          `json:"wallet"`
	PositionCount int             `json:"position_count"`
	TotalValue    decimal.Decimal `json:"total_value"`
	InitialValue  decimal.Decimal `json:"initial_value"`
	WeightedPnl   decimal.Decimal `json:"weighted_pnl_percent"`
	TopPositions  []Position      `json:"top_positions"`
}
