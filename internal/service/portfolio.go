package service

import (
	"context"
	"sort"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/GoPolymarket/polycopy/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

const topPositionsShown = 5

// Summarize condenses a wallet's positions into the startup snapshot:
// counts, aggregate value and the value-weighted PnL percentage.
func Summarize(wallet string, positions []model.Position) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		Wallet:        wallet,
		PositionCount: len(positions),
		TotalValue:    model.TotalValue(positions),
	}
	for i := range positions {
		summary.InitialValue = summary.InitialValue.Add(positions[i].InitialValue)
	}
	if summary.InitialValue.IsPositive() {
		summary.WeightedPnl = summary.TotalValue.Sub(summary.InitialValue).
			Div(summary.InitialValue).Mul(decimal.NewFromInt(100))
	}

	sorted := make([]model.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CashPnl.GreaterThan(sorted[j].CashPnl)
	})
	if len(sorted) > topPositionsShown {
		sorted = sorted[:topPositionsShown]
	}
	summary.TopPositions = sorted
	return summary
}

// LogSnapshot fetches and logs the portfolio of every wallet. Failures are
// logged and skipped; the snapshot is informational and never blocks startup.
func LogSnapshot(ctx context.Context, positions *PositionsClient, wallets []string) []model.PortfolioSummary {
	summaries := make([]model.PortfolioSummary, 0, len(wallets))
	for _, wallet := range wallets {
		rows, err := positions.Positions(ctx, wallet)
		if err != nil {
			logger.Warn("Portfolio snapshot failed", "wallet", wallet, "error", err)
			continue
		}
		summary := Summarize(wallet, rows)
		summaries = append(summaries, summary)
		logger.Info("Portfolio snapshot",
			"wallet", wallet,
			"positions", summary.PositionCount,
			"total_value", summary.TotalValue.StringFixed(2),
			"weighted_pnl_pct", summary.WeightedPnl.StringFixed(2))
		for _, p := range summary.TopPositions {
			logger.Info("  position",
				"title", p.Title, "outcome", p.Outcome,
				"value", p.CurrentValue.StringFixed(2),
				"cash_pnl", p.CashPnl.StringFixed(2))
		}
	}
	return summaries
}
