package service

import (
	"testing"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func position(title string, initial, current int64) model.Position {
	return model.Position{
		Title:        title,
		InitialValue: decimal.NewFromInt(initial),
		CurrentValue: decimal.NewFromInt(current),
		CashPnl:      decimal.NewFromInt(current - initial),
	}
}

func TestSummarizeWeightedPnl(t *testing.T) {
	positions := []model.Position{
		position("a", 100, 150),
		position("b", 100, 50),
	}

	s := Summarize("0xabc", positions)

	assert.Equal(t, 2, s.PositionCount)
	assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(200)))
	assert.True(t, s.InitialValue.Equal(decimal.NewFromInt(200)))
	// (200 - 200) / 200 = 0%
	assert.True(t, s.WeightedPnl.IsZero(), "pnl = %s", s.WeightedPnl)
}

func TestSummarizeTopPositionsByPnl(t *testing.T) {
	positions := []model.Position{
		position("small win", 10, 12),
		position("big win", 100, 200),
		position("loss", 50, 20),
		position("mid win", 40, 60),
		position("flat", 30, 30),
		position("tiny win", 5, 6),
	}

	s := Summarize("0xabc", positions)
	require.Len(t, s.TopPositions, topPositionsShown)
	assert.Equal(t, "big win", s.TopPositions[0].Title)
	assert.Equal(t, "mid win", s.TopPositions[1].Title)
	// The worst performer falls off the top list.
	for _, p := range s.TopPositions {
		assert.NotEqual(t, "loss", p.Title)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("0xabc", nil)
	assert.Equal(t, 0, s.PositionCount)
	assert.True(t, s.TotalValue.IsZero())
	assert.True(t, s.WeightedPnl.IsZero())
}
