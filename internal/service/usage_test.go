package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsageAccumulates(t *testing.T) {
	u := NewMemoryUsage()
	ctx := context.Background()

	require.NoError(t, u.AddDailyUsage(ctx, "0xabc", 1, 25.5))
	require.NoError(t, u.AddDailyUsage(ctx, "0xabc", 1, 10))

	orders, volume, err := u.GetDailyUsage(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, 2, orders)
	assert.InDelta(t, 35.5, volume, 1e-9)
}

func TestMemoryUsageIsolatesAccounts(t *testing.T) {
	u := NewMemoryUsage()
	ctx := context.Background()

	require.NoError(t, u.AddDailyUsage(ctx, "0xabc", 1, 100))

	orders, volume, err := u.GetDailyUsage(ctx, "0xdef")
	require.NoError(t, err)
	assert.Zero(t, orders)
	assert.Zero(t, volume)
}
