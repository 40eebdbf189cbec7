package feed

import (
	"testing"
	"time"

	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testMonitor() *Monitor {
	return NewMonitor(Options{
		URL:            "wss://example.invalid/",
		TrackedWallets: []string{"0x7C3Db723F1D4d8cb9C550095203b686cB11E5C6B"},
		BaseDelay:      5 * time.Second,
		MaxAttempts:    10,
		Capacity:       10,
	})
}

func TestNextDelayLinearThenCapped(t *testing.T) {
	base := 5 * time.Second

	assert.Equal(t, 5*time.Second, nextDelay(base, 1))
	assert.Equal(t, 10*time.Second, nextDelay(base, 2))
	assert.Equal(t, 25*time.Second, nextDelay(base, 5))
	// Factor never grows past 5, no matter how many attempts.
	assert.Equal(t, 25*time.Second, nextDelay(base, 6))
	assert.Equal(t, 25*time.Second, nextDelay(base, 99))
}

func TestBackoffStopsAtMaxAttempts(t *testing.T) {
	m := NewMonitor(Options{
		URL:            "wss://example.invalid/",
		TrackedWallets: []string{"0x7C3Db723F1D4d8cb9C550095203b686cB11E5C6B"},
		BaseDelay:      time.Millisecond,
		MaxAttempts:    3,
	})

	assert.True(t, m.backoff())
	assert.True(t, m.backoff())
	require.False(t, m.backoff())

	select {
	case err := <-m.Fatal():
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrFeedExhausted, appErr.Type)
	default:
		t.Fatal("expected a terminal error on Fatal after exhaustion")
	}

	// Exhaustion is permanent.
	assert.False(t, m.backoff())
	assert.EqualValues(t, 4, m.Attempts())
}

func TestDecodeMatchedTrade(t *testing.T) {
	m := testMonitor()

	raw := []byte(`{
		"topic": "activity",
		"type": "trades",
		"payload": {
			"proxyWallet": "0x7c3db723f1d4d8cb9c550095203b686cb11e5c6b",
			"side": "BUY",
			"size": 100,
			"price": 0.55,
			"usdcSize": 55,
			"timestamp": 1756100000,
			"conditionId": "0xabc",
			"asset": "123456",
			"transactionHash": "0xdeadbeef",
			"title": "Will it rain tomorrow?",
			"outcome": "Yes"
		}
	}`)

	ev, ok := m.decode(raw)
	require.True(t, ok)
	assert.Equal(t, "0x7c3db723f1d4d8cb9c550095203b686cb11e5c6b", ev.Source)
	assert.Equal(t, "0xdeadbeef", ev.TxHash)
	assert.True(t, ev.IsBuy())
	assert.True(t, ev.Notional().Equal(dec("55")))
}

func TestDecodeMatchesCaseInsensitively(t *testing.T) {
	m := testMonitor()

	raw := []byte(`{"topic":"activity","type":"trades","payload":{
		"proxyWallet":"0x7C3DB723F1D4D8CB9C550095203B686CB11E5C6B",
		"transactionHash":"0x1","side":"SELL","size":10,"price":0.5}}`)

	ev, ok := m.decode(raw)
	require.True(t, ok)
	assert.Equal(t, "0x7c3db723f1d4d8cb9c550095203b686cb11e5c6b", ev.Source)
}

func TestDecodeDropsUntrackedWallet(t *testing.T) {
	m := testMonitor()

	raw := []byte(`{"topic":"activity","type":"trades","payload":{
		"proxyWallet":"0x0000000000000000000000000000000000000001",
		"transactionHash":"0x1","side":"BUY","size":10,"price":0.5}}`)

	_, ok := m.decode(raw)
	assert.False(t, ok)
}

func TestDecodeIgnoresAcknowledgement(t *testing.T) {
	m := testMonitor()

	for _, raw := range [][]byte{
		[]byte(`{"action":"subscribed"}`),
		[]byte(`{"status":"subscribed","topic":"activity"}`),
	} {
		_, ok := m.decode(raw)
		assert.False(t, ok)
	}
}

func TestDecodeIgnoresForeignTopics(t *testing.T) {
	m := testMonitor()

	for _, raw := range [][]byte{
		[]byte(`{"topic":"prices","type":"update","payload":{"x":1}}`),
		[]byte(`{"topic":"activity","type":"orders","payload":{"x":1}}`),
		[]byte(`{"topic":"activity","type":"trades"}`),
		[]byte(`not json at all`),
	} {
		_, ok := m.decode(raw)
		assert.False(t, ok)
	}
}
