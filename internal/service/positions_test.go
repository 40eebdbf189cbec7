package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positionsBody = `[
	{"proxyWallet":"0xabc","asset":"111","conditionId":"0xc1","size":100,
	 "avgPrice":0.4,"curPrice":0.6,"initialValue":40,"currentValue":60,
	 "cashPnl":20,"percentPnl":50,"title":"Market A","outcome":"Yes"},
	{"proxyWallet":"0xabc","asset":"222","conditionId":"0xc2","size":50,
	 "avgPrice":0.5,"curPrice":0.4,"initialValue":25,"currentValue":20,
	 "cashPnl":-5,"percentPnl":-20,"title":"Market B","outcome":"No"}
]`

func TestPositionsFetchAndDecode(t *testing.T) {
	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.URL.Query().Get("user")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(positionsBody))
	}))
	defer srv.Close()

	c := NewPositionsClient(srv.URL, time.Second, 0, 100)
	positions, err := c.Positions(context.Background(), "0xABCdef0000000000000000000000000000000001")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", gotUser)
	assert.Equal(t, "0xc1", positions[0].ConditionID)
	assert.True(t, positions[0].CurrentValue.Equal(decimalFromInt(60)))
}

func TestPositionsRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewPositionsClient(srv.URL, time.Second, 3, 100)
	positions, err := c.Positions(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPositionsGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewPositionsClient(srv.URL, time.Second, 1, 100)
	_, err := c.Positions(context.Background(), "0xabc")
	assert.Error(t, err)
}
