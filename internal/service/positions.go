// Package service holds the outbound collaborators of the copy engine: the
// data-api positions client, the Polygon chain reader, the CLOB order
// submitter and the daily usage guard.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"golang.org/x/time/rate"
)

const positionsPageLimit = 500

// PositionsClient reads wallet positions from the Polymarket data-api.
type PositionsClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retries int
}

func NewPositionsClient(baseURL string, timeout time.Duration, retries int, rps float64) *PositionsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if rps <= 0 {
		rps = 10
	}
	return &PositionsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		retries: retries,
	}
}

// Positions fetches the open positions for one wallet. Transient upstream
// failures are retried with a short linear pause.
func (c *PositionsClient) Positions(ctx context.Context, wallet string) ([]model.Position, error) {
	endpoint := fmt.Sprintf("%s/positions?user=%s&limit=%d",
		c.baseURL, url.QueryEscape(strings.ToLower(wallet)), positionsPageLimit)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		positions, err := c.fetch(ctx, endpoint)
		if err == nil {
			return positions, nil
		}
		lastErr = err
		if !retryPause(ctx, attempt, c.retries) {
			break
		}
	}
	return nil, apperrors.NewUpstream("data-api positions request failed", lastErr)
}

func (c *PositionsClient) fetch(ctx context.Context, endpoint string) ([]model.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("data-api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var positions []model.Position
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, fmt.Errorf("decoding positions: %w", err)
	}
	return positions, nil
}

// retryPause sleeps a linearly growing interval between attempts and reports
// whether another attempt is allowed.
func retryPause(ctx context.Context, attempt, max int) bool {
	if attempt >= max {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		return true
	}
}
