// Package feed owns the persistent RTDS subscription: connection lifecycle,
// bounded-retry reconnection and tracked-address filtering. Matched events
// are forwarded on a bounded FIFO channel; everything else is dropped.
package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"github.com/GoPolymarket/polycopy/internal/pkg/logger"
	"github.com/GoPolymarket/polycopy/internal/pkg/metrics"
	"github.com/gorilla/websocket"
)

const (
	// backoffCapFactor bounds the linear backoff at capFactor*baseDelay.
	backoffCapFactor = 5

	pingPeriod = 15 * time.Second
)

type Options struct {
	URL            string
	TrackedWallets []string
	BaseDelay      time.Duration
	MaxAttempts    int
	Capacity       int
}

type Monitor struct {
	url         string
	tracked     map[string]struct{}
	baseDelay   time.Duration
	maxAttempts int

	events chan model.TradeEvent
	fatal  chan error

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	conn      *websocket.Conn
	streaming atomic.Bool
	attempts  atomic.Int32
}

func NewMonitor(opts Options) *Monitor {
	tracked := make(map[string]struct{}, len(opts.TrackedWallets))
	for _, addr := range opts.TrackedWallets {
		tracked[strings.ToLower(strings.TrimSpace(addr))] = struct{}{}
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		url:         opts.URL,
		tracked:     tracked,
		baseDelay:   opts.BaseDelay,
		maxAttempts: opts.MaxAttempts,
		events:      make(chan model.TradeEvent, opts.Capacity),
		fatal:       make(chan error, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Events is the bounded FIFO channel of matched trade events.
func (m *Monitor) Events() <-chan model.TradeEvent {
	return m.events
}

// Fatal delivers the terminal error after reconnect attempts are exhausted.
func (m *Monitor) Fatal() <-chan error {
	return m.fatal
}

// Streaming reports whether the monitor currently holds a live subscription.
func (m *Monitor) Streaming() bool {
	return m.streaming.Load()
}

// Attempts returns the current consecutive reconnect attempt count.
func (m *Monitor) Attempts() int {
	return int(m.attempts.Load())
}

// Start launches the connection loop in a background goroutine
func (m *Monitor) Start() {
	go m.runLoop()
}

// Stop requests a cooperative shutdown. An in-flight read finishes or times
// out on its own; the loop observes the cancellation at its next boundary.
func (m *Monitor) Stop() {
	m.cancel()
	m.mu.Lock()
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.mu.Unlock()
}

func (m *Monitor) runLoop() {
	defer close(m.events)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		if err := m.connect(); err != nil {
			logger.Error("Feed connection failed", "error", err, "url", m.url)
			if !m.backoff() {
				return
			}
			continue
		}

		logger.Info("Feed subscribed", "tracked", len(m.tracked))
		m.attempts.Store(0)
		m.streaming.Store(true)
		metrics.FeedConnected.Set(1)

		m.readLoop()

		m.streaming.Store(false)
		metrics.FeedConnected.Set(0)

		select {
		case <-m.ctx.Done():
			return
		default:
		}
		if !m.backoff() {
			return
		}
	}
}

// connect dials the feed and issues a single subscription request covering
// all trade activity; per-address filtering happens client side.
func (m *Monitor) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(m.url, nil)
	if err != nil {
		return err
	}

	readTimeout := pingPeriod + 10*time.Second
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	sub := map[string]interface{}{
		"action": "subscribe",
		"subscriptions": []map[string]string{
			{"topic": "activity", "type": "trades"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return err
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	go m.pingLoop(conn)
	return nil
}

func (m *Monitor) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.conn != conn {
				m.mu.Unlock()
				return
			}
			err := conn.WriteMessage(websocket.PingMessage, []byte{})
			m.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (m *Monitor) readLoop() {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	defer conn.Close()

	readTimeout := pingPeriod + 10*time.Second

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if m.ctx.Err() == nil {
				logger.Error("Feed read error", "error", err)
			}
			return
		}

		ev, ok := m.decode(message)
		if !ok {
			continue
		}

		metrics.EventsMatched.Inc()
		select {
		case m.events <- ev:
		case <-m.ctx.Done():
			return
		}
	}
}

// rtdsFrame is the generic push-frame envelope: activity frames carry
// topic/type/payload, acknowledgements carry action or status.
type rtdsFrame struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Action  string          `json:"action"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload"`
}

// decode parses an inbound frame and returns the event when it is a trade on
// a tracked wallet. Acknowledgements, foreign topics, unparseable payloads
// and untracked wallets all drop silently.
func (m *Monitor) decode(raw []byte) (model.TradeEvent, bool) {
	var frame rtdsFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return model.TradeEvent{}, false
	}

	if frame.Action == "subscribed" || frame.Status == "subscribed" {
		logger.Info("Feed subscription confirmed")
		return model.TradeEvent{}, false
	}
	if frame.Topic != "activity" || frame.Type != "trades" || len(frame.Payload) == 0 {
		return model.TradeEvent{}, false
	}

	var ev model.TradeEvent
	if err := json.Unmarshal(frame.Payload, &ev); err != nil {
		return model.TradeEvent{}, false
	}

	source := strings.ToLower(ev.ProxyWallet)
	if _, ok := m.tracked[source]; !ok {
		return model.TradeEvent{}, false
	}
	ev.Source = source
	return ev, true
}

// backoff sleeps for the linear backoff delay and reports whether another
// attempt is allowed. After maxAttempts consecutive failures the monitor
// stops permanently and surfaces the terminal condition on Fatal.
func (m *Monitor) backoff() bool {
	attempt := int(m.attempts.Add(1))
	if attempt >= m.maxAttempts {
		err := apperrors.New(apperrors.ErrFeedExhausted,
			"max feed reconnect attempts reached, restart required", nil)
		logger.Error("Feed monitor giving up", "attempts", attempt)
		select {
		case m.fatal <- err:
		default:
		}
		return false
	}

	delay := nextDelay(m.baseDelay, attempt)
	metrics.Reconnects.Inc()
	logger.Info("Reconnecting to feed", "attempt", attempt, "max", m.maxAttempts, "delay", delay)

	select {
	case <-time.After(delay):
		return true
	case <-m.ctx.Done():
		return false
	}
}

// nextDelay is linear backoff capped at backoffCapFactor*base.
func nextDelay(base time.Duration, attempt int) time.Duration {
	factor := attempt
	if factor > backoffCapFactor {
		factor = backoffCapFactor
	}
	if factor < 1 {
		factor = 1
	}
	return base * time.Duration(factor)
}
