// Package executor turns matched trade events into sized, deduplicated CLOB
// orders. One goroutine drains the feed channel; every collaborator it
// touches is an interface so the pipeline is testable without the network.
package executor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/GoPolymarket/polycopy/internal/pkg/logger"
	"github.com/GoPolymarket/polycopy/internal/pkg/metrics"
	"github.com/GoPolymarket/polycopy/internal/service"
	"github.com/GoPolymarket/polycopy/internal/sizing"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/shopspring/decimal"
)

// msThreshold separates second from millisecond unix timestamps.
const msThreshold = 1_000_000_000_000

const recentRecordsCap = 50

type PositionsReader interface {
	Positions(ctx context.Context, wallet string) ([]model.Position, error)
}

type BalanceReader interface {
	USDCBalance(ctx context.Context, wallet string) (decimal.Decimal, error)
}

type Submitter interface {
	Submit(ctx context.Context, req service.OrderRequest) (*clobtypes.OrderResponse, error)
}

type Journal interface {
	Insert(ctx context.Context, trade *model.CopyTrade) error
}

// Record is one processed event kept for the ops API.
type Record struct {
	Time     time.Time       `json:"time"`
	Source   string          `json:"source"`
	TxHash   string          `json:"tx_hash"`
	Title    string          `json:"title,omitempty"`
	Side     string          `json:"side"`
	Decision sizing.Decision `json:"decision"`
	Action   string          `json:"action"` // submitted / skipped / failed
	Detail   string          `json:"detail,omitempty"`
}

type Options struct {
	Sizing      sizing.Config
	ProxyWallet string
	MaxEventAge time.Duration
	Ledger      *Ledger

	Positions PositionsReader
	Balance   BalanceReader
	Orders    Submitter
	Usage     service.UsageRepo
	Journal   Journal // optional
}

type Executor struct {
	cfg         sizing.Config
	proxyWallet string
	maxEventAge time.Duration
	ledger      *Ledger

	positions PositionsReader
	balance   BalanceReader
	orders    Submitter
	usage     service.UsageRepo
	journal   Journal

	mu      sync.Mutex
	records []Record
}

func New(opts Options) *Executor {
	if opts.Ledger == nil {
		opts.Ledger = NewLedger(defaultLedgerCapacity)
	}
	if opts.Usage == nil {
		opts.Usage = service.NewMemoryUsage()
	}
	return &Executor{
		cfg:         opts.Sizing,
		proxyWallet: strings.ToLower(opts.ProxyWallet),
		maxEventAge: opts.MaxEventAge,
		ledger:      opts.Ledger,
		positions:   opts.Positions,
		balance:     opts.Balance,
		orders:      opts.Orders,
		usage:       opts.Usage,
		journal:     opts.Journal,
	}
}

// Run drains the event channel until it closes or the context ends.
func (e *Executor) Run(ctx context.Context, events <-chan model.TradeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handle(ctx, ev)
		}
	}
}

// Recent returns the latest processed records, newest first.
func (e *Executor) Recent() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, len(e.records))
	for i := range e.records {
		out[i] = e.records[len(e.records)-1-i]
	}
	return out
}

func (e *Executor) handle(ctx context.Context, ev model.TradeEvent) {
	start := time.Now()
	defer func() {
		metrics.CopyLatency.Observe(time.Since(start).Seconds())
	}()

	if age, ok := eventAge(ev.Timestamp, time.Now()); ok && e.maxEventAge > 0 && age > e.maxEventAge {
		metrics.EventsDropped.WithLabelValues("stale").Inc()
		logger.Info("Dropping stale event",
			"source", ev.Source, "tx", ev.TxHash, "age", age)
		return
	}

	if ev.TxHash == "" {
		metrics.EventsDropped.WithLabelValues("missing_tx").Inc()
		logger.Warn("Dropping event without transaction hash", "source", ev.Source)
		return
	}

	if e.ledger.CheckAndInsert(ev.Key()) {
		metrics.EventsDropped.WithLabelValues("duplicate").Inc()
		logger.Info("Dropping duplicate event", "key", ev.Key())
		return
	}

	balance := e.ownBalance(ctx)
	position := e.ownPosition(ctx, ev.ConditionID)
	sourceCapital := e.sourceCapital(ctx, ev.Source)

	decision := sizing.Compute(e.cfg, ev.Notional(), balance, position)
	logger.Info("Sizing decision",
		"source", ev.Source, "tx", ev.TxHash, "side", ev.Side,
		"source_capital", sourceCapital.StringFixed(2),
		"trader_notional", decision.TraderNotional.StringFixed(2),
		"amount", decision.FinalAmount.StringFixed(2),
		"reasoning", decision.Reasoning)

	if decision.PositionLimited {
		e.skip(ctx, ev, decision, "position limit reached")
		return
	}
	if !decision.FinalAmount.IsPositive() {
		e.skip(ctx, ev, decision, "sized to zero")
		return
	}
	if reason, blocked := e.dailyVolumeBlocked(ctx, decision.FinalAmount); blocked {
		e.skip(ctx, ev, decision, reason)
		return
	}
	if !ev.Price.IsPositive() {
		e.skip(ctx, ev, decision, "event price missing")
		return
	}

	// Shares at the observed price; the CLOB min tick rounding happens in
	// the order builder.
	shares := decision.FinalAmount.Div(ev.Price)
	req := service.OrderRequest{
		TokenID: ev.Asset,
		Price:   ev.Price.InexactFloat64(),
		Size:    shares.InexactFloat64(),
		Side:    strings.ToUpper(ev.Side),
	}

	if _, err := e.orders.Submit(ctx, req); err != nil {
		metrics.OrdersTotal.WithLabelValues("failed", req.Side).Inc()
		logger.Error("Order submission failed",
			"tx", ev.TxHash, "token_id", ev.Asset, "error", err)
		e.record(ctx, ev, decision, model.CopyStatusFailed, err.Error())
		return
	}

	metrics.OrdersTotal.WithLabelValues("submitted", req.Side).Inc()
	if err := e.usage.AddDailyUsage(ctx, e.proxyWallet, 1, decision.FinalAmount.InexactFloat64()); err != nil {
		logger.Warn("Recording daily usage failed", "error", err)
	}
	e.record(ctx, ev, decision, model.CopyStatusSubmitted, "")
}

func (e *Executor) skip(ctx context.Context, ev model.TradeEvent, decision sizing.Decision, reason string) {
	metrics.EventsDropped.WithLabelValues("policy").Inc()
	logger.Info("Skipping event", "tx", ev.TxHash, "reason", reason)
	e.record(ctx, ev, decision, model.CopyStatusSkipped, reason)
}

// ownBalance reads the account's USDC balance, degrading to zero on error so
// the balance cap blocks trading rather than guessing.
func (e *Executor) ownBalance(ctx context.Context) decimal.Decimal {
	balance, err := e.balance.USDCBalance(ctx, e.proxyWallet)
	if err != nil {
		logger.Warn("Balance lookup failed, assuming zero", "error", err)
		return decimal.Zero
	}
	return balance
}

// ownPosition returns the current USDC value held in the event's market.
func (e *Executor) ownPosition(ctx context.Context, conditionID string) decimal.Decimal {
	if conditionID == "" {
		return decimal.Zero
	}
	rows, err := e.positions.Positions(ctx, e.proxyWallet)
	if err != nil {
		logger.Warn("Position lookup failed, assuming none", "error", err)
		return decimal.Zero
	}
	if p := model.FindByCondition(rows, conditionID); p != nil {
		return p.CurrentValue
	}
	return decimal.Zero
}

// sourceCapital sums the tracked wallet's position values. Informational
// context for the decision log; sizing works from the event notional alone.
func (e *Executor) sourceCapital(ctx context.Context, source string) decimal.Decimal {
	rows, err := e.positions.Positions(ctx, source)
	if err != nil {
		logger.Warn("Source position lookup failed", "wallet", source, "error", err)
		return decimal.Zero
	}
	return model.TotalValue(rows)
}

func (e *Executor) dailyVolumeBlocked(ctx context.Context, amount decimal.Decimal) (string, bool) {
	if e.cfg.MaxDailyVolumeUSD == nil {
		return "", false
	}
	_, volume, err := e.usage.GetDailyUsage(ctx, e.proxyWallet)
	if err != nil {
		logger.Warn("Daily usage lookup failed", "error", err)
		return "", false
	}
	if decimal.NewFromFloat(volume).Add(amount).GreaterThan(*e.cfg.MaxDailyVolumeUSD) {
		return "daily volume cap reached", true
	}
	return "", false
}

func (e *Executor) record(ctx context.Context, ev model.TradeEvent, decision sizing.Decision, status, detail string) {
	rec := Record{
		Time:     time.Now().UTC(),
		Source:   ev.Source,
		TxHash:   ev.TxHash,
		Title:    ev.Title,
		Side:     strings.ToUpper(ev.Side),
		Decision: decision,
		Action:   strings.ToLower(status),
		Detail:   detail,
	}
	e.mu.Lock()
	e.records = append(e.records, rec)
	if len(e.records) > recentRecordsCap {
		e.records = e.records[len(e.records)-recentRecordsCap:]
	}
	e.mu.Unlock()

	if e.journal == nil {
		return
	}
	trade := &model.CopyTrade{
		EventKey:       ev.Key(),
		SourceWallet:   ev.Source,
		ConditionID:    ev.ConditionID,
		TokenID:        ev.Asset,
		Side:           strings.ToUpper(ev.Side),
		TraderNotional: decision.TraderNotional,
		Amount:         decision.FinalAmount,
		Price:          ev.Price,
		Strategy:       string(decision.Strategy),
		Reasoning:      decision.Reasoning,
		Status:         status,
		Error:          detail,
	}
	if status != model.CopyStatusFailed {
		trade.Error = ""
	}
	if err := e.journal.Insert(ctx, trade); err != nil {
		logger.Warn("Journal insert failed", "error", err)
	}
}

// eventAge normalizes second or millisecond timestamps by magnitude.
func eventAge(ts int64, now time.Time) (time.Duration, bool) {
	if ts <= 0 {
		return 0, false
	}
	if ts > msThreshold {
		ts /= 1000
	}
	return now.Sub(time.Unix(ts, 0)), true
}
