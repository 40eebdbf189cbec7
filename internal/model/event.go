package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TradeEvent is one observed trade on a tracked wallet, decoded from an RTDS
// activity frame. Immutable once received; identified by (Source, TxHash).
type TradeEvent struct {
	ProxyWallet  string          `json:"proxyWallet"`
	Timestamp    int64           `json:"timestamp"` // unix seconds or millis, upstream is inconsistent
	ConditionID  string          `json:"conditionId"`
	Type         string          `json:"type"`
	Size         decimal.Decimal `json:"size"`
	UsdcSize     decimal.Decimal `json:"usdcSize"`
	TxHash       string          `json:"transactionHash"`
	Price        decimal.Decimal `json:"price"`
	Asset        string          `json:"asset"`
	Side         string          `json:"side"`
	OutcomeIndex int             `json:"outcomeIndex"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	EventSlug    string          `json:"eventSlug"`
	Outcome      string          `json:"outcome"`

	// Source is the lowercased tracked address the event was matched
	// against, set by the feed monitor.
	Source string `json:"-"`
}

// Notional returns the USDC value of the trade. The feed usually carries
// usdcSize directly; size*price is the fallback.
func (e *TradeEvent) Notional() decimal.Decimal {
	if e.UsdcSize.IsPositive() {
		return e.UsdcSize
	}
	return e.Size.Mul(e.Price)
}

// Key is the composite dedup identity for the event.
func (e *TradeEvent) Key() string {
	return strings.ToLower(e.Source) + ":" + e.TxHash
}

func (e *TradeEvent) IsBuy() bool {
	return strings.EqualFold(e.Side, "BUY")
}
