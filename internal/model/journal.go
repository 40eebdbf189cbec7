package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CopyStatusSubmitted = "SUBMITTED"
	CopyStatusFailed    = "FAILED"
	CopyStatusSkipped   = "SKIPPED"
)

// CopyTrade is one journaled submission attempt.
type CopyTrade struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	EventKey       string          `json:"event_key" gorm:"index;size:128"`
	SourceWallet   string          `json:"source_wallet" gorm:"size:64"`
	ConditionID    string          `json:"condition_id" gorm:"size:128"`
	TokenID        string          `json:"token_id" gorm:"size:128"`
	Side           string          `json:"side" gorm:"size:8"`
	TraderNotional decimal.Decimal `json:"trader_notional" gorm:"type:numeric"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric"`
	Price          decimal.Decimal `json:"price" gorm:"type:numeric"`
	Strategy       string          `json:"strategy" gorm:"size:16"`
	Reasoning      string          `json:"reasoning"`
	Status         string          `json:"status" gorm:"index;size:16"`
	OrderID        string          `json:"order_id,omitempty" gorm:"size:128"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
}

func (CopyTrade) TableName() string {
	return "copy_trades"
}
