package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GoPolymarket/polycopy/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the Postgres journal database and migrates the schema.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if err := db.AutoMigrate(&model.CopyTrade{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return db, nil
}

// JournalRepo persists copy-trade attempts for later inspection.
type JournalRepo struct {
	db *gorm.DB
}

func NewJournalRepo(db *gorm.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Insert(ctx context.Context, trade *model.CopyTrade) error {
	if trade == nil {
		return nil
	}
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(trade).Error
}

// List returns the most recent journal rows, newest first.
func (r *JournalRepo) List(ctx context.Context, limit int) ([]model.CopyTrade, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var trades []model.CopyTrade
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}
