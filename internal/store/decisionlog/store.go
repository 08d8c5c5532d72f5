// Package decisionlog 用 Gorm + SQLite 持久化每次评估的留痕，
// 方便事后排查“为什么没开仓”。
package decisionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"strata/internal/engine"
)

// EvaluationModel 评估记录的数据库模型。Checks 以 JSON 列保存完整检查清单。
type EvaluationModel struct {
	ID         uint           `gorm:"primaryKey"`
	TraceID    string         `gorm:"size:64;index"`
	Timestamp  int64          `gorm:"index"`
	Symbol     string         `gorm:"size:32;index"`
	Proposed   string         `gorm:"size:16"`
	Action     string         `gorm:"size:24"`
	Reason     string         `gorm:"size:256"`
	Checks     datatypes.JSON `gorm:"type:json"`
	SLPrice    float64
	TPPrice    float64
	RealizedRR float64
	MethodTag  string `gorm:"size:32"`
	Degraded   bool
	CreatedAt  time.Time
}

func (EvaluationModel) TableName() string { return "evaluations" }

// Store 评估日志存储。
type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("decision log path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&EvaluationModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Append 写入一条评估记录。
func (s *Store) Append(ctx context.Context, traceID, symbol string, d engine.Decision) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("decision log store not initialized")
	}
	checks, err := json.Marshal(d.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks failed: %w", err)
	}
	rec := EvaluationModel{
		TraceID:   traceID,
		Timestamp: d.Timestamp,
		Symbol:    symbol,
		Proposed:  d.Proposed.String(),
		Action:    d.Action.String(),
		Reason:    d.Reason,
		Checks:    datatypes.JSON(checks),
	}
	if d.Plan != nil {
		rec.SLPrice = d.Plan.StopLoss
		rec.TPPrice = d.Plan.TakeProfit
		rec.RealizedRR = d.Plan.RealizedRR
		rec.MethodTag = d.Plan.Method
		rec.Degraded = d.Plan.Degraded
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Recent 按时间倒序返回最近 limit 条记录。
func (s *Store) Recent(ctx context.Context, symbol string, limit int) ([]EvaluationModel, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("decision log store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if strings.TrimSpace(symbol) != "" {
		q = q.Where("symbol = ?", symbol)
	}
	var out []EvaluationModel
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
