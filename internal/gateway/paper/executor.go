// Package paper 干跑执行网关：把意向落到本地 sqlite 流水，不触碰交易所。
package paper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"strata/internal/gateway/exchange"
	"strata/internal/logger"
	"strata/internal/pkg/trading"
)

// Executor 实现 exchange.Gateway。价格先按 tick 对齐再入账：
// 止损向远离入场方向取整，止盈向靠近入场方向取整，确保不比计算值更激进。
type Executor struct {
	mu       sync.Mutex
	db       *sql.DB
	tickSize float64
}

func New(journalPath string, tickSize float64) (*Executor, error) {
	journalPath = strings.TrimSpace(journalPath)
	if journalPath == "" {
		return nil, fmt.Errorf("paper executor requires journal path")
	}
	if dir := filepath.Dir(journalPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", journalPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS paper_fills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trace_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		entry REAL NOT NULL,
		sl_price REAL NOT NULL,
		tp_price REAL NOT NULL,
		realized_rr REAL NOT NULL,
		method TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Executor{db: db, tickSize: tickSize}, nil
}

func (e *Executor) Submit(ctx context.Context, intent exchange.Intent) error {
	if e == nil || e.db == nil {
		return fmt.Errorf("paper executor not initialized")
	}
	if intent.Action == "HOLD" || intent.Action == "" {
		return nil
	}
	long := intent.Action == "EXECUTE_LONG"
	sl := trading.QuantizePrice(intent.StopLoss, e.tickSize, !long)
	tp := trading.QuantizePrice(intent.TakeProfit, e.tickSize, !long)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.db.ExecContext(ctx, `INSERT INTO paper_fills
		(trace_id, ts, symbol, action, entry, sl_price, tp_price, realized_rr, method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intent.TraceID, intent.Timestamp, intent.Symbol, intent.Action,
		intent.Entry, sl, tp, intent.RealizedRR, intent.Method)
	if err != nil {
		return fmt.Errorf("paper journal insert failed: %w", err)
	}
	logger.Infof("[paper] %s %s entry=%.2f sl=%.2f tp=%.2f rr=%.2f (%s)",
		intent.Symbol, intent.Action, intent.Entry, sl, tp, intent.RealizedRR, intent.Method)
	return nil
}

func (e *Executor) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}
