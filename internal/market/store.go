package market

import (
	"context"
	"sort"
	"sync"
)

// KlineStore 缓存各 symbol+周期的 K 线序列。
type KlineStore interface {
	Get(ctx context.Context, symbol string, tf Timeframe) ([]Candle, error)
	Set(ctx context.Context, symbol string, tf Timeframe, klines []Candle) error
	Put(ctx context.Context, symbol string, tf Timeframe, klines []Candle, max int) error
}

type storeKey struct {
	symbol string
	tf     Timeframe
}

// MemoryStore 是进程内的 K 线缓存，按 OpenTime 去重并保持升序。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[storeKey][]Candle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[storeKey][]Candle)}
}

func (s *MemoryStore) Get(_ context.Context, symbol string, tf Timeframe) ([]Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.data[storeKey{symbol: symbol, tf: tf}]
	out := make([]Candle, len(src))
	copy(out, src)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, symbol string, tf Timeframe, klines []Candle) error {
	cp := make([]Candle, len(klines))
	copy(cp, klines)
	sort.Slice(cp, func(i, j int) bool { return cp[i].OpenTime < cp[j].OpenTime })
	s.mu.Lock()
	s.data[storeKey{symbol: symbol, tf: tf}] = cp
	s.mu.Unlock()
	return nil
}

// Put 合并新批次：按 OpenTime 去重（新值覆盖旧值），超过 max 时裁掉最旧的。
func (s *MemoryStore) Put(_ context.Context, symbol string, tf Timeframe, klines []Candle, max int) error {
	if len(klines) == 0 {
		return nil
	}
	key := storeKey{symbol: symbol, tf: tf}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[int64]Candle, len(s.data[key])+len(klines))
	for _, c := range s.data[key] {
		merged[c.OpenTime] = c
	}
	for _, c := range klines {
		merged[c.OpenTime] = c
	}
	out := make([]Candle, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	s.data[key] = out
	return nil
}
