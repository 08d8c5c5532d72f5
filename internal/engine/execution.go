package engine

import (
	"strata/internal/analysis/indicator"
	"strata/internal/market"
)

// executionTracker 快层（15 分钟级）。维护入场时机所需的短周期指标。
type executionTracker struct {
	candles      []market.Candle
	lastOpenTime int64

	rsi         float64
	atr         float64
	initialized bool
}

// onClose 在执行层收盘时重算 RSI 与 ATR，返回 (rsi, atr, ready)。
func (t *executionTracker) onClose(c market.Candle, s Settings) (float64, float64, bool) {
	t.candles = appendCapped(t.candles, c, s.MaxCandles)
	series := indicator.BuildSeries(t.candles)

	rsi, rsiOK := indicator.RSI(series.Closes, s.RSIPeriod)
	atr, atrOK := indicator.ATR(series.Highs, series.Lows, series.Closes, s.ATRPeriod)
	t.rsi = rsi
	t.atr = atr
	t.initialized = rsiOK && atrOK
	return rsi, atr, t.initialized
}

// decisionTracker 中层（4 小时级）。DecisionState 由外部 Oracle 写入，
// 这里只保存周期数据与初始化标记。
type decisionTracker struct {
	candles      []market.Candle
	lastOpenTime int64
	initialized  bool
}

func (t *decisionTracker) onClose(c market.Candle, s Settings) {
	t.candles = appendCapped(t.candles, c, s.MaxCandles)
	t.initialized = len(t.candles) > 0
}
