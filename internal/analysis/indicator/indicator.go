// Package indicator 基于 go-talib 计算各层级所需的指标最新值。
package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"strata/internal/market"
)

// Series 把 K 线拆成 talib 需要的数值序列。
type Series struct {
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Volumes []float64
}

func BuildSeries(candles []market.Candle) Series {
	s := Series{
		Highs:   make([]float64, len(candles)),
		Lows:    make([]float64, len(candles)),
		Closes:  make([]float64, len(candles)),
		Volumes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		s.Highs[i] = c.High
		s.Lows[i] = c.Low
		s.Closes[i] = c.Close
		s.Volumes[i] = c.Volume
	}
	return s
}

// SMA 返回最新的简单均线值；数据不足时返回 (0, false)。
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	series := sanitizeSeries(talib.Sma(closes, period))
	v := lastValid(series)
	if v == 0 && !hasNonZero(series) {
		return 0, false
	}
	return v, true
}

// RSI 返回最新的 RSI 值；数据不足时返回 (0, false)。
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) <= period {
		return 0, false
	}
	series := sanitizeSeries(talib.Rsi(closes, period))
	v := lastValid(series)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// MACDHist 返回最新的 MACD 柱值（趋势强度振荡器）。
func MACDHist(closes []float64, fast, slow, signal int) (float64, bool) {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	if len(closes) < slow+signal {
		return 0, false
	}
	_, _, hist := talib.Macd(closes, fast, slow, signal)
	series := sanitizeSeries(hist)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// ATR 返回最新的平均真实波幅；数据不足时返回 (0, false)。
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	if period <= 0 {
		period = 14
	}
	if len(closes) <= period || len(highs) != len(closes) || len(lows) != len(closes) {
		return 0, false
	}
	series := sanitizeSeries(talib.Atr(highs, lows, closes, period))
	v := lastValid(series)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

func sanitizeSeries(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != 0 {
			return series[i]
		}
	}
	if len(series) > 0 {
		return series[len(series)-1]
	}
	return 0
}

func hasNonZero(series []float64) bool {
	for _, v := range series {
		if v != 0 {
			return true
		}
	}
	return false
}
