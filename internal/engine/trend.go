package engine

import (
	"strata/internal/analysis/indicator"
	"strata/internal/logger"
	"strata/internal/market"
)

// trendTracker 慢层（日线级）。只在自己的收盘事件里计算 RiskState，
// 指标对象绝不跨线程外借，外部读到的永远是缓存的数值快照。
type trendTracker struct {
	candles      []market.Candle
	lastOpenTime int64

	sma         float64
	oscillator  float64
	initialized bool

	// 衍生品服务喂入的聚合持仓量变化（百分比，负值为下降）。
	oiChangePct float64
	oiChangeSet bool
}

func (t *trendTracker) setOIChange(pct float64) {
	t.oiChangePct = pct
	t.oiChangeSet = true
}

// onClose 在趋势层收盘时重算指标并返回新的 RiskState。
// RISK_ON 当且仅当所有启用的谓词同时成立；历史不足时保守返回 RISK_OFF。
func (t *trendTracker) onClose(c market.Candle, s Settings) RiskState {
	t.candles = appendCapped(t.candles, c, s.MaxCandles)
	series := indicator.BuildSeries(t.candles)

	sma, smaOK := indicator.SMA(series.Closes, s.AveragePeriod)
	osc, oscOK := indicator.MACDHist(series.Closes, 0, 0, 0)
	t.sma = sma
	t.oscillator = osc
	t.initialized = smaOK && oscOK

	// 持仓量大幅下降只发软警告，单一噪声指标不足以翻转 RiskState。
	if t.oiChangeSet && t.oiChangePct <= -s.OIDeclineWarnPct {
		logger.Warnf("趋势层: 聚合持仓量下降 %.2f%% (警戒线 %.2f%%)，保持 RiskState 不变",
			t.oiChangePct, s.OIDeclineWarnPct)
	}

	return evaluateRisk(c.Close, sma, smaOK, osc, oscOK, s)
}

// evaluateRisk 是 RiskState 的纯函数形式，便于直接按性质测试。
func evaluateRisk(price, sma float64, smaOK bool, osc float64, oscOK bool, s Settings) RiskState {
	if s.PriceAboveAverage {
		if !smaOK || price <= sma {
			return RiskOff
		}
	}
	if s.OscillatorPositive {
		if !oscOK || osc <= 0 {
			return RiskOff
		}
	}
	return RiskOn
}

func appendCapped(candles []market.Candle, c market.Candle, max int) []market.Candle {
	candles = append(candles, c)
	if max > 0 && len(candles) > max {
		candles = candles[len(candles)-max:]
	}
	return candles
}
