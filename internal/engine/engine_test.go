package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/exitplan"
	"strata/internal/flow"
	"strata/internal/market"
	"strata/internal/zone"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.AveragePeriod = 3
	s.RSIPeriod = 3
	s.ATRPeriod = 3
	s.EntryBandMin = 1
	s.EntryBandMax = 100
	return s
}

// feedRising 喂入 n 根单调上涨的收盘 K 线。
func feedRising(e *Engine, tf market.Timeframe, n int, start, step float64) {
	price := start
	for i := 0; i < n; i++ {
		open := price
		price += step
		e.OnBar(market.Bar{
			Timeframe: tf,
			Candle: market.Candle{
				OpenTime:  int64(i+1) * 1000,
				CloseTime: int64(i+1)*1000 + 999,
				Open:      open,
				High:      price + 1,
				Low:       open - 1,
				Close:     price,
				Volume:    10,
			},
		})
	}
}

func feedFalling(e *Engine, tf market.Timeframe, n int, start, step float64) {
	price := start
	for i := 0; i < n; i++ {
		open := price
		price -= step
		e.OnBar(market.Bar{
			Timeframe: tf,
			Candle: market.Candle{
				OpenTime:  int64(i+1) * 1000,
				CloseTime: int64(i+1)*1000 + 999,
				Open:      open,
				High:      open + 1,
				Low:       price - 1,
				Close:     price,
				Volume:    10,
			},
		})
	}
}

// riskOnEngine 构造趋势层与执行层均就绪、RiskState=RISK_ON 的引擎。
func riskOnEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(testSettings())
	feedRising(e, market.Timeframe1d, 60, 100, 1)
	feedRising(e, market.Timeframe15m, 20, 150, 0.5)
	require.Equal(t, RiskOn, e.RiskState())
	return e
}

func TestNewStartsConservative(t *testing.T) {
	e := New(testSettings())

	assert.Equal(t, RiskOff, e.RiskState())
	ds, conf := e.DecisionState()
	assert.Equal(t, DecisionWait, ds)
	assert.Equal(t, ConfidenceLow, conf)
}

func TestRiskStateVetoShortCircuits(t *testing.T) {
	e := New(testSettings())
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionLong, Inputs{})

	assert.Equal(t, ActionHold, ev.Action)
	require.Len(t, ev.Checks, 1)
	assert.Equal(t, "risk_state", ev.Checks[0].Name)
	assert.False(t, ev.Checks[0].Passed)
	assert.Equal(t, "risk state veto", ev.Reason)
}

func TestFallingTrendKeepsRiskOff(t *testing.T) {
	e := New(testSettings())
	feedFalling(e, market.Timeframe1d, 60, 500, 1)

	assert.Equal(t, RiskOff, e.RiskState())
}

func TestFullChainExecutesLong(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionLong, Inputs{})

	assert.Equal(t, ActionExecuteLong, ev.Action)
	require.Len(t, ev.Checks, 3)
	assert.Equal(t, "risk_state", ev.Checks[0].Name)
	assert.Equal(t, "direction_agreement", ev.Checks[1].Name)
	assert.Equal(t, "entry_timing", ev.Checks[2].Name)
	for _, chk := range ev.Checks {
		assert.True(t, chk.Passed, chk.Name)
	}
}

func TestDirectionMismatchStopsChain(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionShort, Inputs{})

	assert.Equal(t, ActionHold, ev.Action)
	require.Len(t, ev.Checks, 2)
	assert.False(t, ev.Checks[1].Passed)
}

func TestWaitBlocksBothDirections(t *testing.T) {
	e := riskOnEngine(t)

	for _, d := range []Direction{DirectionLong, DirectionShort} {
		ev := e.Evaluate(d, Inputs{})
		assert.Equal(t, ActionHold, ev.Action, d)
	}
}

func TestUninitializedExecutionFailsConservatively(t *testing.T) {
	e := New(testSettings())
	feedRising(e, market.Timeframe1d, 60, 100, 1)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionLong, Inputs{})

	assert.Equal(t, ActionHold, ev.Action)
	last := ev.Checks[len(ev.Checks)-1]
	assert.Equal(t, "entry_timing", last.Name)
	assert.False(t, last.Passed)
	assert.Equal(t, "execution layer uninitialized", ev.Reason)
}

func TestUnavailableOrderFlowSkipsWithoutPenalty(t *testing.T) {
	s := testSettings()
	s.OrderFlowEnabled = true
	e := New(s)
	feedRising(e, market.Timeframe1d, 60, 100, 1)
	feedRising(e, market.Timeframe15m, 20, 150, 0.5)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionLong, Inputs{OrderFlow: flow.OrderFlowReport{Available: false}})

	assert.Equal(t, ActionExecuteLong, ev.Action)
	require.Len(t, ev.Checks, 4)
	assert.Equal(t, "order_flow", ev.Checks[3].Name)
	assert.True(t, ev.Checks[3].Skipped)
	assert.True(t, ev.Checks[3].Passed)
}

func TestOrderFlowVetoesAgainstPressure(t *testing.T) {
	s := testSettings()
	s.OrderFlowEnabled = true
	e := New(s)
	feedRising(e, market.Timeframe1d, 60, 100, 1)
	feedRising(e, market.Timeframe15m, 20, 150, 0.5)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	ev := e.Evaluate(DirectionLong, Inputs{
		OrderFlow: flow.OrderFlowReport{Available: true, BuyRatio: 0.30},
	})

	assert.Equal(t, ActionHold, ev.Action)
	last := ev.Checks[len(ev.Checks)-1]
	assert.Equal(t, "order_flow", last.Name)
	assert.False(t, last.Passed)

	// 同一读数对空头是确认而非否决
	ev = e.Evaluate(DirectionShort, Inputs{
		OrderFlow: flow.OrderFlowReport{Available: true, BuyRatio: 0.30},
	})
	assert.Equal(t, ActionHold, ev.Action) // 方向一致性仍然拦截
	e.SetDecision(DecisionAllowShort, ConfidenceHigh)
	ev = e.Evaluate(DirectionShort, Inputs{
		OrderFlow: flow.OrderFlowReport{Available: true, BuyRatio: 0.30},
	})
	assert.Equal(t, ActionExecuteShort, ev.Action)
}

func TestLiquidationFilter(t *testing.T) {
	s := testSettings()
	s.LiquidationEnabled = true
	s.LiquidationThresholdUSD = 50_000_000
	e := New(s)
	feedRising(e, market.Timeframe1d, 60, 100, 1)
	feedRising(e, market.Timeframe15m, 20, 150, 0.5)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	// 数据不可用：跳过且不计惩罚
	ev := e.Evaluate(DirectionLong, Inputs{Derivatives: flow.DerivativesReport{Available: false}})
	assert.Equal(t, ActionExecuteLong, ev.Action)
	assert.True(t, ev.Checks[len(ev.Checks)-1].Skipped)

	// 超过阈值：否决
	ev = e.Evaluate(DirectionLong, Inputs{
		Derivatives: flow.DerivativesReport{Available: true, LiquidationUSD1h: 80_000_000},
	})
	assert.Equal(t, ActionHold, ev.Action)
	assert.False(t, ev.Checks[len(ev.Checks)-1].Passed)
}

func TestRouterRequiresExactTimeframe(t *testing.T) {
	e := New(testSettings())

	// 配置外的合法周期与未知周期都被丢弃，不入任何层
	bar := market.Bar{
		Timeframe: market.Timeframe30m,
		Candle:    market.Candle{OpenTime: 1000, Close: 100},
	}
	assert.Equal(t, LayerNone, e.OnBar(bar))

	bar.Timeframe = market.TimeframeUnknown
	assert.Equal(t, LayerNone, e.OnBar(bar))

	bar.Timeframe = market.Timeframe1d
	assert.Equal(t, LayerTrend, e.OnBar(bar))
}

func TestOutOfOrderBarsRejected(t *testing.T) {
	e := New(testSettings())

	mk := func(openTime int64) market.Bar {
		return market.Bar{
			Timeframe: market.Timeframe1d,
			Candle:    market.Candle{OpenTime: openTime, Close: 100, High: 101, Low: 99},
		}
	}

	assert.Equal(t, LayerTrend, e.OnBar(mk(2000)))
	assert.Equal(t, LayerNone, e.OnBar(mk(2000))) // 重复
	assert.Equal(t, LayerNone, e.OnBar(mk(1000))) // 乱序
	assert.Equal(t, LayerTrend, e.OnBar(mk(3000)))
}

func TestEvaluateRiskPredicateToggles(t *testing.T) {
	s := testSettings()

	// 双谓词全开：任一不成立即 RISK_OFF
	assert.Equal(t, RiskOn, evaluateRisk(110, 100, true, 1.5, true, s))
	assert.Equal(t, RiskOff, evaluateRisk(90, 100, true, 1.5, true, s))
	assert.Equal(t, RiskOff, evaluateRisk(110, 100, true, -0.5, true, s))
	assert.Equal(t, RiskOff, evaluateRisk(110, 0, false, 1.5, true, s))

	// 关闭价格谓词后只看振荡器
	s.PriceAboveAverage = false
	assert.Equal(t, RiskOn, evaluateRisk(90, 100, true, 1.5, true, s))

	// 全部关闭则无条件 RISK_ON
	s.OscillatorPositive = false
	assert.Equal(t, RiskOn, evaluateRisk(90, 100, false, -1, false, s))
}

func TestDecideBuildsPlanOnPass(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	price := e.LastPrice()
	require.Greater(t, price, 0.0)
	zones := []zone.Zone{
		{Price: price * 0.95, Source: zone.SourceStructural, Strength: zone.StrengthHigh, TouchCount: 3, HasSwing: true},
		{Price: price * 1.20, Source: zone.SourceStructural, Strength: zone.StrengthHigh, TouchCount: 3, HasSwing: true},
	}

	d := e.Decide(DirectionLong, Inputs{}, zones, exitplan.DefaultSettings())

	assert.Equal(t, ActionExecuteLong, d.Action)
	require.NotNil(t, d.Plan)
	assert.Less(t, d.Plan.StopLoss, price)
	assert.Greater(t, d.Plan.TakeProfit, price)
	assert.GreaterOrEqual(t, d.Plan.RealizedRR, 1.3)

	last := d.Checks[len(d.Checks)-1]
	assert.Equal(t, "exit_plan", last.Name)
	assert.True(t, last.Passed)
}

func TestDecideHoldsWhenPlanRejected(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	// 盈利侧没有任何候选位：R/R 闸门属硬否决，降级为 HOLD
	price := e.LastPrice()
	zones := []zone.Zone{
		{Price: price * 0.95, Source: zone.SourceStructural, Strength: zone.StrengthHigh},
	}

	d := e.Decide(DirectionLong, Inputs{}, zones, exitplan.DefaultSettings())

	assert.Equal(t, ActionHold, d.Action)
	assert.Nil(t, d.Plan)
	last := d.Checks[len(d.Checks)-1]
	assert.Equal(t, "exit_plan", last.Name)
	assert.False(t, last.Passed)
}

func TestSnapshotReflectsState(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceMedium)

	snap := e.Snapshot()

	assert.Equal(t, "RISK_ON", snap.RiskState)
	assert.Equal(t, "ALLOW_LONG", snap.DecisionState)
	assert.Equal(t, "MEDIUM", snap.Confidence)
	assert.True(t, snap.TrendReady)
	assert.True(t, snap.ExecutionReady)
	assert.Greater(t, snap.LastPrice, 0.0)
	assert.Greater(t, snap.ATR, 0.0)
}

func TestUpdateSettingsTakesEffectNextEvaluation(t *testing.T) {
	e := riskOnEngine(t)
	e.SetDecision(DecisionAllowLong, ConfidenceHigh)

	s := testSettings()
	s.EntryBandMin = 1
	s.EntryBandMax = 2 // RSI 必然在带外
	e.UpdateSettings(s)

	ev := e.Evaluate(DirectionLong, Inputs{})
	assert.Equal(t, ActionHold, ev.Action)
	last := ev.Checks[len(ev.Checks)-1]
	assert.Equal(t, "entry_timing", last.Name)
	assert.False(t, last.Passed)
}
