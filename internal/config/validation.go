package config

import (
	"fmt"
	"strings"

	"strata/internal/market"
	"strata/internal/zone"
)

// validate 对配置进行基础校验。这是整个系统里唯一允许主动报错的地方：
// 配置错误在加载阶段抛出，任何评估开始之后都只会降级为 HOLD。
func validate(c *Config) error {
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Kline.validate(); err != nil {
		return err
	}
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Exit.validate(); err != nil {
		return err
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if strings.TrimSpace(m.Symbol) == "" {
		return fmt.Errorf("market.symbol cannot be empty")
	}
	if m.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("market.http_timeout_seconds must be > 0")
	}
	return nil
}

func (k *KlineConfig) validate() error {
	if k.MaxCached <= 0 {
		return fmt.Errorf("kline.max_cached must be > 0")
	}
	return nil
}

func (e *EngineConfig) validate() error {
	tfs := map[string]string{
		"engine.trend_timeframe":     e.TrendTimeframe,
		"engine.decision_timeframe":  e.DecisionTimeframe,
		"engine.execution_timeframe": e.ExecutionTimeframe,
	}
	seen := make(map[market.Timeframe]string, len(tfs))
	for key, raw := range tfs {
		tf, err := market.ParseTimeframe(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if prev, dup := seen[tf]; dup {
			return fmt.Errorf("%s and %s both use timeframe %q", prev, key, raw)
		}
		seen[tf] = key
	}
	if e.AveragePeriod <= 0 {
		return fmt.Errorf("engine.average_period must be > 0")
	}
	if e.EntryBandMin >= e.EntryBandMax {
		return fmt.Errorf("engine.entry_band_min (%.1f) must be < entry_band_max (%.1f)",
			e.EntryBandMin, e.EntryBandMax)
	}
	if e.EntryBandMin < 0 || e.EntryBandMax > 100 {
		return fmt.Errorf("engine entry band must lie within [0,100]")
	}
	if e.RSIPeriod <= 0 {
		return fmt.Errorf("engine.rsi_period must be > 0")
	}
	if e.ATRPeriod <= 0 {
		return fmt.Errorf("engine.atr_period must be > 0")
	}
	if e.LiquidationEnabled && e.LiquidationThresholdUSD <= 0 {
		return fmt.Errorf("engine.liquidation_threshold_usd must be > 0 when the filter is enabled")
	}
	return nil
}

func (x *ExitConfig) validate() error {
	if x.SLBufferMult < 0 {
		return fmt.Errorf("exit.sl_buffer_mult must be >= 0")
	}
	if x.TPBufferMult < 0 {
		return fmt.Errorf("exit.tp_buffer_mult must be >= 0")
	}
	if x.MinRiskReward <= 0 {
		return fmt.Errorf("exit.min_risk_reward must be > 0")
	}
	if x.MinTPQuality < zone.QualityMin || x.MinTPQuality > zone.QualityMax {
		return fmt.Errorf("exit.min_tp_quality must lie within [%d,%d]",
			zone.QualityMin, zone.QualityMax)
	}
	return nil
}
