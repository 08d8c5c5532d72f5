package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/market"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaultsToMinimalFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
market:
  symbol: ETHUSDT
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Market.Symbol)
	assert.Equal(t, "https://fapi.binance.com", cfg.Market.RESTBaseURL)
	assert.Equal(t, 15, cfg.Market.HTTPTimeoutSeconds)
	assert.Equal(t, 300, cfg.Kline.MaxCached)
	assert.Equal(t, "1d", cfg.Engine.TrendTimeframe)
	assert.Equal(t, "4h", cfg.Engine.DecisionTimeframe)
	assert.Equal(t, "15m", cfg.Engine.ExecutionTimeframe)
	assert.Equal(t, 200, cfg.Engine.AveragePeriod)
	assert.Equal(t, 35.0, cfg.Engine.EntryBandMin)
	assert.Equal(t, 65.0, cfg.Engine.EntryBandMax)
	assert.True(t, cfg.Engine.PriceAboveAverage)
	assert.True(t, cfg.Engine.OscillatorPositive)
	assert.False(t, cfg.Engine.OrderFlowEnabled)
	assert.False(t, cfg.Engine.LiquidationEnabled)
	assert.Equal(t, 0.5, cfg.Exit.SLBufferMult)
	assert.Equal(t, 0.3, cfg.Exit.TPBufferMult)
	assert.Equal(t, 1.3, cfg.Exit.MinRiskReward)
	assert.Equal(t, 1, cfg.Exit.MinTPQuality)
}

func TestLoadKeepsExplicitFalseOverDefault(t *testing.T) {
	// 显式写 false 的布尔值不能被默认值覆盖
	path := writeConfig(t, "config.yaml", `
market:
  symbol: BTCUSDT
engine:
  price_above_average: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Engine.PriceAboveAverage)
	assert.True(t, cfg.Engine.OscillatorPositive)
}

func TestLoadRejectsInvertedEntryBand(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
market:
  symbol: BTCUSDT
engine:
  entry_band_min: 70
  entry_band_max: 30
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry_band_min")
}

func TestLoadRejectsUnknownTimeframe(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
market:
  symbol: BTCUSDT
engine:
  trend_timeframe: 2d
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateTimeframes(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
market:
  symbol: BTCUSDT
engine:
  trend_timeframe: 4h
  decision_timeframe: 4h
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMergesIncludeFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
market:
  symbol: BTCUSDT
engine:
  average_period: 100
`), 0o644))
	main := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(main, []byte(`
include:
  - base.yaml
engine:
  average_period: 150
`), 0o644))

	cfg, err := Load(main)
	require.NoError(t, err)

	// 主文件覆盖 include 的值，未覆盖的字段从 include 继承
	assert.Equal(t, "BTCUSDT", cfg.Market.Symbol)
	assert.Equal(t, 150, cfg.Engine.AveragePeriod)
}

func TestEngineSettingsConversion(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
market:
  symbol: BTCUSDT
engine:
  trend_timeframe: 4h
  decision_timeframe: 1h
  execution_timeframe: 5m
  liquidation_enabled: true
  liquidation_threshold_usd: 10000000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	s := cfg.EngineSettings()
	assert.Equal(t, market.Timeframe4h, s.TrendTimeframe)
	assert.Equal(t, market.Timeframe1h, s.DecisionTimeframe)
	assert.Equal(t, market.Timeframe5m, s.ExecutionTimeframe)
	assert.True(t, s.LiquidationEnabled)
	assert.Equal(t, 10_000_000.0, s.LiquidationThresholdUSD)

	x := cfg.ExitSettings()
	assert.Equal(t, 1.3, x.MinRiskReward)
}
