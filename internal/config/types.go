package config

import (
	"time"

	"strata/internal/engine"
	"strata/internal/exitplan"
	"strata/internal/market"
)

// Config 是 strata 的主配置载体。加载后即为不可变快照：
// 评估方每次取用一份，热重载通过整体替换完成。
type Config struct {
	App    AppConfig    `toml:"app"`
	Market MarketConfig `toml:"market"`
	Kline  KlineConfig  `toml:"kline"`
	Engine EngineConfig `toml:"engine"`
	Exit   ExitConfig   `toml:"exit"`
	Store  StoreConfig  `toml:"store"`
	Paper  PaperConfig  `toml:"paper"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type MarketConfig struct {
	Symbol             string `toml:"symbol"`
	RESTBaseURL        string `toml:"rest_base_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	ProxyEnabled       bool   `toml:"proxy_enabled"`
	RESTProxyURL       string `toml:"rest_proxy_url"`
	PollSeconds        int    `toml:"poll_seconds"`
}

func (m MarketConfig) HTTPTimeout() time.Duration {
	return time.Duration(m.HTTPTimeoutSeconds) * time.Second
}

func (m MarketConfig) PollInterval() time.Duration {
	return time.Duration(m.PollSeconds) * time.Second
}

type KlineConfig struct {
	MaxCached int `toml:"max_cached"`
}

// EngineConfig 分层状态机与过滤链的全部旋钮。
type EngineConfig struct {
	TrendTimeframe     string `toml:"trend_timeframe"`
	DecisionTimeframe  string `toml:"decision_timeframe"`
	ExecutionTimeframe string `toml:"execution_timeframe"`

	AveragePeriod      int  `toml:"average_period"`
	PriceAboveAverage  bool `toml:"price_above_average"`
	OscillatorPositive bool `toml:"oscillator_positive"`

	EntryBandMin float64 `toml:"entry_band_min"`
	EntryBandMax float64 `toml:"entry_band_max"`
	RSIPeriod    int     `toml:"rsi_period"`
	ATRPeriod    int     `toml:"atr_period"`

	OrderFlowEnabled        bool    `toml:"order_flow_enabled"`
	LiquidationEnabled      bool    `toml:"liquidation_enabled"`
	LiquidationThresholdUSD float64 `toml:"liquidation_threshold_usd"`

	OIDeclineWarnPct float64 `toml:"oi_decline_warn_pct"`
}

// ExitConfig 止损/止盈选取参数。
type ExitConfig struct {
	SLBufferMult  float64 `toml:"sl_buffer_mult"`
	TPBufferMult  float64 `toml:"tp_buffer_mult"`
	MinRiskReward float64 `toml:"min_risk_reward"`
	MinTPQuality  int     `toml:"min_tp_quality"`
}

type StoreConfig struct {
	DecisionLogPath string `toml:"decision_log_path"`
}

// PaperConfig 干跑执行网关。
type PaperConfig struct {
	Enabled     bool    `toml:"enabled"`
	JournalPath string  `toml:"journal_path"`
	TickSize    float64 `toml:"tick_size"`
}

// EngineSettings 把配置映射为引擎的不可变设置快照。
// 周期字符串在 validate 阶段已确认可精确解析，这里忽略错误分支。
func (c *Config) EngineSettings() engine.Settings {
	trendTF, _ := market.ParseTimeframe(c.Engine.TrendTimeframe)
	decisionTF, _ := market.ParseTimeframe(c.Engine.DecisionTimeframe)
	execTF, _ := market.ParseTimeframe(c.Engine.ExecutionTimeframe)
	return engine.Settings{
		TrendTimeframe:          trendTF,
		DecisionTimeframe:       decisionTF,
		ExecutionTimeframe:      execTF,
		AveragePeriod:           c.Engine.AveragePeriod,
		PriceAboveAverage:       c.Engine.PriceAboveAverage,
		OscillatorPositive:      c.Engine.OscillatorPositive,
		EntryBandMin:            c.Engine.EntryBandMin,
		EntryBandMax:            c.Engine.EntryBandMax,
		RSIPeriod:               c.Engine.RSIPeriod,
		ATRPeriod:               c.Engine.ATRPeriod,
		OrderFlowEnabled:        c.Engine.OrderFlowEnabled,
		LiquidationEnabled:      c.Engine.LiquidationEnabled,
		LiquidationThresholdUSD: c.Engine.LiquidationThresholdUSD,
		OIDeclineWarnPct:        c.Engine.OIDeclineWarnPct,
		MaxCandles:              c.Kline.MaxCached,
	}
}

// ExitSettings 止损/止盈参数快照。
func (c *Config) ExitSettings() exitplan.Settings {
	return exitplan.Settings{
		SLBufferMult:  c.Exit.SLBufferMult,
		TPBufferMult:  c.Exit.TPBufferMult,
		MinRiskReward: c.Exit.MinRiskReward,
		MinTPQuality:  c.Exit.MinTPQuality,
	}
}
