package config

import "strings"

// 默认值常量
const (
	defaultAppEnv      = "dev"
	defaultAppLogLevel = "info"
	defaultAppHTTPAddr = ":9992"
	defaultAppLogPath  = ""

	defaultMarketSymbol      = "BTCUSDT"
	defaultMarketREST        = "https://fapi.binance.com"
	defaultMarketHTTPTimeout = 15
	defaultMarketPollSeconds = 60

	defaultKlineMaxCached = 300

	defaultTrendTimeframe     = "1d"
	defaultDecisionTimeframe  = "4h"
	defaultExecutionTimeframe = "15m"
	defaultAveragePeriod      = 200
	defaultEntryBandMin       = 35.0
	defaultEntryBandMax       = 65.0
	defaultRSIPeriod          = 14
	defaultATRPeriod          = 14
	defaultLiquidationUSD     = 50_000_000.0
	defaultOIDeclineWarnPct   = 10.0

	defaultSLBufferMult  = 0.5
	defaultTPBufferMult  = 0.3
	defaultMinRiskReward = 1.3
	defaultMinTPQuality  = 1

	defaultDecisionLogPath  = "data/live/decisions.db"
	defaultPaperJournalPath = "data/live/paper_fills.db"
)

type keySet map[string]bool

func (k keySet) mark(key string) {
	if k == nil {
		return
	}
	k[strings.ToLower(strings.TrimSpace(key))] = true
}

func (k keySet) has(key string) bool {
	return k[strings.ToLower(strings.TrimSpace(key))]
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

// applyFieldDefaults 跳过显式出现在配置文件里的 key，其余按需补默认值，
// 以区分"显式 false/0"与"未设置"。
func applyFieldDefaults(keys keySet, fields ...fieldDefault) {
	for _, f := range fields {
		if keys.has(f.key) {
			continue
		}
		if f.need != nil && !f.need() {
			continue
		}
		if f.apply != nil {
			f.apply()
		}
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Market.applyDefaults(keys)
	c.Kline.applyDefaults(keys)
	c.Engine.applyDefaults(keys)
	c.Exit.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Paper.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (m *MarketConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("market.symbol", &m.Symbol, defaultMarketSymbol),
		stringFieldDefault("market.rest_base_url", &m.RESTBaseURL, defaultMarketREST),
		intFieldDefault("market.http_timeout_seconds", &m.HTTPTimeoutSeconds, defaultMarketHTTPTimeout),
		intFieldDefault("market.poll_seconds", &m.PollSeconds, defaultMarketPollSeconds),
	)
	m.Symbol = strings.ToUpper(strings.TrimSpace(m.Symbol))
}

func (k *KlineConfig) applyDefaults(keys keySet) {
	if k == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("kline.max_cached", &k.MaxCached, defaultKlineMaxCached),
	)
}

func (e *EngineConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("engine.trend_timeframe", &e.TrendTimeframe, defaultTrendTimeframe),
		stringFieldDefault("engine.decision_timeframe", &e.DecisionTimeframe, defaultDecisionTimeframe),
		stringFieldDefault("engine.execution_timeframe", &e.ExecutionTimeframe, defaultExecutionTimeframe),
		intFieldDefault("engine.average_period", &e.AveragePeriod, defaultAveragePeriod),
		// 两个趋势谓词默认开启；可选过滤器默认关闭。
		boolFieldDefault("engine.price_above_average", &e.PriceAboveAverage, true),
		boolFieldDefault("engine.oscillator_positive", &e.OscillatorPositive, true),
		boolFieldDefault("engine.order_flow_enabled", &e.OrderFlowEnabled, false),
		boolFieldDefault("engine.liquidation_enabled", &e.LiquidationEnabled, false),
		floatFieldDefault("engine.entry_band_min", &e.EntryBandMin, defaultEntryBandMin),
		floatFieldDefault("engine.entry_band_max", &e.EntryBandMax, defaultEntryBandMax),
		intFieldDefault("engine.rsi_period", &e.RSIPeriod, defaultRSIPeriod),
		intFieldDefault("engine.atr_period", &e.ATRPeriod, defaultATRPeriod),
		floatFieldDefault("engine.liquidation_threshold_usd", &e.LiquidationThresholdUSD, defaultLiquidationUSD),
		floatFieldDefault("engine.oi_decline_warn_pct", &e.OIDeclineWarnPct, defaultOIDeclineWarnPct),
	)
}

func (x *ExitConfig) applyDefaults(keys keySet) {
	if x == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("exit.sl_buffer_mult", &x.SLBufferMult, defaultSLBufferMult),
		floatFieldDefault("exit.tp_buffer_mult", &x.TPBufferMult, defaultTPBufferMult),
		floatFieldDefault("exit.min_risk_reward", &x.MinRiskReward, defaultMinRiskReward),
		intFieldDefault("exit.min_tp_quality", &x.MinTPQuality, defaultMinTPQuality),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.decision_log_path", &s.DecisionLogPath, defaultDecisionLogPath),
	)
}

func (p *PaperConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("paper.enabled", &p.Enabled, true),
		stringFieldDefault("paper.journal_path", &p.JournalPath, defaultPaperJournalPath),
	)
}
