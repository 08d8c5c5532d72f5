package engine

import "strata/internal/market"

// Settings 是引擎在单次评估内使用的不可变配置快照。
// 合法性在配置加载阶段校验（config.validate），这里只补默认值。
type Settings struct {
	TrendTimeframe     market.Timeframe
	DecisionTimeframe  market.Timeframe
	ExecutionTimeframe market.Timeframe

	AveragePeriod      int
	PriceAboveAverage  bool
	OscillatorPositive bool

	EntryBandMin float64
	EntryBandMax float64
	RSIPeriod    int
	ATRPeriod    int

	OrderFlowEnabled        bool
	LiquidationEnabled      bool
	LiquidationThresholdUSD float64

	OIDeclineWarnPct float64

	MaxCandles int
}

// DefaultSettings 返回保守默认：双趋势谓词开启，可选过滤器关闭。
func DefaultSettings() Settings {
	return Settings{
		TrendTimeframe:          market.Timeframe1d,
		DecisionTimeframe:       market.Timeframe4h,
		ExecutionTimeframe:      market.Timeframe15m,
		AveragePeriod:           200,
		PriceAboveAverage:       true,
		OscillatorPositive:      true,
		EntryBandMin:            35,
		EntryBandMax:            65,
		RSIPeriod:               14,
		ATRPeriod:               14,
		OrderFlowEnabled:        false,
		LiquidationEnabled:      false,
		LiquidationThresholdUSD: 50_000_000,
		OIDeclineWarnPct:        10,
		MaxCandles:              300,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if !s.TrendTimeframe.Valid() {
		s.TrendTimeframe = def.TrendTimeframe
	}
	if !s.DecisionTimeframe.Valid() {
		s.DecisionTimeframe = def.DecisionTimeframe
	}
	if !s.ExecutionTimeframe.Valid() {
		s.ExecutionTimeframe = def.ExecutionTimeframe
	}
	if s.AveragePeriod <= 0 {
		s.AveragePeriod = def.AveragePeriod
	}
	if s.EntryBandMin <= 0 && s.EntryBandMax <= 0 {
		s.EntryBandMin = def.EntryBandMin
		s.EntryBandMax = def.EntryBandMax
	}
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = def.RSIPeriod
	}
	if s.ATRPeriod <= 0 {
		s.ATRPeriod = def.ATRPeriod
	}
	if s.LiquidationThresholdUSD <= 0 {
		s.LiquidationThresholdUSD = def.LiquidationThresholdUSD
	}
	if s.OIDeclineWarnPct <= 0 {
		s.OIDeclineWarnPct = def.OIDeclineWarnPct
	}
	if s.MaxCandles <= 0 {
		s.MaxCandles = def.MaxCandles
	}
	return s
}
