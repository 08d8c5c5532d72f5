// Package exitplan 从候选价位中选取止损/止盈：
// 止损取保护侧质量最高的价位并向外加缓冲；止盈按 ATR 距离分带、
// 带内按质量排序、向内加缓冲后过风险回报闸门，允许一次质量阈值
// 降级与一次量度移动兜底。闸门不达标即拒绝开仓，属硬否决。
package exitplan

import (
	"errors"
	"math"

	"strata/internal/zone"
)

// Side 开仓方向（与仓位侧一致的字符串标签）。
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// 计划被拒绝的原因。对单次决策是致命的，对进程不是。
var (
	ErrInvalidEntry = errors.New("entry price must be positive")
	ErrInvalidSide  = errors.New("side must be long or short")
	ErrNoStopAnchor = errors.New("no qualifying zone on the protective side")
	ErrNoTarget     = errors.New("no take-profit candidate clears the risk/reward gate")
)

// Settings 止损/止盈计算的不可变参数快照。
type Settings struct {
	SLBufferMult  float64 `json:"sl_buffer_mult"`
	TPBufferMult  float64 `json:"tp_buffer_mult"`
	MinRiskReward float64 `json:"min_risk_reward"`
	MinTPQuality  int     `json:"min_tp_quality"`
}

// DefaultSettings 缺省值。最小 R/R 取 1.3 而非朴素的 1.5：
// 回报按缓冲后的价格计算，本身已是更诚实、更低的保守估计。
func DefaultSettings() Settings {
	return Settings{
		SLBufferMult:  0.5,
		TPBufferMult:  0.3,
		MinRiskReward: 1.3,
		MinTPQuality:  1,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.SLBufferMult <= 0 {
		s.SLBufferMult = def.SLBufferMult
	}
	if s.TPBufferMult <= 0 {
		s.TPBufferMult = def.TPBufferMult
	}
	if s.MinRiskReward <= 0 {
		s.MinRiskReward = def.MinRiskReward
	}
	if s.MinTPQuality < 0 {
		s.MinTPQuality = def.MinTPQuality
	}
	return s
}

// 止盈选取方式标签。
const (
	MethodZone         = "zone"
	MethodZoneDegraded = "zone_degraded"
	MethodMeasuredMove = "measured_move"
)

// Result 一次计算的最终产物，仅是输入的纯函数。
type Result struct {
	StopLoss      float64 `json:"sl_price"`
	TakeProfit    float64 `json:"tp_price"`
	Method        string  `json:"method_tag"`
	RealizedRR    float64 `json:"realized_rr"`
	StopQuality   int     `json:"stop_quality"`
	TargetQuality int     `json:"target_quality"`
	Degraded      bool    `json:"degraded,omitempty"`
}

// Build 计算完整的止损/止盈方案。返回前校验：
// 止损必须严格在入场价的亏损侧，止盈必须严格在盈利侧。
func Build(side Side, entry, atr float64, zones []zone.Zone, s Settings) (Result, error) {
	if entry <= 0 || math.IsNaN(entry) || math.IsInf(entry, 0) {
		return Result{}, ErrInvalidEntry
	}
	if side != SideLong && side != SideShort {
		return Result{}, ErrInvalidSide
	}
	s = s.withDefaults()
	clean := zone.Sanitize(zones)

	stop, err := selectStopLoss(side, entry, atr, clean, s)
	if err != nil {
		return Result{}, err
	}
	risk := math.Abs(entry - stop.price)
	if risk <= 0 {
		return Result{}, ErrNoStopAnchor
	}

	target, err := selectTakeProfit(side, entry, atr, risk, stop.price, clean, s)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		StopLoss:      stop.price,
		TakeProfit:    target.price,
		Method:        target.method,
		RealizedRR:    target.rr,
		StopQuality:   stop.quality,
		TargetQuality: target.quality,
		Degraded:      target.degraded,
	}
	if !validSides(side, entry, res.StopLoss, res.TakeProfit) {
		return Result{}, ErrNoTarget
	}
	return res, nil
}

// 止损必须在亏损侧、止盈在盈利侧，违反的输入直接拒绝而非静默接受。
func validSides(side Side, entry, sl, tp float64) bool {
	if side == SideLong {
		return sl < entry && tp > entry
	}
	return sl > entry && tp < entry
}

// bandWidth 分带宽度：ATR，不可用时退化为入场价的 1%。
func bandWidth(entry, atr float64) float64 {
	if atr > 0 {
		return atr
	}
	return entry * 0.01
}
