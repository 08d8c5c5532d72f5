// Package engine 实现分层状态机与优先级过滤链：
// 趋势层（RiskState）→ 决策层（DecisionState）→ 执行层（入场时机），
// 再加上可选的订单流确认与爆仓过滤，按严格顺序短路评估。
package engine

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"strata/internal/exitplan"
	"strata/internal/flow"
	"strata/internal/logger"
	"strata/internal/market"
	"strata/internal/zone"
)

// Engine 持有全部跨评估状态。没有环境单例：所有评估器都经由
// 这个实例的句柄工作。指标追踪器只允许所属回调线程触碰；
// 跨线程读取的只有下面这些原子缓存的数值快照。
type Engine struct {
	trend     trendTracker
	decision  decisionTracker
	execution executionTracker

	settings atomic.Pointer[Settings]

	riskState     atomic.Int32
	decisionState atomic.Int32
	confidence    atomic.Int32

	lastPriceBits atomic.Uint64
	rsiBits       atomic.Uint64
	atrBits       atomic.Uint64

	trendReady     atomic.Bool
	decisionReady  atomic.Bool
	executionReady atomic.Bool

	lastDecision atomic.Pointer[Decision]
}

// New 构造引擎。初始 RiskState=RISK_OFF、DecisionState=WAIT（保守缺省）。
func New(s Settings) *Engine {
	e := &Engine{}
	norm := s.withDefaults()
	e.settings.Store(&norm)
	e.riskState.Store(int32(RiskOff))
	e.decisionState.Store(int32(DecisionWait))
	e.confidence.Store(int32(ConfidenceLow))
	return e
}

// UpdateSettings 原子替换配置快照，下一次评估生效。
func (e *Engine) UpdateSettings(s Settings) {
	norm := s.withDefaults()
	e.settings.Store(&norm)
}

func (e *Engine) currentSettings() Settings {
	return *e.settings.Load()
}

// OnBar 按精确周期标识把 K 线分发给唯一的层级，返回接收方。
// 未知标识、乱序或重复的 K 线被记录并丢弃（返回 LayerNone），不产生任何状态变化。
func (e *Engine) OnBar(bar market.Bar) Layer {
	s := e.currentSettings()
	switch bar.Timeframe {
	case s.TrendTimeframe:
		if !acceptBar(&e.trend.lastOpenTime, bar, LayerTrend) {
			return LayerNone
		}
		rs := e.trend.onClose(bar.Candle, s)
		e.riskState.Store(int32(rs))
		e.trendReady.Store(e.trend.initialized)
		return LayerTrend
	case s.DecisionTimeframe:
		if !acceptBar(&e.decision.lastOpenTime, bar, LayerDecision) {
			return LayerNone
		}
		e.decision.onClose(bar.Candle, s)
		e.decisionReady.Store(e.decision.initialized)
		return LayerDecision
	case s.ExecutionTimeframe:
		if !acceptBar(&e.execution.lastOpenTime, bar, LayerExecution) {
			return LayerNone
		}
		rsi, atr, ready := e.execution.onClose(bar.Candle, s)
		e.rsiBits.Store(math.Float64bits(rsi))
		e.atrBits.Store(math.Float64bits(atr))
		e.lastPriceBits.Store(math.Float64bits(bar.Close))
		e.executionReady.Store(ready)
		return LayerExecution
	default:
		logger.Warnf("路由器: 未知周期标识 %q，丢弃该 K 线", bar.Timeframe)
		return LayerNone
	}
}

func acceptBar(lastOpenTime *int64, bar market.Bar, layer Layer) bool {
	if bar.OpenTime <= *lastOpenTime {
		logger.Warnf("%s 层: 乱序/重复 K 线 open_time=%d (last=%d)，拒绝",
			layer, bar.OpenTime, *lastOpenTime)
		return false
	}
	*lastOpenTime = bar.OpenTime
	return true
}

// SetDecision 由 Signal Oracle 在决策层收盘后调用；引擎本身从不推导方向偏好。
func (e *Engine) SetDecision(state DecisionState, conf Confidence) {
	e.decisionState.Store(int32(state))
	e.confidence.Store(int32(conf))
	logger.Infof("决策层: DecisionState=%s confidence=%s", state, conf)
}

// SetOpenInterestChange 由衍生品服务喂入聚合持仓量变化（百分比）。
// 只影响趋势层收盘时的软警告，不参与任何否决。
func (e *Engine) SetOpenInterestChange(pct float64) {
	e.trend.setOIChange(pct)
}

// RiskState 返回趋势层缓存的闸门状态（按值）。
func (e *Engine) RiskState() RiskState {
	return RiskState(e.riskState.Load())
}

// DecisionState 返回决策层缓存的方向偏好（按值）。
func (e *Engine) DecisionState() (DecisionState, Confidence) {
	return DecisionState(e.decisionState.Load()), Confidence(e.confidence.Load())
}

// LastPrice 返回执行层最近一根收盘价的缓存值。
func (e *Engine) LastPrice() float64 {
	return math.Float64frombits(e.lastPriceBits.Load())
}

// ATR 返回执行层缓存的平均真实波幅。
func (e *Engine) ATR() float64 {
	return math.Float64frombits(e.atrBits.Load())
}

func (e *Engine) executionRSI() float64 {
	return math.Float64frombits(e.rsiBits.Load())
}

// Decide 运行完整决策流程：过滤链 → 候选位收集方已就绪的 zones →
// SL/TP 计算 → 风险回报终审。SL/TP 闸门是硬否决：不达标即降级为 HOLD。
func (e *Engine) Decide(proposed Direction, in Inputs, zones []zone.Zone, exit exitplan.Settings) Decision {
	d := Decision{Evaluation: e.Evaluate(proposed, in)}
	if d.Action == ActionHold {
		e.lastDecision.Store(&d)
		return d
	}

	side := exitplan.SideLong
	if proposed == DirectionShort {
		side = exitplan.SideShort
	}
	entry := e.LastPrice()
	rrLabel := fmt.Sprintf("rr>=%.2f", exit.MinRiskReward)
	plan, err := exitplan.Build(side, entry, e.ATR(), zones, exit)
	if err != nil {
		d.Action = ActionHold
		d.Reason = "exit plan rejected: " + err.Error()
		d.Checks = append(d.Checks, Check{
			Name:      "exit_plan",
			Passed:    false,
			Threshold: rrLabel,
			Detail:    err.Error(),
		})
		e.lastDecision.Store(&d)
		return d
	}
	d.Plan = &plan
	d.Checks = append(d.Checks, Check{
		Name:      "exit_plan",
		Passed:    true,
		Value:     plan.RealizedRR,
		Threshold: rrLabel,
		Detail:    plan.Method,
	})
	e.lastDecision.Store(&d)
	return d
}

// Snapshot 聚合当前可观测状态，全部来自原子缓存，读取无锁。
func (e *Engine) Snapshot() Snapshot {
	ds, conf := e.DecisionState()
	snap := Snapshot{
		RiskState:      e.RiskState().String(),
		DecisionState:  ds.String(),
		Confidence:     conf.String(),
		TrendReady:     e.trendReady.Load(),
		DecisionReady:  e.decisionReady.Load(),
		ExecutionReady: e.executionReady.Load(),
		LastPrice:      e.LastPrice(),
		ATR:            e.ATR(),
		RSI:            e.executionRSI(),
		GeneratedAt:    time.Now().UnixMilli(),
	}
	if d := e.lastDecision.Load(); d != nil {
		snap.LastAction = d.Action.String()
		snap.LastReason = d.Reason
		snap.LastChecks = d.Checks
		snap.LastPlan = d.Plan
	}
	return snap
}

// Decision 评估结果加上止损/止盈计划（通过时）。
type Decision struct {
	Evaluation
	Plan *exitplan.Result `json:"plan,omitempty"`
}

// Inputs 是一次评估前已经解析完毕的外部输入。
// 不可用的数据源必须显式标记，过滤链据此跳过而非惩罚。
type Inputs struct {
	OrderFlow   flow.OrderFlowReport
	Derivatives flow.DerivativesReport
}

// Snapshot 对外暴露的结构化状态快照。
type Snapshot struct {
	RiskState      string           `json:"risk_state"`
	DecisionState  string           `json:"decision_state"`
	Confidence     string           `json:"confidence"`
	TrendReady     bool             `json:"trend_ready"`
	DecisionReady  bool             `json:"decision_ready"`
	ExecutionReady bool             `json:"execution_ready"`
	LastPrice      float64          `json:"last_price"`
	ATR            float64          `json:"atr"`
	RSI            float64          `json:"rsi"`
	LastAction     string           `json:"last_action,omitempty"`
	LastReason     string           `json:"last_reason,omitempty"`
	LastChecks     []Check          `json:"last_checks,omitempty"`
	LastPlan       *exitplan.Result `json:"last_plan,omitempty"`
	GeneratedAt    int64            `json:"generated_at"`
}
