package engine

import (
	"fmt"
	"time"
)

// Check 过滤链中单个检查的留痕记录。
// Skipped=true 表示数据源不可用时的“跳过且不计惩罚”，链继续向后走。
type Check struct {
	Name      string  `json:"name"`
	Passed    bool    `json:"passed"`
	Skipped   bool    `json:"skipped,omitempty"`
	Value     float64 `json:"value"`
	Threshold string  `json:"threshold"`
	Detail    string  `json:"detail,omitempty"`
}

// Evaluation 过滤链的评估结果。Checks 严格按评估顺序记录，
// 链在第一个失败的检查处停止，其后的检查不会出现在列表里。
type Evaluation struct {
	Proposed  Direction `json:"proposed"`
	Action    Action    `json:"action"`
	Checks    []Check   `json:"checks"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp int64     `json:"ts"`
}

// Evaluate 以执行层节奏运行优先级过滤链：
//  1. RiskState 否决（无条件）
//  2. 方向一致性（WAIT 恒为 HOLD）
//  3. 入场时机窗口（执行层振荡器落在配置区间内）
//  4. 可选订单流确认（数据不可用时整体跳过，不计惩罚）
//  5. 可选爆仓量过滤
//
// 任一检查失败立即短路，最终动作为 HOLD。
func (e *Engine) Evaluate(proposed Direction, in Inputs) Evaluation {
	s := e.currentSettings()
	ev := Evaluation{
		Proposed:  proposed,
		Action:    ActionHold,
		Timestamp: time.Now().UnixMilli(),
	}

	// 1. RiskState 否决
	rs := e.RiskState()
	chk := Check{
		Name:      "risk_state",
		Passed:    rs == RiskOn,
		Value:     float64(rs),
		Threshold: RiskOn.String(),
		Detail:    rs.String(),
	}
	ev.Checks = append(ev.Checks, chk)
	if !chk.Passed {
		ev.Reason = "risk state veto"
		return ev
	}

	// 2. 方向一致性
	ds, _ := e.DecisionState()
	agree := (proposed == DirectionLong && ds == DecisionAllowLong) ||
		(proposed == DirectionShort && ds == DecisionAllowShort)
	chk = Check{
		Name:      "direction_agreement",
		Passed:    agree,
		Value:     float64(ds),
		Threshold: proposed.String(),
		Detail:    ds.String(),
	}
	ev.Checks = append(ev.Checks, chk)
	if !chk.Passed {
		ev.Reason = fmt.Sprintf("decision state %s does not allow %s", ds, proposed)
		return ev
	}

	// 3. 入场时机窗口
	band := fmt.Sprintf("[%.1f,%.1f]", s.EntryBandMin, s.EntryBandMax)
	if !e.executionReady.Load() {
		ev.Checks = append(ev.Checks, Check{
			Name:      "entry_timing",
			Passed:    false,
			Threshold: band,
			Detail:    "execution layer uninitialized",
		})
		ev.Reason = "execution layer uninitialized"
		return ev
	}
	rsi := e.executionRSI()
	chk = Check{
		Name:      "entry_timing",
		Passed:    rsi >= s.EntryBandMin && rsi <= s.EntryBandMax,
		Value:     rsi,
		Threshold: band,
	}
	ev.Checks = append(ev.Checks, chk)
	if !chk.Passed {
		ev.Reason = fmt.Sprintf("rsi %.2f outside entry band %s", rsi, band)
		return ev
	}

	// 4. 订单流确认（可选，默认关闭）
	if s.OrderFlowEnabled {
		if !in.OrderFlow.Available {
			ev.Checks = append(ev.Checks, Check{
				Name:      "order_flow",
				Passed:    true,
				Skipped:   true,
				Threshold: orderFlowThreshold(proposed),
				Detail:    "feed unavailable, skipped without penalty",
			})
		} else {
			ratio := in.OrderFlow.BuyRatio
			passed := ratio >= 0.50
			if proposed == DirectionShort {
				passed = ratio <= 0.50
			}
			chk = Check{
				Name:      "order_flow",
				Passed:    passed,
				Value:     ratio,
				Threshold: orderFlowThreshold(proposed),
			}
			ev.Checks = append(ev.Checks, chk)
			if !chk.Passed {
				ev.Reason = fmt.Sprintf("buy pressure %.3f fails %s", ratio, chk.Threshold)
				return ev
			}
		}
	}

	// 5. 爆仓量过滤（可选，默认关闭）
	if s.LiquidationEnabled {
		limit := fmt.Sprintf("<=%.0f", s.LiquidationThresholdUSD)
		if !in.Derivatives.Available {
			ev.Checks = append(ev.Checks, Check{
				Name:      "liquidation",
				Passed:    true,
				Skipped:   true,
				Threshold: limit,
				Detail:    "feed unavailable, skipped without penalty",
			})
		} else {
			vol := in.Derivatives.LiquidationUSD1h
			chk = Check{
				Name:      "liquidation",
				Passed:    vol <= s.LiquidationThresholdUSD,
				Value:     vol,
				Threshold: limit,
			}
			ev.Checks = append(ev.Checks, chk)
			if !chk.Passed {
				ev.Reason = fmt.Sprintf("liquidation volume %.0f exceeds threshold", vol)
				return ev
			}
		}
	}

	ev.Action = actionFor(proposed)
	return ev
}

func orderFlowThreshold(d Direction) string {
	if d == DirectionShort {
		return "<=0.50"
	}
	return ">=0.50"
}
