package engine

// 层级状态机的各枚举。状态只由所属层级在自己的收盘事件中改写，
// 其他位置一律按值读取快照。

// RiskState 趋势层闸门。RISK_OFF 无条件否决所有新开仓。
type RiskState int32

const (
	RiskOff RiskState = iota
	RiskOn
)

func (s RiskState) String() string {
	if s == RiskOn {
		return "RISK_ON"
	}
	return "RISK_OFF"
}

// DecisionState 决策层方向偏好，由外部 Signal Oracle 通过 setter 写入。
type DecisionState int32

const (
	DecisionWait DecisionState = iota
	DecisionAllowLong
	DecisionAllowShort
)

func (s DecisionState) String() string {
	switch s {
	case DecisionAllowLong:
		return "ALLOW_LONG"
	case DecisionAllowShort:
		return "ALLOW_SHORT"
	default:
		return "WAIT"
	}
}

// Confidence 决策置信度标签。
type Confidence int32

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Direction 提议的开仓方向。
type Direction int

const (
	DirectionLong Direction = iota + 1
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "BUY"
	case DirectionShort:
		return "SELL"
	default:
		return "NONE"
	}
}

// Action 输出给执行网关的最终动作。
type Action int

const (
	ActionHold Action = iota
	ActionExecuteLong
	ActionExecuteShort
)

func (a Action) String() string {
	switch a {
	case ActionExecuteLong:
		return "EXECUTE_LONG"
	case ActionExecuteShort:
		return "EXECUTE_SHORT"
	default:
		return "HOLD"
	}
}

func actionFor(d Direction) Action {
	switch d {
	case DirectionLong:
		return ActionExecuteLong
	case DirectionShort:
		return ActionExecuteShort
	default:
		return ActionHold
	}
}

// Layer 标识一根 K 线被路由到的层级。
type Layer int

const (
	LayerNone Layer = iota
	LayerTrend
	LayerDecision
	LayerExecution
)

func (l Layer) String() string {
	switch l {
	case LayerTrend:
		return "trend"
	case LayerDecision:
		return "decision"
	case LayerExecution:
		return "execution"
	default:
		return "none"
	}
}
