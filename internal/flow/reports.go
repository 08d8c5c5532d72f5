// Package flow 定义订单流 / 衍生品数据的结构化报告。
// 上游必须显式标记 Available=false，而非省略字段：
// 过滤链与确认计分据此执行“跳过且不计惩罚”的降级规则。
package flow

// OrderFlowReport 订单流快照。BuyRatio 为主动买入占比（0~1）。
type OrderFlowReport struct {
	Available bool    `json:"available"`
	BuyRatio  float64 `json:"buy_ratio"`
	CVD       float64 `json:"cvd,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// Unavailable 构造显式不可用的订单流报告。
func (r OrderFlowReport) Unavailable(note string) OrderFlowReport {
	return OrderFlowReport{Available: false, Note: note}
}

// DerivativesReport 衍生品市场快照。
type DerivativesReport struct {
	Available        bool    `json:"available"`
	OpenInterest     float64 `json:"open_interest"`
	OIChangePct      float64 `json:"oi_change_pct"`
	FundingRate      float64 `json:"funding_rate,omitempty"`
	LiquidationUSD1h float64 `json:"liquidation_usd_1h"`
	Note             string  `json:"note,omitempty"`
}
