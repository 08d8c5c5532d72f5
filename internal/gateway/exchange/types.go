// Package exchange defines the outbound port toward the execution gateway.
// This core never places orders itself; it hands over a final action plus
// the two exit prices and lets the gateway decide everything else
// (sizing, leverage, order type are out of scope here).
package exchange

import "context"

// Intent is the final product of one decision cycle.
type Intent struct {
	TraceID    string  `json:"trace_id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"` // HOLD / EXECUTE_LONG / EXECUTE_SHORT
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"sl_price"`
	TakeProfit float64 `json:"tp_price"`
	RealizedRR float64 `json:"realized_rr"`
	Method     string  `json:"method_tag"`
	Timestamp  int64   `json:"ts"`
}

// Gateway consumes intents. HOLD intents may be submitted for bookkeeping;
// implementations must treat them as no-ops.
type Gateway interface {
	Submit(ctx context.Context, intent Intent) error
}
