// Package trading provides trading calculation utilities.
package trading

import "github.com/shopspring/decimal"

// QuantizePrice snaps a price to the exchange tick size, rounding toward
// the conservative side: stop-loss prices round away from entry, take-profit
// prices round toward entry, so a snapped plan is never looser than the
// computed one.
func QuantizePrice(price, tick float64, roundUp bool) float64 {
	if tick <= 0 || price <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	steps := p.Div(t)
	if roundUp {
		steps = steps.Ceil()
	} else {
		steps = steps.Floor()
	}
	out, _ := steps.Mul(t).Float64()
	return out
}

// RoundToStep rounds a quantity down to the exchange lot step.
func RoundToStep(qty, step float64) float64 {
	if step <= 0 || qty <= 0 {
		return qty
	}
	q := decimal.NewFromFloat(qty)
	s := decimal.NewFromFloat(step)
	out, _ := q.Div(s).Floor().Mul(s).Float64()
	return out
}
