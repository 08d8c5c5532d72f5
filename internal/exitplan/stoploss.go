package exitplan

import (
	"math"

	"strata/internal/zone"
)

type stopCandidate struct {
	price   float64
	quality int
}

// selectStopLoss 在入场价保护侧的候选位里取质量最高者（并列时取更近的），
// 然后把缓冲 ATR×mult 加在价位之外（离入场价更远的一侧），
// 避免价位附近的噪声提前打掉止损。保护侧无候选位时直接拒绝开仓。
func selectStopLoss(side Side, entry, atr float64, zones []zone.Zone, s Settings) (stopCandidate, error) {
	best := stopCandidate{quality: -1}
	bestDist := math.MaxFloat64
	for _, z := range zones {
		if !protective(side, entry, z.Price) {
			continue
		}
		q := zone.Quality(z)
		dist := math.Abs(entry - z.Price)
		if q > best.quality || (q == best.quality && dist < bestDist) {
			best = stopCandidate{price: z.Price, quality: q}
			bestDist = dist
		}
	}
	if best.quality < 0 {
		return stopCandidate{}, ErrNoStopAnchor
	}

	buffer := atr * s.SLBufferMult
	if side == SideLong {
		best.price -= buffer
	} else {
		best.price += buffer
	}
	if !protectiveStrict(side, entry, best.price) {
		return stopCandidate{}, ErrNoStopAnchor
	}
	return best, nil
}

func protective(side Side, entry, price float64) bool {
	if side == SideLong {
		return price < entry
	}
	return price > entry
}

func protectiveStrict(side Side, entry, price float64) bool {
	return protective(side, entry, price) && price > 0
}
