package exitplan

import (
	"math"
	"sort"

	"strata/internal/zone"
)

type tpCandidate struct {
	raw      float64
	price    float64
	quality  int
	band     int
	method   string
	rr       float64
	degraded bool
}

// selectTakeProfit 止盈选取：
//  1. 盈利侧候选按质量阈值过滤；过滤清空时用阈值 0 重算一次并打降级标记
//  2. 按 (距离带升序, 质量降序) 排序 —— 同一 ATR 带内质量优先，跨带距离优先
//  3. 依序给候选加向内缓冲 ATR×mult（价格通常在触及裸价位前就有反应），
//     缓冲后越过入场价的候选丢弃
//  4. 第一个 rr ≥ 阈值的候选即中选；全部落选时做一次不加缓冲的量度移动
//     投影（其统计基础本就对应未缓冲目标），再过同一闸门
func selectTakeProfit(side Side, entry, atr, risk, sl float64, zones []zone.Zone, s Settings) (tpCandidate, error) {
	favorable := make([]zone.Zone, 0, len(zones))
	for _, z := range zones {
		if profitSide(side, entry, z.Price) {
			favorable = append(favorable, z)
		}
	}
	if len(favorable) == 0 {
		return tpCandidate{}, ErrNoTarget
	}

	candidates, degraded := qualityFilter(favorable, s.MinTPQuality)
	if len(candidates) == 0 {
		return tpCandidate{}, ErrNoTarget
	}

	unit := bandWidth(entry, atr)
	ranked := rankCandidates(candidates, entry, unit)

	buffer := atr * s.TPBufferMult
	for _, c := range ranked {
		buffered := c.raw - buffer
		if side == SideShort {
			buffered = c.raw + buffer
		}
		if !profitSide(side, entry, buffered) {
			continue
		}
		reward := math.Abs(buffered - entry)
		rr := reward / risk
		if rr >= s.MinRiskReward {
			c.price = buffered
			c.rr = rr
			c.method = MethodZone
			if degraded {
				c.method = MethodZoneDegraded
			}
			c.degraded = degraded
			return c, nil
		}
	}

	return measuredMove(side, entry, risk, sl, favorable, s)
}

// qualityFilter 返回达到阈值的候选；清空时用阈值 0 重算一次（降级兜底）。
func qualityFilter(zones []zone.Zone, minQuality int) ([]tpCandidate, bool) {
	build := func(threshold int) []tpCandidate {
		out := make([]tpCandidate, 0, len(zones))
		for _, z := range zones {
			q := zone.Quality(z)
			if q < threshold {
				continue
			}
			out = append(out, tpCandidate{raw: z.Price, quality: q})
		}
		return out
	}
	candidates := build(minQuality)
	if len(candidates) > 0 || minQuality <= 0 {
		return candidates, false
	}
	return build(0), true
}

func rankCandidates(candidates []tpCandidate, entry, unit float64) []tpCandidate {
	for i := range candidates {
		candidates[i].band = int(math.Abs(candidates[i].raw-entry) / unit)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].band != candidates[j].band {
			return candidates[i].band < candidates[j].band
		}
		return candidates[i].quality > candidates[j].quality
	})
	return candidates
}

// measuredMove 量度移动投影：entry + (最近盈利侧价位 − SL)。
// 不加缓冲，重测同一 R/R 闸门。
func measuredMove(side Side, entry, risk, sl float64, favorable []zone.Zone, s Settings) (tpCandidate, error) {
	nearest := 0.0
	nearestDist := math.MaxFloat64
	for _, z := range favorable {
		dist := math.Abs(z.Price - entry)
		if dist < nearestDist {
			nearest = z.Price
			nearestDist = dist
		}
	}
	if nearest <= 0 {
		return tpCandidate{}, ErrNoTarget
	}
	target := entry + (nearest - sl)
	if !profitSide(side, entry, target) {
		return tpCandidate{}, ErrNoTarget
	}
	rr := math.Abs(target-entry) / risk
	if rr < s.MinRiskReward {
		return tpCandidate{}, ErrNoTarget
	}
	return tpCandidate{price: target, rr: rr, method: MethodMeasuredMove}, nil
}

func profitSide(side Side, entry, price float64) bool {
	if side == SideLong {
		return price > entry
	}
	return price < entry
}
