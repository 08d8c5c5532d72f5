// Package levels 从 K 线序列探测支撑/阻力候选位。
// 产出只读的 zone.Zone 集合；决策核心不关心候选位从哪里来。
package levels

import (
	"math"
	"sort"

	"strata/internal/market"
	"strata/internal/zone"
)

// Detector 候选位探测器。所有方法都是输入的纯函数。
type Detector struct {
	// SwingWindow 摆动点两侧需要弱于中心的 K 线数。
	SwingWindow int
	// MergeTolerancePct 相邻枢轴合并为同一价位的容差（百分比）。
	MergeTolerancePct float64
	// PsychLevels 在现价上下各生成的整数位数量。
	PsychLevels int
}

func NewDetector() *Detector {
	return &Detector{SwingWindow: 3, MergeTolerancePct: 0.15, PsychLevels: 2}
}

// Detect 汇总三类候选位：结构位（摆动点聚类）、心理位（整数价位）、
// 投影位（斐波那契扩展）。
func (d *Detector) Detect(candles []market.Candle, price float64) []zone.Zone {
	if d == nil || price <= 0 {
		return nil
	}
	zones := d.structural(candles)
	zones = append(zones, d.psychological(price)...)
	zones = append(zones, d.projected(candles)...)
	return zone.Sanitize(zones)
}

type pivot struct {
	price float64
	high  bool
}

func (d *Detector) structural(candles []market.Candle) []zone.Zone {
	w := d.SwingWindow
	if w <= 0 {
		w = 3
	}
	var pivots []pivot
	for i := w; i < len(candles)-w; i++ {
		isHigh, isLow := true, true
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
		}
		if isHigh {
			pivots = append(pivots, pivot{price: candles[i].High, high: true})
		}
		if isLow {
			pivots = append(pivots, pivot{price: candles[i].Low})
		}
	}
	return d.clusterPivots(pivots)
}

// clusterPivots 把容差内的枢轴合并为一个价位，触碰次数即枢轴个数。
func (d *Detector) clusterPivots(pivots []pivot) []zone.Zone {
	if len(pivots) == 0 {
		return nil
	}
	sort.Slice(pivots, func(i, j int) bool { return pivots[i].price < pivots[j].price })
	tol := d.MergeTolerancePct / 100
	if tol <= 0 {
		tol = 0.0015
	}

	var zones []zone.Zone
	start := 0
	for i := 1; i <= len(pivots); i++ {
		if i < len(pivots) && pivots[i].price <= pivots[start].price*(1+tol) {
			continue
		}
		cluster := pivots[start:i]
		sum := 0.0
		for _, p := range cluster {
			sum += p.price
		}
		touches := len(cluster)
		strength := zone.StrengthLow
		switch {
		case touches >= 3:
			strength = zone.StrengthHigh
		case touches == 2:
			strength = zone.StrengthMedium
		}
		zones = append(zones, zone.Zone{
			Price:      sum / float64(touches),
			Source:     zone.SourceStructural,
			Strength:   strength,
			TouchCount: touches,
			HasSwing:   true,
		})
		start = i
	}
	return zones
}

// psychological 现价上下的整数价位，权重最低。
func (d *Detector) psychological(price float64) []zone.Zone {
	n := d.PsychLevels
	if n <= 0 {
		n = 2
	}
	step := roundStep(price)
	if step <= 0 {
		return nil
	}
	base := math.Floor(price/step) * step
	var zones []zone.Zone
	for i := -n + 1; i <= n; i++ {
		level := base + float64(i)*step
		if level <= 0 || level == price {
			continue
		}
		zones = append(zones, zone.Zone{
			Price:    level,
			Source:   zone.SourcePsychological,
			Strength: zone.StrengthLow,
		})
	}
	return zones
}

// projected 以最近一段摆动区间做 1.272/1.618 扩展。
func (d *Detector) projected(candles []market.Candle) []zone.Zone {
	if len(candles) < 2 {
		return nil
	}
	hi, lo := candles[0].High, candles[0].Low
	for _, c := range candles {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	span := hi - lo
	if span <= 0 {
		return nil
	}
	return []zone.Zone{
		{Price: hi + 0.272*span, Source: zone.SourceProjected, Strength: zone.StrengthLow},
		{Price: hi + 0.618*span, Source: zone.SourceProjected, Strength: zone.StrengthLow},
		{Price: lo - 0.272*span, Source: zone.SourceProjected, Strength: zone.StrengthLow},
		{Price: lo - 0.618*span, Source: zone.SourceProjected, Strength: zone.StrengthLow},
	}
}

// roundStep 按价格量级取整数位步长（如 60000 → 1000，3.5 → 0.05）。
func roundStep(price float64) float64 {
	if price <= 0 {
		return 0
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(price)))
	return magnitude / 100 * 5
}
