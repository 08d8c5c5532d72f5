// Package zone 定义支撑/阻力候选位及其质量评分。
// Zone 由外部探测器以只读方式提供，本包从不修改来源数据。
package zone

import (
	"math"
	"strings"
)

// SourceType 价位的来源类别，决定质量分中的来源权重。
type SourceType int

const (
	SourcePsychological SourceType = iota
	SourceTechnical
	SourceProjected
	SourceStructural
)

var sourceNames = map[SourceType]string{
	SourcePsychological: "psychological",
	SourceTechnical:     "technical",
	SourceProjected:     "projected",
	SourceStructural:    "structural",
}

func (s SourceType) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return "psychological"
}

// ParseSourceType 解析来源类别。未知输入回落到最低权重的 psychological。
func ParseSourceType(raw string) SourceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "technical":
		return SourceTechnical
	case "projected":
		return SourceProjected
	case "structural":
		return SourceStructural
	default:
		return SourcePsychological
	}
}

// Strength 价位强度标签。
type Strength int

const (
	StrengthLow Strength = iota
	StrengthMedium
	StrengthHigh
)

func (s Strength) String() string {
	switch s {
	case StrengthHigh:
		return "high"
	case StrengthMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseStrength 解析强度标签，未知输入回落到 low。
func ParseStrength(raw string) Strength {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return StrengthHigh
	case "medium", "mid":
		return StrengthMedium
	default:
		return StrengthLow
	}
}

// Zone 候选价位。方向相关性（支撑还是阻力）由价格相对入场价的位置隐含。
type Zone struct {
	Price      float64    `json:"price"`
	Source     SourceType `json:"source"`
	Strength   Strength   `json:"strength"`
	TouchCount int        `json:"touch_count"`
	HasSwing   bool       `json:"has_swing"`
}

// Sanitize 过滤畸形候选（非正/非有限价格），并把负的触碰次数归零。
// 静默剔除，不产生错误：畸形 zone 不是评估失败的理由。
func Sanitize(zones []Zone) []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if z.Price <= 0 || math.IsNaN(z.Price) || math.IsInf(z.Price, 0) {
			continue
		}
		if z.TouchCount < 0 {
			z.TouchCount = 0
		}
		out = append(out, z)
	}
	return out
}
