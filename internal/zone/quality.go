package zone

// 质量分 = 来源权重 + 强度加成 + 触碰加成 + 摆动加成，限定在 [0,10]。
// 各分量独立非负，总分对每个分量单调不减。

const (
	QualityMin = 0
	QualityMax = 10
)

var sourceQuality = map[SourceType]int{
	SourcePsychological: 0,
	SourceTechnical:     1,
	SourceProjected:     2,
	SourceStructural:    3,
}

var strengthBonus = map[Strength]int{
	StrengthLow:    1,
	StrengthMedium: 2,
	StrengthHigh:   3,
}

// Quality 计算候选价位的综合质量分。
func Quality(z Zone) int {
	score := sourceQuality[z.Source] + strengthBonus[z.Strength]
	score += touchBonus(z.TouchCount)
	if z.HasSwing {
		score++
	}
	if score < QualityMin {
		return QualityMin
	}
	if score > QualityMax {
		return QualityMax
	}
	return score
}

// 触碰次数 ≥2 才计分，封顶 3 次。
func touchBonus(touches int) int {
	if touches < 2 {
		return 0
	}
	if touches > 3 {
		return 3
	}
	return touches
}
