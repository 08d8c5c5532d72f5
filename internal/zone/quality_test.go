package zone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityComposition(t *testing.T) {
	cases := []struct {
		name string
		z    Zone
		want int
	}{
		{"bare psychological", Zone{Price: 100, Source: SourcePsychological, Strength: StrengthLow}, 1},
		{"technical medium", Zone{Price: 100, Source: SourceTechnical, Strength: StrengthMedium}, 3},
		{"single touch ignored", Zone{Price: 100, Source: SourceTechnical, Strength: StrengthLow, TouchCount: 1}, 2},
		{"double touch counts", Zone{Price: 100, Source: SourceTechnical, Strength: StrengthLow, TouchCount: 2}, 4},
		{"touch bonus capped", Zone{Price: 100, Source: SourceTechnical, Strength: StrengthLow, TouchCount: 9}, 5},
		{"swing adds one", Zone{Price: 100, Source: SourceProjected, Strength: StrengthMedium, HasSwing: true}, 5},
		{"max clamped", Zone{Price: 100, Source: SourceStructural, Strength: StrengthHigh, TouchCount: 5, HasSwing: true}, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Quality(tc.z))
		})
	}
}

func TestQualityBounds(t *testing.T) {
	// 任意组合都落在 [0,10]
	for src := SourcePsychological; src <= SourceStructural; src++ {
		for str := StrengthLow; str <= StrengthHigh; str++ {
			for touches := 0; touches <= 12; touches++ {
				q := Quality(Zone{Price: 1, Source: src, Strength: str, TouchCount: touches, HasSwing: true})
				assert.GreaterOrEqual(t, q, QualityMin)
				assert.LessOrEqual(t, q, QualityMax)
			}
		}
	}
}

func TestQualityMonotoneInTouches(t *testing.T) {
	base := Zone{Price: 100, Source: SourceTechnical, Strength: StrengthMedium}
	prev := Quality(base)
	for touches := 1; touches <= 10; touches++ {
		base.TouchCount = touches
		q := Quality(base)
		assert.GreaterOrEqual(t, q, prev)
		prev = q
	}
}

func TestSanitizeDropsMalformed(t *testing.T) {
	zones := []Zone{
		{Price: 100},
		{Price: 0},
		{Price: -3},
		{Price: math.NaN()},
		{Price: math.Inf(1)},
		{Price: 50, TouchCount: -2},
	}

	clean := Sanitize(zones)
	assert.Len(t, clean, 2)
	assert.Equal(t, 0, clean[1].TouchCount)
}

func TestParseFallbacks(t *testing.T) {
	assert.Equal(t, SourceStructural, ParseSourceType("Structural"))
	assert.Equal(t, SourcePsychological, ParseSourceType("made-up"))
	assert.Equal(t, StrengthHigh, ParseStrength(" HIGH "))
	assert.Equal(t, StrengthMedium, ParseStrength("mid"))
	assert.Equal(t, StrengthLow, ParseStrength("whatever"))
}
