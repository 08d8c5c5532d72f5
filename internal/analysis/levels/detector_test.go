package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/market"
	"strata/internal/zone"
)

func flatCandle(high, low float64) market.Candle {
	return market.Candle{Open: low, High: high, Low: low, Close: high}
}

func TestStructuralClustersRepeatedSwings(t *testing.T) {
	// 两个相距 7 根的摆动高点几乎同价，应合并为一个触碰 2 次的结构位
	candles := make([]market.Candle, 15)
	for i := range candles {
		candles[i] = flatCandle(50, 49)
	}
	candles[3] = flatCandle(100.05, 99)
	candles[10] = flatCandle(100.00, 99)

	d := NewDetector()
	zones := d.structural(candles)

	require.Len(t, zones, 1)
	z := zones[0]
	assert.Equal(t, zone.SourceStructural, z.Source)
	assert.Equal(t, 2, z.TouchCount)
	assert.Equal(t, zone.StrengthMedium, z.Strength)
	assert.True(t, z.HasSwing)
	assert.InDelta(t, 100.025, z.Price, 1e-9)
}

func TestStructuralSeparatesDistantSwings(t *testing.T) {
	candles := make([]market.Candle, 15)
	for i := range candles {
		candles[i] = flatCandle(50, 49)
	}
	candles[3] = flatCandle(100, 99)
	candles[10] = flatCandle(120, 119)

	d := NewDetector()
	zones := d.structural(candles)

	require.Len(t, zones, 2)
	assert.Equal(t, zone.StrengthLow, zones[0].Strength)
	assert.Equal(t, 1, zones[0].TouchCount)
}

func TestPsychologicalLevelsAroundPrice(t *testing.T) {
	d := NewDetector()
	zones := d.psychological(60000)

	// 量级 1e4 → 步长 500；现价本身被跳过
	require.Len(t, zones, 3)
	prices := []float64{zones[0].Price, zones[1].Price, zones[2].Price}
	assert.Contains(t, prices, 59500.0)
	assert.Contains(t, prices, 60500.0)
	assert.Contains(t, prices, 61000.0)
	for _, z := range zones {
		assert.Equal(t, zone.SourcePsychological, z.Source)
		assert.Equal(t, zone.StrengthLow, z.Strength)
	}
}

func TestProjectedFibonacciExtensions(t *testing.T) {
	candles := []market.Candle{flatCandle(110, 90), flatCandle(105, 95)}

	d := NewDetector()
	zones := d.projected(candles)

	require.Len(t, zones, 4)
	assert.InDelta(t, 110+0.272*20, zones[0].Price, 1e-9)
	assert.InDelta(t, 110+0.618*20, zones[1].Price, 1e-9)
	assert.InDelta(t, 90-0.272*20, zones[2].Price, 1e-9)
	assert.InDelta(t, 90-0.618*20, zones[3].Price, 1e-9)
}

func TestDetectSanitizesAndHandlesEmptyInput(t *testing.T) {
	d := NewDetector()

	assert.Nil(t, d.Detect(nil, 0))

	zones := d.Detect(nil, 100)
	for _, z := range zones {
		assert.Greater(t, z.Price, 0.0)
	}
}
