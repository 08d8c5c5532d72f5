package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyExcludesUnavailableSources(t *testing.T) {
	tally := NewTally()
	tally.Add("trend_alignment", "", true)
	tally.Add("momentum", "", true)
	tally.Add("volume_profile", "", false)
	tally.Add("entry_band", "", true)
	tally.Add("atr_regime", "", true)
	tally.Add("taker_pressure", "orderflow", true)
	tally.Add("cvd_slope", "orderflow", false)
	tally.Add("oi_trend", "derivatives", true)
	tally.Add("funding_bias", "derivatives", true)

	passed, total := tally.Score()
	assert.Equal(t, 8, passed)
	assert.Equal(t, 9, total)

	// 两路数据源离线：9 分制退化为 5 分制，失败项随来源一并剔除
	tally.MarkUnavailable("orderflow")
	tally.MarkUnavailable("derivatives")

	passed, total = tally.Score()
	assert.Equal(t, 4, passed)
	assert.Equal(t, 5, total)

	for _, it := range tally.Items() {
		assert.NotEqual(t, "orderflow", it.Source)
		assert.NotEqual(t, "derivatives", it.Source)
	}
}

func TestTallyEmptySourceNeverExcluded(t *testing.T) {
	tally := NewTally()
	tally.Add("always_counts", "", true)
	tally.MarkUnavailable("")

	passed, total := tally.Score()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, total)
}
