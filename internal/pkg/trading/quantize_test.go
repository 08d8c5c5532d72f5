package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizePrice(t *testing.T) {
	assert.Equal(t, 98300.1, QuantizePrice(98300.17, 0.1, false))
	assert.Equal(t, 98300.2, QuantizePrice(98300.17, 0.1, true))
	// 已对齐的价格保持不变
	assert.Equal(t, 98300.1, QuantizePrice(98300.1, 0.1, true))
	// 非法 tick/价格原样返回
	assert.Equal(t, 123.456, QuantizePrice(123.456, 0, true))
	assert.Equal(t, -1.0, QuantizePrice(-1, 0.1, true))
}

func TestRoundToStep(t *testing.T) {
	assert.Equal(t, 0.003, RoundToStep(0.0039, 0.001))
	assert.Equal(t, 5.0, RoundToStep(5.9, 1))
	assert.Equal(t, 0.5, RoundToStep(0.5, 0))
}
