package market

import (
	"fmt"
	"sort"
	"time"
)

// Timeframe 是周期的封闭枚举。路由与比较只允许使用枚举相等，
// 禁止子串/前缀匹配（"15m" 含有 "5m"，文本包含会把两者混淆）。
type Timeframe int

const (
	TimeframeUnknown Timeframe = iota
	Timeframe1m
	Timeframe5m
	Timeframe15m
	Timeframe30m
	Timeframe1h
	Timeframe4h
	Timeframe1d
)

type timeframeSpec struct {
	key      string
	duration time.Duration
}

var timeframeSpecs = map[Timeframe]timeframeSpec{
	Timeframe1m:  {key: "1m", duration: time.Minute},
	Timeframe5m:  {key: "5m", duration: 5 * time.Minute},
	Timeframe15m: {key: "15m", duration: 15 * time.Minute},
	Timeframe30m: {key: "30m", duration: 30 * time.Minute},
	Timeframe1h:  {key: "1h", duration: time.Hour},
	Timeframe4h:  {key: "4h", duration: 4 * time.Hour},
	Timeframe1d:  {key: "1d", duration: 24 * time.Hour},
}

var timeframeByKey = func() map[string]Timeframe {
	m := make(map[string]Timeframe, len(timeframeSpecs))
	for tf, spec := range timeframeSpecs {
		m[spec.key] = tf
	}
	return m
}()

// ParseTimeframe 通过完整 key 的精确查表解析周期。
// 未知输入返回 TimeframeUnknown 与错误，绝不做模糊匹配。
func ParseTimeframe(input string) (Timeframe, error) {
	tf, ok := timeframeByKey[input]
	if !ok {
		return TimeframeUnknown, fmt.Errorf("不支持的周期: %q", input)
	}
	return tf, nil
}

// SupportedTimeframes 返回所有支持的 key（排序后）。
func SupportedTimeframes() []string {
	keys := make([]string, 0, len(timeframeSpecs))
	for _, spec := range timeframeSpecs {
		keys = append(keys, spec.key)
	}
	sort.Strings(keys)
	return keys
}

func (tf Timeframe) String() string {
	if spec, ok := timeframeSpecs[tf]; ok {
		return spec.key
	}
	return "unknown"
}

// Interval 返回数据源使用的 interval 字符串，与 String 一致。
func (tf Timeframe) Interval() string { return tf.String() }

func (tf Timeframe) Duration() time.Duration {
	if spec, ok := timeframeSpecs[tf]; ok {
		return spec.duration
	}
	return 0
}

// Valid 判断是否为已知周期。
func (tf Timeframe) Valid() bool {
	_, ok := timeframeSpecs[tf]
	return ok
}
