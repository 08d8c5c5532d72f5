// Package oracle 解析外部 Signal Oracle 的 JSON 决策载荷并写入引擎。
// 本核心只接收结果，从不主动调用 Oracle。
package oracle

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"strata/internal/engine"
)

// Update 解析后的决策更新。
type Update struct {
	State      engine.DecisionState `json:"state"`
	Confidence engine.Confidence    `json:"confidence"`
	Reasoning  string               `json:"reasoning,omitempty"`
}

// Parse 宽松解析 Oracle 载荷：先过 JSON Schema 校验，再用 gjson 提取字段。
// 形如 {"state":"ALLOW_LONG","confidence":"HIGH","reasoning":"..."}。
func Parse(raw string) (Update, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Update{}, fmt.Errorf("oracle 载荷为空")
	}
	if !gjson.Valid(raw) {
		return Update{}, fmt.Errorf("oracle 载荷不是合法 JSON")
	}
	if err := validatePayload(raw); err != nil {
		return Update{}, err
	}
	parsed := gjson.Parse(raw)

	state, err := parseState(parsed.Get("state").String())
	if err != nil {
		return Update{}, err
	}
	conf := parseConfidence(parsed.Get("confidence").String())
	return Update{
		State:      state,
		Confidence: conf,
		Reasoning:  strings.TrimSpace(parsed.Get("reasoning").String()),
	}, nil
}

// Apply 解析载荷并调用引擎的 setter。解析失败时引擎状态不变。
func Apply(e *engine.Engine, raw string) (Update, error) {
	upd, err := Parse(raw)
	if err != nil {
		return Update{}, err
	}
	e.SetDecision(upd.State, upd.Confidence)
	return upd, nil
}

func parseState(raw string) (engine.DecisionState, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ALLOW_LONG":
		return engine.DecisionAllowLong, nil
	case "ALLOW_SHORT":
		return engine.DecisionAllowShort, nil
	case "WAIT":
		return engine.DecisionWait, nil
	default:
		return engine.DecisionWait, fmt.Errorf("未知的 DecisionState: %q", raw)
	}
}

func parseConfidence(raw string) engine.Confidence {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGH":
		return engine.ConfidenceHigh
	case "MEDIUM", "MID":
		return engine.ConfidenceMedium
	default:
		return engine.ConfidenceLow
	}
}
