package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/engine"
)

func TestParseValidPayload(t *testing.T) {
	upd, err := Parse(`{"state":"ALLOW_LONG","confidence":"HIGH","reasoning":"trend intact"}`)
	require.NoError(t, err)

	assert.Equal(t, engine.DecisionAllowLong, upd.State)
	assert.Equal(t, engine.ConfidenceHigh, upd.Confidence)
	assert.Equal(t, "trend intact", upd.Reasoning)
}

func TestParseAcceptsLowercaseEnums(t *testing.T) {
	upd, err := Parse(`{"state":"allow_short","confidence":"medium"}`)
	require.NoError(t, err)

	assert.Equal(t, engine.DecisionAllowShort, upd.State)
	assert.Equal(t, engine.ConfidenceMedium, upd.Confidence)
}

func TestParseMissingConfidenceFallsBackLow(t *testing.T) {
	upd, err := Parse(`{"state":"WAIT"}`)
	require.NoError(t, err)

	assert.Equal(t, engine.DecisionWait, upd.State)
	assert.Equal(t, engine.ConfidenceLow, upd.Confidence)
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"not json":      "allow long please",
		"missing state": `{"confidence":"HIGH"}`,
		"unknown state": `{"state":"ALLOW_BOTH"}`,
		"wrong type":    `{"state":42}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestApplyWritesEngineOnlyOnSuccess(t *testing.T) {
	e := engine.New(engine.DefaultSettings())

	_, err := Apply(e, `{"state":"ALLOW_BOTH"}`)
	require.Error(t, err)
	ds, conf := e.DecisionState()
	assert.Equal(t, engine.DecisionWait, ds)
	assert.Equal(t, engine.ConfidenceLow, conf)

	_, err = Apply(e, `{"state":"ALLOW_SHORT","confidence":"HIGH"}`)
	require.NoError(t, err)
	ds, conf = e.DecisionState()
	assert.Equal(t, engine.DecisionAllowShort, ds)
	assert.Equal(t, engine.ConfidenceHigh, conf)
}
