package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	taker    []TakerRatioPoint
	takerErr error
	oi       []OpenInterestPoint
	oiErr    error
}

func (f *fakeSource) FetchHistory(context.Context, string, Timeframe, int) ([]Candle, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSource) OpenInterestHistory(context.Context, string, string, int) ([]OpenInterestPoint, error) {
	return f.oi, f.oiErr
}

func (f *fakeSource) TakerRatio(context.Context, string, string, int) ([]TakerRatioPoint, error) {
	return f.taker, f.takerErr
}

func TestFeedServiceStartsUnavailable(t *testing.T) {
	s := NewFeedService(&fakeSource{}, "BTCUSDT")

	assert.False(t, s.OrderFlow().Available)
	assert.False(t, s.Derivatives().Available)
	_, ok := s.OIChange()
	assert.False(t, ok)
}

func TestFeedServiceAggregatesTakerRatio(t *testing.T) {
	src := &fakeSource{
		taker: []TakerRatioPoint{
			{BuyVol: 60, SellVol: 40},
			{BuyVol: 30, SellVol: 70},
		},
		oiErr: errors.New("down"),
	}
	s := NewFeedService(src, "BTCUSDT")
	s.Refresh(context.Background())

	report := s.OrderFlow()
	require.True(t, report.Available)
	assert.InDelta(t, 90.0/200.0, report.BuyRatio, 1e-9)
}

func TestFeedServiceFailureDegradesNotErrors(t *testing.T) {
	src := &fakeSource{takerErr: errors.New("timeout"), oiErr: errors.New("timeout")}
	s := NewFeedService(src, "BTCUSDT")
	s.Refresh(context.Background())

	assert.False(t, s.OrderFlow().Available)
	assert.False(t, s.Derivatives().Available)
	_, ok := s.OIChange()
	assert.False(t, ok)
}

func TestFeedServiceComputesOIChange(t *testing.T) {
	src := &fakeSource{
		takerErr: errors.New("down"),
		oi: []OpenInterestPoint{
			{Timestamp: 1, Sum: 100},
			{Timestamp: 2, Sum: 88},
		},
	}
	s := NewFeedService(src, "BTCUSDT")
	s.Refresh(context.Background())

	pct, ok := s.OIChange()
	require.True(t, ok)
	assert.InDelta(t, -12.0, pct, 1e-9)

	// 公共数据源不提供爆仓量，衍生品报告保持显式不可用
	report := s.Derivatives()
	assert.False(t, report.Available)
	assert.InDelta(t, 88.0, report.OpenInterest, 1e-9)
}
