package market

import "context"

// Source 行情数据源（REST）。实现方负责网络与重试策略，
// 决策核心只消费已解析好的结果。
type Source interface {
	FetchHistory(ctx context.Context, symbol string, tf Timeframe, limit int) ([]Candle, error)
	OpenInterestHistory(ctx context.Context, symbol, period string, limit int) ([]OpenInterestPoint, error)
	TakerRatio(ctx context.Context, symbol, period string, limit int) ([]TakerRatioPoint, error)
}

// OpenInterestPoint 聚合持仓量采样点。
type OpenInterestPoint struct {
	Timestamp int64   `json:"ts"`
	Sum       float64 `json:"sum_open_interest"`
	SumValue  float64 `json:"sum_open_interest_value"`
}

// TakerRatioPoint 主动买卖比采样点。
type TakerRatioPoint struct {
	Timestamp int64   `json:"ts"`
	Ratio     float64 `json:"buy_sell_ratio"`
	BuyVol    float64 `json:"buy_vol"`
	SellVol   float64 `json:"sell_vol"`
}
