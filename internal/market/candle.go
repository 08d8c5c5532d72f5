package market

// Candle 单根 K 线（毫秒时间戳，来源统一为合约行情）。
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades"`
}

// Bar 是带有精确周期标识的 K 线，由路由器分发给唯一的层级。
type Bar struct {
	Timeframe Timeframe `json:"timeframe"`
	Candle
}
