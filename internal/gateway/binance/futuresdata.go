package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"strata/internal/market"
)

// futures data 系列接口（openInterestHist / takerlongshortRatio）
// 不在 SDK 的稳定表面内，这里直接走 REST。

type oiHistEntry struct {
	Symbol               string `json:"symbol"`
	SumOpenInterest      string `json:"sumOpenInterest"`
	SumOpenInterestValue string `json:"sumOpenInterestValue"`
	Timestamp            int64  `json:"timestamp"`
}

type takerRatioEntry struct {
	BuySellRatio string `json:"buySellRatio"`
	BuyVol       string `json:"buyVol"`
	SellVol      string `json:"sellVol"`
	Timestamp    int64  `json:"timestamp"`
}

// OpenInterestHistory 聚合持仓量历史。period 形如 "1h"。
func (s *Source) OpenInterestHistory(ctx context.Context, symbol, period string, limit int) ([]market.OpenInterestPoint, error) {
	var entries []oiHistEntry
	if err := s.fetchFuturesData(ctx, "/futures/data/openInterestHist", symbol, period, limit, &entries); err != nil {
		return nil, err
	}
	points := make([]market.OpenInterestPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, market.OpenInterestPoint{
			Timestamp: e.Timestamp,
			Sum:       parseFloat(e.SumOpenInterest),
			SumValue:  parseFloat(e.SumOpenInterestValue),
		})
	}
	return points, nil
}

// TakerRatio 主动买卖量比历史。
func (s *Source) TakerRatio(ctx context.Context, symbol, period string, limit int) ([]market.TakerRatioPoint, error) {
	var entries []takerRatioEntry
	if err := s.fetchFuturesData(ctx, "/futures/data/takerlongshortRatio", symbol, period, limit, &entries); err != nil {
		return nil, err
	}
	points := make([]market.TakerRatioPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, market.TakerRatioPoint{
			Timestamp: e.Timestamp,
			Ratio:     parseFloat(e.BuySellRatio),
			BuyVol:    parseFloat(e.BuyVol),
			SellVol:   parseFloat(e.SellVol),
		})
	}
	return points, nil
}

func (s *Source) fetchFuturesData(ctx context.Context, path, symbol, period string, limit int, dest any) error {
	if s == nil || s.http == nil {
		return fmt.Errorf("binance source not initialized")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	period = strings.ToLower(strings.TrimSpace(period))
	if symbol == "" || period == "" {
		return fmt.Errorf("symbol and period are required")
	}
	if limit <= 0 {
		limit = 30
	}
	if limit > 500 {
		limit = 500
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", period)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := s.cfg.RESTBaseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
