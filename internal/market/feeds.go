package market

import (
	"context"
	"sync"

	"strata/internal/flow"
	"strata/internal/logger"
)

// FeedService 周期性刷新订单流与衍生品数据，缓存为显式可用/不可用的报告。
// 拉取失败不是错误条件：对应报告标记 Available=false，下游跳过而非惩罚。
type FeedService struct {
	source Source
	symbol string

	mu          sync.RWMutex
	orderFlow   flow.OrderFlowReport
	derivatives flow.DerivativesReport
	oiChangePct float64
	oiChangeOK  bool
}

func NewFeedService(source Source, symbol string) *FeedService {
	return &FeedService{
		source:      source,
		symbol:      symbol,
		orderFlow:   flow.OrderFlowReport{Available: false, Note: "not yet refreshed"},
		derivatives: flow.DerivativesReport{Available: false, Note: "not yet refreshed"},
	}
}

// Refresh 拉取一轮数据。任何一路失败只降级该路的报告。
func (s *FeedService) Refresh(ctx context.Context) {
	if s == nil || s.source == nil {
		return
	}
	s.refreshOrderFlow(ctx)
	s.refreshDerivatives(ctx)
}

func (s *FeedService) refreshOrderFlow(ctx context.Context) {
	points, err := s.source.TakerRatio(ctx, s.symbol, "15m", 4)
	if err != nil || len(points) == 0 {
		logger.Warnf("订单流刷新失败 (%s)，标记不可用: %v", s.symbol, err)
		s.mu.Lock()
		s.orderFlow = flow.OrderFlowReport{Available: false, Note: "taker ratio fetch failed"}
		s.mu.Unlock()
		return
	}
	var buy, sell float64
	for _, p := range points {
		buy += p.BuyVol
		sell += p.SellVol
	}
	report := flow.OrderFlowReport{Available: false, Note: "zero taker volume"}
	if buy+sell > 0 {
		report = flow.OrderFlowReport{Available: true, BuyRatio: buy / (buy + sell)}
	}
	s.mu.Lock()
	s.orderFlow = report
	s.mu.Unlock()
}

func (s *FeedService) refreshDerivatives(ctx context.Context) {
	points, err := s.source.OpenInterestHistory(ctx, s.symbol, "1h", 25)
	if err != nil || len(points) == 0 {
		logger.Warnf("衍生品刷新失败 (%s)，标记不可用: %v", s.symbol, err)
		s.mu.Lock()
		s.derivatives = flow.DerivativesReport{Available: false, Note: "open interest fetch failed"}
		s.oiChangeOK = false
		s.mu.Unlock()
		return
	}
	latest := points[len(points)-1]
	first := points[0]
	changePct := 0.0
	if first.Sum > 0 {
		changePct = (latest.Sum - first.Sum) / first.Sum * 100
	}
	s.mu.Lock()
	// 公共 REST 不提供逐时爆仓量，该子路保持显式不可用，过滤链会跳过。
	s.derivatives = flow.DerivativesReport{
		Available:    false,
		OpenInterest: latest.Sum,
		OIChangePct:  changePct,
		Note:         "liquidation volume not provided by source",
	}
	s.oiChangePct = changePct
	s.oiChangeOK = true
	s.mu.Unlock()
}

// OrderFlow 返回订单流报告快照。
func (s *FeedService) OrderFlow() flow.OrderFlowReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderFlow
}

// Derivatives 返回衍生品报告快照。
func (s *FeedService) Derivatives() flow.DerivativesReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derivatives
}

// OIChange 返回聚合持仓量变化（百分比）及其可用性。
func (s *FeedService) OIChange() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oiChangePct, s.oiChangeOK
}
