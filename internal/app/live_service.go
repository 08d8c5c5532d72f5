package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"strata/internal/analysis/levels"
	stcfg "strata/internal/config"
	"strata/internal/engine"
	"strata/internal/exitplan"
	"strata/internal/gateway/exchange"
	"strata/internal/logger"
	"strata/internal/market"
	"strata/internal/oracle"
	"strata/internal/scheduler"
	"strata/internal/store/decisionlog"
	"strata/internal/zone"
)

// LiveService 驱动实时循环：K 线收盘对齐的评估节拍、外部信号接收、
// 决策留痕与纸面执行。核心评估始终在单一 goroutine 内完成。
type LiveService struct {
	cfg      *stcfg.Config
	engine   *engine.Engine
	source   market.Source
	ks       market.KlineStore
	feeds    *market.FeedService
	detector *levels.Detector
	logs     *decisionlog.Store
	gateway  exchange.Gateway

	exit atomic.Pointer[exitplan.Settings]

	symbol     string
	timeframes []market.Timeframe
	watermark  map[market.Timeframe]int64
	maxCandles int
}

type liveServiceDeps struct {
	cfg      *stcfg.Config
	engine   *engine.Engine
	source   market.Source
	store    market.KlineStore
	feeds    *market.FeedService
	detector *levels.Detector
	logs     *decisionlog.Store
	gateway  exchange.Gateway
}

func newLiveService(deps liveServiceDeps) *LiveService {
	settings := deps.cfg.EngineSettings()
	s := &LiveService{
		cfg:      deps.cfg,
		engine:   deps.engine,
		source:   deps.source,
		ks:       deps.store,
		feeds:    deps.feeds,
		detector: deps.detector,
		logs:     deps.logs,
		gateway:  deps.gateway,
		symbol:   deps.cfg.Market.Symbol,
		timeframes: []market.Timeframe{
			settings.TrendTimeframe,
			settings.DecisionTimeframe,
			settings.ExecutionTimeframe,
		},
		watermark:  make(map[market.Timeframe]int64),
		maxCandles: settings.MaxCandles,
	}
	exit := deps.cfg.ExitSettings()
	s.exit.Store(&exit)
	return s
}

func (s *LiveService) updateExitSettings(settings exitplan.Settings) {
	s.exit.Store(&settings)
}

func (s *LiveService) exitSettings() exitplan.Settings {
	if p := s.exit.Load(); p != nil {
		return *p
	}
	return exitplan.DefaultSettings()
}

// Run 启动实时服务，直到 ctx 取消。
func (s *LiveService) Run(ctx context.Context) error {
	if s == nil || s.cfg == nil {
		return fmt.Errorf("live service not initialized")
	}
	if err := s.preheat(ctx); err != nil {
		return fmt.Errorf("预热历史 K 线失败: %w", err)
	}
	s.feeds.Refresh(ctx)
	s.syncOpenInterest()

	execTF := s.timeframes[2]
	sched := scheduler.NewAlignedScheduler(ctx, execTF.Duration(), 5*time.Second)
	sched.Name = "live"
	sched.Start(func() {
		if err := s.tick(ctx); err != nil {
			logger.Errorf("评估节拍失败: %v", err)
		}
	})
	return nil
}

// preheat 拉取三个周期的历史并按时间顺序喂给引擎，恢复指标状态。
func (s *LiveService) preheat(ctx context.Context) error {
	limit := s.maxCandles
	if limit <= 0 {
		limit = 300
	}
	for _, tf := range s.timeframes {
		candles, err := s.source.FetchHistory(ctx, s.symbol, tf, limit)
		if err != nil {
			return fmt.Errorf("%s %s: %w", s.symbol, tf, err)
		}
		if len(candles) == 0 {
			return fmt.Errorf("%s %s: 无历史数据", s.symbol, tf)
		}
		// 末根尚未收盘，不入引擎。
		closed := candles[:len(candles)-1]
		if err := s.ks.Put(ctx, s.symbol, tf, closed, limit); err != nil {
			return err
		}
		for _, c := range closed {
			s.engine.OnBar(market.Bar{Timeframe: tf, Candle: c})
		}
		if len(closed) > 0 {
			s.watermark[tf] = closed[len(closed)-1].OpenTime
		}
		logger.Infof("✓ 预热 %s %s：%d 根已收盘 K 线", s.symbol, tf, len(closed))
	}
	return nil
}

// tick 执行一轮：补 K 线 → 刷新数据流 → 评估。
func (s *LiveService) tick(ctx context.Context) error {
	if err := s.refreshBars(ctx); err != nil {
		return err
	}
	s.feeds.Refresh(ctx)
	s.syncOpenInterest()
	s.evaluate(ctx)
	return nil
}

func (s *LiveService) refreshBars(ctx context.Context) error {
	for _, tf := range s.timeframes {
		candles, err := s.source.FetchHistory(ctx, s.symbol, tf, 5)
		if err != nil {
			return fmt.Errorf("拉取 %s %s 失败: %w", s.symbol, tf, err)
		}
		if len(candles) < 2 {
			continue
		}
		closed := candles[:len(candles)-1]
		if err := s.ks.Put(ctx, s.symbol, tf, closed, s.maxCandles); err != nil {
			return err
		}
		for _, c := range closed {
			if c.OpenTime <= s.watermark[tf] {
				continue
			}
			s.engine.OnBar(market.Bar{Timeframe: tf, Candle: c})
			s.watermark[tf] = c.OpenTime
		}
	}
	return nil
}

func (s *LiveService) syncOpenInterest() {
	if pct, ok := s.feeds.OIChange(); ok {
		s.engine.SetOpenInterestChange(pct)
	}
}

// evaluate 按当前 Oracle 决策态推导提案方向并走一遍过滤链。
// WAIT 不评估：没有提案就没有方向一致性可言。
func (s *LiveService) evaluate(ctx context.Context) {
	state, conf := s.engine.DecisionState()
	var proposed engine.Direction
	switch state {
	case engine.DecisionAllowLong:
		proposed = engine.DirectionLong
	case engine.DecisionAllowShort:
		proposed = engine.DirectionShort
	default:
		logger.Debugf("决策态=WAIT，本轮不评估")
		return
	}

	zones := s.detectZones(ctx)
	in := engine.Inputs{
		OrderFlow:   s.feeds.OrderFlow(),
		Derivatives: s.feeds.Derivatives(),
	}
	decision := s.engine.Decide(proposed, in, zones, s.exitSettings())
	traceID := uuid.NewString()
	logger.Infof("[%s] 评估 %s (置信=%s)：action=%s reason=%s",
		traceID[:8], proposed, conf, decision.Action, decision.Reason)

	s.persist(ctx, traceID, decision)
	s.execute(ctx, traceID, decision)
}

// detectZones 基于趋势周期的历史识别三类价格区域。
func (s *LiveService) detectZones(ctx context.Context) []zone.Zone {
	trendTF := s.timeframes[0]
	candles, err := s.ks.Get(ctx, s.symbol, trendTF)
	if err != nil || len(candles) == 0 {
		logger.Warnf("读取 %s %s 历史失败，区域为空: %v", s.symbol, trendTF, err)
		return nil
	}
	return s.detector.Detect(candles, s.engine.LastPrice())
}

func (s *LiveService) persist(ctx context.Context, traceID string, d engine.Decision) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Append(ctx, traceID, s.symbol, d); err != nil {
		logger.Errorf("决策留痕写入失败: %v", err)
	}
}

func (s *LiveService) execute(ctx context.Context, traceID string, d engine.Decision) {
	if s.gateway == nil || d.Action == engine.ActionHold || d.Plan == nil {
		return
	}
	intent := exchange.Intent{
		TraceID:    traceID,
		Symbol:     s.symbol,
		Action:     d.Action.String(),
		Entry:      s.engine.LastPrice(),
		StopLoss:   d.Plan.StopLoss,
		TakeProfit: d.Plan.TakeProfit,
		RealizedRR: d.Plan.RealizedRR,
		Method:     d.Plan.Method,
		Timestamp:  d.Timestamp,
	}
	if err := s.gateway.Submit(ctx, intent); err != nil {
		logger.Errorf("执行网关提交失败: %v", err)
	}
}

// ApplyOracle 实现 livehttp.OracleHandler：校验外部信号载荷并写入决策层。
func (s *LiveService) ApplyOracle(_ context.Context, raw string) (oracle.Update, error) {
	upd, err := oracle.Apply(s.engine, raw)
	if err != nil {
		logger.Warnf("Oracle 载荷被拒绝: %v", err)
		return oracle.Update{}, err
	}
	logger.Infof("✓ Oracle 更新：state=%s confidence=%s", upd.State, upd.Confidence)
	return upd, nil
}

// Status 实现 livehttp.StatusProvider。
func (s *LiveService) Status() any {
	return s.engine.Snapshot()
}

// Close 释放持久化资源。
func (s *LiveService) Close() {
	if s == nil {
		return
	}
	if s.logs != nil {
		if err := s.logs.Close(); err != nil {
			logger.Warnf("关闭决策留痕失败: %v", err)
		}
	}
	if closer, ok := s.gateway.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			logger.Warnf("关闭执行网关失败: %v", err)
		}
	}
}
