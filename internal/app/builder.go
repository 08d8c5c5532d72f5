package app

import (
	"context"
	"fmt"

	"strata/internal/analysis/levels"
	stcfg "strata/internal/config"
	"strata/internal/engine"
	binancegw "strata/internal/gateway/binance"
	"strata/internal/gateway/exchange"
	"strata/internal/gateway/paper"
	"strata/internal/logger"
	"strata/internal/market"
	"strata/internal/store/decisionlog"
	livehttp "strata/internal/transport/http/live"
)

// AppBuilder 手工装配依赖图。构造函数返回接口或具体结构，
// 测试时可通过 option 替换任意一环。
type AppBuilder struct {
	cfg     *stcfg.Config
	watcher *stcfg.Watcher

	sourceFn  func(stcfg.MarketConfig) (market.Source, error)
	gatewayFn func(stcfg.PaperConfig) (exchange.Gateway, error)
	logsFn    func(stcfg.StoreConfig) (*decisionlog.Store, error)
}

type AppBuilderOption func(*AppBuilder)

// WithWatcher 注入配置热重载监听器。
func WithWatcher(w *stcfg.Watcher) AppBuilderOption {
	return func(b *AppBuilder) { b.watcher = w }
}

// WithSource 替换行情数据源（测试用）。
func WithSource(src market.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(stcfg.MarketConfig) (market.Source, error) { return src, nil }
	}
}

// WithGateway 替换执行网关（测试用）。
func WithGateway(gw exchange.Gateway) AppBuilderOption {
	return func(b *AppBuilder) {
		b.gatewayFn = func(stcfg.PaperConfig) (exchange.Gateway, error) { return gw, nil }
	}
}

func NewAppBuilder(cfg *stcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		sourceFn:  buildBinanceSource,
		gatewayFn: buildPaperGateway,
		logsFn:    buildDecisionLogStore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildBinanceSource(cfg stcfg.MarketConfig) (market.Source, error) {
	return binancegw.New(binancegw.Config{
		RESTBaseURL:  cfg.RESTBaseURL,
		HTTPTimeout:  cfg.HTTPTimeout(),
		ProxyEnabled: cfg.ProxyEnabled,
		RESTProxyURL: cfg.RESTProxyURL,
	})
}

func buildPaperGateway(cfg stcfg.PaperConfig) (exchange.Gateway, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return paper.New(cfg.JournalPath, cfg.TickSize)
}

func buildDecisionLogStore(cfg stcfg.StoreConfig) (*decisionlog.Store, error) {
	if cfg.DecisionLogPath == "" {
		return nil, nil
	}
	return decisionlog.NewStore(cfg.DecisionLogPath)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	source, err := b.sourceFn(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("初始化行情源失败: %w", err)
	}
	logs, err := b.logsFn(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("初始化决策留痕失败: %w", err)
	}
	gateway, err := b.gatewayFn(cfg.Paper)
	if err != nil {
		return nil, fmt.Errorf("初始化执行网关失败: %w", err)
	}

	eng := engine.New(cfg.EngineSettings())
	live := newLiveService(liveServiceDeps{
		cfg:      cfg,
		engine:   eng,
		source:   source,
		store:    market.NewMemoryStore(),
		feeds:    market.NewFeedService(source, cfg.Market.Symbol),
		detector: levels.NewDetector(),
		logs:     logs,
		gateway:  gateway,
	})

	if b.watcher != nil {
		b.watcher.OnChange(func(next *stcfg.Config) {
			if next == nil {
				return
			}
			eng.UpdateSettings(next.EngineSettings())
			live.updateExitSettings(next.ExitSettings())
			logger.Infof("✓ 配置已热重载并生效")
		})
	}

	var liveHTTP *livehttp.Server
	if cfg.App.HTTPAddr != "" {
		liveHTTP, err = livehttp.NewServer(livehttp.ServerConfig{
			Addr:   cfg.App.HTTPAddr,
			Logs:   logs,
			Status: live,
			Oracle: live,
			Symbol: cfg.Market.Symbol,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 live http 失败: %w", err)
		}
	}

	return &App{cfg: cfg, live: live, liveHTTP: liveHTTP}, nil
}
