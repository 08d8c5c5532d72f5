// Package app 负责应用级编排：装配依赖→启动实时服务与观测接口。
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	stcfg "strata/internal/config"
	livehttp "strata/internal/transport/http/live"
)

type App struct {
	cfg      *stcfg.Config
	live     *LiveService
	liveHTTP *livehttp.Server
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *stcfg.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return NewAppBuilder(cfg, opts...).Build(context.Background())
}

// Run 启动实时服务与 HTTP 接口，任一失败即整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.live == nil {
		return fmt.Errorf("live service not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.liveHTTP != nil {
		group.Go(func() error {
			if err := a.liveHTTP.Start(ctx); err != nil {
				return fmt.Errorf("live http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		defer a.live.Close()
		return a.live.Run(ctx)
	})

	return group.Wait()
}

// LiveService 暴露底层实时服务实例（测试/回放用）。
func (a *App) LiveService() *LiveService {
	if a == nil {
		return nil
	}
	return a.live
}
