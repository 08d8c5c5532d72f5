package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"strata/internal/logger"
)

// ChangeListener 在配置文件变更并成功重载后触发，收到新的不可变快照。
type ChangeListener func(*Config)

// Watcher 监听配置文件并原子替换快照。重载失败时保留旧快照继续运行。
type Watcher struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	current   *Config
	listeners []ChangeListener
}

// NewWatcher 先加载一次（失败直接返回错误），然后开始监听。
func NewWatcher(path string) (*Watcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config watcher requires path")
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path, current: cfg, v: viper.New()}
	w.v.SetConfigFile(path)
	if err := w.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config for watch failed: %w", err)
	}
	w.v.OnConfigChange(func(evt fsnotify.Event) {
		next, err := Load(w.path)
		if err != nil {
			logger.Errorf("配置重载失败（保留旧快照）: %v", err)
			return
		}
		w.mu.Lock()
		w.current = next
		listeners := append([]ChangeListener(nil), w.listeners...)
		w.mu.Unlock()
		logger.Infof("配置已重载: %s", evt.Name)
		for _, fn := range listeners {
			if fn == nil {
				continue
			}
			go func(cb ChangeListener) {
				defer safeRecover("config listener")
				cb(next)
			}(fn)
		}
	})
	w.v.WatchConfig()
	return w, nil
}

// Current 返回当前的不可变快照。
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange 注册重载回调。
func (w *Watcher) OnChange(fn ChangeListener) {
	if w == nil || fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}
