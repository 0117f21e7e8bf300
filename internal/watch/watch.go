// Package watch 监听输入文件变化
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"datapreview/internal/logging"
)

// DefaultDebounce 合并连续事件的等待时间
const DefaultDebounce = 300 * time.Millisecond

// Watcher 监听目录中指定文件名的变化
type Watcher struct {
	dir      string
	names    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
}

// New 创建监听器，names 为 dir 下需要关注的文件名
func New(dir string, names []string, logger *zap.Logger) *Watcher {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[filepath.Base(n)] = true
	}
	return &Watcher{
		dir:      dir,
		names:    set,
		debounce: DefaultDebounce,
		logger:   logging.OrNop(logger).Named("watch"),
	}
}

// SetDebounce 设置事件合并等待时间
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Relevant 事件是否涉及关注的文件
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if !w.names[filepath.Base(ev.Name)] {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// Run 阻塞监听直到 ctx 取消；每批变化只调用一次 onChange
// onChange 在监听 goroutine 中串行执行
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching inputs", zap.String("dir", w.dir))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(ev) {
				continue
			}
			w.logger.Debug("input changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			fire = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			onChange()
		}
	}
}
