// Package runner 加载并执行用户脚本
//
// 脚本以完全信任方式运行，不做任何沙箱隔离。
// .go 脚本由 yaegi 解释执行，.py 脚本通过子进程交给 Python 解释器。
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"datapreview/internal/logging"
)

var (
	// ErrScriptNotFound 脚本文件不存在
	ErrScriptNotFound = errors.New("script not found")
	// ErrNoEntryPoint 脚本没有可调用的入口函数
	ErrNoEntryPoint = errors.New("no entry point")
)

// engine 脚本执行后端
type engine interface {
	exec(path string) (string, error)
	entryName() string
}

// Runner 用户脚本执行器
type Runner struct {
	path   string
	engine engine
	logger *zap.Logger
}

// New 创建执行器，python 为 .py 脚本使用的解释器
func New(path, python string, logger *zap.Logger) *Runner {
	var e engine = goEngine{}
	if strings.EqualFold(filepath.Ext(path), ".py") {
		e = pythonEngine{interpreter: python}
	}
	return &Runner{
		path:   path,
		engine: e,
		logger: logging.OrNop(logger).Named("runner"),
	}
}

// Path 脚本路径
func (r *Runner) Path() string {
	return r.path
}

// Exec 执行脚本并返回入口函数返回值的文本表示
// 执行期间没有取消机制，ctx 仅在开始前检查
func (r *Runner) Exec(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(r.path)
	if err != nil || info.IsDir() {
		return "", ErrScriptNotFound
	}
	return r.engine.exec(r.path)
}

// Run 执行脚本，所有结果与错误都转换为展示文本
func (r *Runner) Run(ctx context.Context) string {
	name := filepath.Base(r.path)

	result, err := r.Exec(ctx)
	switch {
	case err == nil:
		r.logger.Info("script finished", zap.String("script", r.path))
		return result
	case errors.Is(err, ErrScriptNotFound):
		return fmt.Sprintf("%s not found.", name)
	case errors.Is(err, ErrNoEntryPoint):
		return fmt.Sprintf("%s loaded but no %s function found.", name, r.engine.entryName())
	default:
		r.logger.Warn("script failed", zap.String("script", r.path), zap.Error(err))
		return fmt.Sprintf("Error running %s: %v", name, err)
	}
}
