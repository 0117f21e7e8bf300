// Package app 组装应用上下文：启动时构建一次，显式传给路由与导出器
package app

import (
	"fmt"

	"go.uber.org/zap"

	"datapreview/internal/attachments"
	"datapreview/internal/config"
	"datapreview/internal/exporter"
	"datapreview/internal/logging"
	"datapreview/internal/render"
	"datapreview/internal/runner"
	"datapreview/internal/tabular"
)

// App 应用上下文
type App struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Renderer *render.Renderer
	Tables   *tabular.Loader
	Catalog  *attachments.Catalog
	Runner   *runner.Runner
	Exporter *exporter.Exporter
}

// New 根据配置创建应用上下文
func New(cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	outputDir, err := cfg.OutputDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	tables := tabular.NewLoader(cfg.DataPath(cfg.Data.CSV), cfg.DataPath(cfg.Data.XLSX), logger)
	catalog := attachments.NewCatalog(cfg.DataPath(cfg.Data.Manifest), logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Renderer: renderer,
		Tables:   tables,
		Catalog:  catalog,
		Runner:   runner.New(cfg.ScriptPath(), cfg.Script.Python, logger),
		Exporter: exporter.New(renderer, tables, catalog, outputDir, logger),
	}, nil
}
