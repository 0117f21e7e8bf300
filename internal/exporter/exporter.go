// Package exporter 将所有视图导出为静态 HTML 站点
package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"datapreview/internal/attachments"
	"datapreview/internal/logging"
	"datapreview/internal/render"
	"datapreview/internal/tabular"
)

const (
	// IndexMessage 导出首页的提示语
	IndexMessage = "Static site ready for offline viewing."
	// ExecuteMessage 导出时执行页的固定内容（导出不运行脚本）
	ExecuteMessage = "Exported static pages."

	StylesheetFile = "styles.css"
)

// Exporter 静态站点导出器
type Exporter struct {
	renderer  *render.Renderer
	tables    *tabular.Loader
	catalog   *attachments.Catalog
	outputDir string
	logger    *zap.Logger
}

// Options 导出选项
type Options struct {
	Progress func(ProgressEvent)
}

// Result 导出结果
// Notice 为导出完成提示页，不写入磁盘
type Result struct {
	ID        string
	OutputDir string
	Files     []string
	Notice    []byte
}

// New 创建导出器，outputDir 应为绝对路径
func New(renderer *render.Renderer, tables *tabular.Loader, catalog *attachments.Catalog, outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		renderer:  renderer,
		tables:    tables,
		catalog:   catalog,
		outputDir: outputDir,
		logger:    logging.OrNop(logger).Named("exporter"),
	}
}

// OutputDir 导出目录
func (e *Exporter) OutputDir() string {
	return e.outputDir
}

// Export 渲染所有视图并写入导出目录
// 样式表写入失败会被忽略，HTML 写入失败直接返回错误
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{
		ID:        uuid.New().String(),
		OutputDir: e.outputDir,
	}
	logger := e.logger.With(zap.String("export_id", res.ID))

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	reportProgress(opts.Progress, StagePrepare)

	items := e.catalog.Load(ctx)
	table := e.tables.LoadTable(ctx)
	reportProgress(opts.Progress, StageLoad)

	indexPage, err := e.renderer.Render(render.IndexView{Message: IndexMessage})
	if err != nil {
		return nil, err
	}
	dataPage, err := e.renderer.Render(render.DataView{Table: table})
	if err != nil {
		return nil, err
	}
	attachmentsPage, err := e.renderer.Render(render.AttachmentsView{Items: items})
	if err != nil {
		return nil, err
	}
	reportProgress(opts.Progress, StageRender)

	if err := os.WriteFile(filepath.Join(e.outputDir, StylesheetFile), []byte(e.renderer.Stylesheet()), 0644); err != nil {
		logger.Warn("write stylesheet failed", zap.Error(err))
	} else {
		res.Files = append(res.Files, StylesheetFile)
	}

	pages := []struct {
		name string
		data []byte
	}{
		{"index.html", indexPage},
		{"data.html", dataPage},
		{"attachments.html", attachmentsPage},
	}
	for _, p := range pages {
		if err := e.write(p.name, p.data); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, p.name)
	}
	reportProgress(opts.Progress, StageWrite)

	executePage, err := e.renderer.Render(render.ExecuteView{Result: ExecuteMessage})
	if err != nil {
		return nil, err
	}
	if err := e.write("execute.html", executePage); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, "execute.html")

	res.Notice, err = e.renderer.Render(render.ExportNoticeView{OutputDir: e.outputDir})
	if err != nil {
		return nil, err
	}
	reportProgress(opts.Progress, StageDone)

	logger.Info("static site exported",
		zap.String("dir", e.outputDir),
		zap.Strings("files", res.Files))
	return res, nil
}

func (e *Exporter) write(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(e.outputDir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
