// Package tabular 加载 CSV/XLSX 数据并渲染为 HTML 表格
package tabular

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"datapreview/internal/logging"
	"datapreview/internal/model"
)

// ErrNoData CSV 与 XLSX 均不存在
var ErrNoData = errors.New("no data available")

// SourceError 读取或转换数据文件失败
type SourceError struct {
	Path       string
	Converting bool
	Err        error
}

func (e *SourceError) Error() string {
	if e.Converting {
		return fmt.Sprintf("converting %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Loader 表格数据加载器
// 优先读取 CSV，不存在时读取 XLSX 并尽力生成 CSV
type Loader struct {
	csvPath  string
	xlsxPath string
	logger   *zap.Logger
}

// NewLoader 创建加载器
func NewLoader(csvPath, xlsxPath string, logger *zap.Logger) *Loader {
	return &Loader{
		csvPath:  csvPath,
		xlsxPath: xlsxPath,
		logger:   logging.OrNop(logger).Named("tabular"),
	}
}

// Load 加载数据集
func (l *Loader) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fileExists(l.csvPath) {
		table, err := ReadCSV(l.csvPath)
		if err != nil {
			return nil, &SourceError{Path: l.csvPath, Err: err}
		}
		return table, nil
	}

	if !fileExists(l.xlsxPath) {
		return nil, ErrNoData
	}

	table, err := ReadXLSX(l.xlsxPath)
	if err != nil {
		return nil, &SourceError{Path: l.xlsxPath, Converting: true, Err: err}
	}

	// 生成 CSV 失败不影响本次读取
	if err := WriteCSV(l.csvPath, table); err != nil {
		l.logger.Warn("persist csv failed", zap.String("path", l.csvPath), zap.Error(err))
	} else {
		l.logger.Info("converted xlsx to csv",
			zap.String("xlsx", l.xlsxPath),
			zap.String("csv", l.csvPath),
			zap.Int("rows", table.RowCount()))
	}
	return table, nil
}

// LoadTable 加载并渲染为 HTML，错误以提示段落返回
func (l *Loader) LoadTable(ctx context.Context) template.HTML {
	table, err := l.Load(ctx)
	if err == nil {
		return RenderHTML(table)
	}

	if errors.Is(err, ErrNoData) {
		return message("No data available.")
	}

	l.logger.Warn("load table failed", zap.Error(err))
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		if srcErr.Converting {
			return message(fmt.Sprintf("Error converting %s: %v", filepath.Base(srcErr.Path), srcErr.Err))
		}
		return message(fmt.Sprintf("Error reading %s: %v", filepath.Base(srcErr.Path), srcErr.Err))
	}
	return message(fmt.Sprintf("Error rendering data: %v", err))
}

// EnsureCSV CSV 不存在而 XLSX 存在时生成 CSV
func (l *Loader) EnsureCSV(ctx context.Context) error {
	if fileExists(l.csvPath) || !fileExists(l.xlsxPath) {
		return nil
	}
	table, err := ReadXLSX(l.xlsxPath)
	if err != nil {
		return &SourceError{Path: l.xlsxPath, Converting: true, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteCSV(l.csvPath, table); err != nil {
		return fmt.Errorf("failed to write %s: %w", l.csvPath, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
