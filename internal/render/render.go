// Package render 将视图记录渲染为完整 HTML 页面
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"datapreview/internal/model"
)

//go:embed templates/*.html templates/styles.css
var templateFS embed.FS

// ErrUnknownView 视图没有对应模板
var ErrUnknownView = errors.New("unknown view")

// ViewID 视图标识
type ViewID string

const (
	ViewIndex        ViewID = "index"
	ViewData         ViewID = "data"
	ViewAttachments  ViewID = "attachments"
	ViewExecute      ViewID = "execute"
	ViewExportNotice ViewID = "export_notice"
)

// View 视图记录，每种视图一个结构体
type View interface {
	ViewID() ViewID
}

// IndexView 首页
type IndexView struct {
	Message string
}

// DataView 数据预览页，Table 为已渲染的表格片段
type DataView struct {
	Table template.HTML
}

// AttachmentsView 附件列表页
type AttachmentsView struct {
	Items []model.Attachment
}

// ExecuteView 脚本执行结果页
type ExecuteView struct {
	Result string
}

// ExportNoticeView 导出完成提示页
type ExportNoticeView struct {
	OutputDir string
}

func (IndexView) ViewID() ViewID { return ViewIndex }
func (DataView) ViewID() ViewID { return ViewData }
func (AttachmentsView) ViewID() ViewID { return ViewAttachments }
func (ExecuteView) ViewID() ViewID { return ViewExecute }
func (ExportNoticeView) ViewID() ViewID { return ViewExportNotice }

// page 模板数据
type page struct {
	CSS  template.CSS
	View View
}

// Renderer 页面渲染器，创建后只读
type Renderer struct {
	tmpl *template.Template
	css  string
}

// New 解析内嵌模板与样式表
func New() (*Renderer, error) {
	css, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"dataURL": func(s string) template.URL { return template.URL(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl, css: string(css)}, nil
}

// Stylesheet 共享样式表
func (r *Renderer) Stylesheet() string {
	return r.css
}

// Render 渲染视图
func (r *Renderer) Render(v View) ([]byte, error) {
	if v == nil {
		return nil, ErrUnknownView
	}
	id := v.ViewID()
	t := r.tmpl.Lookup(string(id) + ".html")
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, id)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, page{CSS: template.CSS(r.css), View: v}); err != nil {
		return nil, fmt.Errorf("render %s: %w", id, err)
	}
	return buf.Bytes(), nil
}
