package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"datapreview/internal/app"
	"datapreview/internal/exporter"
	"datapreview/internal/render"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Handlers 页面处理器
type Handlers struct {
	app *app.App
}

// NewHandlers 创建处理器
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// RegisterRoutes 注册页面路由
func (h *Handlers) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Index)
	router.GET("/data", h.Data)
	router.GET("/attachments", h.Attachments)
	router.GET("/execute", h.Execute)
	router.GET("/export", h.Export)
}

// Index 首页
// GET /
func (h *Handlers) Index(c *gin.Context) {
	h.page(c, render.IndexView{})
}

// Data 数据预览
// GET /data
func (h *Handlers) Data(c *gin.Context) {
	h.page(c, render.DataView{Table: h.app.Tables.LoadTable(c.Request.Context())})
}

// Attachments 附件列表
// GET /attachments
func (h *Handlers) Attachments(c *gin.Context) {
	h.page(c, render.AttachmentsView{Items: h.app.Catalog.Load(c.Request.Context())})
}

// Execute 执行用户脚本
// GET /execute
func (h *Handlers) Execute(c *gin.Context) {
	h.page(c, render.ExecuteView{Result: h.app.Runner.Run(c.Request.Context())})
}

// Export 导出静态站点，返回导出完成提示页
// GET /export
func (h *Handlers) Export(c *gin.Context) {
	res, err := h.app.Exporter.Export(c.Request.Context(), exporter.Options{})
	if err != nil {
		h.app.Logger.Error("export failed", zap.Error(err))
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "export failed: %v", err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, res.Notice)
}

func (h *Handlers) page(c *gin.Context, v render.View) {
	data, err := h.app.Renderer.Render(v)
	if err != nil {
		h.app.Logger.Error("render failed", zap.String("view", string(v.ViewID())), zap.Error(err))
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "render failed: %v", err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, data)
}
