package tabular

import (
	"html/template"
	"strings"

	"datapreview/internal/model"
)

// RenderHTML 将数据集渲染为 HTML 表格片段
func RenderHTML(table *model.Table) template.HTML {
	var b strings.Builder
	b.WriteString(`<table class="dataframe">` + "\n")
	b.WriteString("  <thead>\n    <tr>")
	for _, col := range table.Columns {
		b.WriteString("<th>")
		b.WriteString(template.HTMLEscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n  </thead>\n  <tbody>\n")
	for _, row := range table.Rows {
		b.WriteString("    <tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(template.HTMLEscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")
	return template.HTML(b.String())
}

// message 渲染提示段落
func message(text string) template.HTML {
	return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
}
