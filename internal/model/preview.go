package model

import "strings"

// Attachment 附件清单中的一项
// DataURI 为空表示没有可内嵌的数据
type Attachment struct {
	Name    string `json:"name"`
	DataURI string `json:"dataUri,omitempty"`
}

// HasData 是否携带内嵌数据
func (a Attachment) HasData() bool {
	return a.DataURI != ""
}

// IsImage 内嵌数据是否为图片
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.DataURI, "data:image")
}

// Table 表格数据集（列有序，行有序）
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RowCount 数据行数（不含表头）
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
