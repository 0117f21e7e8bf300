package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"datapreview/internal/model"
)

// ReadXLSX 读取工作簿第一个工作表
func ReadXLSX(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()
	return FirstSheet(f)
}

// FirstSheet 将已打开工作簿的第一个工作表转为数据集
// 第一行作为表头，空表头及超出表头的列命名为 "Unnamed: N"
func FirstSheet(f *excelize.File) (*model.Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	table := &model.Table{
		Columns: []string{},
		Rows:    [][]string{},
	}
	if len(rows) == 0 {
		return table, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	header := padRow(rows[0], width)
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	table.Columns = header

	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, padRow(row, width))
	}
	return table, nil
}
