package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datapreview/internal/model"
)

const utf8BOM = "\ufeff"

// ErrNoColumns CSV 没有表头
var ErrNoColumns = errors.New("no columns to parse from file")

// ReadCSV 读取带表头的 CSV 文件
func ReadCSV(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV 解析带表头的 CSV
// 短行补空，长行报错
func ParseCSV(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &model.Table{
		Columns: header,
		Rows:    [][]string{},
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}
		table.Rows = append(table.Rows, padRow(record, len(header)))
	}
	return table, nil
}

// WriteCSV 将数据集写为 CSV（先写临时文件再重命名）
func WriteCSV(path string, table *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
