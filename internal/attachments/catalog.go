// Package attachments 读取附件清单 (data.json)
package attachments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"datapreview/internal/logging"
	"datapreview/internal/model"
)

// ParseErrorName 清单解析失败时返回的占位附件名
const ParseErrorName = "data.json parse error"

const dataScheme = "data:"

// Catalog 附件清单读取器
type Catalog struct {
	path   string
	logger *zap.Logger
}

// NewCatalog 创建清单读取器
func NewCatalog(path string, logger *zap.Logger) *Catalog {
	return &Catalog{
		path:   path,
		logger: logging.OrNop(logger).Named("attachments"),
	}
}

// Load 读取附件列表
// 清单不存在时返回空列表；解析失败时在已解析条目后追加一个占位条目
func (c *Catalog) Load(ctx context.Context) []model.Attachment {
	items := []model.Attachment{}
	if err := ctx.Err(); err != nil {
		return items
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("read manifest failed", zap.String("path", c.path), zap.Error(err))
			items = append(items, model.Attachment{Name: ParseErrorName})
		}
		return items
	}

	items, err = Parse(data, items)
	if err != nil {
		c.logger.Warn("parse manifest failed", zap.String("path", c.path), zap.Error(err))
		items = append(items, model.Attachment{Name: ParseErrorName})
	}
	return items
}

// Parse 解析清单内容，将条目追加到 items 后返回
// 出错时返回出错前已解析的条目
func Parse(data []byte, items []model.Attachment) ([]model.Attachment, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return items, err
	}
	if payload == nil {
		return items, errors.New("manifest must be an object")
	}

	raw, ok := payload["attachments"]
	if !ok {
		return items, nil
	}

	// 空对象视为没有条目
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil && obj != nil && len(obj) == 0 {
		return items, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return items, fmt.Errorf("attachments: %w", err)
	}
	if entries == nil {
		return items, errors.New("attachments must be a list")
	}

	for i, entryRaw := range entries {
		var entry map[string]any
		if err := json.Unmarshal(entryRaw, &entry); err != nil {
			return items, fmt.Errorf("attachments[%d]: %w", i, err)
		}
		if entry == nil {
			return items, fmt.Errorf("attachments[%d]: entry must be an object", i)
		}

		item := model.Attachment{Name: nameOf(entry["name"])}
		if url, ok := entry["url"].(string); ok && strings.HasPrefix(url, dataScheme) {
			item.DataURI = url
		}
		items = append(items, item)
	}
	return items, nil
}

func nameOf(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	default:
		b, err := json.Marshal(n)
		if err != nil {
			return fmt.Sprint(n)
		}
		return string(b)
	}
}
