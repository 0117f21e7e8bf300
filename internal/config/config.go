package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile 默认配置文件名（位于工作目录）
const DefaultConfigFile = "datapreview.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Script ScriptConfig `toml:"script"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	DevMode     bool   `toml:"dev_mode"`
	OpenBrowser bool   `toml:"open_browser"`
}

// DataConfig 数据文件配置
// 除 Dir 外均为相对 Dir 的文件名
type DataConfig struct {
	Dir       string `toml:"dir"`
	CSV       string `toml:"csv"`
	XLSX      string `toml:"xlsx"`
	Manifest  string `toml:"manifest"`
	OutputDir string `toml:"output_dir"`
}

// ScriptConfig 用户脚本配置
type ScriptConfig struct {
	Path   string `toml:"path"`
	Python string `toml:"python"`
}

// LoadConfigInfo 配置加载元信息
// PortSpecified 表示端口来自配置文件或环境变量
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Data: DataConfig{
			Dir:       ".",
			CSV:       "data.csv",
			XLSX:      "data.xlsx",
			Manifest:  "data.json",
			OutputDir: "output",
		},
		Script: ScriptConfig{
			Path:   "execute.go",
			Python: "python3",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// Load 从 TOML 文件加载配置，文件不存在时使用默认配置
// path 为空时读取工作目录下的 datapreview.toml
func Load(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnv(cfg, &info); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(cfg *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("DATAPREVIEW_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DATAPREVIEW_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("DATAPREVIEW_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DATAPREVIEW_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("DATAPREVIEW_SCRIPT"); v != "" {
		cfg.Script.Path = v
	}
	return nil
}

// Addr 监听地址
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DataPath 获取数据目录下的文件路径
func (c *AppConfig) DataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// OutputDir 获取导出目录的绝对路径
func (c *AppConfig) OutputDir() (string, error) {
	return filepath.Abs(c.DataPath(c.Data.OutputDir))
}

// ScriptPath 获取用户脚本路径
func (c *AppConfig) ScriptPath() string {
	return c.DataPath(c.Script.Path)
}
