package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")
	cfg, info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if info.FileFound {
		t.Fatalf("FileFound should be false")
	}
	if cfg.Server.Port != 5000 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Data.CSV != "data.csv" || cfg.Data.XLSX != "data.xlsx" || cfg.Data.Manifest != "data.json" {
		t.Fatalf("unexpected data defaults: %+v", cfg.Data)
	}
	if cfg.Script.Path != "execute.go" {
		t.Fatalf("Script.Path=%q", cfg.Script.Path)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datapreview.toml")
	content := `
[server]
port = 8080

[script]
path = "execute.py"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATAPREVIEW_HOST", "127.0.0.1")
	t.Setenv("DATAPREVIEW_DIR", dir)

	cfg, info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("Addr=%q", cfg.Addr())
	}
	if cfg.ScriptPath() != filepath.Join(dir, "execute.py") {
		t.Fatalf("ScriptPath=%q", cfg.ScriptPath())
	}
	// 未覆盖的字段保持默认
	if cfg.Data.Manifest != "data.json" {
		t.Fatalf("Manifest=%q", cfg.Data.Manifest)
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	t.Setenv("DATAPREVIEW_PORT", "abc")
	if _, _, err := Load(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}

func TestOutputDirIsAbsolute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.Dir = t.TempDir()
	out, err := cfg.OutputDir()
	if err != nil {
		t.Fatalf("OutputDir: %v", err)
	}
	if !filepath.IsAbs(out) || filepath.Base(out) != "output" {
		t.Fatalf("OutputDir=%q", out)
	}
}

func TestLoadPortSpecified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datapreview.toml")
	if err := os.WriteFile(path, []byte("[server]\nhost = \"localhost\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port should not be marked as specified: %+v", info)
	}

	t.Setenv("DATAPREVIEW_PORT", "7000")
	cfg, info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 7000 {
		t.Fatalf("env port not applied: port=%d info=%+v", cfg.Server.Port, info)
	}
}
