package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"datapreview/internal/app"
	"datapreview/internal/config"
	"datapreview/internal/tabular"
)

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Data.Dir = dir
	cfg.Server.DevMode = true

	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return NewServer(a)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIndex(t *testing.T) {
	w := get(t, newTestServer(t, t.TempDir()), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type=%q", ct)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}
	if !strings.Contains(w.Body.String(), "<p></p>") {
		t.Fatalf("index message should be empty: %s", w.Body.String())
	}
}

func TestRequestIDPreserved(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id=%q", got)
	}
}

func TestData_CSVRows(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "data.csv"), "z,y,x\n1,2,3\n4,5,6\n")

	body := get(t, newTestServer(t, dir), "/data").Body.String()
	if got := strings.Count(body, "<tr>"); got != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %s", got, body)
	}
	if !strings.Contains(body, "<th>z</th><th>y</th><th>x</th>") {
		t.Fatalf("column order mismatch: %s", body)
	}
}

func TestData_XLSXMaterializesCSV(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	header := []interface{}{"k", "v"}
	row := []interface{}{"a", 1}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SaveAs(filepath.Join(dir, "data.xlsx")); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	w := get(t, newTestServer(t, dir), "/data")
	if !strings.Contains(w.Body.String(), "<td>a</td><td>1</td>") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	table, err := tabular.ReadCSV(filepath.Join(dir, "data.csv"))
	if err != nil {
		t.Fatalf("data.csv should exist: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "a" || table.Rows[0][1] != "1" {
		t.Fatalf("rows=%v", table.Rows)
	}
}

func TestData_NoFiles(t *testing.T) {
	body := get(t, newTestServer(t, t.TempDir()), "/data").Body.String()
	if !strings.Contains(body, "<p>No data available.</p>") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAttachments(t *testing.T) {
	t.Run("no manifest", func(t *testing.T) {
		body := get(t, newTestServer(t, t.TempDir()), "/attachments").Body.String()
		if strings.Count(body, "<li>") != 0 {
			t.Fatalf("expected no entries: %s", body)
		}
	})

	t.Run("image data uri", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "data.json"), `{"attachments":[{"name":"a.png","url":"data:image/png;base64,AAAA"}]}`)
		body := get(t, newTestServer(t, dir), "/attachments").Body.String()
		if !strings.Contains(body, `<img src="data:image/png;base64,AAAA" alt="a.png"`) {
			t.Fatalf("expected inline image: %s", body)
		}
		if strings.Contains(body, "Download") {
			t.Fatalf("unexpected download link: %s", body)
		}
	})

	t.Run("external url", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "data.json"), `{"attachments":[{"name":"doc","url":"https://example.com/doc"}]}`)
		body := get(t, newTestServer(t, dir), "/attachments").Body.String()
		if !strings.Contains(body, "<em>No data URI available</em>") {
			t.Fatalf("expected no-data marker: %s", body)
		}
		if strings.Contains(body, "example.com") {
			t.Fatalf("external url must not be surfaced: %s", body)
		}
	})

	t.Run("parse error", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "data.json"), `{not json`)
		w := get(t, newTestServer(t, dir), "/attachments")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "<strong>data.json parse error</strong>") {
			t.Fatalf("expected placeholder entry: %s", w.Body.String())
		}
	})
}

func TestExecute(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		body := get(t, newTestServer(t, t.TempDir()), "/execute").Body.String()
		if !strings.Contains(body, "<pre>execute.go not found.</pre>") {
			t.Fatalf("unexpected body: %s", body)
		}
	})

	t.Run("script panics", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "execute.go"), "package main\n\nfunc Run() interface{} { panic(\"kaboom\") }\n")
		s := newTestServer(t, dir)
		w := get(t, s, "/execute")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Error running execute.go: ") || !strings.Contains(body, "kaboom") {
			t.Fatalf("unexpected body: %s", body)
		}
		// 服务仍可继续处理请求
		if get(t, s, "/").Code != http.StatusOK {
			t.Fatalf("server should keep serving")
		}
	})

	t.Run("result", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "execute.go"), "package main\n\nfunc Run() int { return 7 }\n")
		body := get(t, newTestServer(t, dir), "/execute").Body.String()
		if !strings.Contains(body, "<pre>7</pre>") {
			t.Fatalf("unexpected body: %s", body)
		}
	})
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "data.csv"), "a\n1\n")

	w := get(t, newTestServer(t, dir), "/export")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	outDir := filepath.Join(dir, "output")
	if !strings.Contains(w.Body.String(), "Exported to: "+outDir) {
		t.Fatalf("notice should name output dir: %s", w.Body.String())
	}
	for _, name := range []string{"styles.css", "index.html", "data.html", "attachments.html", "execute.html"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s missing or empty: %v", name, err)
		}
	}
}

func TestExport_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "output", "data.html"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	w := get(t, newTestServer(t, dir), "/export")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestOnlyGET(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code == http.StatusOK {
		t.Fatalf("POST should not be served")
	}
}
