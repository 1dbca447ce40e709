package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/harlequix/infopipe/config"
	"github.com/harlequix/infopipe/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		ErrorInterval: 50,
		Persist:       true,
		Addr:          ":0",
		CacheSize:     4,
		MaxTextBytes:  1 << 16,
		PreviewBits:   200,
		PreviewText:   300,
	}
}

func newServer(t *testing.T, persist bool) (*Server, *store.Store) {
	t.Helper()
	cfg := testConfig()
	cfg.UploadsDir = filepath.Join(t.TempDir(), "uploads")
	var runs *store.Store
	if persist {
		var err error
		runs, err = store.New(filepath.Join(t.TempDir(), "runs"), 4)
		if err != nil {
			t.Fatalf("%v", err)
		}
	}
	return New(cfg, runs), runs
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func TestProcess(t *testing.T) {
	s, _ := newServer(t, true)
	w := do(s, http.MethodPost, "/api/process", `{"text": "AAAB", "error_interval": 7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["encoded_bits"] != "1110" || body["hamming_bits"] != "0010110" {
		t.Errorf("bits = %v %v", body["encoded_bits"], body["hamming_bits"])
	}
	if body["error_interval"] != float64(7) {
		t.Errorf("error_interval = %v", body["error_interval"])
	}
	summary := body["summary"].(map[string]interface{})
	if summary["compression_ratio"] != "1.00:1" || summary["pad_bits"] != float64(0) {
		t.Errorf("summary = %v", summary)
	}
	quality := body["quality_metrics"].(map[string]interface{})
	for _, flag := range []string{"huffman_ok", "hamming_ok", "recovered_text_ok"} {
		if quality[flag] != true {
			t.Errorf("%s = %v", flag, quality[flag])
		}
	}
	if dir, _ := body["run_directory"].(string); dir == "" {
		t.Errorf("run_directory missing")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}

func TestProcessDefaultInterval(t *testing.T) {
	s, _ := newServer(t, false)
	w := do(s, http.MethodPost, "/api/process", `{"text": "hello", "error_interval": "12"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["error_interval"]; got != float64(12) {
		t.Errorf("error_interval = %v", got)
	}

	w = do(s, http.MethodPost, "/api/process", `{"text": "hello"}`)
	body := decode(t, w)
	if body["error_interval"] != float64(50) {
		t.Errorf("default error_interval = %v", body["error_interval"])
	}
	if _, ok := body["run_directory"]; ok {
		t.Errorf("run_directory set without a store")
	}
}

func TestProcessValidation(t *testing.T) {
	s, _ := newServer(t, false)
	tests := []struct {
		body string
		want string
	}{
		{`[1, 2]`, "Request body must be a JSON object"},
		{`not json`, "Request body must be a JSON object"},
		{``, "'text' must be a non-empty string"},
		{`{"text": "   "}`, "'text' must be a non-empty string"},
		{`{"text": 5}`, "'text' must be a non-empty string"},
		{`{"text": "abc", "error_interval": "x"}`, "'error_interval' must be an integer"},
		{`{"text": "abc", "error_interval": 0}`, "'error_interval' must be >= 1"},
	}
	for _, test := range tests {
		w := do(s, http.MethodPost, "/api/process", test.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: status %d", test.body, w.Code)
			continue
		}
		if got := decode(t, w)["error"]; got != test.want {
			t.Errorf("%q: error %q, want %q", test.body, got, test.want)
		}
	}
}

func TestProcessTooLarge(t *testing.T) {
	s, _ := newServer(t, false)
	s.config.MaxTextBytes = 16
	w := do(s, http.MethodPost, "/api/process", `{"text": "`+strings.Repeat("a", 64)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d", w.Code)
	}
}

func TestSampleText(t *testing.T) {
	s, _ := newServer(t, false)
	body := decode(t, do(s, http.MethodGet, "/api/sample-text?type=lorem", ""))
	if body["type"] != "lorem" || !strings.HasPrefix(body["content"].(string), "Lorem ipsum") {
		t.Errorf("body = %v", body)
	}
	body = decode(t, do(s, http.MethodGet, "/api/sample-text?type=unknown", ""))
	if body["content"] != samples["simple"] {
		t.Errorf("unknown type should fall back to simple, got %v", body["content"])
	}
}

func TestRuns(t *testing.T) {
	s, _ := newServer(t, true)
	w := do(s, http.MethodPost, "/api/process", `{"text": "abracadabra", "error_interval": 9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	body := decode(t, do(s, http.MethodGet, "/api/runs", ""))
	runs := body["runs"].([]interface{})
	if len(runs) != 1 {
		t.Fatalf("runs = %v", runs)
	}
	entry := runs[0].(map[string]interface{})
	id := entry["directory"].(string)
	if entry["timestamp"] != id {
		t.Errorf("timestamp = %v", entry["timestamp"])
	}

	w = do(s, http.MethodGet, "/api/runs/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	detail := decode(t, w)
	if detail["text"] != "abracadabra" {
		t.Errorf("text = %v", detail["text"])
	}
	if _, ok := detail["huffman_codes"]; !ok {
		t.Errorf("huffman_codes missing: %v", detail)
	}
	summary := detail["summary"].(map[string]interface{})
	if summary["error_interval"] != float64(9) {
		t.Errorf("summary = %v", summary)
	}

	if w := do(s, http.MethodGet, "/api/runs/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("status %d for unknown run", w.Code)
	}
}

func TestRunsWithoutStore(t *testing.T) {
	s, _ := newServer(t, false)
	body := decode(t, do(s, http.MethodGet, "/api/runs", ""))
	if runs := body["runs"].([]interface{}); len(runs) != 0 {
		t.Errorf("runs = %v", runs)
	}
	if w := do(s, http.MethodGet, "/api/runs/x", ""); w.Code != http.StatusNotFound {
		t.Errorf("status %d", w.Code)
	}
}

func TestPreflight(t *testing.T) {
	s, _ := newServer(t, false)
	w := do(s, http.MethodOptions, "/api/process", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func uploadRequest(t *testing.T, s *Server, field, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("%v", err)
	}
	part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatalf("%v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	s, _ := newServer(t, false)
	content := strings.Repeat("ab", 600)
	w := uploadRequest(t, s, "file", "notes.txt", content)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["filename"] != "notes.txt" || body["size"] != float64(1200) {
		t.Errorf("body = %v", body)
	}
	preview := body["content"].(string)
	if len(preview) != 1003 || !strings.HasSuffix(preview, "...") {
		t.Errorf("content not truncated: %d chars", len(preview))
	}
	path := body["upload_path"].(string)
	if filepath.Dir(path) != s.config.UploadsDir {
		t.Errorf("upload_path = %q", path)
	}
	saved, err := os.ReadFile(path)
	if err != nil || string(saved) != content {
		t.Errorf("saved upload differs: %v", err)
	}
}

func TestUploadRejected(t *testing.T) {
	s, _ := newServer(t, false)
	tests := []struct {
		field, filename string
		want            string
	}{
		{"file", "image.png", "Invalid file format. Please upload a .txt file"},
		{"other", "notes.txt", "No file uploaded"},
	}
	for _, test := range tests {
		w := uploadRequest(t, s, test.field, test.filename, "hello")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s/%s: status %d", test.field, test.filename, w.Code)
			continue
		}
		if got := decode(t, w)["error"]; got != test.want {
			t.Errorf("%s/%s: error %q, want %q", test.field, test.filename, got, test.want)
		}
	}
	if w := do(s, http.MethodPost, "/api/upload", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("non-multipart upload: status %d", w.Code)
	}
}
