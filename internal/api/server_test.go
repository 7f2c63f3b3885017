package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hehezhang2025/gongwen-formatter/internal/config"
	"github.com/hehezhang2025/gongwen-formatter/internal/pipeline"
)

func testDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, text := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + text + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			"<w:body>" + body.String() + "</w:body></w:document>",
	}
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T, apiKey string) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		Mode:           config.ModeRule,
		OutputDir:      t.TempDir(),
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Minute,
		APIKey:         apiKey,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	t.Cleanup(func() {
		cancel()
		orch.Stop()
	})
	return NewServer(orch, log, cfg), orch
}

func uploadRequest(t *testing.T, url, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["mode"] != "rule" {
		t.Errorf("body = %v", body)
	}
}

func TestFormatUploadAndDownload(t *testing.T) {
	srv, _ := newTestServer(t, "")
	data := testDocx(t, "关于开展年度考核工作的通知", "各部门：", "一、考核范围", "全体在职人员。")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/format", "考核通知.docx", data, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("no job_id in response")
	}
	// The worker may have picked the job up already; any job state is a
	// valid answer, but the field must be present and consistent.
	switch accepted.Status {
	case "queued", "formatting", "completed", "failed", "partial":
	default:
		t.Fatalf("unexpected status in accept response: %q", accepted.Status)
	}

	// Poll until the worker finishes.
	var status struct {
		Status    string            `json:"status"`
		Errors    []string          `json:"errors"`
		Downloads map[string]string `json:"downloads"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/format/"+accepted.JobID+"/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Status == "completed" || status.Status == "failed" || status.Status == "partial" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %+v", status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status.Status != "completed" {
		t.Fatalf("job status = %q, errors = %v", status.Status, status.Errors)
	}
	if status.Downloads["rule"] == "" {
		t.Fatalf("no rule download url: %+v", status)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, status.Downloads["rule"], nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty download body")
	}

	// The file is removed after a successful send.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, status.Downloads["rule"], nil))
	if rec.Code != http.StatusGone {
		t.Errorf("second download status = %d, want %d", rec.Code, http.StatusGone)
	}
}

func TestFormatRejectsNonDocx(t *testing.T) {
	srv, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/format", "report.pdf", []byte("%PDF"), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestFormatRejectsInvalidMode(t *testing.T) {
	srv, _ := newTestServer(t, "")
	data := testDocx(t, "内容")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/format", "a.docx", data, map[string]string{"mode": "fast"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t, "secret-key")

	data := testDocx(t, "内容")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/format", "a.docx", data, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var authErr map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &authErr); err != nil || authErr["error"] == "" {
		t.Errorf("auth failure body not a json error: %q", rec.Body.String())
	}

	req := uploadRequest(t, "/api/format", "a.docx", data, nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong-key status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = uploadRequest(t, "/api/format", "a.docx", data, nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("authenticated status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Health stays public.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"通知.docx", "通知.docx"},
		{"../../etc/passwd", "passwd"},
		{"dir/file.docx", "file.docx"},
		{"", "unnamed"},
	}
	for _, c := range cases {
		if got := sanitizeFilename(c.in); got != c.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
