package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hehezhang2025/gongwen-formatter/internal/style"
)

func fakeOllama(t *testing.T, models []string, response string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type model struct {
			Name string `json:"name"`
		}
		var ms []model
		for _, m := range models {
			ms = append(ms, model{Name: m})
		}
		json.NewEncoder(w).Encode(map[string]any{"models": ms})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad generate request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be disabled")
		}
		if req.Options.NumPredict != 4096 {
			t.Errorf("num_predict = %d", req.Options.NumPredict)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	})
	return httptest.NewServer(mux)
}

func TestClassify(t *testing.T) {
	answer := `根据分析，结果如下：
{
  "paragraphs": [
    {"index": 0, "type": "title", "content": "关于加强项目管理的通知"},
    {"index": 1, "type": "recipient", "content": "各部门："},
    {"index": 2, "type": "heading1", "content": "一、加强组织领导"},
    {"index": 3, "type": "subtitle", "content": "某个段落"}
  ],
  "attachment_start_index": -1
}`
	srv := fakeOllama(t, []string{"qwen2.5:7b"}, answer)
	defer srv.Close()

	client := NewClient(srv.URL, "qwen2.5:7b", 0.1, 30*time.Second)
	roles, err := NewClassifier(client).Classify(context.Background(), []string{
		"关于加强项目管理的通知", "各部门：", "一、加强组织领导", "某个段落",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := map[int]style.Role{
		0: style.Title, 1: style.Recipient, 2: style.Heading1, 3: style.Body,
	}
	for i, w := range want {
		if roles[i] != w {
			t.Errorf("line %d: got %q, want %q", i, roles[i], w)
		}
	}
}

func TestClassifyModelMissing(t *testing.T) {
	srv := fakeOllama(t, []string{"llama3:8b"}, "{}")
	defer srv.Close()

	client := NewClient(srv.URL, "qwen2.5:7b", 0.1, 30*time.Second)
	_, err := NewClassifier(client).Classify(context.Background(), []string{"正文"})
	if err == nil {
		t.Fatal("expected preflight failure for missing model")
	}
}

func TestClassifyRejectsAnswerWithoutParagraphs(t *testing.T) {
	srv := fakeOllama(t, []string{"qwen2.5:7b"}, `{"attachment_start_index": -1}`)
	defer srv.Close()

	client := NewClient(srv.URL, "qwen2.5:7b", 0.1, 30*time.Second)
	_, err := NewClassifier(client).Classify(context.Background(), []string{"正文"})
	if err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestClassifyIgnoresOutOfRangeIndex(t *testing.T) {
	answer := `{"paragraphs": [{"index": 0, "type": "body", "content": "A"}, {"index": 9, "type": "title", "content": "B"}], "attachment_start_index": -1}`
	srv := fakeOllama(t, []string{"qwen2.5:7b"}, answer)
	defer srv.Close()

	client := NewClient(srv.URL, "qwen2.5:7b", 0.1, 30*time.Second)
	roles, err := NewClassifier(client).Classify(context.Background(), []string{"唯一的段落"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(roles) != 1 {
		t.Errorf("expected 1 role, got %d", len(roles))
	}
}

func TestAnalyzeEmptyResponse(t *testing.T) {
	srv := fakeOllama(t, []string{"qwen2.5:7b"}, "")
	defer srv.Close()

	client := NewClient(srv.URL, "qwen2.5:7b", 0.1, 30*time.Second)
	if _, err := client.Analyze(context.Background(), "0: 内容"); err == nil {
		t.Fatal("expected error on empty model response")
	}
}
