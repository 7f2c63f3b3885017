// Package llm classifies document paragraphs with a local Ollama model. It
// is the alternative to the rule engine in internal/classify: the whole
// document goes to the model as numbered lines, and the model returns a role
// per line.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// Client talks to the Ollama generate API.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(baseURL, model string, temperature float64, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckConnection verifies that Ollama answers and that the configured model
// is installed. Called before every classification so a dead service fails
// fast instead of after a long generate timeout.
func (c *Client) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name == c.model {
			return nil
		}
		available = append(available, m.Name)
	}
	return fmt.Errorf("model %s not installed, available: %v", c.model, available)
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Result is the model's structural analysis of a document.
type Result struct {
	Paragraphs []ParagraphResult `json:"paragraphs"`
	// AttachmentStartIndex is the line index of the attachment marker, or -1.
	AttachmentStartIndex int `json:"attachment_start_index"`
}

// ParagraphResult is the model's verdict for one numbered line. Index is a
// pointer so a line the model forgot to number is detectable.
type ParagraphResult struct {
	Index   *int   `json:"index"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Models wrap the JSON in prose more often than not; take the outermost
// brace pair.
var jsonRe = regexp.MustCompile(`(?s)\{.*\}`)

// Analyze sends the numbered document text to the model and parses its
// structural verdict.
func (c *Client) Analyze(ctx context.Context, documentText string) (*Result, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(documentText),
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  4096,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if gen.Response == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	text := gen.Response
	if m := jsonRe.FindString(text); m != "" {
		text = m
	}
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse analysis json: %w (raw: %s)", err, truncate(gen.Response, 500))
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
