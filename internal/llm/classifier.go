package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hehezhang2025/gongwen-formatter/internal/style"
)

// The model may only answer with these types. Caption is deliberately not in
// the vocabulary; the prompt folds captions into body.
var validTypes = map[string]bool{
	"title":             true,
	"recipient":         true,
	"heading1":          true,
	"heading2":          true,
	"heading3":          true,
	"heading4":          true,
	"body":              true,
	"attachment_marker": true,
	"signature":         true,
	"date":              true,
}

// Classifier turns a document's paragraph texts into role assignments via
// the model.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify sends the texts as numbered lines and returns a role per line
// index. Lines the model skipped are absent from the map and keep their
// original formatting. The connection check runs first so a missing model
// fails before the slow generate call.
func (c *Classifier) Classify(ctx context.Context, texts []string) (map[int]style.Role, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("document has no text content")
	}
	if err := c.client.CheckConnection(ctx); err != nil {
		return nil, fmt.Errorf("ollama preflight: %w", err)
	}

	var sb strings.Builder
	for i, t := range texts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d: %s", i, t)
	}

	result, err := c.client.Analyze(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	if err := validate(result); err != nil {
		return nil, fmt.Errorf("model analysis rejected: %w", err)
	}

	roles := make(map[int]style.Role, len(result.Paragraphs))
	for _, p := range result.Paragraphs {
		if *p.Index < 0 || *p.Index >= len(texts) {
			continue
		}
		roles[*p.Index] = style.Normalize(p.Type)
	}
	return roles, nil
}

// validate checks the structural shape of the model's answer. Unknown types
// are coerced to body rather than rejected; a missing index rejects the
// whole answer because the mapping to paragraphs is gone.
func validate(r *Result) error {
	if r == nil || r.Paragraphs == nil {
		return fmt.Errorf("missing paragraphs field")
	}
	if len(r.Paragraphs) == 0 {
		return fmt.Errorf("empty paragraphs list")
	}
	for i := range r.Paragraphs {
		p := &r.Paragraphs[i]
		if p.Index == nil {
			return fmt.Errorf("paragraph %d has no index", i)
		}
		if !validTypes[p.Type] {
			p.Type = "body"
		}
	}
	return nil
}
