package pipeline

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
)

func testFormatter() *Formatter {
	return NewFormatter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parseTestDocx(t *testing.T, paragraphs ...string) *docx.Document {
	t.Helper()
	doc, err := docx.Parse(buildTestDocx(t, paragraphs...))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func docTexts(doc *docx.Document) []string {
	var out []string
	for _, p := range doc.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestFormatRule_RemovesTrailingBlanks(t *testing.T) {
	doc := parseTestDocx(t, "关于某事项的通知", "正文内容。", "", "", "")
	rep := testFormatter().FormatRule(doc)
	if rep.EmptyRemoved != 3 {
		t.Errorf("EmptyRemoved = %d, want 3", rep.EmptyRemoved)
	}
	texts := docTexts(doc)
	if last := texts[len(texts)-1]; strings.TrimSpace(last) == "" {
		t.Errorf("trailing blank survived: %q", texts)
	}
}

func TestFormatRule_RemovesBlanksAboveHeadings(t *testing.T) {
	doc := parseTestDocx(t, "关于某事项的通知", "正文内容。", "", "一、总体要求", "落实到位。")
	rep := testFormatter().FormatRule(doc)
	if rep.EmptyRemoved != 1 {
		t.Errorf("EmptyRemoved = %d, want 1", rep.EmptyRemoved)
	}
	for _, text := range docTexts(doc) {
		if strings.TrimSpace(text) == "" {
			t.Errorf("blank paragraph survived: %q", docTexts(doc))
		}
	}
}

func TestFormatRule_TitleRecipientSeparator(t *testing.T) {
	doc := parseTestDocx(t, "关于某事项的通知", "各部门：", "正文内容。")
	testFormatter().FormatRule(doc)
	texts := docTexts(doc)
	// An empty paragraph is inserted between title and recipient.
	if len(texts) != 4 {
		t.Fatalf("paragraphs = %q, want 4 entries", texts)
	}
	if strings.TrimSpace(texts[1]) != "" {
		t.Errorf("expected blank separator after title, got %q", texts[1])
	}
	if texts[2] != "各部门：" {
		t.Errorf("recipient moved: %q", texts)
	}
}

func TestFormatRule_AttachmentSection(t *testing.T) {
	doc := parseTestDocx(t,
		"关于某事项的通知",
		"正文内容。",
		"附件：1、管理办法",
		"2、实施细则",
		"附件1",
		"管理办法",
		"附件内容正文。",
	)
	rep := testFormatter().FormatRule(doc)
	if rep.Roles["attachment_marker"] == 0 {
		t.Fatalf("no attachment marker styled, roles = %v", rep.Roles)
	}
	texts := docTexts(doc)
	joined := strings.Join(texts, "\n")
	if !strings.Contains(joined, "附件：1.管理办法") {
		t.Errorf("attachment list head not normalized: %q", texts)
	}
	if !strings.Contains(joined, "      2.实施细则") {
		t.Errorf("attachment list item not indented: %q", texts)
	}
}

func TestFormatRule_NumberingRepair(t *testing.T) {
	body := `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>总体要求</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>保障措施</w:t></w:r></w:p>`
	doc, err := docx.Parse(buildTestDocxBody(t, body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rep := testFormatter().FormatRule(doc)
	if rep.NumberingRestored != 2 {
		t.Errorf("NumberingRestored = %d, want 2", rep.NumberingRestored)
	}
	texts := docTexts(doc)
	if !strings.HasPrefix(texts[0], "一、") || !strings.HasPrefix(texts[1], "二、") {
		t.Errorf("tokens not restored: %q", texts)
	}
	if _, _, ok := doc.Paragraphs()[0].Numbering(); ok {
		t.Error("numbering descriptor survived")
	}
}
