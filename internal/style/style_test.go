package style

import (
	"testing"

	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
)

func TestCleanToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"（一）1、加强管理", "（一）加强管理"},
		{"（二）.落实责任", "（二）落实责任"},
		{"（一）、总体要求", "（一）总体要求"},
		{"（三）。监督检查", "（三）监督检查"},
		{"（一）  统筹推进", "（一）统筹推进"},
		{"一、  总体要求", "一、总体要求"},
		{"1、实施方案", "1.实施方案"},
		{"1.  实施方案", "1.实施方案"},
		{"(1)、具体措施", "(1)具体措施"},
		{"(1).具体措施", "(1)具体措施"},
		{"(2)。保障措施", "(2)保障措施"},
		{"正文段落不受影响。", "正文段落不受影响。"},
		{"一、总体要求", "一、总体要求"},
	}
	for _, c := range cases {
		if got := CleanToken(c.in); got != c.want {
			t.Errorf("CleanToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTrimTrailingPunct(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"一、总体要求。", "一、总体要求"},
		{"（一）落实责任；", "（一）落实责任"},
		{"1.实施方案，", "1.实施方案"},
		{"一、总体要求", "一、总体要求"},
		{"关于印发方案的通知、", "关于印发方案的通知"},
	}
	for _, c := range cases {
		if got := TrimTrailingPunct(c.in); got != c.want {
			t.Errorf("TrimTrailingPunct(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("heading2"); got != Heading2 {
		t.Errorf("Normalize(heading2) = %q", got)
	}
	if got := Normalize("subtitle"); got != Body {
		t.Errorf("unknown role should map to body, got %q", got)
	}
	if got := Normalize(""); got != Body {
		t.Errorf("empty role should map to body, got %q", got)
	}
}

func paraWithText(texts ...string) *docx.Paragraph {
	p := &docx.Paragraph{}
	for _, s := range texts {
		p.AddRun(s)
	}
	return p
}

func TestApplyHeading1Layout(t *testing.T) {
	p := paraWithText("一、", "总体要求。")
	Apply(p, Heading1)

	if got := p.Text(); got != "一、总体要求" {
		t.Fatalf("text = %q", got)
	}
	if p.Props.Justification != docx.AlignLeft {
		t.Errorf("justification = %q", p.Props.Justification)
	}
	if p.Props.Ind == nil || p.Props.Ind.FirstLine == nil || *p.Props.Ind.FirstLine != docx.Twips(32) {
		t.Error("first-line indent not applied")
	}
	if p.Props.Spacing == nil || p.Props.Spacing.Line == nil || *p.Props.Spacing.Line != docx.Twips(30) {
		t.Error("line spacing not applied")
	}

	for _, r := range p.Runs() {
		if r.Props.FontEastAsia != "黑体" {
			t.Errorf("font = %q", r.Props.FontEastAsia)
		}
		if r.Props.Size == nil || *r.Props.Size != 32 {
			t.Error("size not 16pt")
		}
		if r.Props.Bold == nil || *r.Props.Bold {
			t.Error("heading1 must not be bold")
		}
		if r.Props.Italic == nil || *r.Props.Italic {
			t.Error("italic not cleared")
		}
	}
}

func TestApplyStripsLeadingWhitespaceAndTabs(t *testing.T) {
	p := paraWithText("  \t", "\t一、\t总体要求")
	Apply(p, Heading1)
	if got := p.Text(); got != "一、总体要求" {
		t.Fatalf("text = %q", got)
	}
	if len(p.Runs()) != 1 {
		t.Errorf("whitespace-only run not removed, %d runs", len(p.Runs()))
	}
}

func TestApplyCompoundTokenCollapsesRuns(t *testing.T) {
	p := paraWithText("（一）", "1、", "加强管理")
	Apply(p, Heading2)
	if got := p.Text(); got != "（一）加强管理" {
		t.Fatalf("text = %q", got)
	}
	if len(p.Runs()) != 1 {
		t.Errorf("runs not collapsed after rewrite: %d", len(p.Runs()))
	}
	r := p.Runs()[0]
	if r.Props.Bold == nil || !*r.Props.Bold {
		t.Error("heading2 must be bold")
	}
	if r.Props.FontEastAsia != "楷体_GB2312" {
		t.Errorf("font = %q", r.Props.FontEastAsia)
	}
}

func TestApplyEnumeratorEmphasis(t *testing.T) {
	p := paraWithText("一是加强领导，二是压实责任。")
	Apply(p, Body)

	runs := p.Runs()
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(runs))
	}
	wantBold := []bool{true, false, true, false}
	wantText := []string{"一是", "加强领导，", "二是", "压实责任。"}
	for i, r := range runs {
		if got := r.Text(); got != wantText[i] {
			t.Errorf("run %d text = %q, want %q", i, got, wantText[i])
		}
		if r.Props.Bold == nil || *r.Props.Bold != wantBold[i] {
			t.Errorf("run %d bold = %v, want %v", i, r.Props.Bold, wantBold[i])
		}
	}
}

func TestApplyBodyNoEmphasisKeepsRuns(t *testing.T) {
	p := paraWithText("根据相关规定，", "现将有关事项通知如下：")
	Apply(p, Body)
	if len(p.Runs()) != 2 {
		t.Errorf("plain body paragraph should keep its runs, got %d", len(p.Runs()))
	}
}

func TestApplyAttachmentItemKeepsLeadingSpaces(t *testing.T) {
	p := paraWithText("      2.实施细则")
	ApplyAttachmentItem(p)
	if got := p.Text(); got != "      2.实施细则" {
		t.Fatalf("leading spaces lost: %q", got)
	}
	if p.Props.Spacing == nil || p.Props.Spacing.Line == nil || *p.Props.Spacing.Line != docx.Twips(28) {
		t.Error("28pt line spacing not applied")
	}
	r := p.Runs()[0]
	if r.Props.Bold == nil || *r.Props.Bold {
		t.Error("attachment item must not be bold")
	}
}

func TestApplyTitleTrailingPunct(t *testing.T) {
	p := paraWithText("关于开展专项整治行动的通知。")
	Apply(p, Title)
	if got := p.Text(); got != "关于开展专项整治行动的通知" {
		t.Fatalf("text = %q", got)
	}
	if p.Props.Justification != docx.AlignCenter {
		t.Errorf("title must center, got %q", p.Props.Justification)
	}
	if p.Props.Spacing == nil || p.Props.Spacing.Line == nil || *p.Props.Spacing.Line != docx.Twips(35) {
		t.Error("35pt line spacing not applied")
	}
}
