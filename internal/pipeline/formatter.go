// Package pipeline runs documents through the formatting passes and manages
// the asynchronous job queue around them.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hehezhang2025/gongwen-formatter/internal/classify"
	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
	"github.com/hehezhang2025/gongwen-formatter/internal/hierarchy"
	"github.com/hehezhang2025/gongwen-formatter/internal/llm"
	"github.com/hehezhang2025/gongwen-formatter/internal/numbering"
	"github.com/hehezhang2025/gongwen-formatter/internal/style"
	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

// Report summarizes what one formatting run did to a document.
type Report struct {
	Paragraphs        int            `json:"paragraphs"`
	NumberingRestored int            `json:"numbering_restored"`
	EmptyRemoved      int            `json:"empty_removed"`
	HeadingFixes      int            `json:"heading_fixes"`
	AttachmentItems   int            `json:"attachment_items"`
	Images            int            `json:"images"`
	Roles             map[string]int `json:"roles"`
}

// Formatter applies the GB/T 9704-2012 formatting passes to a parsed
// document.
type Formatter struct {
	log *slog.Logger
}

func NewFormatter(log *slog.Logger) *Formatter {
	return &Formatter{log: log}
}

// FormatRule runs the rule-based pipeline: page margins, trailing blank
// removal, automatic-numbering repair, blank-line cleanup above headings,
// heading-structure validation, attachment-list normalization, then role
// classification and per-paragraph formatting.
func (f *Formatter) FormatRule(doc *docx.Document) *Report {
	rep := &Report{Roles: make(map[string]int)}

	doc.SetPageMargins(
		docx.CmToTwips(3.7), docx.CmToTwips(3.5),
		docx.CmToTwips(2.8), docx.CmToTwips(2.6),
	)

	rep.EmptyRemoved += removeTrailingBlanks(doc)
	rep.NumberingRestored = f.repairNumbering(doc)
	rep.EmptyRemoved += removeBlanksAboveHeadings(doc)

	paras := effectiveParagraphs(doc)
	rep.Paragraphs = len(paras)

	texts := trimmedTexts(paras)
	attachStart := -1
	for i, t := range texts {
		if token.IsAttachmentMarker(t) {
			attachStart = i
			break
		}
	}

	fixes := hierarchy.Validate(texts, attachStart)
	rep.HeadingFixes = len(fixes)
	for _, fix := range fixes {
		paras[fix.Index].SetText(fix.Text)
		texts[fix.Index] = strings.TrimSpace(fix.Text)
	}
	for _, fix := range hierarchy.NormalizeAttachmentList(texts) {
		paras[fix.Index].SetText(fix.Text)
		texts[fix.Index] = strings.TrimSpace(fix.Text)
	}

	input := make([]classify.Paragraph, len(paras))
	for i, p := range paras {
		input[i] = classify.Paragraph{
			Text:     strings.TrimSpace(p.Text()),
			Raw:      p.Text(),
			HasImage: p.HasImage(),
		}
	}
	res := classify.Classify(input)

	for i, p := range paras {
		switch {
		case res.Kinds[i] == classify.KindImage:
			style.CenterImage(p)
			rep.Images++

		case res.Kinds[i] == classify.KindAttachmentItem:
			style.ApplyAttachmentItem(p)
			rep.AttachmentItems++
			rep.Roles[string(style.Body)]++

		case res.Roles[i] == style.AttachmentMarker:
			style.Apply(p, style.AttachmentMarker)
			if i > 0 {
				// Attachments start on a fresh page.
				p.InsertPageBreakAtStart()
			}
			rep.Roles[string(style.AttachmentMarker)]++

		case res.Roles[i] != "":
			style.Apply(p, res.Roles[i])
			rep.Roles[string(res.Roles[i])]++

			// A blank line separates the title from the recipient.
			if res.Roles[i] == style.Title && i+1 < len(paras) &&
				(res.AttachmentStart < 0 || i < res.AttachmentStart) &&
				res.Roles[i+1] == style.Recipient {
				doc.InsertEmptyParagraphAfter(p)
			}
		}
	}
	return rep
}

// FormatLLM runs the model-driven pipeline: the model assigns the roles, and
// only margins, image centering and role formatting are applied. The
// structural repair passes stay out; the text reaches the model untouched.
func (f *Formatter) FormatLLM(ctx context.Context, doc *docx.Document, classifier *llm.Classifier) (*Report, error) {
	rep := &Report{Roles: make(map[string]int)}

	var textParas []*docx.Paragraph
	var texts []string
	for _, p := range doc.Paragraphs() {
		if p.HasImage() {
			style.CenterImage(p)
			rep.Images++
			continue
		}
		if t := strings.TrimSpace(p.Text()); t != "" {
			textParas = append(textParas, p)
			texts = append(texts, t)
		}
	}
	rep.Paragraphs = len(textParas)

	roles, err := classifier.Classify(ctx, texts)
	if err != nil {
		return nil, err
	}

	doc.SetPageMargins(
		docx.CmToTwips(3.7), docx.CmToTwips(3.5),
		docx.CmToTwips(2.8), docx.CmToTwips(2.6),
	)

	for i, p := range textParas {
		role, ok := roles[i]
		if !ok {
			continue
		}
		style.Apply(p, role)
		rep.Roles[string(role)]++
	}
	return rep, nil
}

// repairNumbering infers the literal token for every automatically numbered
// paragraph, strips the descriptors, and writes the tokens back into the
// text. Returns the number of tokens restored.
func (f *Formatter) repairNumbering(doc *docx.Document) int {
	paras := doc.Paragraphs()
	input := make([]numbering.Paragraph, len(paras))
	for i, p := range paras {
		input[i].Text = p.Text()
		if level, listID, ok := p.Numbering(); ok {
			input[i].HasNum = true
			input[i].Level = level
			input[i].ListID = listID
		}
	}
	tokens := numbering.Infer(input)

	restored := 0
	for i, p := range paras {
		_, _, hadNum := p.Numbering()
		p.ClearNumbering()
		if !hadNum {
			continue
		}
		tok, ok := tokens[i]
		if !ok {
			continue
		}
		if !strings.HasPrefix(strings.TrimSpace(p.Text()), tok) {
			p.PrependText(tok)
			restored++
		}
	}
	return restored
}

// removeTrailingBlanks deletes empty paragraphs from the end of the body.
func removeTrailingBlanks(doc *docx.Document) int {
	removed := 0
	for {
		paras := doc.Paragraphs()
		if len(paras) == 0 {
			break
		}
		last := paras[len(paras)-1]
		if strings.TrimSpace(last.Text()) != "" || last.HasImage() {
			break
		}
		doc.RemoveParagraph(last)
		removed++
	}
	return removed
}

// removeBlanksAboveHeadings deletes empty paragraphs sitting directly above
// a heading. Scans repeat until stable because blank runs can stack.
func removeBlanksAboveHeadings(doc *docx.Document) int {
	removed := 0
	for {
		deleted := false
		paras := doc.Paragraphs()
		for i := 1; i < len(paras); i++ {
			prev, cur := paras[i-1], paras[i]
			if !classify.IsHeadingText(strings.TrimSpace(cur.Text())) {
				continue
			}
			if strings.TrimSpace(prev.Text()) == "" && !prev.HasImage() {
				doc.RemoveParagraph(prev)
				removed++
				deleted = true
				break
			}
		}
		if !deleted {
			break
		}
	}
	return removed
}

// effectiveParagraphs filters to paragraphs that carry text or an image.
func effectiveParagraphs(doc *docx.Document) []*docx.Paragraph {
	var out []*docx.Paragraph
	for _, p := range doc.Paragraphs() {
		if strings.TrimSpace(p.Text()) != "" || p.HasImage() {
			out = append(out, p)
		}
	}
	return out
}

func trimmedTexts(paras []*docx.Paragraph) []string {
	out := make([]string, len(paras))
	for i, p := range paras {
		out[i] = strings.TrimSpace(p.Text())
	}
	return out
}
