package style

import (
	"sort"
	"strings"

	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

const fontColorBlack = "000000"

// Apply rewrites a paragraph to its role: layout properties, leading
// whitespace and tab removal, numbering-token repair, trailing punctuation
// on headings, and character formatting on every run. Enumerator phrases
// ("一是", "二是", ...) keep their bold emphasis regardless of role.
func Apply(p *docx.Paragraph, role Role) {
	spec := Lookup(role)
	applyLayout(p, spec)

	stripLeadingIndent(p)
	removeTabs(p)

	if cleaned := CleanToken(p.Text()); cleaned != p.Text() {
		p.SetText(cleaned)
	}
	if role.IsHeading() || role == Title {
		if trimmed := TrimTrailingPunct(p.Text()); trimmed != p.Text() {
			p.SetText(trimmed)
		}
	}

	if segs := emphasisSegments(p.Text()); segs != nil {
		rebuildWithEmphasis(p, spec, segs)
		return
	}
	for _, r := range p.Runs() {
		formatRun(r, spec, spec.Bold)
	}
}

// ApplyAttachmentItem formats one line of the attachment list. The list
// carries body formatting with a tighter 28pt line height, and its leading
// alignment spaces must survive, so the indent cleanup is skipped.
func ApplyAttachmentItem(p *docx.Paragraph) {
	p.SetJustification(docx.AlignLeft)
	p.SetFirstLineIndent(docx.Twips(32))
	p.SetLeftIndent(0)
	p.SetLineSpacingExact(docx.Twips(28))

	spec := Lookup(Body)
	for _, r := range p.Runs() {
		formatRun(r, spec, false)
	}
}

// CenterImage centers a paragraph that carries a drawing and clears any
// indentation around it.
func CenterImage(p *docx.Paragraph) {
	p.SetJustification(docx.AlignCenter)
	p.SetFirstLineIndent(0)
	p.SetLeftIndent(0)
	p.SetRightIndent(0)
}

func applyLayout(p *docx.Paragraph, spec Spec) {
	if spec.Alignment != "" {
		p.SetJustification(spec.Alignment)
	}
	if spec.FirstLineIndent != nil {
		p.SetFirstLineIndent(docx.Twips(*spec.FirstLineIndent))
	}
	if spec.RightIndent != nil {
		p.SetRightIndent(docx.Twips(*spec.RightIndent))
	}
	if spec.SpaceBefore != nil {
		p.SetSpaceBefore(docx.Twips(*spec.SpaceBefore))
	}
	if spec.SpaceAfter != nil {
		p.SetSpaceAfter(docx.Twips(*spec.SpaceAfter))
	}
	if spec.LineSpacing != nil {
		p.SetLineSpacingExact(docx.Twips(*spec.LineSpacing))
	}
}

// stripLeadingIndent deletes whitespace-only runs at the start of the
// paragraph and the leading whitespace of the first run that carries text.
func stripLeadingIndent(p *docx.Paragraph) {
	for {
		runs := p.Runs()
		if len(runs) == 0 {
			return
		}
		first := runs[0]
		txt := first.Text()
		if txt != "" && strings.TrimSpace(txt) == "" {
			p.RemoveRun(first)
			continue
		}
		if stripped := strings.TrimLeft(txt, " \t　"); stripped != txt {
			first.SetText(stripped)
		}
		return
	}
}

// removeTabs drops tab characters from every run. Automatic numbering leaves
// tabs between the vanished number and the text.
func removeTabs(p *docx.Paragraph) {
	for _, r := range p.Runs() {
		kept := r.Items[:0]
		for _, it := range r.Items {
			if _, ok := it.(*docx.TabChar); ok {
				continue
			}
			if t, ok := it.(*docx.Text); ok {
				t.Value = strings.ReplaceAll(t.Value, "\t", "")
			}
			kept = append(kept, it)
		}
		r.Items = kept
	}
}

type segment struct {
	text string
	bold bool
}

// emphasisSegments splits text around every enumerator phrase ("一是" through
// "二十是"), which gets bold. Nil means the text carries no such phrase.
func emphasisSegments(text string) []segment {
	type match struct{ pos, end int }
	var matches []match
	for n := 1; n <= token.MaxNumeral; n++ {
		phrase := token.Chinese(n) + "是"
		off := 0
		for {
			i := strings.Index(text[off:], phrase)
			if i < 0 {
				break
			}
			pos := off + i
			matches = append(matches, match{pos, pos + len(phrase)})
			off = pos + len(phrase)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].pos != matches[j].pos {
			return matches[i].pos < matches[j].pos
		}
		return matches[i].end > matches[j].end
	})

	var segs []segment
	last := 0
	for _, m := range matches {
		if m.pos < last {
			// Overlap, e.g. "一是" inside "十一是".
			continue
		}
		if m.pos > last {
			segs = append(segs, segment{text: text[last:m.pos]})
		}
		segs = append(segs, segment{text: text[m.pos:m.end], bold: true})
		last = m.end
	}
	if last < len(text) {
		segs = append(segs, segment{text: text[last:]})
	}
	return segs
}

func rebuildWithEmphasis(p *docx.Paragraph, spec Spec, segs []segment) {
	p.ClearRuns()
	for _, s := range segs {
		r := p.AddRun(s.text)
		formatRun(r, spec, s.bold)
	}
}

func formatRun(r *docx.Run, spec Spec, bold bool) {
	r.SetFont(spec.FontName)
	r.SetSize(docx.HalfPoints(spec.SizePt))
	r.SetBold(bold)
	r.SetItalic(false)
	r.SetColor(fontColorBlack)
}
