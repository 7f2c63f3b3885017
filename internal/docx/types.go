// Package docx reads, mutates and writes the WordprocessingML payload of
// .docx archives. It models only what the formatting pipeline touches --
// paragraphs, runs, fonts, layout properties, automatic numbering and page
// margins -- and carries everything else (tables, drawings, section plumbing,
// the remaining archive members) through verbatim.
package docx

import (
	"math"
	"strings"
)

// Measurement conversions. WordprocessingML path: indents, spacing and page
// margins are in twips (1/20 pt), font sizes in half-points.

// Twips converts a point measurement to twips.
func Twips(pt float64) int {
	return int(math.Round(pt * 20))
}

// CmToTwips converts centimeters to twips (1 cm = 567 twips).
func CmToTwips(cm float64) int {
	return int(math.Round(cm * 567))
}

// HalfPoints converts a point font size to half-points.
func HalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// Justification values for w:jc.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Line spacing rule for w:spacing w:lineRule.
const lineRuleExact = "exact"

// Block is a top-level element of the document body.
type Block interface{ block() }

// RawBlock is a body-level element the pipeline does not interpret (tables,
// bookmarks, structured document tags). Its source XML is kept verbatim.
type RawBlock struct {
	Name string // local element name, e.g. "tbl"
	XML  string
}

func (*RawBlock) block() {}

// Paragraph is a w:p element.
type Paragraph struct {
	Props *ParaProps
	Items []ParaItem
}

func (*Paragraph) block() {}

// ParaItem is an ordered child of a paragraph.
type ParaItem interface{ paraItem() }

// RawInline is a paragraph child other than a run, kept verbatim.
type RawInline struct {
	Name string
	XML  string
}

func (*RawInline) paraItem() {}

// Slots for uninterpreted w:pPr children, keyed by the interpreted property
// they followed in the source. CT_PPr is a fixed sequence, so re-emitting
// each raw child right after the same neighbor keeps the output valid.
const (
	SlotLead    = iota // before pStyle
	SlotStyle          // after pStyle
	SlotNum            // after numPr
	SlotSpacing        // after spacing
	SlotInd            // after ind
	SlotJc             // after jc
)

// RawProp is one uninterpreted w:pPr child with its schema position.
type RawProp struct {
	Slot int
	XML  string
}

// ParaProps is a w:pPr element.
type ParaProps struct {
	StyleID       string
	Num           *NumProps
	Justification string
	Ind           *Indent
	Spacing       *Spacing
	// Children the pipeline does not interpret, re-emitted verbatim at the
	// recorded slot and in their original order within it.
	RawChildren []RawProp
	// RawRPr holds the paragraph-mark run properties, re-emitted last to
	// respect schema order.
	RawRPr string
}

// NumProps is the automatic-numbering descriptor (w:numPr): a zero-based
// level and a concrete numbering instance id.
type NumProps struct {
	Level  int
	ListID int
}

// Indent is a w:ind element. Nil fields are absent.
type Indent struct {
	FirstLine *int // twips
	Left      *int
	Right     *int
}

// Spacing is a w:spacing element. Nil fields are absent.
type Spacing struct {
	Before   *int // twips
	After    *int
	Line     *int
	LineRule string
}

// Run is a w:r element.
type Run struct {
	Props *RunProps
	Items []RunItem
}

func (*Run) paraItem() {}

// RunItem is an ordered child of a run.
type RunItem interface{ runItem() }

// Text is a w:t element.
type Text struct {
	Value string
}

func (*Text) runItem() {}

// TabChar is a w:tab inside a run.
type TabChar struct{}

func (*TabChar) runItem() {}

// Break is a w:br. PageBreak distinguishes w:type="page" from line breaks.
type Break struct {
	PageBreak bool
}

func (*Break) runItem() {}

// RawRunItem is a run child the pipeline does not interpret (w:drawing,
// w:pict, field codes), kept verbatim.
type RawRunItem struct {
	Name string
	XML  string
}

func (*RawRunItem) runItem() {}

// RunProps is a w:rPr element.
type RunProps struct {
	FontASCII    string
	FontEastAsia string
	Bold         *bool
	Italic       *bool
	Color        string // RRGGBB
	Size         *int   // half-points
	RawChildren  []string
}

// Text returns the run's text with tabs rendered as \t. Breaks and non-text
// children contribute nothing.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, it := range r.Items {
		switch v := it.(type) {
		case *Text:
			sb.WriteString(v.Value)
		case *TabChar:
			sb.WriteByte('\t')
		}
	}
	return sb.String()
}

// SetText replaces the run's text content with a single text node. Non-text
// children (drawings, breaks at the start of the run) are preserved in place.
func (r *Run) SetText(s string) {
	kept := make([]RunItem, 0, len(r.Items)+1)
	for _, it := range r.Items {
		switch it.(type) {
		case *Text, *TabChar:
			// dropped
		default:
			kept = append(kept, it)
		}
	}
	r.Items = append(kept, &Text{Value: s})
}

func (r *Run) props() *RunProps {
	if r.Props == nil {
		r.Props = &RunProps{}
	}
	return r.Props
}

// SetFont sets both the ASCII and East Asian font family.
func (r *Run) SetFont(name string) {
	p := r.props()
	p.FontASCII = name
	p.FontEastAsia = name
}

// SetSize sets the font size in half-points.
func (r *Run) SetSize(halfPoints int) {
	v := halfPoints
	r.props().Size = &v
}

func (r *Run) SetBold(b bool) {
	v := b
	r.props().Bold = &v
}

func (r *Run) SetItalic(b bool) {
	v := b
	r.props().Italic = &v
}

// SetColor sets the font color as a RRGGBB hex string.
func (r *Run) SetColor(hex string) {
	r.props().Color = hex
}

// HasImage reports whether the run carries a drawing or legacy picture.
func (r *Run) HasImage() bool {
	for _, it := range r.Items {
		if raw, ok := it.(*RawRunItem); ok {
			switch raw.Name {
			case "drawing", "pict", "object":
				return true
			}
		}
	}
	return false
}

func (p *Paragraph) props() *ParaProps {
	if p.Props == nil {
		p.Props = &ParaProps{}
	}
	return p.Props
}

// Runs returns the paragraph's runs in visual order.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, it := range p.Items {
		if r, ok := it.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// Text concatenates the text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// SetText collapses the paragraph's runs to the first one, which keeps its
// character properties, and replaces its text.
func (p *Paragraph) SetText(s string) {
	runs := p.Runs()
	if len(runs) == 0 {
		p.AddRun(s)
		return
	}
	first := runs[0]
	kept := make([]ParaItem, 0, len(p.Items))
	for _, it := range p.Items {
		if r, ok := it.(*Run); ok && r != first {
			continue
		}
		kept = append(kept, it)
	}
	p.Items = kept
	first.SetText(s)
}

// AddRun appends a run containing the given text and returns it.
func (p *Paragraph) AddRun(s string) *Run {
	r := &Run{}
	if s != "" {
		r.Items = append(r.Items, &Text{Value: s})
	}
	p.Items = append(p.Items, r)
	return r
}

// ClearRuns removes every run, keeping paragraph properties and any non-run
// children intact.
func (p *Paragraph) ClearRuns() {
	kept := p.Items[:0]
	for _, it := range p.Items {
		if _, ok := it.(*Run); !ok {
			kept = append(kept, it)
		}
	}
	p.Items = kept
}

// RemoveRun deletes a specific run from the paragraph.
func (p *Paragraph) RemoveRun(target *Run) {
	kept := p.Items[:0]
	for _, it := range p.Items {
		if r, ok := it.(*Run); ok && r == target {
			continue
		}
		kept = append(kept, it)
	}
	p.Items = kept
}

// PrependText inserts s at the very start of the paragraph's text, reusing
// the first run's character properties when one exists.
func (p *Paragraph) PrependText(s string) {
	runs := p.Runs()
	if len(runs) == 0 {
		p.AddRun(s)
		return
	}
	first := runs[0]
	for _, it := range first.Items {
		if t, ok := it.(*Text); ok {
			t.Value = s + t.Value
			return
		}
	}
	first.Items = append([]RunItem{&Text{Value: s}}, first.Items...)
}

// InsertPageBreakAtStart puts a page break before the paragraph's content.
func (p *Paragraph) InsertPageBreakAtStart() {
	runs := p.Runs()
	var first *Run
	if len(runs) == 0 {
		first = p.AddRun("")
	} else {
		first = runs[0]
	}
	first.Items = append([]RunItem{&Break{PageBreak: true}}, first.Items...)
}

// HasImage reports whether any run in the paragraph carries an image.
func (p *Paragraph) HasImage() bool {
	for _, r := range p.Runs() {
		if r.HasImage() {
			return true
		}
	}
	return false
}

// Numbering returns the automatic-numbering descriptor, if present.
func (p *Paragraph) Numbering() (level, listID int, ok bool) {
	if p.Props == nil || p.Props.Num == nil {
		return 0, 0, false
	}
	return p.Props.Num.Level, p.Props.Num.ListID, true
}

// ClearNumbering removes the automatic-numbering descriptor.
func (p *Paragraph) ClearNumbering() {
	if p.Props != nil {
		p.Props.Num = nil
	}
}

// SetJustification sets w:jc.
func (p *Paragraph) SetJustification(val string) {
	p.props().Justification = val
}

func (p *Paragraph) ind() *Indent {
	pr := p.props()
	if pr.Ind == nil {
		pr.Ind = &Indent{}
	}
	return pr.Ind
}

func (p *Paragraph) spacing() *Spacing {
	pr := p.props()
	if pr.Spacing == nil {
		pr.Spacing = &Spacing{}
	}
	return pr.Spacing
}

// SetFirstLineIndent sets the first-line indent in twips.
func (p *Paragraph) SetFirstLineIndent(twips int) {
	v := twips
	p.ind().FirstLine = &v
}

// SetLeftIndent sets the left indent in twips.
func (p *Paragraph) SetLeftIndent(twips int) {
	v := twips
	p.ind().Left = &v
}

// SetRightIndent sets the right indent in twips.
func (p *Paragraph) SetRightIndent(twips int) {
	v := twips
	p.ind().Right = &v
}

// SetLineSpacingExact fixes the line height to an exact twip value.
func (p *Paragraph) SetLineSpacingExact(twips int) {
	sp := p.spacing()
	v := twips
	sp.Line = &v
	sp.LineRule = lineRuleExact
}

// SetSpaceBefore sets spacing before the paragraph in twips.
func (p *Paragraph) SetSpaceBefore(twips int) {
	v := twips
	p.spacing().Before = &v
}

// SetSpaceAfter sets spacing after the paragraph in twips.
func (p *Paragraph) SetSpaceAfter(twips int) {
	v := twips
	p.spacing().After = &v
}
