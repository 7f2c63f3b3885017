package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// The encoder regenerates only the paragraphs the pipeline interprets; raw
// fragments captured at decode time are spliced back verbatim. All generated
// elements use the conventional "w:" prefix, which the preserved document
// root declares.

func (d *Document) encodeDocumentXML() []byte {
	var sb strings.Builder
	sb.Grow(64 * 1024)
	sb.WriteString(d.prefix)
	for _, b := range d.blocks {
		switch v := b.(type) {
		case *Paragraph:
			encodeParagraph(&sb, v)
		case *RawBlock:
			sb.WriteString(v.XML)
		}
	}
	sb.WriteString(d.sectPr)
	sb.WriteString(d.suffix)
	return []byte(sb.String())
}

func encodeParagraph(sb *strings.Builder, p *Paragraph) {
	sb.WriteString("<w:p>")
	encodeParaProps(sb, p.Props)
	for _, it := range p.Items {
		switch v := it.(type) {
		case *Run:
			encodeRun(sb, v)
		case *RawInline:
			sb.WriteString(v.XML)
		}
	}
	sb.WriteString("</w:p>")
}

func encodeParaProps(sb *strings.Builder, props *ParaProps) {
	if props == nil {
		return
	}
	rawAt := func(slot int) {
		for _, rc := range props.RawChildren {
			if rc.Slot == slot {
				sb.WriteString(rc.XML)
			}
		}
	}

	sb.WriteString("<w:pPr>")
	rawAt(SlotLead)
	if props.StyleID != "" {
		fmt.Fprintf(sb, `<w:pStyle w:val="%s"/>`, escapeAttr(props.StyleID))
	}
	rawAt(SlotStyle)
	if props.Num != nil {
		fmt.Fprintf(sb, `<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr>`,
			props.Num.Level, props.Num.ListID)
	}
	rawAt(SlotNum)
	if sp := props.Spacing; sp != nil {
		sb.WriteString("<w:spacing")
		writeIntAttr(sb, "w:before", sp.Before)
		writeIntAttr(sb, "w:after", sp.After)
		writeIntAttr(sb, "w:line", sp.Line)
		if sp.LineRule != "" {
			fmt.Fprintf(sb, ` w:lineRule="%s"`, sp.LineRule)
		}
		sb.WriteString("/>")
	}
	rawAt(SlotSpacing)
	if ind := props.Ind; ind != nil {
		sb.WriteString("<w:ind")
		writeIntAttr(sb, "w:firstLine", ind.FirstLine)
		writeIntAttr(sb, "w:left", ind.Left)
		writeIntAttr(sb, "w:right", ind.Right)
		sb.WriteString("/>")
	}
	rawAt(SlotInd)
	if props.Justification != "" {
		fmt.Fprintf(sb, `<w:jc w:val="%s"/>`, props.Justification)
	}
	rawAt(SlotJc)
	sb.WriteString(props.RawRPr)
	sb.WriteString("</w:pPr>")
}

func encodeRun(sb *strings.Builder, r *Run) {
	sb.WriteString("<w:r>")
	encodeRunProps(sb, r.Props)
	for _, it := range r.Items {
		switch v := it.(type) {
		case *Text:
			if v.Value != strings.TrimSpace(v.Value) {
				sb.WriteString(`<w:t xml:space="preserve">`)
			} else {
				sb.WriteString("<w:t>")
			}
			xml.EscapeText(sb, []byte(v.Value))
			sb.WriteString("</w:t>")
		case *TabChar:
			sb.WriteString("<w:tab/>")
		case *Break:
			if v.PageBreak {
				sb.WriteString(`<w:br w:type="page"/>`)
			} else {
				sb.WriteString("<w:br/>")
			}
		case *RawRunItem:
			sb.WriteString(v.XML)
		}
	}
	sb.WriteString("</w:r>")
}

func encodeRunProps(sb *strings.Builder, props *RunProps) {
	if props == nil {
		return
	}
	sb.WriteString("<w:rPr>")
	if props.FontASCII != "" || props.FontEastAsia != "" {
		sb.WriteString("<w:rFonts")
		if props.FontASCII != "" {
			fmt.Fprintf(sb, ` w:ascii="%s" w:hAnsi="%s"`, escapeAttr(props.FontASCII), escapeAttr(props.FontASCII))
		}
		if props.FontEastAsia != "" {
			fmt.Fprintf(sb, ` w:eastAsia="%s"`, escapeAttr(props.FontEastAsia))
		}
		sb.WriteString("/>")
	}
	if props.Bold != nil {
		writeToggle(sb, "w:b", *props.Bold)
		writeToggle(sb, "w:bCs", *props.Bold)
	}
	if props.Italic != nil {
		writeToggle(sb, "w:i", *props.Italic)
		writeToggle(sb, "w:iCs", *props.Italic)
	}
	if props.Color != "" {
		fmt.Fprintf(sb, `<w:color w:val="%s"/>`, escapeAttr(props.Color))
	}
	if props.Size != nil {
		fmt.Fprintf(sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, *props.Size, *props.Size)
	}
	for _, raw := range props.RawChildren {
		sb.WriteString(raw)
	}
	sb.WriteString("</w:rPr>")
}

func writeToggle(sb *strings.Builder, name string, on bool) {
	if on {
		fmt.Fprintf(sb, "<%s/>", name)
	} else {
		fmt.Fprintf(sb, `<%s w:val="0"/>`, name)
	}
}

func writeIntAttr(sb *strings.Builder, name string, v *int) {
	if v != nil {
		fmt.Fprintf(sb, ` %s="%d"`, name, *v)
	}
}

func escapeAttr(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
