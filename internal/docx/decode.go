package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// The decoder walks word/document.xml with a token reader and keeps byte
// offsets so that every element the pipeline does not interpret is carried
// through as its verbatim source text. This keeps the round trip loss
// bounded to the paragraphs the formatter actually rewrites.

type parsedBody struct {
	prefix string // everything through the <w:body> open tag
	blocks []Block
	sectPr string // raw <w:sectPr>...</w:sectPr>
	suffix string // </w:body> onward
}

func parseDocumentXML(src []byte) (*parsedBody, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("locate body: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "body" {
			break
		}
	}

	out := &parsedBody{prefix: string(src[:dec.InputOffset()])}

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para, err := decodeParagraph(dec, src)
				if err != nil {
					return nil, fmt.Errorf("decode paragraph: %w", err)
				}
				out.blocks = append(out.blocks, para)
			case "sectPr":
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, fmt.Errorf("decode sectPr: %w", err)
				}
				out.sectPr = raw
			default:
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, fmt.Errorf("decode %s: %w", t.Name.Local, err)
				}
				out.blocks = append(out.blocks, &RawBlock{Name: t.Name.Local, XML: raw})
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				out.suffix = string(src[off:])
				return out, nil
			}
		}
	}
}

// rawElement skips the element whose StartElement was just read and returns
// its verbatim source, using the offset recorded before the start token.
func rawElement(dec *xml.Decoder, src []byte, start int64) (string, error) {
	if err := dec.Skip(); err != nil {
		return "", err
	}
	return string(src[start:dec.InputOffset()]), nil
}

func decodeParagraph(dec *xml.Decoder, src []byte) (*Paragraph, error) {
	p := &Paragraph{}
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				props, err := decodeParaProps(dec, src)
				if err != nil {
					return nil, err
				}
				p.Props = props
			case "r":
				run, err := decodeRun(dec, src)
				if err != nil {
					return nil, err
				}
				p.Items = append(p.Items, run)
			default:
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, err
				}
				p.Items = append(p.Items, &RawInline{Name: t.Name.Local, XML: raw})
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return p, nil
			}
		}
	}
}

func decodeParaProps(dec *xml.Decoder, src []byte) (*ParaProps, error) {
	props := &ParaProps{}
	slot := SlotLead
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				props.StyleID = attrVal(t, "val")
				slot = SlotStyle
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "numPr":
				num, err := decodeNumPr(dec)
				if err != nil {
					return nil, err
				}
				props.Num = num
				slot = SlotNum
			case "jc":
				props.Justification = attrVal(t, "val")
				slot = SlotJc
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "ind":
				props.Ind = &Indent{
					FirstLine: attrInt(t, "firstLine"),
					Left:      attrInt(t, "left"),
					Right:     attrInt(t, "right"),
				}
				slot = SlotInd
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "spacing":
				props.Spacing = &Spacing{
					Before:   attrInt(t, "before"),
					After:    attrInt(t, "after"),
					Line:     attrInt(t, "line"),
					LineRule: attrVal(t, "lineRule"),
				}
				slot = SlotSpacing
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "rPr":
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, err
				}
				props.RawRPr = raw
			default:
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, err
				}
				props.RawChildren = append(props.RawChildren, RawProp{Slot: slot, XML: raw})
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return props, nil
			}
		}
	}
}

func decodeNumPr(dec *xml.Decoder) (*NumProps, error) {
	num := &NumProps{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "ilvl":
				if v := attrInt(t, "val"); v != nil {
					num.Level = *v
				}
			case "numId":
				if v := attrInt(t, "val"); v != nil {
					num.ListID = *v
				}
			}
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "numPr" {
				return num, nil
			}
		}
	}
}

func decodeRun(dec *xml.Decoder, src []byte) (*Run, error) {
	r := &Run{}
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				props, err := decodeRunProps(dec, src)
				if err != nil {
					return nil, err
				}
				r.Props = props
			case "t":
				text, err := textContent(dec)
				if err != nil {
					return nil, err
				}
				r.Items = append(r.Items, &Text{Value: text})
			case "tab":
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				r.Items = append(r.Items, &TabChar{})
			case "br":
				page := attrVal(t, "type") == "page"
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				r.Items = append(r.Items, &Break{PageBreak: page})
			default:
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, err
				}
				r.Items = append(r.Items, &RawRunItem{Name: t.Name.Local, XML: raw})
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				return r, nil
			}
		}
	}
}

func decodeRunProps(dec *xml.Decoder, src []byte) (*RunProps, error) {
	props := &RunProps{}
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rFonts":
				props.FontASCII = attrVal(t, "ascii")
				props.FontEastAsia = attrVal(t, "eastAsia")
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "b":
				props.Bold = boolVal(t)
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "i":
				props.Italic = boolVal(t)
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "color":
				props.Color = attrVal(t, "val")
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "sz":
				props.Size = attrInt(t, "val")
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "szCs", "bCs", "iCs":
				// Regenerated from the base properties on encode.
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			default:
				raw, err := rawElement(dec, src, off)
				if err != nil {
					return nil, err
				}
				props.RawChildren = append(props.RawChildren, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "rPr" {
				return props, nil
			}
		}
	}
}

// textContent collects character data until the current element closes.
func textContent(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func attrVal(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrInt(se xml.StartElement, local string) *int {
	s := attrVal(se, local)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func boolVal(se xml.StartElement) *bool {
	v := true
	switch attrVal(se, "val") {
	case "0", "false", "off":
		v = false
	}
	return &v
}
