package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const documentPath = "word/document.xml"

// Document is an opened .docx archive. The word/document.xml body is decoded
// into mutable blocks; every other archive member is preserved byte for byte
// and written back on save.
type Document struct {
	prefix string
	blocks []Block
	sectPr string
	suffix string

	memberOrder []string
	members     map[string][]byte
}

// Parse opens a .docx archive held in memory.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	d := &Document{members: make(map[string][]byte)}
	var docXML []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if f.Name == documentPath {
			docXML = content
		}
		d.memberOrder = append(d.memberOrder, f.Name)
		d.members[f.Name] = content
	}
	if docXML == nil {
		return nil, fmt.Errorf("%s not found in archive", documentPath)
	}

	body, err := parseDocumentXML(docXML)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPath, err)
	}
	d.prefix = body.prefix
	d.blocks = body.blocks
	d.sectPr = body.sectPr
	d.suffix = body.suffix
	return d, nil
}

// Open reads and parses a .docx file.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// WriteTo serializes the archive, replacing word/document.xml with the
// current body state.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, name := range d.memberOrder {
		fw, err := zw.Create(name)
		if err != nil {
			return cw.n, fmt.Errorf("create %s: %w", name, err)
		}
		content := d.members[name]
		if name == documentPath {
			content = d.encodeDocumentXML()
		}
		if _, err := fw.Write(content); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close archive: %w", err)
	}
	return cw.n, nil
}

// SaveTo writes the document to a new file. The source archive is untouched.
func (d *Document) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Paragraphs returns the document's top-level paragraphs in order. Paragraphs
// inside tables are not included; tables are opaque blocks.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

func (d *Document) blockIndex(target *Paragraph) int {
	for i, b := range d.blocks {
		if p, ok := b.(*Paragraph); ok && p == target {
			return i
		}
	}
	return -1
}

// RemoveParagraph deletes a paragraph from the body.
func (d *Document) RemoveParagraph(target *Paragraph) {
	i := d.blockIndex(target)
	if i < 0 {
		return
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
}

// InsertEmptyParagraphAfter inserts a new empty paragraph directly after the
// given one and returns it.
func (d *Document) InsertEmptyParagraphAfter(target *Paragraph) *Paragraph {
	i := d.blockIndex(target)
	if i < 0 {
		return nil
	}
	p := &Paragraph{}
	d.blocks = append(d.blocks[:i+1], append([]Block{p}, d.blocks[i+1:]...)...)
	return p
}

var pgMarRe = regexp.MustCompile(`<w:pgMar[^>]*/?>`)

// SetPageMargins sets the section page margins in twips. Header, footer and
// gutter distances from an existing w:pgMar are not preserved; the standard
// values are written.
func (d *Document) SetPageMargins(top, bottom, left, right int) {
	pgMar := fmt.Sprintf(
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="851" w:footer="992" w:gutter="0"/>`,
		top, right, bottom, left)
	switch {
	case pgMarRe.MatchString(d.sectPr):
		d.sectPr = pgMarRe.ReplaceAllString(d.sectPr, pgMar)
	case strings.Contains(d.sectPr, "</w:sectPr>"):
		d.sectPr = strings.Replace(d.sectPr, "</w:sectPr>", pgMar+"</w:sectPr>", 1)
	default:
		d.sectPr = "<w:sectPr>" + pgMar + "</w:sectPr>"
	}
}
