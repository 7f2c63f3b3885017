// Package numbering repairs automatic numbering. Word stores list numbers in
// numbering definitions rather than text, so stripping w:numPr erases them;
// this package infers the literal token each numbered paragraph should carry
// by counting its same-level predecessors, before the descriptors are
// removed.
package numbering

import (
	"strings"

	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

// Paragraph is one effective paragraph as the inference pass sees it.
type Paragraph struct {
	Text string
	// Automatic-numbering descriptor. Level is the zero-based w:ilvl.
	Level  int
	ListID int
	HasNum bool
}

// Infer computes the numbering text to restore for every paragraph carrying
// an automatic-numbering descriptor, keyed by paragraph index. Paragraphs
// whose sequence number cannot be resolved are simply absent.
func Infer(paras []Paragraph) map[int]string {
	out := make(map[int]string)
	for i := range paras {
		if !paras[i].HasNum {
			continue
		}
		if t := inferOne(paras, i); t != "" {
			out[i] = t
		}
	}
	return out
}

// inferOne counts the paragraph's predecessors at the same level: those still
// holding the same descriptor, plus those whose text already begins with a
// literal same-level token (numbered by hand, or restored earlier).
func inferOne(paras []Paragraph, i int) string {
	cur := paras[i]
	prefixes := literalPrefixes(cur.Level)

	count := 0
	for j := 0; j < i; j++ {
		p := paras[j]
		if p.HasNum && p.Level == cur.Level && p.ListID == cur.ListID {
			count++
			continue
		}
		text := strings.TrimSpace(p.Text)
		for _, prefix := range prefixes {
			if strings.HasPrefix(text, prefix) {
				count++
				break
			}
		}
	}
	return displayToken(count+1, cur.Level)
}

// literalPrefixes lists every same-level token a predecessor's text could
// start with. Level 3 (the "(1)" tier) has no literal counting; only live
// descriptors are counted there.
func literalPrefixes(level int) []string {
	var prefixes []string
	switch level {
	case 0:
		for n := 1; n <= token.MaxNumeral; n++ {
			prefixes = append(prefixes, token.Chinese(n)+"、")
		}
	case 1:
		for n := 1; n <= token.MaxNumeral; n++ {
			prefixes = append(prefixes, "（"+token.Chinese(n)+"）")
		}
	case 2:
		for n := 1; n <= token.MaxNumeral; n++ {
			prefixes = append(prefixes, token.Display(n, 3))
		}
	}
	return prefixes
}

// displayToken renders the token for a zero-based list level. The Chinese
// tiers run out past twenty; the Arabic tiers do not.
func displayToken(n, level int) string {
	switch level {
	case 0, 1:
		if n > token.MaxNumeral {
			return ""
		}
		return token.Display(n, level+1)
	case 2, 3:
		return token.Display(n, level+1)
	}
	return ""
}
