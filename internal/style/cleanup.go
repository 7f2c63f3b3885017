package style

import (
	"regexp"
	"strings"
)

// Numbering tokens arrive from real documents with a zoo of defects: a
// stacked second token after the first ("（一）1、"), the wrong punctuation
// after the token ("（一）、", "1、", "(1)."), or stray spaces between token
// and text. CleanToken repairs all of them without touching the text proper.

const cleanMaxPasses = 5

var compoundRes = []struct {
	re  *regexp.Regexp
	rep string
}{
	// Stacked level-3 token behind a level-2 token.
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）\d{1,2}[、.]`), "（$1）"},
	// Bare dot behind a level-2 token.
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）\.`), "（$1）"},
}

var tokenFixRes = []struct {
	re  *regexp.Regexp
	rep string
}{
	// Level 1: drop spaces after the 顿号.
	{regexp.MustCompile(`^([一二三四五六七八九十]{1,2})、\s+`), "$1、"},
	// Level 2: no punctuation or spaces may follow the closing bracket.
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）、`), "（$1）"},
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）\.`), "（$1）"},
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）\s+`), "（$1）"},
	{regexp.MustCompile(`^（([一二三四五六七八九十]{1,2})）。`), "（$1）"},
	// Level 3: 顿号 becomes the half-width dot, spaces after the dot go.
	{regexp.MustCompile(`^(\d{1,2})、`), "$1."},
	{regexp.MustCompile(`^(\d{1,2})\.\s+`), "$1."},
	// Level 4: nothing may follow the closing parenthesis.
	{regexp.MustCompile(`^\((\d{1,2})\)、`), "($1)"},
	{regexp.MustCompile(`^\((\d{1,2})\)\.`), "($1)"},
	{regexp.MustCompile(`^\((\d{1,2})\)\s+`), "($1)"},
	{regexp.MustCompile(`^\((\d{1,2})\)。`), "($1)"},
}

// CleanToken normalizes the numbering token at the start of text. Compound
// tokens collapse to the outermost one, then the surviving token is rewritten
// to its canonical punctuation.
func CleanToken(text string) string {
	for i := 0; i < cleanMaxPasses; i++ {
		before := text
		for _, r := range compoundRes {
			text = r.re.ReplaceAllString(text, r.rep)
		}
		if text == before {
			break
		}
	}
	for _, r := range tokenFixRes {
		text = r.re.ReplaceAllString(text, r.rep)
	}
	return text
}

var trailingPunct = []string{"。", "；", "，", ".", ";", ",", "、"}

// TrimTrailingPunct removes at most one trailing punctuation mark from a
// heading or title line. Trailing whitespace is dropped first.
func TrimTrailingPunct(text string) string {
	trimmed := strings.TrimRight(text, " \t　")
	for _, p := range trailingPunct {
		if strings.HasSuffix(trimmed, p) {
			return strings.TrimSuffix(trimmed, p)
		}
	}
	return text
}
