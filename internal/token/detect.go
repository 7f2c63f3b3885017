package token

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	level3Re = regexp.MustCompile(`^(\d+)[.、]`)
	level4Re = regexp.MustCompile(`^\((\d+)\)`)
)

// HeadingLevel reports the heading level (1..4) indicated by an explicit
// numbering prefix, or 0 when the text carries none. Malformed variants are
// recognized as input defects to be corrected later: "1、" counts as level 3,
// "(1)、" / "(1)." / "(1)。" as level 4, "（一）、" / "（一）。" as level 2.
func HeadingLevel(text string) int {
	if text == "" {
		return 0
	}
	for n := 1; n <= MaxNumeral; n++ {
		if strings.HasPrefix(text, Chinese(n)+"、") {
			return 1
		}
	}
	for n := 1; n <= MaxNumeral; n++ {
		if strings.HasPrefix(text, "（"+Chinese(n)+"）") {
			return 2
		}
	}
	if m := level3Re.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= MaxNumeral {
			return 3
		}
	}
	if m := level4Re.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= MaxNumeral {
			return 4
		}
	}
	return 0
}

// ExtractNumber extracts the sequence number carried by the text's numbering
// prefix for the given level. Unparseable prefixes default to 1 so that the
// hierarchy validator still has a number to correct.
func ExtractNumber(text string, level int) int {
	switch level {
	case 1:
		for n := 1; n <= MaxNumeral; n++ {
			if strings.HasPrefix(text, Chinese(n)+"、") {
				return n
			}
		}
	case 2:
		for n := 1; n <= MaxNumeral; n++ {
			if strings.HasPrefix(text, "（"+Chinese(n)+"）") {
				return n
			}
		}
	case 3:
		if m := level3Re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	case 4:
		if m := level4Re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 1
}

var attachmentMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`^附件[：:\s]*$`),
	regexp.MustCompile(`^附件\d+[：:\s]*$`),
	regexp.MustCompile(`^附件[一二三四五六七八九十]+[：:\s]*$`),
}

// IsAttachmentMarker reports whether the whole line is an attachment marker:
// bare "附件", "附件1" or "附件一", with or without a trailing colon and
// nothing else on the line.
func IsAttachmentMarker(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range attachmentMarkerRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
