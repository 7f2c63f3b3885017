package token

import (
	"regexp"
	"strings"
)

// stripMaxPasses bounds the iterative strip so that pathological input cannot
// loop; five passes cover every compound-token depth seen in real documents.
const stripMaxPasses = 5

var stripRes = []*regexp.Regexp{
	regexp.MustCompile(`^[一二三四五六七八九十]{1,2}、\s*`), // 一、
	regexp.MustCompile(`^（[一二三四五六七八九十]{1,2}）\s*`), // （一）
	regexp.MustCompile(`^\d+\.\s*`),                // 1.
	regexp.MustCompile(`^\d+、\s*`),                 // 1、 malformed level 3
	regexp.MustCompile(`^\(\d+\)\s*`),              // (1)
	regexp.MustCompile(`^\(\d+\)\.\s*`),            // (1). malformed level 4
	regexp.MustCompile(`^（\d+）\s*`),                // （1） full-width level 4
	regexp.MustCompile(`^\.\s*`),
	regexp.MustCompile(`^．\s*`),
}

// Strip removes every leading numbering token from text, iterating so that
// compound defects such as "（一）1、加强管理" lose all their tokens, not just
// the outermost one.
func Strip(text string) string {
	for pass := 0; pass < stripMaxPasses; pass++ {
		before := text
		for _, re := range stripRes {
			text = re.ReplaceAllString(text, "")
		}
		if text == before {
			break
		}
	}
	return strings.TrimLeft(text, " \t　")
}
