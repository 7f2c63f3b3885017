package hierarchy

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	listStartRe = regexp.MustCompile(`^附件[：:]\s*(\d+)[、，.](.+)$`)
	listItemRe  = regexp.MustCompile(`^(\d+)[、，.](.+)$`)
)

// NormalizeAttachmentList rewrites the attachment list block into its
// canonical shape: the first line "附件：1.NAME", every following line
// "      2.NAME" with six alignment spaces, numbered sequentially. Every
// list line is rewritten, so mixed separators (、 ， .) and numbering gaps
// come out uniform. Returns nil when the document has no attachment list.
func NormalizeAttachmentList(texts []string) []Fix {
	start := -1
	for i, t := range texts {
		if listStartRe.MatchString(t) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	var fixes []Fix
	seq := 0
	m := listStartRe.FindStringSubmatch(texts[start])
	seq++
	fixes = append(fixes, Fix{
		Index: start,
		Text:  fmt.Sprintf("附件：%d.%s", seq, strings.TrimSpace(m[2])),
	})

	for i := start + 1; i < len(texts); i++ {
		m := listItemRe.FindStringSubmatch(texts[i])
		if m == nil {
			break
		}
		seq++
		fixes = append(fixes, Fix{
			Index: i,
			Text:  fmt.Sprintf("      %d.%s", seq, strings.TrimSpace(m[2])),
		})
	}
	return fixes
}
