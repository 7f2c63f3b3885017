// Package hierarchy checks and repairs the heading structure of a classified
// document: numbering continuity within each tier, no tier skipping, counter
// resets under a new parent, and an independent numbering domain for
// attachment sections. It also normalizes the attachment list block.
package hierarchy

import (
	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

// Fix is a text rewrite for one paragraph.
type Fix struct {
	Index int
	Text  string
}

type heading struct {
	idx          int
	level        int
	num          int
	inAttachment bool
}

// Validate walks every explicitly numbered heading and returns the rewrites
// needed to make the structure well formed. texts holds the trimmed text of
// every effective paragraph; attachmentStart is the index of the attachment
// marker or -1.
//
// Rules, in order: a heading more than one tier below its predecessor is
// clamped to the next tier; a level-3 heading with no level-2 parent under
// the current level-1 is demoted to level 2; counters below a heading's tier
// reset when it closes a deeper run; each tier numbers sequentially from one;
// everything restarts after the attachment marker.
func Validate(texts []string, attachmentStart int) []Fix {
	var hs []heading
	for i, t := range texts {
		lvl := token.HeadingLevel(t)
		if lvl == 0 {
			continue
		}
		hs = append(hs, heading{
			idx:          i,
			level:        lvl,
			num:          token.ExtractNumber(t, lvl),
			inAttachment: attachmentStart >= 0 && i > attachmentStart,
		})
	}

	var (
		counters     [5]int
		lastLevel    int
		hasLevel2    bool // under the current level-1 heading
		lastInAttach bool
		fixes        []Fix
	)
	for _, h := range hs {
		if h.inAttachment && !lastInAttach {
			counters = [5]int{}
			lastLevel = 0
			hasLevel2 = false
		}

		level := h.level
		if lastLevel > 0 && level > lastLevel+1 {
			level = lastLevel + 1
		}
		if level == 3 && !hasLevel2 {
			level = 2
		}

		switch {
		case level == 1:
			hasLevel2 = false
		case level == 2 && h.level == 2:
			// Only a heading that was level 2 to begin with counts as a
			// real parent; a demoted level 3 does not.
			hasLevel2 = true
		}

		if level <= lastLevel {
			for l := level + 1; l < len(counters); l++ {
				counters[l] = 0
			}
		}
		counters[level]++
		expected := counters[level]

		if h.level != level || h.num != expected {
			fixes = append(fixes, Fix{
				Index: h.idx,
				Text:  token.Display(expected, level) + token.Strip(texts[h.idx]),
			})
		}

		lastLevel = level
		lastInAttach = h.inAttachment
	}
	return fixes
}
