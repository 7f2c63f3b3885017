// Package token implements the numbering-token vocabulary for GB/T 9704-2012
// heading tiers: "一、" (level 1), "（一）" (level 2), "1." (level 3) and
// "(1)" (level 4). It detects heading levels from literal paragraph text,
// renders canonical tokens, extracts sequence numbers and strips malformed or
// compound tokens.
package token

import "fmt"

// MaxNumeral is the largest sequence number the numeral table covers.
const MaxNumeral = 20

var chineseNumerals = []string{
	"一", "二", "三", "四", "五", "六", "七", "八", "九", "十",
	"十一", "十二", "十三", "十四", "十五", "十六", "十七", "十八", "十九", "二十",
}

// Chinese returns the Chinese numeral for n (1..20). Out-of-range values fall
// back to the decimal representation, matching how documents beyond twenty
// items are rendered.
func Chinese(n int) string {
	if n >= 1 && n <= MaxNumeral {
		return chineseNumerals[n-1]
	}
	return fmt.Sprintf("%d", n)
}

// Display renders the canonical numbering token for a sequence number at a
// heading level (1..4).
func Display(n, level int) string {
	switch level {
	case 1:
		return Chinese(n) + "、"
	case 2:
		return "（" + Chinese(n) + "）"
	case 3:
		return fmt.Sprintf("%d.", n)
	case 4:
		return fmt.Sprintf("(%d)", n)
	}
	return fmt.Sprintf("%d", n)
}
