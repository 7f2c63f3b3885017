// Package classify assigns a formatting role to every paragraph of a
// document. The rule engine works on text alone: positional heuristics for
// the title and closing block, keyword gates for the parts the numbering
// tokens cannot identify, and an attachment state machine that restarts
// recognition after each attachment marker.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

// Words a body paragraph typically opens with. A line starting with one of
// these is never a title.
var bodyLeadWords = []string{"为", "根据", "按照", "依据", "经", "现", "特"}

// The fallback heading detector excludes a slightly wider set.
var fallbackLeadWords = []string{"为", "根据", "按照", "依据", "经", "现", "特", "鉴于", "考虑"}

// Document-genre words a title carries.
var titleKeywords = []string{
	"通知", "报告", "决定", "意见", "办法", "方案", "规定", "通报", "请示", "批复", "函", "纪要",
}

// Attachment sections open with internal documents too, so their title
// detection accepts a few more genres.
var attachmentTitleKeywords = append(titleKeywords[:len(titleKeywords):len(titleKeywords)],
	"制度", "汇编", "计划", "总结")

var recipientKeywords = []string{
	"局", "委", "厅", "部", "省", "市", "区", "县", "办", "中心", "公司", "管理", "各",
}

// Governance verbs that mark a numberless line as a probable level-1 heading
// after automatic numbering has been stripped.
var governanceKeywords = []string{
	"推进", "加强", "提升", "优化", "深化", "强化", "完善", "创新",
	"建设", "落实", "实施", "开展", "坚持", "注重", "突出", "聚焦",
	"治理", "管理", "服务", "保障", "发展", "改革",
}

var signatureKeywords = []string{
	"公司", "单位", "部门", "局", "委", "厅", "省", "市", "区", "县",
	"中心", "办", "集团", "有限", "科技", "技术", "企业",
}

var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`),
	regexp.MustCompile(`\d{4}年\d{1,2}月XX日`),
	regexp.MustCompile(`[二〇○零一二三四五六七八九十]{4,6}年[一二三四五六七八九十]+月[一二三四五六七八九十]+日`),
	regexp.MustCompile(`[二〇○零一二三四五六七八九十]{4,6}年[一二三四五六七八九十]+月XX日`),
}

var (
	captionRe        = regexp.MustCompile(`^(表|图|表格|图片)\d+[：:]`)
	attachmentRefRe  = regexp.MustCompile(`^附件\d*[：:.]`)
	attachmentItemRe = regexp.MustCompile(`^\s{6}\d+\.`)
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func hasPrefixAny(text string, words []string) bool {
	for _, w := range words {
		if strings.HasPrefix(text, w) {
			return true
		}
	}
	return false
}

// isDate reports whether the line carries a 成文日期, Arabic or Chinese
// numerals, with XX placeholders allowed.
func isDate(text string) bool {
	for _, re := range dateRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// isTitle recognizes the document title: an early line carrying a genre word
// that is not a heading, not a recipient line, not an attachment reference,
// and does not open like a body paragraph. position is 1-based.
func isTitle(text string, position int) bool {
	if text == "" || position > 3 {
		return false
	}
	if token.HeadingLevel(text) != 0 {
		return false
	}
	for n := 1; n <= token.MaxNumeral; n++ {
		if strings.HasPrefix(text, token.Chinese(n)+"是") {
			return false
		}
	}
	if strings.HasSuffix(text, "：") {
		return false
	}
	if hasPrefixAny(text, bodyLeadWords) {
		return false
	}
	if strings.HasPrefix(text, "附件") && (strings.Contains(text, "：") || strings.Contains(text, ":")) {
		return false
	}
	return containsAny(text, titleKeywords)
}

// isRecipient recognizes the 主送机关 line: ends with a full-width colon and
// names an organ.
func isRecipient(text string) bool {
	if !strings.HasSuffix(text, "：") {
		return false
	}
	if strings.HasPrefix(text, "附件") && utf8.RuneCountInString(text) > 3 {
		return false
	}
	return containsAny(text, recipientKeywords)
}

// isCaption recognizes table and figure caption lines such as "表1：" and
// "图片2:".
func isCaption(text string) bool {
	return captionRe.MatchString(text)
}

// fallbackHeadingLevel infers a heading level for a line whose numbering
// token was destroyed by automatic-numbering removal. Only level 1 can be
// recovered this way: a short line built around a governance verb.
func fallbackHeadingLevel(text string) int {
	if text == "" {
		return 0
	}
	if lvl := token.HeadingLevel(text); lvl != 0 {
		return lvl
	}
	if hasPrefixAny(text, fallbackLeadWords) {
		return 0
	}
	if attachmentRefRe.MatchString(text) || attachmentItemRe.MatchString(text) {
		return 0
	}
	if strings.HasSuffix(text, "：") || strings.HasSuffix(text, ":") {
		return 0
	}
	if captionRe.MatchString(text) {
		return 0
	}
	n := utf8.RuneCountInString(text)
	if n >= 6 && n <= 20 && !strings.HasSuffix(text, "。") && containsAny(text, governanceKeywords) {
		return 1
	}
	return 0
}

// signatureOrDate classifies a paragraph in the closing block. texts holds
// the trimmed text of every effective paragraph; only the last ten are
// candidates. Returns "signature", "date" or "".
func signatureOrDate(texts []string, i int) string {
	total := len(texts)
	if i < total-10 {
		return ""
	}
	text := texts[i]
	if text == "" {
		return ""
	}
	if isDate(text) {
		return "date"
	}
	if !containsAny(text, signatureKeywords) {
		return ""
	}
	// A unit name directly above a date line is the signature.
	for j := 1; j < 3 && i+j < total; j++ {
		next := texts[i+j]
		if next == "" {
			continue
		}
		if isDate(next) {
			return "signature"
		}
		break
	}
	// Second to last line with the document ending on a date, or third to
	// last when only a blank line sits between it and the date.
	if i == total-2 && isDate(texts[total-1]) {
		return "signature"
	}
	if i == total-3 && texts[total-2] == "" && isDate(texts[total-1]) {
		return "signature"
	}
	return ""
}
