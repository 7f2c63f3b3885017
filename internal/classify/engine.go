package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hehezhang2025/gongwen-formatter/internal/style"
	"github.com/hehezhang2025/gongwen-formatter/internal/token"
)

// Paragraph is the classifier's view of one effective paragraph: trimmed
// text, the raw text with leading whitespace intact (attachment-list
// continuation lines are recognized by their six-space indent), and whether
// the paragraph carries an image.
type Paragraph struct {
	Text     string
	Raw      string
	HasImage bool
}

// Kind qualifies how a role assignment is applied.
type Kind int

const (
	// KindNormal paragraphs get the full role treatment.
	KindNormal Kind = iota
	// KindImage paragraphs are only centered; text formatting is skipped.
	KindImage
	// KindAttachmentItem paragraphs are attachment-list lines whose leading
	// alignment spaces must survive formatting.
	KindAttachmentItem
)

// Result is a complete role assignment for a document.
type Result struct {
	Roles []style.Role
	Kinds []Kind
	// AttachmentStart is the index of the first attachment marker, -1 when
	// the document has none.
	AttachmentStart int
}

var (
	attachListFirstRe  = regexp.MustCompile(`^附件[：:]\d+\.`)
	legacyListItemRe   = regexp.MustCompile(`^\s*\d+[、，]`)
	attachListIndentRe = attachmentItemRe
)

// Classify assigns a role to every paragraph. The walk is a single pass with
// document-level state: the title and recipient are found at most once, the
// closing block is recognized near the end, and everything after an
// attachment marker switches to the attachment rules.
func Classify(paras []Paragraph) Result {
	res := Result{
		Roles:           make([]style.Role, len(paras)),
		Kinds:           make([]Kind, len(paras)),
		AttachmentStart: -1,
	}

	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text
		if res.AttachmentStart < 0 && token.IsAttachmentMarker(p.Text) {
			res.AttachmentStart = i
		}
	}

	var (
		titleFound           bool
		recipientFound       bool
		attachmentTitleFound bool
		inLegacyList         bool
	)

	for i, p := range paras {
		if p.HasImage {
			res.Kinds[i] = KindImage
			continue
		}
		text := p.Text
		inAttachment := res.AttachmentStart >= 0 && i >= res.AttachmentStart

		if inAttachment {
			res.Roles[i] = classifyAttachment(text, &attachmentTitleFound)
			continue
		}

		switch {
		case !titleFound && isTitle(text, i+1):
			res.Roles[i] = style.Title
			titleFound = true

		case titleFound && !recipientFound && isRecipient(text):
			res.Roles[i] = style.Recipient
			recipientFound = true

		case signatureOrDate(texts, i) == "signature":
			res.Roles[i] = style.Signature

		case signatureOrDate(texts, i) == "date":
			res.Roles[i] = style.Date

		case isCaption(text):
			res.Roles[i] = style.Caption

		case attachListFirstRe.MatchString(text):
			res.Roles[i] = style.Body
			res.Kinds[i] = KindAttachmentItem

		case attachListIndentRe.MatchString(p.Raw):
			res.Roles[i] = style.Body
			res.Kinds[i] = KindAttachmentItem

		case strings.HasPrefix(text, "附件") && (strings.Contains(text, "：") || strings.Contains(text, ":")):
			// Attachment list in its legacy shape, before normalization.
			res.Roles[i] = style.Body
			inLegacyList = true

		case inLegacyList && legacyListItemRe.MatchString(text):
			res.Roles[i] = style.Body

		default:
			inLegacyList = false
			if lvl := headingLevel(text); lvl != 0 {
				res.Roles[i] = style.HeadingRole(lvl)
			} else {
				res.Roles[i] = style.Body
			}
		}
	}
	return res
}

// classifyAttachment applies the attachment-domain rules: the marker line
// itself, then the attachment's own title, then headings and body.
func classifyAttachment(text string, titleFound *bool) style.Role {
	if token.IsAttachmentMarker(text) {
		return style.AttachmentMarker
	}
	if !*titleFound {
		likelyTitle := containsAny(text, attachmentTitleKeywords) || utf8.RuneCountInString(text) <= 30
		if likelyTitle && token.HeadingLevel(text) == 0 {
			*titleFound = true
			return style.Title
		}
	}
	if lvl := headingLevel(text); lvl != 0 {
		return style.HeadingRole(lvl)
	}
	return style.Body
}

func headingLevel(text string) int {
	if lvl := token.HeadingLevel(text); lvl != 0 {
		return lvl
	}
	return fallbackHeadingLevel(text)
}

// IsHeadingText reports whether the text reads as a heading, by explicit
// numbering token or by the fallback inference.
func IsHeadingText(text string) bool {
	return headingLevel(text) != 0
}
