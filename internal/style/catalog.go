package style

import "github.com/hehezhang2025/gongwen-formatter/internal/docx"

// Spec is the layout and character formatting for one role. Point values are
// converted to twips or half-points at application time. Nil pointer fields
// leave the corresponding property untouched.
type Spec struct {
	FontName string
	SizePt   float64
	Bold     bool

	Alignment       string
	FirstLineIndent *float64 // pt
	RightIndent     *float64 // pt
	SpaceBefore     *float64 // pt
	SpaceAfter      *float64 // pt
	LineSpacing     *float64 // pt, exact rule
}

func pt(v float64) *float64 { return &v }

// catalog holds the format table. Title is 2号 on 方正小标宋简体; headings and
// body are 3号; captions drop to 5号.
var catalog = map[Role]Spec{
	Title: {
		FontName:    "方正小标宋简体",
		SizePt:      22,
		Alignment:   docx.AlignCenter,
		SpaceBefore: pt(0),
		SpaceAfter:  pt(0),
		LineSpacing: pt(35),
	},
	Recipient: {
		FontName:        "仿宋_GB2312",
		SizePt:          16,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(0),
		LineSpacing:     pt(30),
	},
	Heading1: {
		FontName:        "黑体",
		SizePt:          16,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(32),
		LineSpacing:     pt(30),
	},
	Heading2: {
		FontName:        "楷体_GB2312",
		SizePt:          16,
		Bold:            true,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(32),
		LineSpacing:     pt(30),
	},
	Heading3: {
		FontName:        "仿宋_GB2312",
		SizePt:          16,
		Bold:            true,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(32),
		LineSpacing:     pt(30),
	},
	Heading4: {
		FontName:        "仿宋_GB2312",
		SizePt:          16,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(32),
		LineSpacing:     pt(30),
	},
	Body: {
		FontName:        "仿宋_GB2312",
		SizePt:          16,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(32),
		LineSpacing:     pt(30),
	},
	Signature: {
		FontName:    "仿宋_GB2312",
		SizePt:      16,
		Alignment:   docx.AlignRight,
		RightIndent: pt(32),
		LineSpacing: pt(30),
	},
	Date: {
		FontName:    "仿宋_GB2312",
		SizePt:      16,
		Alignment:   docx.AlignRight,
		RightIndent: pt(64),
		LineSpacing: pt(30),
	},
	Caption: {
		FontName:    "仿宋_GB2312",
		SizePt:      12,
		Alignment:   docx.AlignCenter,
		LineSpacing: pt(20),
	},
	AttachmentMarker: {
		FontName:        "黑体",
		SizePt:          16,
		Bold:            true,
		Alignment:       docx.AlignLeft,
		FirstLineIndent: pt(0),
	},
}

// Lookup returns the format spec for a role. Unknown roles get the body spec.
func Lookup(r Role) Spec {
	if s, ok := catalog[r]; ok {
		return s
	}
	return catalog[Body]
}
