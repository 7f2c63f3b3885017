// Package style defines the GB/T 9704-2012 paragraph roles, the layout and
// character formatting each role prescribes, and the applicator that rewrites
// a paragraph to match its role.
package style

// Role identifies the formatting role of a paragraph.
type Role string

const (
	Title     Role = "title"
	Recipient Role = "recipient"
	Heading1  Role = "heading1"
	Heading2  Role = "heading2"
	Heading3  Role = "heading3"
	Heading4  Role = "heading4"
	Body      Role = "body"
	Signature Role = "signature"
	Date      Role = "date"
	Caption   Role = "caption"

	// AttachmentMarker is the standalone "附件N" line opening an attachment
	// section. It has no entry in the published format table; its layout is
	// fixed here: 黑体 16pt bold, flush left.
	AttachmentMarker Role = "attachment_marker"
)

// HeadingRole maps a heading level (1..4) to its role.
func HeadingRole(level int) Role {
	switch level {
	case 1:
		return Heading1
	case 2:
		return Heading2
	case 3:
		return Heading3
	case 4:
		return Heading4
	}
	return Body
}

// Normalize maps a role name from an external classifier to a known Role.
// Unknown or empty names fall back to Body.
func Normalize(name string) Role {
	switch Role(name) {
	case Title, Recipient, Heading1, Heading2, Heading3, Heading4,
		Body, Signature, Date, Caption, AttachmentMarker:
		return Role(name)
	}
	return Body
}

// IsHeading reports whether the role is one of the four numbered heading
// tiers.
func (r Role) IsHeading() bool {
	switch r {
	case Heading1, Heading2, Heading3, Heading4:
		return true
	}
	return false
}
