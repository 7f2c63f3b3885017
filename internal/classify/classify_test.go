package classify

import (
	"testing"

	"github.com/hehezhang2025/gongwen-formatter/internal/style"
)

func plain(texts ...string) []Paragraph {
	ps := make([]Paragraph, len(texts))
	for i, t := range texts {
		ps[i] = Paragraph{Text: t, Raw: t}
	}
	return ps
}

func TestClassifyFullDocument(t *testing.T) {
	paras := plain(
		"关于加强项目管理的通知",
		"各部门：",
		"为了提高项目管理水平，现通知如下。",
		"一、加强组织领导",
		"各部门要高度重视。",
		"（一）成立工作小组",
		"由部门负责人担任组长。",
		"XX公司",
		"2025年2月17日",
	)
	res := Classify(paras)

	want := []style.Role{
		style.Title, style.Recipient, style.Body,
		style.Heading1, style.Body, style.Heading2, style.Body,
		style.Signature, style.Date,
	}
	for i, w := range want {
		if res.Roles[i] != w {
			t.Errorf("paragraph %d (%q): got %q, want %q", i, paras[i].Text, res.Roles[i], w)
		}
	}
	if res.AttachmentStart != -1 {
		t.Errorf("AttachmentStart = %d, want -1", res.AttachmentStart)
	}
}

func TestBodyLeadBeatsRecipientColon(t *testing.T) {
	paras := plain(
		"关于开展检查的通知",
		"各单位：",
		"根据相关规定，现将有关事项通知如下：",
	)
	res := Classify(paras)
	if res.Roles[2] != style.Body {
		t.Errorf("colon-terminated body line misclassified as %q", res.Roles[2])
	}
}

func TestFallbackHeadingLevel(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"加强组织领导工作", 1},
		{"深化放管服改革", 1},
		{"为了提高管理水平", 0},   // body lead word
		{"加强管理。", 0},       // too short and sentence-final
		{"附件1：实施方案", 0},    // attachment reference
		{"提升服务质量具体如下：", 0}, // colon-terminated
		{"一、加强组织领导", 1},    // explicit token wins
	}
	for _, c := range cases {
		if got := fallbackHeadingLevel(c.text); got != c.want {
			t.Errorf("fallbackHeadingLevel(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestAttachmentDomain(t *testing.T) {
	paras := plain(
		"关于印发管理办法的通知",
		"各处室：",
		"现将办法印发给你们。",
		"附件1",
		"项目管理实施细则",
		"一、总则",
		"细则正文内容，此处说明相关要求和适用范围等。",
	)
	res := Classify(paras)

	if res.AttachmentStart != 3 {
		t.Fatalf("AttachmentStart = %d, want 3", res.AttachmentStart)
	}
	if res.Roles[3] != style.AttachmentMarker {
		t.Errorf("marker role = %q", res.Roles[3])
	}
	if res.Roles[4] != style.Title {
		t.Errorf("attachment title role = %q", res.Roles[4])
	}
	if res.Roles[5] != style.Heading1 {
		t.Errorf("attachment heading role = %q", res.Roles[5])
	}
	if res.Roles[6] != style.Body {
		t.Errorf("attachment body role = %q", res.Roles[6])
	}
}

func TestAttachmentListKinds(t *testing.T) {
	paras := []Paragraph{
		{Text: "关于印发两个方案的通知", Raw: "关于印发两个方案的通知"},
		{Text: "附件：1.第一个方案", Raw: "附件：1.第一个方案"},
		{Text: "2.第二个方案", Raw: "      2.第二个方案"},
	}
	res := Classify(paras)

	if res.Kinds[1] != KindAttachmentItem {
		t.Errorf("first list line kind = %v", res.Kinds[1])
	}
	if res.Kinds[2] != KindAttachmentItem {
		t.Errorf("continuation line kind = %v", res.Kinds[2])
	}
	if res.Roles[1] != style.Body || res.Roles[2] != style.Body {
		t.Errorf("list lines must carry body role, got %q / %q", res.Roles[1], res.Roles[2])
	}
}

func TestLegacyAttachmentList(t *testing.T) {
	paras := plain(
		"关于报送材料的通知",
		"附件：1、材料清单",
		"2、填报说明",
		"另外的正文段落在这里继续。",
	)
	res := Classify(paras)

	if res.Roles[1] != style.Body || res.Roles[2] != style.Body {
		t.Errorf("legacy list lines = %q / %q", res.Roles[1], res.Roles[2])
	}
	if res.Roles[3] != style.Body {
		t.Errorf("post-list paragraph = %q", res.Roles[3])
	}
}

func TestCaption(t *testing.T) {
	paras := plain(
		"关于统计工作的通知",
		"表1：各季度统计数据",
		"图2:流程示意",
	)
	res := Classify(paras)
	if res.Roles[1] != style.Caption || res.Roles[2] != style.Caption {
		t.Errorf("caption roles = %q / %q", res.Roles[1], res.Roles[2])
	}
}

func TestImageKind(t *testing.T) {
	paras := []Paragraph{
		{Text: "关于发布结果的通知", Raw: "关于发布结果的通知"},
		{HasImage: true},
	}
	res := Classify(paras)
	if res.Kinds[1] != KindImage {
		t.Errorf("image kind = %v", res.Kinds[1])
	}
}

func TestClosingBlockNeedsBlankBeforeDate(t *testing.T) {
	// A body sentence carrying a unit keyword third from the end must not
	// turn into a signature just because the document ends on a date.
	paras := plain(
		"关于成立工作小组的通知",
		"由部门负责人担任组长。",
		"某某委员会",
		"2025年2月17日",
	)
	res := Classify(paras)
	if res.Roles[1] != style.Body {
		t.Errorf("body line role = %q, want %q", res.Roles[1], style.Body)
	}
	if res.Roles[2] != style.Signature || res.Roles[3] != style.Date {
		t.Errorf("closing block = %q, %q", res.Roles[2], res.Roles[3])
	}

	// With a blank line between the unit name and the date, the third-from-
	// last position is the signature slot.
	paras = plain(
		"关于成立工作小组的通知",
		"具体安排另行通知。",
		"某某委员会",
		"",
		"2025年2月17日",
	)
	res = Classify(paras)
	if res.Roles[2] != style.Signature {
		t.Errorf("signature above blank line = %q, want %q", res.Roles[2], style.Signature)
	}
}

func TestSignatureWithPlaceholderDate(t *testing.T) {
	paras := plain(
		"关于年度考核的通知",
		"考核工作即将开始，请各单位做好准备。",
		"XX市管理委员会",
		"2026年3月XX日",
	)
	res := Classify(paras)
	if res.Roles[2] != style.Signature {
		t.Errorf("signature role = %q", res.Roles[2])
	}
	if res.Roles[3] != style.Date {
		t.Errorf("date role = %q", res.Roles[3])
	}
}
