package llm

import "fmt"

const promptTemplate = `你是公文结构识别专家。请严格按照GB/T 9704-2012标准分析以下文档，识别每个段落的类型。

【识别规则】
1. title（标题）: 包含"通知"、"报告"、"决定"、"意见"、"办法"、"方案"等文种词，通常在前3段
2. recipient（主送机关）: 以"："或":"结尾，包含"局"、"委"、"厅"、"部"、"各"等关键词
3. heading1（一级标题）: "一、"、"二、"、"三、"开头，或包含关键动词的6-20字短语（如"加强XX"、"推进XX"）
4. heading2（二级标题）: "（一）"、"（二）"、"（三）"开头
5. heading3（三级标题）: "1."、"2."、"3."开头（注意是半角点号）
6. heading4（四级标题）: "(1)"、"(2)"、"(3)"开头（注意是半角括号）
7. body（正文）: 普通段落，以"为"、"根据"、"按照"、"经"等开头，或正常叙述性文字
8. attachment_marker（附件标记）: "附件："或"附件1："等，单独一行
9. signature（署名）: 包含单位名称，位于文档后部，通常在日期前一行
10. date（日期）: 包含"年月日"格式，位于文档末尾

【重要规则】
- 附件标记后的内容，标题编号会重新开始
- 如果一个段落同时符合多个特征，优先选择更具体的类型（如标题>正文）
- 不确定时标记为body（正文）
- 表格、图片说明标记为body

【输出格式要求】
严格按以下JSON格式输出，不要包含任何其他文字或解释：
{
  "paragraphs": [
    {"index": 0, "type": "title", "content": "段落内容"},
    {"index": 1, "type": "recipient", "content": "段落内容"},
    {"index": 2, "type": "body", "content": "段落内容"},
    {"index": 3, "type": "heading1", "content": "段落内容"},
    ...
  ],
  "attachment_start_index": 25
}

注意：
- index 必须与下面文档中的行号一致
- type 只能是上述10种类型之一
- content 必须与原文一致
- attachment_start_index 是附件标记所在的index，如果没有附件则设为-1

【文档内容】（行号: 内容）
%s

请开始分析，只输出JSON，不要任何额外文字：`

func buildPrompt(documentText string) string {
	return fmt.Sprintf(promptTemplate, documentText)
}
