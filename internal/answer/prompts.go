package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ragbench/internal/models"
)

// User-facing fixed messages.
const (
	NoEvidenceMessage    = "未检索到有效证据，无法基于知识库回答。"
	DegradedMarker       = "（已使用本地 extractive 模式）"
	EmptyResponseMessage = "LLM 未返回内容。"

	extractiveConclusion = "结论：请以上述证据为准；如需更自然总结，请配置 LLM API Key。"

	systemPrompt = "你是一个严谨的RAG回答助手。必须仅基于给定证据回答；若证据不足，请明确说不知道。回答末尾必须保留引用编号，如[doc-1:0]。"
)

// UnreachableMessage is returned when the local Ollama service cannot be used.
func UnreachableMessage(baseURL string) string {
	return fmt.Sprintf("无法连接本地 Ollama 服务（%s），请确认服务已启动，或切换到 extractive 模式。", baseURL)
}

func extractiveLead(query string) string {
	return fmt.Sprintf("基于检索证据，问题“%s”的关键信息如下：", query)
}

// userPrompt renders the question and "[cid] text" evidence lines.
func userPrompt(query string, evidence []models.Evidence) string {
	lines := make([]string, len(evidence))
	for i, e := range evidence {
		lines[i] = e.String()
	}
	return fmt.Sprintf("问题：%s\n\n证据：\n%s\n\n请输出简洁中文答案，并给出引用。", query, strings.Join(lines, "\n"))
}
