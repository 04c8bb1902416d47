package rag

import (
	"fmt"
	"strings"
)

// RefusalSentence 上下文中找不到答案时模型必须原样返回的句子
const RefusalSentence = "I cannot find the answer to that question in the provided document."

const systemPromptTemplate = `Persona: You are an expert Professor of Natural Language Processing whose goal is to help your student understand the material strictly based on the provided course document.

Context: The following text is the only information source you are allowed to use when answering.
Reference Context:
%s

Task: Answer the student's question using only the Reference Context. If technical terms appear, explain them briefly as a professor would.

Condition: Your answer must be a single, well-structured paragraph with no line breaks, no lists, and no asterisks. Do not use outside knowledge. If the answer cannot be found or clearly inferred from the Reference Context, respond exactly with: %s Do not reveal any chain-of-thought or reasoning steps.`

// GroundedPrompt 已填充检索上下文的生成请求
type GroundedPrompt struct {
	System string
	User   string
}

// ComposePrompt 按检索命中顺序拼装严格接地的生成提示。
// 无命中时上下文留空，拒答规则使模型回复固定拒答句。
func ComposePrompt(query string, matches []RetrievedUnit) GroundedPrompt {
	var context strings.Builder
	for i, m := range matches {
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(m.Unit.Content)
	}

	return GroundedPrompt{
		System: fmt.Sprintf(systemPromptTemplate, context.String(), RefusalSentence),
		User:   query,
	}
}
