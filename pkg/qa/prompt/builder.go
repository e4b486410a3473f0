package prompt

import (
	"fmt"
	"strings"

	"regassist-be/internal/constant"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/retrieval"
)

// Builder assembles the model conversation for one question. The system
// prompt and context framing live in internal/constant so prompt revisions
// stay in one place.
type Builder struct {
	maxExtractChars int
}

func NewBuilder() *Builder {
	return &Builder{maxExtractChars: constant.QAMaxExtractChars}
}

// Build produces the conversation for the tool-driven path: the model
// fetches its own context through tool calls.
func (b *Builder) Build(question string, history []llm.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: constant.QAMessageRoleSystem, Content: constant.QASystemPromptV1})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: constant.QAMessageRoleUser, Content: question})
	return msgs
}

// BuildWithContext inlines pre-retrieved passages for providers that cannot
// run tools.
func (b *Builder) BuildWithContext(question string, passages []retrieval.Scored, history []llm.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+3)
	msgs = append(msgs, llm.Message{Role: constant.QAMessageRoleSystem, Content: constant.QASystemPromptV1})
	msgs = append(msgs, llm.Message{Role: constant.QAMessageRoleSystem, Content: b.ContextBlock(passages)})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: constant.QAMessageRoleUser, Content: question})
	return msgs
}

// ContextBlock renders ranked passages as the structured extract list the
// system prompt refers to.
func (b *Builder) ContextBlock(passages []retrieval.Scored) string {
	var sb strings.Builder
	sb.WriteString(constant.QAContextHeader)
	sb.WriteString("\n")

	if len(passages) == 0 {
		sb.WriteString(constant.QANoContextNote)
		return sb.String()
	}

	for i, p := range passages {
		content := p.Content
		if len(content) > b.maxExtractChars {
			content = content[:b.maxExtractChars] + "..."
		}
		effective := "unknown"
		if !p.UpdatedAt.IsZero() {
			effective = p.UpdatedAt.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf(constant.QAContextEntryFormat, i+1, p.Source, effective, content))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
