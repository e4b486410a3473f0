package prompt

import (
	"strings"
	"testing"
	"time"

	"regassist-be/internal/constant"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/retrieval"
)

func passage(source, content string) retrieval.Scored {
	return retrieval.Scored{
		Candidate: retrieval.Candidate{
			Title:     "Working time",
			Content:   content,
			Source:    source,
			UpdatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Score: 0.8,
	}
}

func TestBuildShape(t *testing.T) {
	b := NewBuilder()
	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	msgs := b.Build("How many vacation days?", history)

	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(msgs))
	}
	if msgs[0].Role != constant.QAMessageRoleSystem {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if msgs[1].Content != "earlier question" || msgs[2].Content != "earlier answer" {
		t.Error("history order not preserved")
	}
	last := msgs[len(msgs)-1]
	if last.Role != constant.QAMessageRoleUser || last.Content != "How many vacation days?" {
		t.Errorf("last message = %+v, want the question", last)
	}
}

func TestBuildWithContextIncludesExtracts(t *testing.T) {
	b := NewBuilder()

	msgs := b.BuildWithContext("overtime limits?", []retrieval.Scored{
		passage("ET art. 35", "Overtime may not exceed eighty hours per year."),
	}, nil)

	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	ctx := msgs[1].Content
	if !strings.Contains(ctx, constant.QAContextHeader) {
		t.Error("context block missing header")
	}
	if !strings.Contains(ctx, "ET art. 35") {
		t.Error("context block missing source label")
	}
	if !strings.Contains(ctx, "2025-03-01") {
		t.Error("context block missing effective date")
	}
	if !strings.Contains(ctx, "eighty hours") {
		t.Error("context block missing passage content")
	}
}

func TestContextBlockEmpty(t *testing.T) {
	b := NewBuilder()
	block := b.ContextBlock(nil)
	if !strings.Contains(block, constant.QANoContextNote) {
		t.Errorf("empty context must carry the no-context note, got %q", block)
	}
}

func TestContextBlockTruncatesLongExtracts(t *testing.T) {
	b := NewBuilder()
	long := strings.Repeat("x", constant.QAMaxExtractChars+500)

	block := b.ContextBlock([]retrieval.Scored{passage("ET art. 1", long)})

	if strings.Contains(block, long) {
		t.Error("extract content should have been truncated")
	}
	if !strings.Contains(block, "...") {
		t.Error("truncation marker missing")
	}
}
