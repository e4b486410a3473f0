package tools

import (
	"context"
	"strings"

	"regassist-be/pkg/llm"
)

// Kind identifies one retrieval source the model may consult.
type Kind string

const (
	KindKBSearch        Kind = "kb_search"
	KindAgreementLookup Kind = "agreement_lookup"
	KindDocumentFetch   Kind = "document_fetch"
	KindFAQSearch       Kind = "faq_search"
)

// Handler executes one model-requested call against a single source and
// renders the result as model-readable text.
type Handler interface {
	Kind() Kind
	Definition() llm.Tool
	Execute(ctx context.Context, args map[string]any) (string, error)
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
