package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"regassist-be/internal/repository/specification"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/retrieval"
)

const (
	maxPassagesRendered = 5
	maxAgreements       = 5
	maxFAQMatches       = 3
	faqThreshold        = 0.5
)

// KBSearchHandler answers kb_search calls with ranked knowledge-base
// passages.
type KBSearchHandler struct {
	searcher *retrieval.Searcher
	uow      unitofwork.UnitOfWork
}

func NewKBSearchHandler(searcher *retrieval.Searcher, uow unitofwork.UnitOfWork) *KBSearchHandler {
	return &KBSearchHandler{searcher: searcher, uow: uow}
}

func (h *KBSearchHandler) Kind() Kind { return KindKBSearch }

func (h *KBSearchHandler) Definition() llm.Tool {
	return llm.Tool{
		Name:        string(KindKBSearch),
		Description: "Search the labor-regulation knowledge base for passages relevant to a question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Natural-language search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (h *KBSearchHandler) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("kb_search: query argument required")
	}

	result, err := h.searcher.Execute(ctx, h.uow, query, time.Now())
	if err != nil {
		return "", err
	}
	if len(result.Passages) == 0 {
		return "No knowledge base passages matched the query.", nil
	}

	var b strings.Builder
	for i, p := range result.Passages {
		if i >= maxPassagesRendered {
			break
		}
		fmt.Fprintf(&b, "[%d] %s (%s, effective %s)\n%s\n\n",
			i+1, p.Title, p.Source, p.UpdatedAt.Format("2006-01-02"), snippet(p.Content, 500))
	}
	return strings.TrimSpace(b.String()), nil
}

// AgreementLookupHandler resolves agreement_lookup calls against the
// collective-agreement registry.
type AgreementLookupHandler struct {
	uow unitofwork.UnitOfWork
}

func NewAgreementLookupHandler(uow unitofwork.UnitOfWork) *AgreementLookupHandler {
	return &AgreementLookupHandler{uow: uow}
}

func (h *AgreementLookupHandler) Kind() Kind { return KindAgreementLookup }

func (h *AgreementLookupHandler) Definition() llm.Tool {
	return llm.Tool{
		Name:        string(KindAgreementLookup),
		Description: "Look up collective labor agreements in force for a sector, optionally narrowed to a region.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sector": map[string]any{
					"type":        "string",
					"description": "Economic sector, e.g. hospitality, construction, metal.",
				},
				"region": map[string]any{
					"type":        "string",
					"description": "Region or province; omit for national scope.",
				},
			},
			"required": []string{"sector"},
		},
	}
}

func (h *AgreementLookupHandler) Execute(ctx context.Context, args map[string]any) (string, error) {
	sector := stringArg(args, "sector")
	if sector == "" {
		return "", fmt.Errorf("agreement_lookup: sector argument required")
	}
	region := stringArg(args, "region")

	agreements, err := h.uow.LaborAgreementRepository().FindApplicable(ctx, sector, region, time.Now(), maxAgreements)
	if err != nil {
		return "", err
	}
	if len(agreements) == 0 {
		return fmt.Sprintf("No collective agreement currently in force matches sector %q.", sector), nil
	}

	var b strings.Builder
	for _, a := range agreements {
		fmt.Fprintf(&b, "- %s (%s scope, sector %s", a.Name, a.Scope, a.Sector)
		if a.Region != "" {
			fmt.Fprintf(&b, ", region %s", a.Region)
		}
		fmt.Fprintf(&b, ") valid from %s", a.ValidFrom.Format("2006-01-02"))
		if a.ValidUntil != nil {
			fmt.Fprintf(&b, " until %s", a.ValidUntil.Format("2006-01-02"))
		}
		if a.Summary != "" {
			fmt.Fprintf(&b, ": %s", snippet(a.Summary, 300))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// DocumentFetchHandler retrieves the full text of one knowledge-base
// document by its official source reference.
type DocumentFetchHandler struct {
	uow unitofwork.UnitOfWork
}

func NewDocumentFetchHandler(uow unitofwork.UnitOfWork) *DocumentFetchHandler {
	return &DocumentFetchHandler{uow: uow}
}

func (h *DocumentFetchHandler) Kind() Kind { return KindDocumentFetch }

func (h *DocumentFetchHandler) Definition() llm.Tool {
	return llm.Tool{
		Name:        string(KindDocumentFetch),
		Description: "Fetch the full text of a regulation document by its source reference, e.g. \"ET art. 34\".",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"source": map[string]any{
					"type":        "string",
					"description": "Official source reference of the document.",
				},
			},
			"required": []string{"source"},
		},
	}
}

func (h *DocumentFetchHandler) Execute(ctx context.Context, args map[string]any) (string, error) {
	source := stringArg(args, "source")
	if source == "" {
		return "", fmt.Errorf("document_fetch: source argument required")
	}

	doc, err := h.uow.KBDocumentRepository().FindOne(ctx, specification.BySource{Source: source})
	if err != nil {
		return "", err
	}
	if doc == nil {
		return fmt.Sprintf("No document found with source reference %q.", source), nil
	}

	return fmt.Sprintf("%s (%s, effective %s)\n%s",
		doc.Title, doc.Source, doc.EffectiveAt.Format("2006-01-02"), snippet(doc.Content, 1500)), nil
}

// FAQSearchHandler matches faq_search calls against curated golden answers.
type FAQSearchHandler struct {
	embeddingProvider embedding.EmbeddingProvider
	uow               unitofwork.UnitOfWork
}

func NewFAQSearchHandler(embeddingProvider embedding.EmbeddingProvider, uow unitofwork.UnitOfWork) *FAQSearchHandler {
	return &FAQSearchHandler{embeddingProvider: embeddingProvider, uow: uow}
}

func (h *FAQSearchHandler) Kind() Kind { return KindFAQSearch }

func (h *FAQSearchHandler) Definition() llm.Tool {
	return llm.Tool{
		Name:        string(KindFAQSearch),
		Description: "Search the curated FAQ for reviewed answers similar to a question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to match against the FAQ.",
				},
			},
			"required": []string{"question"},
		},
	}
}

func (h *FAQSearchHandler) Execute(ctx context.Context, args map[string]any) (string, error) {
	question := stringArg(args, "question")
	if question == "" {
		return "", fmt.Errorf("faq_search: question argument required")
	}

	res, err := h.embeddingProvider.Generate(question, embedding.TaskQuery)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	matches, err := h.uow.GoldenEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, maxFAQMatches, faqThreshold)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "No curated FAQ entry matches the question.", nil
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", m.Answer.Question, snippet(m.Answer.Answer, 600))
	}
	return strings.TrimSpace(b.String()), nil
}
