package embedding

// Task types passed to Generate. Stored content (KB chunks, golden
// questions) embeds as TaskDocument; live questions embed as TaskQuery.
// Mixing them up silently degrades similarity scores, so call sites use
// these constants rather than raw strings.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider turns text into a vector. Implementations must return
// unit-length vectors; the pgvector cosine operators assume it.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

// EmbeddingResponse is the provider-neutral result shape. Gemini returns it
// verbatim; the other providers map into it.
type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
