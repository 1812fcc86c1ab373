package domain

import "context"

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
// Source is the citation identifier shown to learners.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Source     string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Hit is a single retrieval result as seen by the quiz and answer layers.
type Hit struct {
	Text   string
	Source string
	Score  float64
}

// Embedder converts free text into unit-length vectors.
// Implementations may require a preparation phase over the corpus.
// Embed must be deterministic for a fixed model and prepared corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Chunks(ctx context.Context) ([]Chunk, error)
	Clear(ctx context.Context) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Retriever returns the k chunks nearest to a free-text query.
// An empty or unreachable index yields no hits rather than an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []Hit
}
