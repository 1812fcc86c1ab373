// Package retrieval answers nearest-chunk queries over the vector store.
package retrieval

import (
	"context"
	"strings"

	"ragquiz/internal/domain"
	"ragquiz/internal/embedding"
	"ragquiz/internal/logx"
)

// Retriever embeds a query and searches the store. It implements
// domain.Retriever.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

// New wires a Retriever.
func New(e domain.Embedder, s domain.VectorStore) *Retriever {
	return &Retriever{embedder: e, store: s}
}

// Retrieve returns up to k hits ranked by descending similarity. Any
// embedding or store failure is logged and reported as no hits. Queries
// the embedder cannot place fall back to lexical overlap.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []domain.Hit {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) != 1 {
		logx.Warnf("retrieve %q: embedding failed: %v", query, err)
		return nil
	}
	results, err := r.store.Search(ctx, vecs[0], k)
	if err != nil {
		logx.Warnf("retrieve %q: search failed: %v", query, err)
		return nil
	}
	if embedding.IsZero(vecs[0]) || allZero(results) {
		chunks, err := r.store.Chunks(ctx)
		if err != nil {
			logx.Warnf("retrieve %q: listing chunks failed: %v", query, err)
			return nil
		}
		logx.Debugf("retrieve %q: no vector signal, using lexical overlap", query)
		results = lexicalSearch(chunks, query, k)
	}
	hits := make([]domain.Hit, 0, len(results))
	for _, res := range results {
		src := res.Chunk.Source
		if src == "" {
			src = "local"
		}
		hits = append(hits, domain.Hit{Text: res.Chunk.Text, Source: src, Score: res.Score})
	}
	logx.Debugf("retrieve %q: %d hits", query, len(hits))
	return hits
}

func allZero(results []domain.SearchResult) bool {
	for _, r := range results {
		if r.Score > 1e-9 {
			return false
		}
	}
	return true
}
