// Package answer composes short tutoring answers from the sentences of the
// retrieved chunks that best match the question.
package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ragquiz/internal/curator"
	"ragquiz/internal/domain"
	"ragquiz/internal/embedding"
	"ragquiz/internal/logx"
)

const (
	NoMaterialMessage = "I don't have any indexed materials yet. Add notes and run ingest."
	NoAnswerMessage   = "I found related material but could not extract a concise answer."
)

// SourceRef names one cited source.
type SourceRef struct {
	Source string `json:"source"`
}

// Answer is the composed text (citation block included) and its sources.
type Answer struct {
	Text    string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

// Options tunes composition. Zero values take the defaults listed per field.
type Options struct {
	DefaultK     int // 4
	MinRetrieval int // 8
	TopSentences int // 5
}

// Composer ranks retrieved sentences against the question.
type Composer struct {
	retriever domain.Retriever
	embedder  domain.Embedder
	opts      Options
}

// NewComposer wires a Composer.
func NewComposer(r domain.Retriever, e domain.Embedder, opts Options) *Composer {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 4
	}
	if opts.MinRetrieval <= 0 {
		opts.MinRetrieval = 8
	}
	if opts.TopSentences <= 0 {
		opts.TopSentences = 5
	}
	return &Composer{retriever: r, embedder: e, opts: opts}
}

// MakeAnswer retrieves max(k, 8) hits, splits the text of the top k into
// sentences and returns the five closest to query, most similar first,
// followed by a numbered citation block.
func (c *Composer) MakeAnswer(ctx context.Context, query string, k int) Answer {
	if k <= 0 {
		k = c.opts.DefaultK
	}
	hits := c.retriever.Retrieve(ctx, query, max(k, c.opts.MinRetrieval))
	if len(hits) == 0 {
		return Answer{Text: NoMaterialMessage, Sources: []SourceRef{}}
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	sentences := curator.SplitSentences(strings.Join(texts, " "))
	if len(sentences) == 0 {
		return Answer{Text: NoAnswerMessage, Sources: []SourceRef{}}
	}

	chosen := c.rank(ctx, query, sentences)
	sources := dedupSources(hits)
	cites := make([]string, len(sources))
	for i, s := range sources {
		cites[i] = fmt.Sprintf("[%d: %s]", i+1, s.Source)
	}
	return Answer{
		Text:    strings.Join(chosen, " ") + "\n\nSources: " + strings.Join(cites, " "),
		Sources: sources,
	}
}

// rank orders sentences by similarity to query and keeps the top few. When
// embedding fails the first sentences are used in document order.
func (c *Composer) rank(ctx context.Context, query string, sentences []string) []string {
	top := min(c.opts.TopSentences, len(sentences))
	vecs, err := c.embedder.Embed(ctx, append([]string{query}, sentences...))
	if err != nil || len(vecs) != len(sentences)+1 {
		logx.Warnf("answer: embedding failed, falling back to document order: %v", err)
		return sentences[:top]
	}
	sims := embedding.Similarity(vecs[1:], vecs[:1])
	idx := make([]int, len(sentences))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return sims[idx[a]][0] > sims[idx[b]][0] })
	out := make([]string, top)
	for i := 0; i < top; i++ {
		out[i] = sentences[idx[i]]
	}
	return out
}

func dedupSources(hits []domain.Hit) []SourceRef {
	seen := make(map[string]struct{})
	out := []SourceRef{}
	for _, h := range hits {
		src := h.Source
		if src == "" {
			src = "local"
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, SourceRef{Source: src})
	}
	return out
}
