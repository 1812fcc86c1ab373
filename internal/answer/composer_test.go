package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/domain"
)

type fakeRetriever struct {
	hits  []domain.Hit
	lastK int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, k int) []domain.Hit {
	f.lastK = k
	if k < len(f.hits) {
		return f.hits[:k]
	}
	return f.hits
}

// fakeEmbedder returns fixed unit vectors; the query is always {1, 0}.
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbedder) Name() string { return "fake" }
func (f *fakeEmbedder) Prepare([]string) error { return nil }
func (f *fakeEmbedder) Dimension() int { return 2 }
func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float64{0, 1}
		}
	}
	return out, nil
}

const query = "what is a firewall"

// unit returns a vector whose dot product with the query is s.
func unit(s float64) []float64 {
	return []float64{s, 1 - s*s}
}

func TestMakeAnswer_EmptyIndex(t *testing.T) {
	c := NewComposer(&fakeRetriever{}, &fakeEmbedder{}, Options{})
	a := c.MakeAnswer(context.Background(), query, 4)
	assert.Equal(t, NoMaterialMessage, a.Text)
	assert.Empty(t, a.Sources)
}

func TestMakeAnswer_NoSentences(t *testing.T) {
	r := &fakeRetriever{hits: []domain.Hit{{Text: "   ", Source: "blank.md"}}}
	a := NewComposer(r, &fakeEmbedder{}, Options{}).MakeAnswer(context.Background(), query, 4)
	assert.Equal(t, NoAnswerMessage, a.Text)
	assert.Empty(t, a.Sources)
}

func TestMakeAnswer_RanksBestSentenceFirst(t *testing.T) {
	best := "A firewall filters traffic between network zones."
	emb := &fakeEmbedder{vectors: map[string][]float64{
		query:                       {1, 0},
		best:                        unit(0.9),
		"Lunch is at noon.":         unit(0.1),
		"Printers jam often.":       unit(0.2),
		"TLS uses certificates.":    unit(0.25),
		"Backups run nightly.":      unit(0.05),
		"Passwords expire yearly.":  unit(0.28),
		"Ignored because beyond k.": unit(0.99),
	}}
	r := &fakeRetriever{hits: []domain.Hit{
		{Text: "Lunch is at noon. Printers jam often.", Source: "misc.md"},
		{Text: "TLS uses certificates. " + best, Source: "net.md"},
		{Text: "Backups run nightly.", Source: "misc.md"},
		{Text: "Passwords expire yearly.", Source: "sec.md"},
		{Text: "Ignored because beyond k.", Source: "late.md"},
	}}

	a := NewComposer(r, emb, Options{}).MakeAnswer(context.Background(), query, 4)
	assert.Equal(t, 8, r.lastK)

	body, cites, found := strings.Cut(a.Text, "\n\nSources: ")
	require.True(t, found)
	assert.True(t, strings.HasPrefix(body, best), body)
	assert.Equal(t,
		best+" Passwords expire yearly. TLS uses certificates. Printers jam often. Lunch is at noon.",
		body)
	assert.NotContains(t, body, "Backups")
	assert.NotContains(t, body, "Ignored")
	assert.Equal(t, "[1: misc.md] [2: net.md] [3: sec.md]", cites)
	assert.Equal(t, []SourceRef{{"misc.md"}, {"net.md"}, {"sec.md"}}, a.Sources)
}

func TestMakeAnswer_EmbeddingFailureKeepsDocumentOrder(t *testing.T) {
	r := &fakeRetriever{hits: []domain.Hit{{Text: "One is here. Two is here.", Source: ""}}}
	a := NewComposer(r, &fakeEmbedder{err: errors.New("down")}, Options{}).MakeAnswer(context.Background(), query, 0)
	assert.Equal(t, "One is here. Two is here.\n\nSources: [1: local]", a.Text)
	assert.Equal(t, []SourceRef{{"local"}}, a.Sources)
}

func TestMakeAnswer_LargeK(t *testing.T) {
	r := &fakeRetriever{}
	NewComposer(r, &fakeEmbedder{}, Options{}).MakeAnswer(context.Background(), query, 12)
	assert.Equal(t, 12, r.lastK)
}
