package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/domain"
	"ragquiz/internal/vectorstore/memory"
)

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Name() string { return "fake" }
func (f fakeEmbedder) Prepare([]string) error { return nil }
func (f fakeEmbedder) Dimension() int { return 2 }
func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

type failingStore struct{ *memory.Storage }

func (failingStore) Search(context.Context, []float64, int) ([]domain.SearchResult, error) {
	return nil, errors.New("unreachable")
}

func seeded(t *testing.T) *memory.Storage {
	t.Helper()
	s := memory.NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(context.Background(),
		[]domain.Chunk{{ChunkID: "a", Source: "a.md", Text: "far"}, {ChunkID: "b", Text: "near"}},
		[][]float64{{0, 1}, {1, 0}}))
	return s
}

func TestRetrieve_RanksAndMapsSources(t *testing.T) {
	hits := New(fakeEmbedder{}, seeded(t)).Retrieve(context.Background(), "q", 5)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.Hit{Text: "near", Source: "local", Score: 1}, hits[0])
	assert.Equal(t, "a.md", hits[1].Source)
}

func TestRetrieve_FailuresAreEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, New(fakeEmbedder{err: errors.New("down")}, seeded(t)).Retrieve(ctx, "q", 3))
	assert.Empty(t, New(fakeEmbedder{}, failingStore{seeded(t)}).Retrieve(ctx, "q", 3))
	assert.Empty(t, New(fakeEmbedder{}, memory.NewStorage()).Retrieve(ctx, "q", 3))
	assert.Empty(t, New(fakeEmbedder{}, seeded(t)).Retrieve(ctx, "  ", 3))
	assert.Empty(t, New(fakeEmbedder{}, seeded(t)).Retrieve(ctx, "q", 0))
}

type zeroEmbedder struct{ fakeEmbedder }

func (zeroEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	return [][]float64{{0, 0}}, nil
}

func TestRetrieve_LexicalFallback(t *testing.T) {
	s := memory.NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(context.Background(),
		[]domain.Chunk{
			{ChunkID: "a", Source: "a.md", Text: "Backups run nightly."},
			{ChunkID: "b", Source: "b.md", Text: "A firewall filters traffic."},
		},
		[][]float64{{1, 0}, {0, 1}}))

	hits := New(zeroEmbedder{}, s).Retrieve(context.Background(), "firewall traffic", 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "b.md", hits[0].Source)
	assert.InDelta(t, 2/math.Sqrt(2*4), hits[0].Score, 1e-9)
}

func TestOchiai(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  float64
	}{
		{"identical", "tls certificates", "TLS certificates", 1},
		{"disjoint", "tls", "firewall rules", 0},
		{"partial", "tls keys", "tls uses certificates and keys", 2 / math.Sqrt(2*5)},
		{"empty query", "", "anything", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ochiai(TokenSet(tt.query), tt.text), 1e-9)
		})
	}
}
