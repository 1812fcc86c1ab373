package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/domain"
)

func TestStorage_SearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(2))
	chunks := []domain.Chunk{
		{ChunkID: "a", Source: "a.md", Text: "alpha"},
		{ChunkID: "b", Source: "b.md", Text: "beta"},
		{ChunkID: "c", Source: "c.md", Text: "gamma"},
	}
	vecs := [][]float64{{0, 1}, {1, 0}, {0.6, 0.8}}
	require.NoError(t, s.Upsert(ctx, chunks, vecs))

	res, err := s.Search(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Chunk.ChunkID)
	assert.Equal(t, "c", res[1].Chunk.ChunkID)
	assert.InDelta(t, 0.6, res[1].Score, 1e-9)

	all, err := s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStorage_UpsertReplacesByChunkID(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a", Text: "old"}}, [][]float64{{1}}))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a", Text: "new"}, {ChunkID: "b", Text: "b"}}, [][]float64{{1}, {0.5}}))

	chunks, err := s.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "new", chunks[0].Text)
}

func TestStorage_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.Error(t, s.Init(0))
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a"}}, nil))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a"}}, [][]float64{{1, 2, 3}}))
}

func TestStorage_ClearAndEmptySearch(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a"}}, [][]float64{{1}}))
	require.NoError(t, s.Clear(ctx))
	res, err := s.Search(ctx, []float64{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}
