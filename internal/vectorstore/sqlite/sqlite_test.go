package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/domain"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "index.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sample() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{DocumentID: "d1", ChunkID: "d1:0", Source: "fw.md", Text: "firewall", Index: 0},
		{DocumentID: "d1", ChunkID: "d1:1", Source: "fw.md", Text: "proxy", Index: 1},
		{DocumentID: "d2", ChunkID: "d2:0", Source: "tls.md", Text: "tls", Index: 0},
	}
	vecs := [][]float64{{1, 0}, {0.6, 0.8}, {0, 1}}
	return chunks, vecs
}

func TestStorage_StoreAndSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(2))
	chunks, vecs := sample()
	require.NoError(t, s.Upsert(ctx, chunks, vecs))

	res, err := s.Search(ctx, []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, chunks[0], res[0].Chunk)
	assert.Equal(t, "proxy", res[1].Chunk.Text)
	assert.InDelta(t, 0.6, res[1].Score, 1e-9)
}

func TestStorage_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	require.NoError(t, s.Init(2))
	chunks, vecs := sample()
	require.NoError(t, s.Upsert(ctx, chunks, vecs))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	dim, err := reopened.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)
	got, err := reopened.Chunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, chunks, got)
}

func TestStorage_InitWithNewDimensionDropsChunks(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(2))
	chunks, vecs := sample()
	require.NoError(t, s.Upsert(ctx, chunks, vecs))

	require.NoError(t, s.Init(2))
	got, err := s.Chunks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.NoError(t, s.Init(3))
	got, err = s.Chunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_UpsertValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.Error(t, s.Init(0))
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "x"}}, nil))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "x"}}, [][]float64{{1, 2, 3}}))
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Init(2))
	chunks, vecs := sample()
	require.NoError(t, s.Upsert(ctx, chunks, vecs))
	require.NoError(t, s.Clear(ctx))
	res, err := s.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
