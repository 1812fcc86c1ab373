package embedding

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/config"
)

func TestSimilarity_DotProductMatrix(t *testing.T) {
	a := [][]float64{{1, 0}, {0, 1}}
	b := [][]float64{{1, 0}, {0.6, 0.8}}
	got := Similarity(a, b)
	require.Len(t, got, 2)
	assert.InDeltaSlice(t, []float64{1, 0.6}, got[0], 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0.8}, got[1], 1e-9)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 5}, 0},
		{"zero", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"scaled", []float64{3, 4}, []float64{6, 8}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero([]float64{0, 0}))
	assert.False(t, IsZero([]float64{0, 1e-12}))
}

func TestNew(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.DataDir = t.TempDir()

	e, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "tfidf", e.Name())
	_, ok := e.(Persister)
	assert.True(t, ok)

	cfg.Embedder.Type = "word2vec"
	_, err = New(cfg)
	require.Error(t, err)

	cfg.Embedder.Type = "openai"
	_, err = New(cfg)
	require.Error(t, err)
}
