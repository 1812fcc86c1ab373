package tfidf

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"A firewall filters traffic between network zones.",
	"TLS encrypts traffic between a client and a server.",
	"Phishing attacks trick users into revealing credentials.",
}

func TestEmbedder_EmbedIsDeterministicAndNormalized(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	a, err := e.Embed(context.Background(), []string{"firewall traffic", "firewall traffic"})
	require.NoError(t, err)
	assert.Equal(t, a[0], a[1])

	sum := 0.0
	for _, x := range a[0] {
		sum += x * x
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEmbedder_UnknownTokensGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	v, err := e.Embed(context.Background(), []string{"zzz qqq"})
	require.NoError(t, err)
	for _, x := range v[0] {
		assert.Zero(t, x)
	}
}

func TestEmbedder_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	require.Error(t, NewEmbedder().Prepare(nil))
}

func TestEmbedder_SaveLoadRoundTrip(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	path := filepath.Join(t.TempDir(), "model", "tfidf.json")
	require.NoError(t, e.Save(path))

	loaded := NewEmbedder()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, e.Dimension(), loaded.Dimension())

	ctx := context.Background()
	want, err := e.Embed(ctx, []string{"TLS encrypts traffic"})
	require.NoError(t, err)
	got, err := loaded.Embed(ctx, []string{"TLS encrypts traffic"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
