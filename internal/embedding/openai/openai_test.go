package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, batch int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newClient("test-key", Config{BaseURL: server.URL + "/v1", Model: "text-embedding-3-small", BatchSize: batch})
}

func TestClient_EmbedBatchesAndNormalizes(t *testing.T) {
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var body struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		data := make([]map[string]any, 0, len(body.Input))
		// answer in reverse order to exercise index mapping
		for i := len(body.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{3, 4},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		})
	}
	c := newTestClient(t, handler, 2)

	vecs, err := c.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Dimension())
	for _, v := range vecs {
		assert.InDelta(t, 0.6, v[0], 1e-9)
		assert.InDelta(t, 0.8, v[1], 1e-9)
		assert.InDelta(t, 1.0, math.Hypot(v[0], v[1]), 1e-9)
	}
}

func TestClient_EmbedClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad input", "type": "invalid_request_error"},
		})
	}
	c := newTestClient(t, handler, 8)

	_, err := c.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Setenv("RAGQUIZ_TEST_MISSING_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "RAGQUIZ_TEST_MISSING_KEY"})
	require.Error(t, err)
}

func TestClient_ConcurrentEmbedLearnsDimensionOnce(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{1, 0, 0}}},
			"model":  "text-embedding-3-small",
		})
	}
	c := newTestClient(t, handler, 8)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Embed(context.Background(), []string{"q"})
			assert.NoError(t, err)
			_ = c.Dimension()
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, c.Dimension())
}
