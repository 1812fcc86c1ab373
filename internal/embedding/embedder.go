// Package embedding builds the configured text embedder and provides the
// vector similarity helpers shared by retrieval, answering and grading.
package embedding

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ragquiz/internal/config"
	"ragquiz/internal/domain"
	"ragquiz/internal/embedding/openai"
	"ragquiz/internal/embedding/tfidf"
)

// New constructs the embedder selected in cfg. A local TF-IDF model is
// restored from cfg.ModelPath() when one was saved by a previous ingest.
func New(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "", "tfidf":
		e := tfidf.NewEmbedder()
		if err := e.Load(cfg.ModelPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load tfidf model: %w", err)
		}
		return e, nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			return nil, errors.New("embedder.openai config is required")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
			BatchSize: oc.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unsupported embedder: %s", cfg.Embedder.Type)
	}
}

// Persister is implemented by embedders whose prepared state can be saved.
type Persister interface {
	Save(path string) error
}
