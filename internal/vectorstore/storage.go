// Package vectorstore builds the configured domain.VectorStore.
package vectorstore

import (
	"fmt"
	"io"
	"time"

	"ragquiz/internal/config"
	"ragquiz/internal/domain"
	"ragquiz/internal/vectorstore/memory"
	"ragquiz/internal/vectorstore/qdrant"
	"ragquiz/internal/vectorstore/sqlite"
)

// New returns the store selected in cfg. Stores holding resources also
// implement io.Closer.
func New(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "", "sqlite":
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("vector_store.sqlite.path is required")
		}
		return sqlite.Open(cfg.SQLite.Path)
	case "qdrant":
		q := cfg.Qdrant
		if q == nil {
			return nil, fmt.Errorf("vector_store.qdrant config is required")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Distance:   q.Distance,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.Type)
	}
}

// Close releases the store if it holds resources.
func Close(store domain.VectorStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
