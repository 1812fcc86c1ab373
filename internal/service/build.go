package service

import (
	"errors"
	"fmt"

	"ragquiz/internal/answer"
	"ragquiz/internal/chunker"
	"ragquiz/internal/config"
	"ragquiz/internal/curator"
	"ragquiz/internal/embedding"
	"ragquiz/internal/grader"
	"ragquiz/internal/history"
	"ragquiz/internal/ingest"
	"ragquiz/internal/quiz"
	"ragquiz/internal/retrieval"
	"ragquiz/internal/summarizer"
	"ragquiz/internal/vectorstore"
)

// App is a Tutor assembled from configuration together with the resources
// it owns.
type App struct {
	*Tutor
	Config *config.AppConfig
	closer func() error
}

// Open assembles every component named in cfg.
func Open(cfg *config.AppConfig) (*App, error) {
	emb, err := embedding.New(cfg)
	if err != nil {
		return nil, err
	}
	ch, err := chunker.New(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	sum, err := summarizer.New(cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			vectorstore.Close(store)
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	// A restored embedder fixes the dimension the store must hold.
	if d := emb.Dimension(); d > 0 {
		if err := store.Init(d); err != nil {
			vectorstore.Close(store)
			if hist != nil {
				hist.Close()
			}
			return nil, fmt.Errorf("init vector store: %w", err)
		}
	}

	qc := cfg.Quiz
	retriever := retrieval.New(emb, store)
	cur := curator.New(cfg.Vocabulary, qc.MinSentenceLen, qc.MaxSentenceLen)
	tutor := New(Deps{
		Store: store,
		Synthesizer: quiz.NewSynthesizer(retriever, cur, cfg.Vocabulary, quiz.Options{
			DefaultTopic:   qc.DefaultTopic,
			FallbackQuery:  qc.FallbackQuery,
			MinRetrieval:   qc.MinRetrieval,
			ExplorationCap: qc.ExplorationCap,
			TrueRatio:      qc.TrueRatio,
		}),
		Composer: answer.NewComposer(retriever, emb, answer.Options{
			DefaultK:     cfg.Answer.DefaultK,
			MinRetrieval: cfg.Answer.MinRetrieval,
			TopSentences: cfg.Answer.TopSentences,
		}),
		Grader:       grader.New(emb, cfg.Grader.OpenThreshold),
		Ingester:     ingest.New(ch, emb, store, sum, cfg.Summarizer.MaxSentences, cfg.ModelPath()),
		History:      hist,
		DefaultItems: qc.DefaultItems,
	})
	return &App{
		Tutor:  tutor,
		Config: cfg,
		closer: func() error {
			var errs []error
			errs = append(errs, vectorstore.Close(store))
			if hist != nil {
				errs = append(errs, hist.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// Close releases the vector store and history database.
func (a *App) Close() error {
	return a.closer()
}
