// Package ingest builds the retrieval index from note files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ragquiz/internal/domain"
	"ragquiz/internal/embedding"
	"ragquiz/internal/loader"
	"ragquiz/internal/logx"
)

// ErrNoDocuments is returned when the given paths hold no readable notes.
var ErrNoDocuments = errors.New("no supported documents found")

// Result summarizes one ingest run.
type Result struct {
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Sources   []string `json:"sources"`
	Summary   string   `json:"summary"`
}

// Ingester loads, chunks, embeds and stores documents. Runs are serialized.
type Ingester struct {
	mu                  sync.Mutex
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               domain.VectorStore
	summarizer          domain.Summarizer
	summaryMaxSentences int
	modelPath           string
}

// New wires an Ingester. modelPath may be empty to skip persisting the
// embedder model.
func New(ch domain.Chunker, e domain.Embedder, s domain.VectorStore, sum domain.Summarizer, summaryMaxSentences int, modelPath string) *Ingester {
	return &Ingester{
		chunker:             ch,
		embedder:            e,
		store:               s,
		summarizer:          sum,
		summaryMaxSentences: summaryMaxSentences,
		modelPath:           modelPath,
	}
}

// Ingest replaces the index with the contents of paths. Paths may be
// files, directories or glob patterns.
func (in *Ingester) Ingest(ctx context.Context, paths []string) (Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	files, err := loader.Discover(paths)
	if err != nil {
		return Result{}, err
	}
	var documents []domain.Document
	for _, f := range files {
		doc, err := loader.Load(f)
		if err != nil {
			return Result{}, err
		}
		if strings.TrimSpace(doc.Content) == "" {
			logx.Debugf("ingest: skipping empty %s", f)
			continue
		}
		documents = append(documents, doc)
	}
	if len(documents) == 0 {
		return Result{}, ErrNoDocuments
	}

	var allChunks []domain.Chunk
	var allTexts []string
	var corpus strings.Builder
	res := Result{Documents: len(documents)}
	for _, d := range documents {
		chunks, err := in.chunker.Chunk(d)
		if err != nil {
			return Result{}, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
		corpus.WriteString("\n")
		corpus.WriteString(d.Content)
		res.Sources = append(res.Sources, d.Path)
	}
	if len(allChunks) == 0 {
		return Result{}, ErrNoDocuments
	}

	if err := in.embedder.Prepare(allTexts); err != nil {
		return Result{}, fmt.Errorf("prepare embedder: %w", err)
	}
	if p, ok := in.embedder.(embedding.Persister); ok && in.modelPath != "" {
		if err := p.Save(in.modelPath); err != nil {
			return Result{}, fmt.Errorf("save embedder model: %w", err)
		}
	}
	vectors, err := in.embedder.Embed(ctx, allTexts)
	if err != nil {
		return Result{}, fmt.Errorf("embed chunks: %w", err)
	}
	// Remote embedders only learn their dimension from the first response.
	dim := in.embedder.Dimension()
	if dim <= 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if err := in.store.Init(dim); err != nil {
		return Result{}, fmt.Errorf("init store: %w", err)
	}
	if err := in.store.Clear(ctx); err != nil {
		return Result{}, fmt.Errorf("clear store: %w", err)
	}
	if err := in.store.Upsert(ctx, allChunks, vectors); err != nil {
		return Result{}, fmt.Errorf("upsert chunks: %w", err)
	}
	res.Chunks = len(allChunks)

	summary, err := in.summarizer.Summarize(corpus.String(), in.summaryMaxSentences)
	if err != nil {
		return Result{}, fmt.Errorf("summarize: %w", err)
	}
	res.Summary = summary
	logx.Infof("ingested %d documents as %d chunks", res.Documents, res.Chunks)
	return res, nil
}
