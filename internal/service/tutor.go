// Package service wires the quiz engine components into the operations the
// CLI, HTTP API and terminal UI expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"ragquiz/internal/answer"
	"ragquiz/internal/domain"
	"ragquiz/internal/explain"
	"ragquiz/internal/grader"
	"ragquiz/internal/history"
	"ragquiz/internal/ingest"
	"ragquiz/internal/logx"
	"ragquiz/internal/quiz"
)

// ErrHistoryDisabled is returned by operations that need the quiz store
// when history is turned off.
var ErrHistoryDisabled = errors.New("history is disabled")

// Deps are the collaborators of a Tutor. History may be nil.
type Deps struct {
	Store        domain.VectorStore
	Synthesizer  *quiz.Synthesizer
	Composer     *answer.Composer
	Grader       *grader.Grader
	Ingester     *ingest.Ingester
	History      *history.Store
	DefaultItems int
}

// Tutor answers questions, generates and grades quizzes, and records an
// audit trail of both.
type Tutor struct {
	store        domain.VectorStore
	synth        *quiz.Synthesizer
	composer     *answer.Composer
	grader       *grader.Grader
	ingester     *ingest.Ingester
	history      *history.Store
	defaultItems int
}

// New creates a Tutor.
func New(d Deps) *Tutor {
	if d.DefaultItems <= 0 {
		d.DefaultItems = 5
	}
	return &Tutor{
		store:        d.Store,
		synth:        d.Synthesizer,
		composer:     d.Composer,
		grader:       d.Grader,
		ingester:     d.Ingester,
		history:      d.History,
		defaultItems: d.DefaultItems,
	}
}

// DefaultItems is the quiz length used when callers ask for none.
func (t *Tutor) DefaultItems() int { return t.defaultItems }

// Ask composes a tutoring answer to query from the top k chunks.
func (t *Tutor) Ask(ctx context.Context, query string, k int) answer.Answer {
	a := t.composer.MakeAnswer(ctx, query, k)
	t.logEvent(ctx, history.KindTutorQuery, map[string]any{
		"query":   query,
		"k":       k,
		"sources": len(a.Sources),
	})
	return a
}

// GenerateQuiz synthesizes up to n items about topic. A nil seed draws a
// random one. The quiz gets a fresh id and is stored when history is on.
func (t *Tutor) GenerateQuiz(ctx context.Context, topic string, n int, seed *uint64) (quiz.Quiz, error) {
	if n <= 0 {
		n = t.defaultItems
	}
	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	q := t.synth.Generate(ctx, topic, n, rand.New(rand.NewPCG(s, s)))
	q.ID = uuid.NewString()
	if t.history != nil {
		if _, err := t.history.SaveQuiz(ctx, q); err != nil {
			return quiz.Quiz{}, fmt.Errorf("store quiz: %w", err)
		}
	}
	t.logEvent(ctx, history.KindQuizGenerate, map[string]any{
		"quiz_id":   q.ID,
		"topic":     q.Topic,
		"requested": n,
		"items":     len(q.Items),
		"seed":      s,
	})
	return q, nil
}

// LoadQuiz returns a stored quiz.
func (t *Tutor) LoadQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	if t.history == nil {
		return quiz.Quiz{}, ErrHistoryDisabled
	}
	return t.history.LoadQuiz(ctx, id)
}

// Grade scores responses against items.
func (t *Tutor) Grade(ctx context.Context, items []quiz.Item, responses []any) (grader.Result, error) {
	return t.grade(ctx, "", items, responses)
}

// GradeQuiz loads the stored quiz id and scores responses against it.
func (t *Tutor) GradeQuiz(ctx context.Context, id string, responses []any) (quiz.Quiz, grader.Result, error) {
	q, err := t.LoadQuiz(ctx, id)
	if err != nil {
		return quiz.Quiz{}, grader.Result{}, err
	}
	res, err := t.grade(ctx, id, q.Items, responses)
	return q, res, err
}

func (t *Tutor) grade(ctx context.Context, id string, items []quiz.Item, responses []any) (grader.Result, error) {
	res, err := t.grader.Grade(ctx, items, responses)
	if err != nil {
		return grader.Result{}, err
	}
	t.logEvent(ctx, history.KindQuizGrade, map[string]any{
		"quiz_id": id,
		"score":   res.Score,
		"total":   res.Total,
	})
	return res, nil
}

// Explain looks term up in the indexed notes.
func (t *Tutor) Explain(ctx context.Context, term string) (explain.Explanation, error) {
	chunks, err := t.store.Chunks(ctx)
	if err != nil {
		return explain.Explanation{}, fmt.Errorf("list chunks: %w", err)
	}
	e := explain.Explain(chunks, term)
	t.logEvent(ctx, history.KindExplain, map[string]any{"term": term})
	return e, nil
}

// Ingest rebuilds the index from paths.
func (t *Tutor) Ingest(ctx context.Context, paths []string) (ingest.Result, error) {
	res, err := t.ingester.Ingest(ctx, paths)
	if err != nil {
		return ingest.Result{}, err
	}
	t.logEvent(ctx, history.KindIngest, map[string]any{
		"documents": res.Documents,
		"chunks":    res.Chunks,
		"sources":   res.Sources,
	})
	return res, nil
}

// Events returns recent audit entries, newest first.
func (t *Tutor) Events(ctx context.Context, limit int) ([]history.Event, error) {
	if t.history == nil {
		return nil, ErrHistoryDisabled
	}
	return t.history.Events(ctx, limit)
}

func (t *Tutor) logEvent(ctx context.Context, kind string, details map[string]any) {
	if t.history == nil {
		return
	}
	if err := t.history.LogEvent(ctx, kind, details); err != nil {
		logx.Warnf("history: %v", err)
	}
}
