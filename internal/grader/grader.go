// Package grader scores submitted responses against the gold answers of
// generated quiz items.
package grader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ragquiz/internal/domain"
	"ragquiz/internal/embedding"
	"ragquiz/internal/logx"
	"ragquiz/internal/quiz"
	"ragquiz/internal/terms"
)

// DefaultOpenThreshold is the minimum similarity for an open answer.
const DefaultOpenThreshold = 0.45

// ErrResponseCount is returned when responses and items differ in length.
var ErrResponseCount = errors.New("number of responses does not match number of items")

// Detail is the outcome for one item, in submission order.
type Detail struct {
	Question   string      `json:"question"`
	YourAnswer any         `json:"your_answer"`
	Expected   quiz.Answer `json:"expected"`
	Correct    bool        `json:"correct"`
	Sources    []string    `json:"sources"`
	Rationale  string      `json:"rationale"`
}

// Result aggregates the details. Score counts correct details.
type Result struct {
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Details []Detail `json:"details"`
}

// Grader compares responses per item type.
type Grader struct {
	embedder  domain.Embedder
	threshold float64
}

// New creates a Grader. A non-positive threshold uses DefaultOpenThreshold.
func New(e domain.Embedder, threshold float64) *Grader {
	if threshold <= 0 {
		threshold = DefaultOpenThreshold
	}
	return &Grader{embedder: e, threshold: threshold}
}

// Grade pairs items and responses by position. A nil or blank response is
// simply incorrect. Embedding failures count as zero similarity.
func (g *Grader) Grade(ctx context.Context, items []quiz.Item, responses []any) (Result, error) {
	if len(items) != len(responses) {
		return Result{}, fmt.Errorf("%w: %d items, %d responses", ErrResponseCount, len(items), len(responses))
	}
	res := Result{Total: len(items), Details: make([]Detail, 0, len(items))}
	for i, it := range items {
		d := Detail{
			Question:   it.Question,
			YourAnswer: responses[i],
			Expected:   it.Answer,
			Sources:    it.Sources,
		}
		switch it.Type {
		case quiz.TypeTF:
			d.Correct = gradeTF(it.Answer, responses[i])
			d.Rationale = "True/False comparison"
		case quiz.TypeMCQ:
			d.Correct = gradeMCQ(it.Answer.Text, responses[i])
			d.Rationale = "Exact option match"
		case quiz.TypeOpen:
			sim := g.similarity(ctx, it.Answer.Text, responses[i])
			d.Correct = sim >= g.threshold
			d.Rationale = fmt.Sprintf("Semantic similarity %.2f (threshold %.2f)", sim, g.threshold)
		default:
			d.Rationale = fmt.Sprintf("Unsupported item type %q", it.Type)
		}
		if d.Correct {
			res.Score++
		}
		res.Details = append(res.Details, d)
	}
	return res, nil
}

func gradeTF(gold quiz.Answer, response any) bool {
	if !gold.IsBool {
		return false
	}
	got, ok := parseBool(response)
	return ok && got == gold.Truth
}

func parseBool(v any) (bool, bool) {
	switch r := v.(type) {
	case bool:
		return r, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(r))
		return b, err == nil
	default:
		return false, false
	}
}

// gradeMCQ upper-cases both sides for acronym answers and otherwise
// compares trimmed text exactly.
func gradeMCQ(gold string, response any) bool {
	got, ok := text(response)
	if !ok {
		return false
	}
	gold = strings.TrimSpace(gold)
	got = strings.TrimSpace(got)
	if got == "" {
		return false
	}
	if terms.IsAcronym(gold) {
		return strings.ToUpper(got) == strings.ToUpper(gold)
	}
	return got == gold
}

// similarity embeds gold and response and returns their cosine. An answer
// identical to the gold sentence scores 1 without an embedding call.
func (g *Grader) similarity(ctx context.Context, gold string, response any) float64 {
	got, ok := text(response)
	got = strings.TrimSpace(got)
	if !ok || got == "" {
		return 0
	}
	if got == strings.TrimSpace(gold) {
		return 1
	}
	if g.embedder == nil {
		return 0
	}
	vecs, err := g.embedder.Embed(ctx, []string{gold, got})
	if err != nil || len(vecs) != 2 {
		logx.Warnf("grader: embedding failed, scoring similarity as 0: %v", err)
		return 0
	}
	return embedding.Cosine(vecs[0], vecs[1])
}

func text(v any) (string, bool) {
	switch r := v.(type) {
	case nil:
		return "", false
	case string:
		return r, true
	case fmt.Stringer:
		return r.String(), true
	default:
		return fmt.Sprint(r), true
	}
}
