// Package terms detects vocabulary terms in sentences and builds the
// multiple-choice options around them.
package terms

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"

	"ragquiz/internal/vocab"
)

// Blank replaces the masked term in a multiple-choice stem.
const Blank = "_____"

// OptionCount is the number of options on every multiple-choice item.
const OptionCount = 4

// maxDistractorWords drops long phrases from the distractor pool.
const maxDistractorWords = 3

// Engine holds the vocabulary used for extraction and distractors.
type Engine struct {
	terms    []string
	fallback []string
}

// New builds an Engine over v, filling empty lists with the defaults.
func New(v vocab.Vocabulary) *Engine {
	v = v.WithDefaults()
	return &Engine{terms: v.Terms, fallback: v.Fallback}
}

// Extract returns every vocabulary term contained in sentence, matched
// case-insensitively as a substring. Order follows the vocabulary.
func (e *Engine) Extract(sentence string) []string {
	lower := strings.ToLower(sentence)
	var out []string
	for _, t := range e.terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

// Pool merges the terms observed in sentences (first occurrence order) with
// the full vocabulary, removing case-insensitive duplicates.
func (e *Engine) Pool(sentences []string) []string {
	seen := make(map[string]struct{})
	var pool []string
	add := func(t string) {
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		pool = append(pool, t)
	}
	for _, s := range sentences {
		for _, t := range e.Extract(s) {
			add(t)
		}
	}
	for _, t := range e.terms {
		add(t)
	}
	return pool
}

// Distractors picks up to three wrong answers for correct. Candidates come
// from pool first, then from the fallback list. Fewer than three are
// returned only when both lists run dry.
func (e *Engine) Distractors(correct string, pool []string) []string {
	seen := map[string]struct{}{strings.ToLower(correct): {}}
	out := make([]string, 0, OptionCount-1)
	for _, cand := range pool {
		if len(out) == OptionCount-1 {
			return out
		}
		k := strings.ToLower(cand)
		if _, dup := seen[k]; dup {
			continue
		}
		if len(strings.Fields(cand)) > maxDistractorWords {
			continue
		}
		out = append(out, cand)
		seen[k] = struct{}{}
	}
	for _, f := range e.fallback {
		if len(out) == OptionCount-1 {
			break
		}
		k := strings.ToLower(f)
		if _, dup := seen[k]; dup {
			continue
		}
		out = append(out, f)
		seen[k] = struct{}{}
	}
	return out
}

// Options returns the rendered, shuffled options for correct. The result
// holds distinct entries (case-insensitive) and contains Render(correct)
// exactly once. It is shorter than OptionCount only when the vocabulary
// cannot supply enough distinct terms; callers must check the length.
func (e *Engine) Options(correct string, pool []string, rng *rand.Rand) []string {
	opts := dedupFold(append([]string{correct}, e.Distractors(correct, pool)...))
	if len(opts) < OptionCount {
		opts = dedupFold(append(opts, e.fallback...))
		if len(opts) > OptionCount {
			opts = opts[:OptionCount]
		}
	}
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	for i, o := range opts {
		opts[i] = Render(o)
	}
	return opts
}

// IsAcronym reports whether s is purely alphabetic and at most four letters.
func IsAcronym(s string) bool {
	if s == "" || len([]rune(s)) > 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Render upper-cases short alphabetic terms ("tls" -> "TLS") and leaves
// everything else untouched.
func Render(term string) string {
	if IsAcronym(term) {
		return strings.ToUpper(term)
	}
	return term
}

// Mask replaces the first case-insensitive occurrence of term in sentence
// with Blank. A whole-word occurrence is preferred over one embedded in a
// longer word. ok is false when term does not occur.
func Mask(sentence, term string) (stem string, ok bool) {
	if term == "" {
		return sentence, false
	}
	q := regexp.QuoteMeta(term)
	for _, pattern := range []string{`(?i)\b` + q + `\b`, `(?i)` + q} {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(sentence); loc != nil {
			return sentence[:loc[0]] + Blank + sentence[loc[1]:], true
		}
	}
	return sentence, false
}

func dedupFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
