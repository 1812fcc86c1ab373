// Package explain looks terms up in the indexed notes without any model.
package explain

import (
	"fmt"
	"regexp"
	"strings"

	"ragquiz/internal/curator"
	"ragquiz/internal/domain"
)

// EmptyMessage is returned when no notes are indexed.
const EmptyMessage = "No local notes loaded yet."

// maxHits caps how many sentences an explanation quotes.
const maxHits = 3

var ciaWords = []string{"integrity", "availability", "confidentiality"}

var spaceRe = regexp.MustCompile(`\s+`)

// Explanation is the result of a lookup.
type Explanation struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
	Source      string `json:"source"`
}

// Explain quotes up to three note sentences about term. Sentences that
// contain the whole phrase win over sentences that contain any of its
// words. Terms naming a leg of the CIA triad fall back to any sentence
// about the triad.
func Explain(chunks []domain.Chunk, term string) Explanation {
	return Explanation{Term: term, Explanation: lookup(chunks, term), Source: "local-notes"}
}

func lookup(chunks []domain.Chunk, term string) string {
	sentences := corpusSentences(chunks)
	if len(sentences) == 0 {
		return EmptyMessage
	}
	norm := strings.ToLower(strings.TrimSpace(term))
	if norm == "" {
		return fmt.Sprintf("No mention related to '%s' found in local notes.", term)
	}

	if hits := matching(sentences, func(s string) bool { return strings.Contains(s, norm) }); len(hits) > 0 {
		return strings.Join(hits, " ")
	}

	words := spaceRe.Split(norm, -1)
	if hits := matching(sentences, func(s string) bool { return containsAny(s, words) }); len(hits) > 0 {
		return strings.Join(hits, " ")
	}

	if containsAny(norm, ciaWords) {
		if hits := matching(sentences, func(s string) bool { return containsAny(s, ciaWords) }); len(hits) > 0 {
			return strings.Join(hits, " ")
		}
	}
	return fmt.Sprintf("No mention related to '%s' found in local notes.", term)
}

// corpusSentences splits chunk text into sentences, dropping repeats that
// overlapping chunks produce.
func corpusSentences(chunks []domain.Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ch := range chunks {
		for _, s := range curator.SplitSentences(ch.Text) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func matching(sentences []string, match func(lower string) bool) []string {
	var hits []string
	for _, s := range sentences {
		if match(strings.ToLower(s)) {
			hits = append(hits, s)
			if len(hits) == maxHits {
				break
			}
		}
	}
	return hits
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
