// Package curator turns noisy retrieved chunk text into clean sentences that
// are fit to become quiz material.
package curator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ragquiz/internal/vocab"
)

const (
	DefaultMinLen = 55
	DefaultMaxLen = 200
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	hyphenBreakRe = regexp.MustCompile(`(\w)-\s+(\w)`)
	digitNoiseRe  = regexp.MustCompile(`\b\d+([A-Za-z])`)
	boundaryRe    = regexp.MustCompile(`[.!?]\s+`)
	captionRe     = regexp.MustCompile(`(?i)^(table|figure|fig\.|chapter|section)\b`)
	numberedRe    = regexp.MustCompile(`^\d+[).\- ]`)

	artifactReplacer = strings.NewReplacer(
		"\u2013", "-", // en dash
		"\u2014", "-", // em dash
		"\u00ad", "", // soft hyphen
		"\u200b", "", // zero width space
		"\ufeff", "", // byte order mark
		"\ufffd", "", // replacement character
	)
)

// Curator filters sentences against a vocabulary and a length band.
type Curator struct {
	minLen   int
	maxLen   int
	verbRe   *regexp.Regexp
	keywords []string
}

// New builds a Curator. Non-positive bounds fall back to 55 and 200 characters.
func New(v vocab.Vocabulary, minLen, maxLen int) *Curator {
	v = v.WithDefaults()
	if minLen <= 0 {
		minLen = DefaultMinLen
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	keywords := make([]string, len(v.Keywords))
	for i, k := range v.Keywords {
		keywords[i] = strings.ToLower(k)
	}
	return &Curator{
		minLen:   minLen,
		maxLen:   maxLen,
		verbRe:   WordListRegexp(v.Auxiliaries),
		keywords: keywords,
	}
}

// WordListRegexp compiles a case-insensitive whole-word alternation.
func WordListRegexp(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Normalize repairs the usual extraction damage: hyphenated line breaks,
// typographic dashes, invisible characters, digits glued to the following
// word ("1We") and whitespace runs.
func Normalize(text string) string {
	t := whitespaceRe.ReplaceAllString(text, " ")
	t = hyphenBreakRe.ReplaceAllString(t, "$1$2")
	t = artifactReplacer.Replace(t)
	t = digitNoiseRe.ReplaceAllString(t, "$1")
	return strings.TrimSpace(t)
}

// SplitSentences cuts text after every '.', '!' or '?' that is followed by
// whitespace. Empty pieces are dropped.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range boundaryRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Curate normalizes raw chunk text and returns the sentences that pass
// every filter, in document order.
func (c *Curator) Curate(text string) []string {
	var out []string
	for _, s := range SplitSentences(Normalize(text)) {
		if c.Eligible(s) {
			out = append(out, s)
		}
	}
	return out
}

// Eligible reports whether a single sentence is usable quiz material.
func (c *Curator) Eligible(s string) bool {
	if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "*") || strings.HasPrefix(s, "-") {
		return false
	}
	if captionRe.MatchString(s) || numberedRe.MatchString(s) {
		return false
	}
	if n := utf8.RuneCountInString(s); n < c.minLen || n > c.maxLen {
		return false
	}
	if !c.verbRe.MatchString(s) {
		return false
	}
	return c.hasKeyword(s)
}

func (c *Curator) hasKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
