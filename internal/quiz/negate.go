package quiz

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"ragquiz/internal/curator"
)

const notTruePrefix = "It is not true that "

// Negator produces the false variant of a statement.
type Negator struct {
	anchor *regexp.Regexp
}

// NewNegator builds a Negator that inserts "not" after the first of anchors.
func NewNegator(anchors []string) *Negator {
	return &Negator{anchor: curator.WordListRegexp(anchors)}
}

// Negate inserts " not" right after the first anchor verb, or prefixes the
// sentence with "It is not true that " when no anchor is present.
func (n *Negator) Negate(s string) string {
	if loc := n.anchor.FindStringIndex(s); loc != nil {
		return s[:loc[1]] + " not" + s[loc[1]:]
	}
	if s == "" {
		return strings.TrimSpace(notTruePrefix)
	}
	r, size := utf8.DecodeRuneInString(s)
	return notTruePrefix + string(unicode.ToLower(r)) + s[size:]
}
