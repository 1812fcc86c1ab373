package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/vocab"
)

func TestNegator(t *testing.T) {
	n := NewNegator(vocab.Default().NegationAnchors)
	tests := []struct {
		name, in, want string
	}{
		{"after first anchor", "A firewall is a filter and TLS is a protocol.", "A firewall is not a filter and TLS is a protocol."},
		{"modal", "Attackers can replay captured tokens.", "Attackers can not replay captured tokens."},
		{"keeps case", "Firewalls ARE stateful.", "Firewalls ARE not stateful."},
		{"whole words only", "This firewall filters packets.", "It is not true that this firewall filters packets."},
		{"no anchor", "Firewalls filter packets.", "It is not true that firewalls filter packets."},
		{"non ascii first letter", "Ümlaut filters exist.", "It is not true that ümlaut filters exist."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Negate(tt.in))
		})
	}
}

func TestAnswerJSON(t *testing.T) {
	items := []Item{
		{Type: TypeTF, Question: "q", Answer: BoolAnswer(false), Sources: []string{"s"}},
		{Type: TypeOpen, Question: "q", Answer: TextAnswer("because"), Sources: []string{"s"}},
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"tf","question":"q","answer":false,"sources":["s"]},
		{"type":"open","question":"q","answer":"because","sources":["s"]}
	]`, string(data))

	var back []Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, items, back)

	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`42`), &a))
	assert.Equal(t, "false", BoolAnswer(false).String())
}

func TestDecode(t *testing.T) {
	valid := `{"id":"q1","topic":"tls","items":[
		{"type":"tf","question":"TLS is a protocol.","answer":true,"sources":["a.md"]},
		{"type":"mcq","question":"_____ is a protocol.","answer":"TLS","options":["TLS","VPN","IDS","WAF"],"sources":["a.md"]},
		{"type":"open","question":"Briefly explain: x","answer":"x","sources":[]}
	]}`
	q, err := Decode([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)
	require.Len(t, q.Items, 3)
	assert.Equal(t, TextAnswer("TLS"), q.Items[1].Answer)

	invalid := map[string]string{
		"not json":          `{`,
		"missing items":     `{"topic":"x"}`,
		"bad type":          `{"topic":"x","items":[{"type":"essay","question":"q","answer":"a","sources":[]}]}`,
		"tf with text":      `{"topic":"x","items":[{"type":"tf","question":"q","answer":"yes","sources":[]}]}`,
		"mcq no options":    `{"topic":"x","items":[{"type":"mcq","question":"q","answer":"a","sources":[]}]}`,
		"mcq answer absent": `{"topic":"x","items":[{"type":"mcq","question":"q","answer":"a","options":["b","c"],"sources":[]}]}`,
		"empty question":    `{"topic":"x","items":[{"type":"open","question":"","answer":"a","sources":[]}]}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuiz)
		})
	}
}
