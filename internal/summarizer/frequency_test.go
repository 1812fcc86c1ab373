package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/config"
)

func TestFrequencySummarizer_PicksFrequentSentencesInOrder(t *testing.T) {
	text := "Firewalls filter traffic. Cats sleep a lot. Firewalls log traffic. Firewall traffic rules matter."
	got, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)
	assert.NotContains(t, got, "Cats")
	assert.Contains(t, got, "Firewalls filter traffic.")
}

func TestFrequencySummarizer_NoPunctuation(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("  just words  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "just words", got)
}

func TestNew(t *testing.T) {
	_, err := New(config.SummarizerConfig{Type: "frequency"})
	require.NoError(t, err)
	_, err = New(config.SummarizerConfig{Type: "llm"})
	require.Error(t, err)
}
