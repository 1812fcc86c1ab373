package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/quiz"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuiz() quiz.Quiz {
	return quiz.Quiz{
		Topic: "firewalls",
		Items: []quiz.Item{
			{Type: quiz.TypeTF, Question: "True or False: A firewall filters traffic.", Answer: quiz.BoolAnswer(true), Sources: []string{"fw.md"}},
			{Type: quiz.TypeMCQ, Question: "Fill in the blank: A _____ filters traffic.", Answer: quiz.TextAnswer("firewall"),
				Options: []string{"firewall", "proxy", "VPN", "router"}, Sources: []string{"fw.md"}},
		},
	}
}

func TestStore_SaveAndLoadQuiz(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	id, err := s.SaveQuiz(ctx, sampleQuiz())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := s.LoadQuiz(ctx, id)
	require.NoError(t, err)
	want := sampleQuiz()
	want.ID = id
	assert.Equal(t, want, got)
}

func TestStore_SaveQuizKeepsGivenID(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	q := sampleQuiz()
	q.ID = "fixed-id"
	id, err := s.SaveQuiz(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestStore_LoadQuizNotFound(t *testing.T) {
	_, err := openTemp(t).LoadQuiz(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestStore_Events(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	require.NoError(t, s.LogEvent(ctx, KindIngest, map[string]any{"documents": 2}))
	require.NoError(t, s.LogEvent(ctx, KindTutorQuery, map[string]any{"query": "what is tls"}))
	require.NoError(t, s.LogEvent(ctx, KindQuizGrade, map[string]any{"score": 3, "total": 5}))

	all, err := s.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, KindQuizGrade, all[0].Kind)
	assert.Equal(t, KindIngest, all[2].Kind)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	var details map[string]string
	require.NoError(t, json.Unmarshal(all[1].Details, &details))
	assert.Equal(t, "what is tls", details["query"])

	recent, err := s.Events(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestStore_LogEventRejectsUnencodable(t *testing.T) {
	err := openTemp(t).LogEvent(context.Background(), KindExplain, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
