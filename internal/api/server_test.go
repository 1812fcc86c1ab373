package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragquiz/internal/answer"
	"ragquiz/internal/explain"
	"ragquiz/internal/grader"
	"ragquiz/internal/history"
	"ragquiz/internal/quiz"
)

var stored = quiz.Quiz{
	ID:    "q1",
	Topic: "firewalls",
	Items: []quiz.Item{
		{Type: quiz.TypeTF, Question: "True or False: A firewall filters traffic.", Answer: quiz.BoolAnswer(true), Sources: []string{"fw.md"}},
	},
}

type fakeTutor struct {
	lastSeed  *uint64
	lastN     int
	lastItems []quiz.Item
}

func (f *fakeTutor) Ask(_ context.Context, query string, k int) answer.Answer {
	return answer.Answer{Text: fmt.Sprintf("%s/%d", query, k), Sources: []answer.SourceRef{{Source: "fw.md"}}}
}

func (f *fakeTutor) GenerateQuiz(_ context.Context, topic string, n int, seed *uint64) (quiz.Quiz, error) {
	f.lastSeed, f.lastN = seed, n
	q := stored
	q.Topic = topic
	return q, nil
}

func (f *fakeTutor) LoadQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	if id != stored.ID {
		return quiz.Quiz{}, fmt.Errorf("%s: %w", id, history.ErrQuizNotFound)
	}
	return stored, nil
}

func (f *fakeTutor) Grade(_ context.Context, items []quiz.Item, responses []any) (grader.Result, error) {
	f.lastItems = items
	if len(items) != len(responses) {
		return grader.Result{}, grader.ErrResponseCount
	}
	return grader.Result{Score: len(items), Total: len(items), Details: []grader.Detail{}}, nil
}

func (f *fakeTutor) GradeQuiz(ctx context.Context, id string, responses []any) (quiz.Quiz, grader.Result, error) {
	q, err := f.LoadQuiz(ctx, id)
	if err != nil {
		return quiz.Quiz{}, grader.Result{}, err
	}
	res, err := f.Grade(ctx, q.Items, responses)
	return q, res, err
}

func (f *fakeTutor) Explain(_ context.Context, term string) (explain.Explanation, error) {
	return explain.Explanation{Term: term, Explanation: "A firewall filters traffic.", Source: "local-notes"}, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	rec := do(t, NewServer(&fakeTutor{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_Answer(t *testing.T) {
	s := NewServer(&fakeTutor{}, nil)
	rec := do(t, s, http.MethodPost, "/api/answer", `{"query":"what is a firewall","k":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "what is a firewall/3", got["answer"])

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/answer", `{"query":" "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/answer", `not json`).Code)
}

func TestServer_GenerateQuiz(t *testing.T) {
	f := &fakeTutor{}
	s := NewServer(f, nil)
	rec := do(t, s, http.MethodPost, "/api/quiz", `{"topic":"tls","n":3,"seed":42}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got quiz.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tls", got.Topic)
	require.NotNil(t, f.lastSeed)
	assert.Equal(t, uint64(42), *f.lastSeed)
	assert.Equal(t, 3, f.lastN)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/quiz", `{"n":500}`).Code)
}

func TestServer_GetQuiz(t *testing.T) {
	s := NewServer(&fakeTutor{}, nil)
	rec := do(t, s, http.MethodGet, "/api/quiz/q1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got quiz.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stored, got)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/quiz/missing", "").Code)
}

func TestServer_QuizPDF(t *testing.T) {
	rec := do(t, NewServer(&fakeTutor{}, nil), http.MethodGet, "/api/quiz/q1/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestServer_Grade(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"by id", `{"quiz_id":"q1","responses":[true]}`, http.StatusOK},
		{"unknown id", `{"quiz_id":"nope","responses":[true]}`, http.StatusNotFound},
		{"count mismatch", `{"quiz_id":"q1","responses":[]}`, http.StatusBadRequest},
		{"inline items", `{"items":[{"type":"mcq","question":"Q","answer":"TLS","options":["TLS","VPN","IDS","WAF"],"sources":[]}],"responses":["tls"]}`, http.StatusOK},
		{"invalid items", `{"items":[{"type":"mcq","question":"Q","answer":"SSH","options":["TLS","VPN"],"sources":[]}],"responses":["SSH"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewServer(&fakeTutor{}, nil), http.MethodPost, "/api/grade", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_Explain(t *testing.T) {
	s := NewServer(&fakeTutor{}, nil)
	rec := do(t, s, http.MethodPost, "/api/explain", `{"term":"firewall"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got explain.Explanation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "firewall", got.Term)
	assert.Equal(t, "local-notes", got.Source)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/explain", `{"term":""}`).Code)
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(&fakeTutor{}, []string{"http://localhost:5173"})
	req := httptest.NewRequest(http.MethodOptions, "/api/answer", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
