// Package api exposes the tutor over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"ragquiz/internal/answer"
	"ragquiz/internal/explain"
	"ragquiz/internal/export"
	"ragquiz/internal/grader"
	"ragquiz/internal/history"
	"ragquiz/internal/logx"
	"ragquiz/internal/quiz"
	"ragquiz/internal/service"
)

const maxBodyBytes = 1 << 20

// Tutor is the subset of service.Tutor the API serves.
type Tutor interface {
	Ask(ctx context.Context, query string, k int) answer.Answer
	GenerateQuiz(ctx context.Context, topic string, n int, seed *uint64) (quiz.Quiz, error)
	LoadQuiz(ctx context.Context, id string) (quiz.Quiz, error)
	Grade(ctx context.Context, items []quiz.Item, responses []any) (grader.Result, error)
	GradeQuiz(ctx context.Context, id string, responses []any) (quiz.Quiz, grader.Result, error)
	Explain(ctx context.Context, term string) (explain.Explanation, error)
}

// Server routes HTTP requests to a Tutor.
type Server struct {
	tutor  Tutor
	router chi.Router
}

// NewServer builds the router. An empty origins list allows any origin.
func NewServer(t Tutor, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s := &Server{tutor: t}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Post("/api/answer", s.handleAnswer)
	r.Post("/api/quiz", s.handleGenerateQuiz)
	r.Get("/api/quiz/{id}", s.handleGetQuiz)
	r.Get("/api/quiz/{id}/pdf", s.handleQuizPDF)
	r.Post("/api/grade", s.handleGrade)
	r.Post("/api/explain", s.handleExplain)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logx.Infof("api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

type answerRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query required", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.tutor.Ask(r.Context(), req.Query, req.K))
}

type quizRequest struct {
	Topic string  `json:"topic"`
	N     int     `json:"n"`
	Seed  *uint64 `json:"seed,omitempty"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decode(w, r, &req) {
		return
	}
	if req.N < 0 || req.N > 50 {
		http.Error(w, "n must be between 0 and 50", http.StatusBadRequest)
		return
	}
	q, err := s.tutor.GenerateQuiz(r.Context(), req.Topic, req.N, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, q)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := s.tutor.LoadQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, q)
}

func (s *Server) handleQuizPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := s.tutor.LoadQuiz(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := export.QuizPDF(q)
	if err != nil {
		http.Error(w, "failed to render quiz", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=quiz-"+id+".pdf")
	w.Write(pdf)
}

type gradeRequest struct {
	QuizID    string      `json:"quiz_id"`
	Items     []quiz.Item `json:"items"`
	Responses []any       `json:"responses"`
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Responses == nil {
		req.Responses = []any{}
	}
	var res grader.Result
	var err error
	if req.QuizID != "" {
		_, res, err = s.tutor.GradeQuiz(r.Context(), req.QuizID, req.Responses)
	} else {
		if err := quiz.Check(req.Items); err != nil {
			writeError(w, err)
			return
		}
		res, err = s.tutor.Grade(r.Context(), req.Items, req.Responses)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

type explainRequest struct {
	Term string `json:"term"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Term) == "" {
		http.Error(w, "term required", http.StatusBadRequest)
		return
	}
	e, err := s.tutor.Explain(r.Context(), req.Term)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, e)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, grader.ErrResponseCount), errors.Is(err, quiz.ErrInvalidQuiz):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, history.ErrQuizNotFound):
		http.Error(w, "quiz not found", http.StatusNotFound)
	case errors.Is(err, service.ErrHistoryDisabled):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		logx.Warnf("api: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
