// Package history persists generated quizzes and an audit log of learner
// activity in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"ragquiz/internal/quiz"
)

// Event kinds recorded by the tutor.
const (
	KindTutorQuery   = "tutor_query"
	KindQuizGenerate = "quiz_generate"
	KindQuizGrade    = "quiz_grade"
	KindIngest       = "ingest"
	KindExplain      = "explain"
)

// ErrQuizNotFound is returned by LoadQuiz for unknown ids.
var ErrQuizNotFound = errors.New("quiz not found")

// Event is one audit log entry. Details is free-form JSON.
type Event struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is the SQLite-backed history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		items INTEGER NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		details TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveQuiz stores q and returns its id, assigning a new uuid when q has none.
func (s *Store) SaveQuiz(ctx context.Context, q quiz.Quiz) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	body, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encoding quiz: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO quizzes (id, topic, items, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.Topic, len(q.Items), string(body), s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("saving quiz: %w", err)
	}
	return q.ID, nil
}

// LoadQuiz returns the quiz stored under id.
func (s *Store) LoadQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM quizzes WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Quiz{}, fmt.Errorf("%s: %w", id, ErrQuizNotFound)
	}
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("loading quiz: %w", err)
	}
	var q quiz.Quiz
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decoding quiz %s: %w", id, err)
	}
	return q, nil
}

// LogEvent appends an audit entry. details is encoded as JSON.
func (s *Store) LogEvent(ctx context.Context, kind string, details any) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encoding event details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (kind, details, created_at) VALUES (?, ?, ?)`,
		kind, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// Events returns the most recent events first. A non-positive limit
// returns all of them.
func (s *Store) Events(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, details, created_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		var details string
		var created int64
		if err := rows.Scan(&e.ID, &e.Kind, &details, &created); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Details = json.RawMessage(details)
		e.CreatedAt = time.UnixMilli(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
