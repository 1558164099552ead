package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one persisted two-image screening: the full aggregated analysis
// result as JSON plus bookkeeping columns. ResultJSON is stored verbatim;
// the result is immutable once written.
type Session struct {
	SessionID        string          `json:"session_id"`
	SubjectLabel     string          `json:"subject_label,omitempty"`
	Result           json.RawMessage `json:"result"`
	CreatedUnixNanos int64           `json:"created_unix_nanos"`
}

// SessionStore provides persistence for completed screening sessions.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Insert persists a session. If SessionID is empty, a UUID is generated.
func (s *SessionStore) Insert(session *Session) error {
	if session.SessionID == "" {
		session.SessionID = uuid.New().String()
	}
	if session.CreatedUnixNanos == 0 {
		session.CreatedUnixNanos = time.Now().UnixNano()
	}

	var label interface{}
	if session.SubjectLabel != "" {
		label = session.SubjectLabel
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO sessions (session_id, subject_label, result_json, created_at)
			VALUES (?, ?, ?, ?)`,
			session.SessionID, label, string(session.Result), session.CreatedUnixNanos,
		)
		return err
	})
}

// Get returns one session by ID, or sql.ErrNoRows if absent.
func (s *SessionStore) Get(sessionID string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT session_id, subject_label, result_json, created_at
		FROM sessions WHERE session_id = ?`, sessionID)

	return scanSession(row)
}

// ListRecent returns up to limit sessions, newest first.
func (s *SessionStore) ListRecent(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT session_id, subject_label, result_json, created_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	var session Session
	var label sql.NullString
	var resultJSON string
	if err := row.Scan(&session.SessionID, &label, &resultJSON, &session.CreatedUnixNanos); err != nil {
		return nil, err
	}
	if label.Valid {
		session.SubjectLabel = label.String
	}
	session.Result = json.RawMessage(resultJSON)
	return &session, nil
}
