package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VerdictRecord is one logged live alignment verdict. Confidence is nil when
// the tick carried no usable detection, mirroring the in-memory verdict.
type VerdictRecord struct {
	VerdictID     string   `json:"verdict_id"`
	SessionID     string   `json:"session_id,omitempty"`
	View          string   `json:"view"`
	Aligned       bool     `json:"aligned"`
	Message       string   `json:"message"`
	Confidence    *float64 `json:"confidence"`
	TickUnixNanos int64    `json:"tick_unix_nanos"`
}

// VerdictStore logs per-tick verdicts for later inspection. Verdicts are
// ephemeral by contract; this log exists for charts and tuning, not for the
// evaluator itself.
type VerdictStore struct {
	db *sql.DB
}

// NewVerdictStore creates a new VerdictStore.
func NewVerdictStore(db *sql.DB) *VerdictStore {
	return &VerdictStore{db: db}
}

// Insert logs one verdict. If VerdictID is empty, a UUID is generated.
func (s *VerdictStore) Insert(rec *VerdictRecord) error {
	if rec.VerdictID == "" {
		rec.VerdictID = uuid.New().String()
	}
	if rec.TickUnixNanos == 0 {
		rec.TickUnixNanos = time.Now().UnixNano()
	}

	var sessionID interface{}
	if rec.SessionID != "" {
		sessionID = rec.SessionID
	}
	var confidence interface{}
	if rec.Confidence != nil {
		confidence = *rec.Confidence
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO live_verdicts (verdict_id, session_id, view, aligned, message, confidence, tick_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.VerdictID, sessionID, rec.View, rec.Aligned, rec.Message, confidence, rec.TickUnixNanos,
		)
		return err
	})
}

// ListBySession returns all verdicts logged for a session in tick order.
func (s *VerdictStore) ListBySession(sessionID string) ([]*VerdictRecord, error) {
	rows, err := s.db.Query(`
		SELECT verdict_id, session_id, view, aligned, message, confidence, tick_at
		FROM live_verdicts
		WHERE session_id = ?
		ORDER BY tick_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	var records []*VerdictRecord
	for rows.Next() {
		var rec VerdictRecord
		var sessionID sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(&rec.VerdictID, &sessionID, &rec.View, &rec.Aligned, &rec.Message, &confidence, &rec.TickUnixNanos); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			rec.SessionID = sessionID.String
		}
		if confidence.Valid {
			c := confidence.Float64
			rec.Confidence = &c
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
