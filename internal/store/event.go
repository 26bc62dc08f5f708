package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// AnswerRecord is one submitted answer as remembered locally.
type AnswerRecord struct {
	Sequence         int64
	QuestionID       string
	QuestionType     string
	Choice           string
	PromptTemplateID string
	CreatedAt        time.Time
}

// AnswerLog is an append-only log of answers this client has submitted.
type AnswerLog struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Append records an answer and returns its sequence number.
func (l *AnswerLog) Append(ctx context.Context, rec AnswerRecord) (int64, error) {
	seqNum, err := l.seq.Next(ctx)
	if err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO answer_events (sequence, question_id, question_type, choice, prompt_template_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		seqNum, rec.QuestionID, rec.QuestionType, rec.Choice, rec.PromptTemplateID, rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save answer event: %w", err)
	}
	return seqNum, nil
}

// Recent returns up to limit answers, newest first.
func (l *AnswerLog) Recent(ctx context.Context, limit int) ([]AnswerRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT sequence, question_id, question_type, choice, prompt_template_id, created_at
		FROM answer_events ORDER BY sequence DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerRecord
	for rows.Next() {
		var r AnswerRecord
		if err := rows.Scan(&r.Sequence, &r.QuestionID, &r.QuestionType, &r.Choice, &r.PromptTemplateID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of logged answers.
func (l *AnswerLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answer_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count answer events: %w", err)
	}
	return n, nil
}

// sequenceCounter hands out a monotonic sequence persisted in the database.
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
