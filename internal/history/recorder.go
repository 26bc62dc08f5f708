// Package history keeps a local log of answers submitted from this client.
package history

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/store"
)

// Appender persists answer records.
type Appender interface {
	Append(ctx context.Context, rec store.AnswerRecord) (int64, error)
}

// Backend is the question source being recorded.
type Backend interface {
	engine.Fetcher
	engine.Submitter
}

// Recorder is a decorator that appends every acknowledged answer to the
// local answer log. It passes fetches through and remembers the prompt
// template of the last comparison so the record can name it.
type Recorder struct {
	inner  Backend
	log    Appender
	logger *zap.Logger

	mu       sync.Mutex
	template map[string]string // question id -> prompt template id
}

var (
	_ engine.Fetcher   = (*Recorder)(nil)
	_ engine.Submitter = (*Recorder)(nil)
)

// WithRecording wraps b so that its answers are logged to log.
func WithRecording(b Backend, log Appender, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		inner:    b,
		log:      log,
		logger:   logger.Named("history"),
		template: make(map[string]string),
	}
}

func (r *Recorder) FetchNext(ctx context.Context, s settings.Settings) (*question.Question, error) {
	q, err := r.inner.FetchNext(ctx, s)
	if err != nil {
		return q, err
	}
	if c, ok := q.Comparison(); ok && c.PromptTemplateID != "" {
		r.mu.Lock()
		// Only the displayed question can be answered, so one entry is enough.
		clear(r.template)
		r.template[q.ID] = c.PromptTemplateID
		r.mu.Unlock()
	}
	return q, nil
}

func (r *Recorder) SubmitChoice(ctx context.Context, a question.Answer) error {
	if err := r.inner.SubmitChoice(ctx, a); err != nil {
		return err
	}

	r.mu.Lock()
	tmpl := r.template[a.QuestionID]
	r.mu.Unlock()

	rec := store.AnswerRecord{
		QuestionID:       a.QuestionID,
		QuestionType:     a.QuestionType,
		Choice:           a.Choice,
		PromptTemplateID: tmpl,
	}
	// The answer is already recorded by the backend; a local log failure
	// must not turn it into a failed submission.
	if _, err := r.log.Append(ctx, rec); err != nil {
		r.logger.Warn("append answer to local history", zap.String("question_id", a.QuestionID), zap.Error(err))
	}
	return nil
}
