// Package engine drives the rapid-fire questionnaire loop: fetch a question,
// show it, collect one answer, submit it, fetch the next.
//
// The Engine is a plain state machine. Dispatch applies an event and may
// return a Cmd; the host runs the Cmd wherever it likes and dispatches the
// resulting event back. The engine itself never starts goroutines, so it
// can be driven synchronously in tests.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
)

// Fetcher supplies the next question.
type Fetcher interface {
	FetchNext(ctx context.Context, s settings.Settings) (*question.Question, error)
}

// Submitter records an answer.
type Submitter interface {
	SubmitChoice(ctx context.Context, a question.Answer) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay waits d after a successful submission before the next fetch is
// issued. The default is zero.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAccuracyTracking emits an info notice whenever the model accuracy
// reported with a comparison changes.
func WithAccuracyTracking() Option {
	return func(e *Engine) { e.trackAccuracy = true }
}

// WithContext sets the parent context of every fetch and submission.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// Engine is the questionnaire state machine. It is not safe for concurrent
// use; all events must be dispatched from one goroutine.
type Engine struct {
	id        string
	ctx       context.Context
	fetcher   Fetcher
	submitter Submitter
	logger    *zap.Logger
	delay     time.Duration

	settings settings.Settings
	state    State
	current  *question.Question
	fetchErr error
	notice   *Notice

	fetchGen    uint64
	cancelFetch context.CancelFunc

	submitGen   uint64
	pending     *question.Answer
	refetchOwed bool

	trackAccuracy bool
	accuracy      *float64
}

// New creates an idle engine. s is copied; later changes reach the engine
// only through SettingsChanged.
func New(f Fetcher, sub Submitter, s settings.Settings, opts ...Option) *Engine {
	e := &Engine{
		id:        uuid.NewString(),
		ctx:       context.Background(),
		fetcher:   f,
		submitter: sub,
		logger:    zap.NewNop(),
		settings:  s,
		state:     StateIdle,
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = e.logger.Named("engine").With(zap.String("engine_id", e.id))
	return e
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Current returns the displayed question. It is nil while loading, after a
// failed fetch and before the first fetch.
func (e *Engine) Current() *question.Question { return e.current }

// Settings returns the settings the engine fetches with.
func (e *Engine) Settings() settings.Settings { return e.settings }

// Err returns the error of the last failed fetch while in StateFailed.
func (e *Engine) Err() error { return e.fetchErr }

// Pending returns the answer being submitted while in StateSubmitting.
func (e *Engine) Pending() (question.Answer, bool) {
	if e.pending == nil {
		return question.Answer{}, false
	}
	return *e.pending, true
}

// Notice returns the latest transient notice, if any.
func (e *Engine) Notice() (Notice, bool) {
	if e.notice == nil {
		return Notice{}, false
	}
	return *e.notice, true
}

// ClearNotice drops the current notice.
func (e *Engine) ClearNotice() { e.notice = nil }

// Accuracy returns the last accuracy reported by the backend, if tracked.
func (e *Engine) Accuracy() (float64, bool) {
	if e.accuracy == nil {
		return 0, false
	}
	return *e.accuracy, true
}

// ReportAvailable reports whether the displayed question unlocks the report.
func (e *Engine) ReportAvailable() bool {
	return question.ReportAvailable(e.current)
}

// Busy reports whether input is currently disabled.
func (e *Engine) Busy() bool {
	return e.state == StateLoading || e.state == StateSubmitting
}

// Close cancels any in-flight fetch.
func (e *Engine) Close() {
	if e.cancelFetch != nil {
		e.cancelFetch()
		e.cancelFetch = nil
	}
}

// Dispatch applies ev. The returned Cmd, if non-nil, must be run and its
// result dispatched. Rejected input returns an error and leaves the engine
// unchanged.
func (e *Engine) Dispatch(ev Event) (Cmd, error) {
	switch ev := ev.(type) {
	case Mount:
		if e.state != StateIdle {
			return nil, nil
		}
		return e.startFetch("mount"), nil

	case SettingsChanged:
		return e.onSettings(ev.Settings), nil

	case Reload:
		switch {
		case e.Busy():
			return nil, ErrBusy
		case e.state == StateFailed,
			e.state == StateDisplaying && e.current.Type == question.TypeUnknown:
			return e.startFetch("reload"), nil
		}
		return nil, nil

	case Fetched:
		e.onFetched(ev)
		return nil, nil

	case Submitted:
		return e.onSubmitted(ev), nil

	case Choose:
		return e.onChoose(ev)

	case SelectOption:
		return e.onSelectOption(ev)

	case SubmitText:
		return e.onSubmitText(ev)

	case Dismiss:
		q, err := e.displayed("dismiss")
		if err != nil {
			return nil, err
		}
		if q.Type != question.TypeInsight {
			return nil, &ErrWrongVariant{Event: "dismiss", Type: string(q.Type)}
		}
		return e.startFetch("dismiss"), nil

	default:
		return nil, fmt.Errorf("unknown event %T", ev)
	}
}

func (e *Engine) onSettings(s settings.Settings) Cmd {
	if s == e.settings && e.state != StateFailed {
		return nil
	}
	e.settings = s

	switch e.state {
	case StateIdle:
		return nil
	case StateSubmitting:
		// The answer belongs to the old question; fetch once it is acknowledged.
		e.refetchOwed = true
		return nil
	default:
		return e.startFetch("settings changed")
	}
}

func (e *Engine) onFetched(ev Fetched) {
	if ev.Gen != e.fetchGen || e.state != StateLoading {
		e.logger.Debug("discarding stale fetch", zap.Uint64("gen", ev.Gen), zap.Uint64("current_gen", e.fetchGen))
		return
	}
	e.cancelFetch = nil

	if ev.Err != nil {
		e.state = StateFailed
		e.current = nil
		e.fetchErr = ev.Err
		e.logger.Warn("fetch failed", zap.Error(ev.Err))
		return
	}
	if ev.Question == nil {
		e.state = StateFailed
		e.fetchErr = fmt.Errorf("fetch returned no question")
		return
	}

	e.state = StateDisplaying
	e.current = ev.Question
	e.fetchErr = nil
	e.trackAccuracyChange(ev.Question)
	e.logger.Debug("question displayed",
		zap.String("question_id", ev.Question.ID),
		zap.String("type", string(ev.Question.Type)),
		zap.Int("total_answered", ev.Question.TotalAnswered),
	)
}

func (e *Engine) onSubmitted(ev Submitted) Cmd {
	if ev.Gen != e.submitGen || e.state != StateSubmitting {
		return nil
	}
	e.pending = nil

	if ev.Err != nil {
		e.state = StateDisplaying
		e.notice = &Notice{Level: NoticeError, Text: "Failed to submit your answer. Please try again."}
		e.logger.Warn("submit failed", zap.String("question_id", e.current.ID), zap.Error(ev.Err))
		if e.refetchOwed {
			e.refetchOwed = false
			return e.startFetch("settings changed during submit")
		}
		return nil
	}

	e.refetchOwed = false
	return e.startFetch("submitted")
}

func (e *Engine) onChoose(ev Choose) (Cmd, error) {
	q, err := e.displayed("choose")
	if err != nil {
		return nil, err
	}
	if _, ok := q.Comparison(); !ok {
		return nil, &ErrWrongVariant{Event: "choose", Type: string(q.Type)}
	}
	if !ev.Choice.Valid() {
		return nil, ErrInvalidChoice
	}
	return e.submit(string(ev.Choice)), nil
}

func (e *Engine) onSelectOption(ev SelectOption) (Cmd, error) {
	q, err := e.displayed("select option")
	if err != nil {
		return nil, err
	}
	p, ok := q.Profile()
	if !ok || p.FreeText() {
		return nil, &ErrWrongVariant{Event: "select option", Type: string(q.Type)}
	}
	if ev.Index < 0 || ev.Index >= len(p.Options) {
		return nil, &ErrUnknownOption{Index: ev.Index, Count: len(p.Options)}
	}
	return e.submit(p.Options[ev.Index]), nil
}

func (e *Engine) onSubmitText(ev SubmitText) (Cmd, error) {
	q, err := e.displayed("submit text")
	if err != nil {
		return nil, err
	}
	p, ok := q.Profile()
	if !ok {
		return nil, &ErrWrongVariant{Event: "submit text", Type: string(q.Type)}
	}
	if !p.FreeText() {
		return nil, ErrOptionsRequired
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return nil, ErrEmptyAnswer
	}
	return e.submit(text), nil
}

// displayed returns the question accepting input, or why there is none.
func (e *Engine) displayed(event string) (*question.Question, error) {
	switch e.state {
	case StateLoading, StateSubmitting:
		return nil, ErrBusy
	case StateDisplaying:
		if e.current.Type == question.TypeUnknown {
			return nil, &ErrWrongVariant{Event: event, Type: e.current.RawType}
		}
		return e.current, nil
	default:
		return nil, ErrNoQuestion
	}
}

func (e *Engine) startFetch(reason string) Cmd {
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	e.fetchGen++
	gen := e.fetchGen
	s := e.settings
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancelFetch = cancel

	e.state = StateLoading
	e.current = nil
	e.fetchErr = nil
	e.logger.Debug("fetching question", zap.String("reason", reason), zap.Uint64("gen", gen), zap.String("settings", s.Key()))

	f := e.fetcher
	return func() Event {
		defer cancel()
		q, err := f.FetchNext(ctx, s)
		return Fetched{Gen: gen, Question: q, Err: err}
	}
}

func (e *Engine) submit(choice string) Cmd {
	a := question.Answer{
		QuestionID:   e.current.ID,
		Choice:       choice,
		QuestionType: e.current.Type.SubmitType(),
	}
	e.submitGen++
	gen := e.submitGen
	e.state = StateSubmitting
	e.pending = &a
	e.notice = nil
	e.logger.Debug("submitting answer", zap.String("question_id", a.QuestionID), zap.String("question_type", a.QuestionType))

	ctx, sub, delay := e.ctx, e.submitter, e.delay
	return func() Event {
		err := sub.SubmitChoice(ctx, a)
		if err == nil && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
			}
		}
		return Submitted{Gen: gen, Err: err}
	}
}

func (e *Engine) trackAccuracyChange(q *question.Question) {
	if !e.trackAccuracy {
		return
	}
	c, ok := q.Comparison()
	if !ok || c.CurrentAccuracy == nil || math.IsNaN(*c.CurrentAccuracy) {
		return
	}
	cur := *c.CurrentAccuracy
	if e.accuracy != nil && cur != *e.accuracy {
		change := (cur - *e.accuracy) * 100
		text := fmt.Sprintf("Accuracy has increased by %.2f%%", change)
		if change < 0 {
			text = fmt.Sprintf("Accuracy has decreased by %.2f%%", -change)
		}
		e.notice = &Notice{Level: NoticeInfo, Text: text}
	}
	e.accuracy = &cur
}
