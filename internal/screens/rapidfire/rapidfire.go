// Package rapidfire is the questionnaire screen. It renders whatever the
// engine currently shows and turns key presses into engine events.
package rapidfire

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/feedback"
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/screens/report"
	"github.com/similr/similr/internal/screens/suggest"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/ui/components"
	"github.com/similr/similr/internal/ui/layout"
)

const spinnerInterval = 100 * time.Millisecond

// RapidFireScreen implements screen.Screen for the questionnaire loop.
type RapidFireScreen struct {
	deps   screens.Deps
	engine *engine.Engine
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// shown is the question the widgets below were built for.
	shown   *question.Question
	options components.OptionList
	input   components.TextInput

	panel    templatePanel
	showHelp bool
	flash    *engine.Notice

	spinning bool
	frame    int
}

var (
	_ screen.Screen          = (*RapidFireScreen)(nil)
	_ screen.KeyHintProvider = (*RapidFireScreen)(nil)
	_ screen.KeyCapturer     = (*RapidFireScreen)(nil)
	_ router.Closer          = (*RapidFireScreen)(nil)
)

// New creates the rapid-fire screen. Saved settings are loaded from
// deps.Settings when available.
func New(deps screens.Deps) *RapidFireScreen {
	ctx, cancel := context.WithCancel(context.Background())
	logger := deps.Log().Named("rapidfire")

	var s settings.Settings
	if deps.Settings != nil {
		loaded, err := deps.Settings.Load(ctx)
		if err != nil {
			logger.Warn("load settings", zap.Error(err))
		} else {
			s = loaded
		}
	}

	opts := []engine.Option{
		engine.WithContext(ctx),
		engine.WithLogger(deps.Log()),
		engine.WithDelay(deps.Config.SubmitDelay),
	}
	if deps.Config.TrackAccuracy {
		opts = append(opts, engine.WithAccuracyTracking())
	}

	return &RapidFireScreen{
		deps:    deps,
		engine:  engine.New(deps.Backend, deps.Backend, s, opts...),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		input:   components.NewTextInput("Answer", "Type your answer...", 200),
		options: components.NewOptionList(nil),
	}
}

func (s *RapidFireScreen) Init() tea.Cmd {
	return s.dispatch(engine.Mount{})
}

func (s *RapidFireScreen) Title() string {
	return "Rapid Fire"
}

// Close cancels in-flight requests when the screen leaves the stack.
func (s *RapidFireScreen) Close() {
	s.engine.Close()
	s.cancel()
}

// CapturingKeys reports whether key presses belong to a text field or overlay.
func (s *RapidFireScreen) CapturingKeys() bool {
	return s.showHelp || s.panel.open || s.typing()
}

// typing reports whether the free-text field has focus.
func (s *RapidFireScreen) typing() bool {
	q := s.engine.Current()
	return q != nil && q.Type == question.TypeProfileText && s.input.Model.Focused()
}

func (s *RapidFireScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.showHelp:
		return []layout.KeyHint{{Key: "any key", Description: "Close help"}}
	case s.panel.open:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Use template"},
			{Key: "Esc", Description: "Close"},
		}
	}

	var hints []layout.KeyHint
	switch s.engine.State() {
	case engine.StateFailed:
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Retry"})
	case engine.StateDisplaying:
		q := s.engine.Current()
		switch q.Type {
		case question.TypeStandard:
			hints = append(hints,
				layout.KeyHint{Key: "←/→", Description: "Pick"},
				layout.KeyHint{Key: "↓", Description: "Skip"},
				layout.KeyHint{Key: "+/-", Description: "Rate template"},
			)
		case question.TypeProfileOption:
			hints = append(hints, layout.KeyHint{Key: "1-9/Enter", Description: "Answer"})
		case question.TypeProfileText:
			if s.typing() {
				return []layout.KeyHint{
					{Key: "Enter", Description: "Submit"},
					{Key: "Esc", Description: "Stop typing"},
				}
			}
			hints = append(hints, layout.KeyHint{Key: "i", Description: "Type answer"})
		case question.TypeInsight:
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Continue"})
		default:
			hints = append(hints, layout.KeyHint{Key: "r", Description: "Next question"})
		}
	}
	if s.engine.ReportAvailable() {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Report"})
	}
	return append(hints,
		layout.KeyHint{Key: "t/p", Description: "Settings"},
		layout.KeyHint{Key: "?", Description: "Help"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *RapidFireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case engineMsg:
		return s, s.dispatch(msg.Event)

	case spinnerTickMsg:
		if !s.engine.Busy() && !s.panel.loading {
			s.spinning = false
			return s, nil
		}
		s.frame++
		return s, s.tick()

	case templatesLoadedMsg:
		s.panel.loaded(msg.Templates, msg.Err, s.engine.Settings())
		if msg.Err != nil {
			s.logger.Warn("load prompt templates", zap.Error(msg.Err))
		}
		return s, nil

	case settingsSavedMsg:
		if msg.Err != nil {
			s.logger.Warn("save settings", zap.Error(msg.Err))
			s.flash = &engine.Notice{Level: engine.NoticeError, Text: "Could not save your settings."}
		}
		return s, nil

	case ratingMsg:
		level := engine.NoticeInfo
		if !msg.OK {
			level = engine.NoticeError
		}
		s.flash = &engine.Notice{Level: level, Text: msg.Text}
		return s, nil

	case components.OptionChosenMsg:
		return s, s.dispatch(engine.SelectOption{Index: msg.Index})

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and other field messages.
	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RapidFireScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.showHelp {
		s.showHelp = false
		return s, nil
	}
	if s.panel.open {
		return s, s.handlePanelKey(key)
	}
	if s.typing() {
		return s.handleTypingKey(msg)
	}

	switch key {
	case "?":
		s.showHelp = true
		return s, nil
	case "t":
		return s, s.applySettings(s.engine.Settings().WithRetain(!s.engine.Settings().RetainPromptTemplate))
	case "p":
		return s, s.openPanel()
	case "g":
		if s.deps.Suggester == nil {
			return s, nil
		}
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: suggest.New(s.deps)} }
	case "R":
		if !s.engine.ReportAvailable() || s.deps.Insights == nil {
			return s, nil
		}
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: report.New(s.deps)} }
	case "r":
		return s, s.dispatch(engine.Reload{})
	}

	if s.engine.State() != engine.StateDisplaying {
		return s, nil
	}

	q := s.engine.Current()
	switch q.Type {
	case question.TypeStandard:
		return s, s.handleComparisonKey(key, q)

	case question.TypeProfileOption:
		var cmd tea.Cmd
		s.options, cmd = s.options.Update(msg)
		return s, cmd

	case question.TypeProfileText:
		if key == "i" || key == "enter" {
			return s, s.input.Focus()
		}

	case question.TypeInsight:
		if key == "enter" || key == "space" {
			return s, s.dispatch(engine.Dismiss{})
		}
	}
	return s, nil
}

func (s *RapidFireScreen) handleComparisonKey(key string, q *question.Question) tea.Cmd {
	switch key {
	case "left", "h", "1":
		return s.dispatch(engine.Choose{Choice: engine.ChoiceLeft})
	case "right", "l", "2":
		return s.dispatch(engine.Choose{Choice: engine.ChoiceRight})
	case "down", "s", "space":
		return s.dispatch(engine.Choose{Choice: engine.ChoiceSkip})
	}

	c, _ := q.Comparison()
	switch key {
	case "+", "=":
		return s.rate(feedback.Target{Type: feedback.TargetPrompt, ID: c.PromptTemplateID}, true)
	case "-":
		return s.rate(feedback.Target{Type: feedback.TargetPrompt, ID: c.PromptTemplateID}, false)
	case "y":
		return s.rate(feedback.Target{Type: feedback.TargetOption, ID: q.ID}, true)
	case "n":
		return s.rate(feedback.Target{Type: feedback.TargetOption, ID: q.ID}, false)
	}
	return nil
}

func (s *RapidFireScreen) handleTypingKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		return s, nil
	case "enter":
		// Submit stays disabled until something is typed.
		if s.input.Blank() || s.engine.Busy() {
			return s, nil
		}
		return s, s.dispatch(engine.SubmitText{Text: s.input.Value()})
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// dispatch applies ev to the engine and schedules whatever it asks for.
func (s *RapidFireScreen) dispatch(ev engine.Event) tea.Cmd {
	cmd, err := s.engine.Dispatch(ev)
	if err != nil {
		s.onRejected(err)
	}
	focus := s.syncWidgets()
	return tea.Batch(s.run(cmd), s.spin(), focus)
}

// run adapts an engine Cmd to a tea.Cmd.
func (s *RapidFireScreen) run(cmd engine.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return engineMsg{Event: cmd()}
	}
}

// onRejected handles input the engine refused. Nothing was sent.
func (s *RapidFireScreen) onRejected(err error) {
	var wrong *engine.ErrWrongVariant
	var outOfRange *engine.ErrUnknownOption
	switch {
	case errors.Is(err, engine.ErrBusy), errors.Is(err, engine.ErrNoQuestion):
	case errors.As(err, &wrong), errors.As(err, &outOfRange):
	default:
		s.flash = &engine.Notice{Level: engine.NoticeError, Text: err.Error()}
	}
	s.logger.Debug("input rejected", zap.Error(err))
}

// syncWidgets rebuilds the answer widgets when a new question is shown and
// locks them while the engine is busy.
func (s *RapidFireScreen) syncWidgets() tea.Cmd {
	var cmd tea.Cmd
	q := s.engine.Current()
	if q != s.shown && q != nil {
		s.shown = q
		s.flash = nil
		s.options = components.NewOptionList(nil)
		s.input.Reset()
		s.input.Blur()
		if p, ok := q.Profile(); ok {
			if p.FreeText() {
				cmd = s.input.Focus()
			} else {
				s.options = components.NewOptionList(p.Options)
			}
		}
	}

	busy := s.engine.Busy()
	s.options.Disabled = busy
	s.input.Disabled = busy
	s.options.Chosen = -1
	if a, ok := s.engine.Pending(); ok {
		for i, o := range s.options.Options {
			if o == a.Choice {
				s.options.Chosen = i
				break
			}
		}
	}
	return cmd
}

func (s *RapidFireScreen) spin() tea.Cmd {
	if s.spinning || (!s.engine.Busy() && !s.panel.loading) {
		return nil
	}
	s.spinning = true
	return s.tick()
}

func (s *RapidFireScreen) tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// applySettings hands changed settings to the engine and persists them.
func (s *RapidFireScreen) applySettings(next settings.Settings) tea.Cmd {
	cmd := s.dispatch(engine.SettingsChanged{Settings: next})
	if s.deps.Settings == nil {
		return cmd
	}
	repo, ctx := s.deps.Settings, s.ctx
	save := func() tea.Msg {
		return settingsSavedMsg{Err: repo.Save(ctx, next)}
	}
	return tea.Batch(cmd, save)
}

func (s *RapidFireScreen) rate(t feedback.Target, up bool) tea.Cmd {
	if s.deps.Feedback == nil {
		return nil
	}
	send := s.deps.Feedback.Cmd(s.ctx, t, up)
	return func() tea.Msg {
		return ratingMsg(send())
	}
}
