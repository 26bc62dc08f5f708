package rapidfire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/feedback"
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/ui/components"
)

// fakeBackend serves queued questions, then endless comparisons.
type fakeBackend struct {
	mu      sync.Mutex
	queue   []*question.Question
	fetches []settings.Settings
	answers []question.Answer
	n       int
}

func (b *fakeBackend) FetchNext(_ context.Context, s settings.Settings) (*question.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches = append(b.fetches, s)
	if len(b.queue) > 0 {
		q := b.queue[0]
		b.queue = b.queue[1:]
		return q, nil
	}
	b.n++
	return comparison(fmt.Sprintf("gen-%d", b.n)), nil
}

func (b *fakeBackend) SubmitChoice(_ context.Context, a question.Answer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers = append(b.answers, a)
	return nil
}

func (b *fakeBackend) submitted() []question.Answer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]question.Answer(nil), b.answers...)
}

func (b *fakeBackend) lastFetch() settings.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[len(b.fetches)-1]
}

type memSettings struct {
	mu      sync.Mutex
	initial settings.Settings
	saved   []settings.Settings
}

func (m *memSettings) Load(context.Context) (settings.Settings, error) {
	return m.initial, nil
}

func (m *memSettings) Save(_ context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	return nil
}

type staticTemplates []api.PromptTemplate

func (t staticTemplates) Get(context.Context) ([]api.PromptTemplate, error) { return t, nil }

type failingTemplates struct{ err error }

func (t failingTemplates) Get(context.Context) ([]api.PromptTemplate, error) { return nil, t.err }

type recordingSender struct {
	mu      sync.Mutex
	targets []feedback.Target
}

func (r *recordingSender) Thumbs(_ context.Context, t feedback.Target, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, t)
	return nil
}

func comparison(id string) *question.Question {
	return question.NewComparison(
		question.Envelope{ID: id, Milestone: 300},
		question.Comparison{Left: "Mountains", Right: "Beaches", PercentLeft: 40, PromptTemplateID: "3", PromptTemplate: "Where would you rather be?"},
	)
}

func profile(id string, options ...string) *question.Question {
	return question.NewProfile(question.Envelope{ID: id, Text: "Favourite season?", Milestone: 300}, question.Profile{Prompt: "Favourite season?", Options: options})
}

// key builds a key press the way the terminal would report it.
func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// runWithin runs cmd, giving up on timers and cursor blinks.
func runWithin(cmd tea.Cmd, d time.Duration) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(d):
		return nil, false
	}
}

// drain runs cmd and feeds the screen's own messages back until it settles.
func drain(t *testing.T, s *RapidFireScreen, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runWithin(c, 50*time.Millisecond)
		if !ok {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case engineMsg, ratingMsg, settingsSavedMsg, templatesLoadedMsg, components.OptionChosenMsg:
			_, next := s.Update(m)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, s *RapidFireScreen, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := s.Update(key(k))
		drain(t, s, cmd)
	}
}

func newScreen(t *testing.T, b *fakeBackend, mutate ...func(*screens.Deps)) *RapidFireScreen {
	t.Helper()
	deps := screens.Deps{Backend: b}
	for _, m := range mutate {
		m(&deps)
	}
	s := New(deps)
	t.Cleanup(s.Close)
	drain(t, s, s.Init())
	require.Equal(t, engine.StateDisplaying, s.engine.State())
	return s
}

func TestMountShowsFirstQuestion(t *testing.T) {
	s := newScreen(t, &fakeBackend{queue: []*question.Question{comparison("q1")}})

	assert.Equal(t, "q1", s.engine.Current().ID)
	out := s.View(100, 30)
	assert.Contains(t, out, "Mountains")
	assert.Contains(t, out, "Beaches")
	assert.Contains(t, out, "Where would you rather be?")
	assert.NotContains(t, out, "40%", "percentages stay hidden until an answer is given")
	assert.Equal(t, "Pick", s.KeyHints()[0].Description)
}

func TestArrowKeysSubmitComparison(t *testing.T) {
	b := &fakeBackend{queue: []*question.Question{comparison("q1"), comparison("q2"), comparison("q3")}}
	s := newScreen(t, b)

	press(t, s, "left")
	assert.Equal(t, "q2", s.engine.Current().ID)
	press(t, s, "down")
	assert.Equal(t, "q3", s.engine.Current().ID)

	answers := b.submitted()
	require.Len(t, answers, 2)
	assert.Equal(t, question.Answer{QuestionID: "q1", Choice: "left", QuestionType: "standard"}, answers[0])
	assert.Equal(t, "skip", answers[1].Choice)
}

func TestNumberKeyAnswersProfileOption(t *testing.T) {
	b := &fakeBackend{queue: []*question.Question{profile("p1", "Winter", "Summer")}}
	s := newScreen(t, b)
	assert.Contains(t, s.View(100, 30), "Summer")

	press(t, s, "2")

	answers := b.submitted()
	require.Len(t, answers, 1)
	assert.Equal(t, "Summer", answers[0].Choice)
	assert.Equal(t, question.TypeStandard, s.engine.Current().Type)
}

func TestOutOfRangeOptionKeyIsIgnored(t *testing.T) {
	b := &fakeBackend{queue: []*question.Question{profile("p1", "Winter", "Summer")}}
	s := newScreen(t, b)

	press(t, s, "5")

	assert.Empty(t, b.submitted())
	assert.Equal(t, "p1", s.engine.Current().ID)
}

func TestFreeTextRequiresInput(t *testing.T) {
	b := &fakeBackend{queue: []*question.Question{profile("p1")}}
	s := newScreen(t, b)
	require.True(t, s.CapturingKeys(), "the answer field is focused on arrival")

	press(t, s, "enter")
	assert.Empty(t, b.submitted())

	press(t, s, "P", "o", "r", "t", "o", "enter")
	answers := b.submitted()
	require.Len(t, answers, 1)
	assert.Equal(t, "Porto", answers[0].Choice)
	assert.Equal(t, "profile_option", answers[0].QuestionType)
}

func TestEscStopsTyping(t *testing.T) {
	s := newScreen(t, &fakeBackend{queue: []*question.Question{profile("p1")}})
	require.True(t, s.CapturingKeys())

	press(t, s, "esc")
	assert.False(t, s.CapturingKeys())

	press(t, s, "i")
	assert.True(t, s.CapturingKeys())
}

func TestRetainToggleIsSaved(t *testing.T) {
	repo := &memSettings{}
	b := &fakeBackend{}
	s := newScreen(t, b, func(d *screens.Deps) { d.Settings = repo })

	press(t, s, "t")

	require.Len(t, repo.saved, 1)
	assert.True(t, repo.saved[0].RetainPromptTemplate)
	assert.True(t, s.engine.Settings().RetainPromptTemplate)
	assert.True(t, b.lastFetch().RetainPromptTemplate, "the next question follows the new settings")
	assert.Contains(t, s.View(100, 30), "retain template: on")
}

func TestTemplatePanelSelectsTemplate(t *testing.T) {
	repo := &memSettings{}
	b := &fakeBackend{}
	s := newScreen(t, b, func(d *screens.Deps) {
		d.Settings = repo
		d.Templates = staticTemplates{{ID: "7", Text: "Which would you rather eat?"}}
	})

	press(t, s, "p")
	require.True(t, s.panel.open)
	require.True(t, s.CapturingKeys())
	assert.Contains(t, s.View(100, 30), "Which would you rather eat?")

	press(t, s, "down", "enter")

	assert.False(t, s.panel.open)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "7", repo.saved[0].SelectedPromptTemplateID)
	assert.Equal(t, "7", b.lastFetch().SelectedPromptTemplateID)
}

func TestTemplatePanelLoadErrorKeepsSelection(t *testing.T) {
	repo := &memSettings{initial: settings.Settings{SelectedPromptTemplateID: "3"}}
	b := &fakeBackend{}
	s := newScreen(t, b, func(d *screens.Deps) {
		d.Settings = repo
		d.Templates = failingTemplates{err: errors.New("backend down")}
	})
	require.Equal(t, "3", b.lastFetch().SelectedPromptTemplateID)

	press(t, s, "p")
	require.True(t, s.panel.open)
	assert.Contains(t, s.View(100, 30), "Could not load templates")

	press(t, s, "enter")

	assert.True(t, s.panel.open, "enter must not apply a selection from a failed list")
	assert.Empty(t, repo.saved)
	assert.Equal(t, "3", s.engine.Settings().SelectedPromptTemplateID)
	b.mu.Lock()
	assert.Len(t, b.fetches, 1)
	b.mu.Unlock()

	press(t, s, "esc")
	assert.False(t, s.panel.open)
	assert.Empty(t, repo.saved)
	assert.Equal(t, "3", s.engine.Settings().SelectedPromptTemplateID)
}

func TestRatingShowsNotice(t *testing.T) {
	sender := &recordingSender{}
	s := newScreen(t, &fakeBackend{queue: []*question.Question{comparison("q1")}}, func(d *screens.Deps) {
		d.Feedback = feedback.NewService(sender, nil)
	})

	press(t, s, "+")

	require.Len(t, sender.targets, 1)
	assert.Equal(t, feedback.Target{Type: feedback.TargetPrompt, ID: "3"}, sender.targets[0])
	assert.Contains(t, s.View(100, 30), "Prompt template thumbs UP recorded!")
	assert.Equal(t, "q1", s.engine.Current().ID, "rating does not answer the question")
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	b := &fakeBackend{queue: []*question.Question{comparison("q1")}}
	s := newScreen(t, b)

	press(t, s, "?")
	assert.True(t, s.CapturingKeys())
	assert.Contains(t, s.View(100, 30), "How to use Rapid Fire")

	press(t, s, "left")
	assert.False(t, s.showHelp)
	assert.Empty(t, b.submitted(), "the key that closes help is not an answer")
}

func TestReportKeyNeedsMilestone(t *testing.T) {
	s := newScreen(t, &fakeBackend{queue: []*question.Question{comparison("q1")}})

	_, cmd := s.Update(key("R"))
	assert.Nil(t, cmd)
	assert.NotContains(t, s.View(100, 30), "Results ready")
}

func TestCloseCancelsRequests(t *testing.T) {
	s := New(screens.Deps{Backend: &fakeBackend{}})
	s.Close()
	assert.Error(t, s.ctx.Err())
}
