// Package report shows the personality report unlocked after enough answers.
package report

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/insights"
	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/ui/layout"
	"github.com/similr/similr/internal/ui/theme"
)

type pageKey struct {
	category string
	positive bool
}

type insightsLoadedMsg struct {
	Key     pageKey
	Results []insights.Result
	Err     error
}

// ReportScreen pages through the insight categories.
type ReportScreen struct {
	source   screens.InsightSource
	logger   *zap.Logger
	category int
	positive bool
	pages    map[pageKey][]insights.Result
	errs     map[pageKey]error
	loading  map[pageKey]bool
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)

// New creates a ReportScreen reading from deps.Insights.
func New(deps screens.Deps) *ReportScreen {
	return &ReportScreen{
		source:   deps.Insights,
		logger:   deps.Log().Named("report"),
		positive: true,
		pages:    make(map[pageKey][]insights.Result),
		errs:     make(map[pageKey]error),
		loading:  make(map[pageKey]bool),
	}
}

func (s *ReportScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ReportScreen) Title() string {
	return "Your Report"
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Category"},
		{Key: "Tab", Description: "Highs/Lows"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReportScreen) key() pageKey {
	return pageKey{category: insights.Categories[s.category], positive: s.positive}
}

// load fetches the current page unless it is cached or already in flight.
func (s *ReportScreen) load() tea.Cmd {
	k := s.key()
	if _, ok := s.pages[k]; ok || s.loading[k] || s.source == nil {
		return nil
	}
	s.loading[k] = true
	delete(s.errs, k)
	src := s.source
	return func() tea.Msg {
		res, err := src.Insights(context.Background(), k.category, k.positive)
		return insightsLoadedMsg{Key: k, Results: res, Err: err}
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case insightsLoadedMsg:
		delete(s.loading, msg.Key)
		if msg.Err != nil {
			s.logger.Warn("load insights", zap.String("category", msg.Key.category), zap.Error(msg.Err))
			s.errs[msg.Key] = msg.Err
			return s, nil
		}
		s.pages[msg.Key] = msg.Results
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "left", "h":
			s.category = (s.category + len(insights.Categories) - 1) % len(insights.Categories)
			return s, s.load()
		case "right", "l":
			s.category = (s.category + 1) % len(insights.Categories)
			return s, s.load()
		case "tab":
			s.positive = !s.positive
			return s, s.load()
		case "r":
			delete(s.pages, s.key())
			return s, s.load()
		}
	}
	return s, nil
}

func (s *ReportScreen) View(width, height int) string {
	k := s.key()

	var b strings.Builder
	side := "Highs"
	if !k.positive {
		side = "Lows"
	}
	b.WriteString(theme.Title.Width(width).Render(k.category))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf("%s · %d/%d", side, s.category+1, len(insights.Categories))))
	b.WriteString("\n\n")

	switch {
	case s.loading[k]:
		b.WriteString(theme.Subtitle.Width(width).Render("Loading insights..."))
	case s.errs[k] != nil:
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("Could not load insights: %v\n\nPress r to retry.", s.errs[k])))
	case len(s.pages[k]) == 0:
		b.WriteString(theme.Subtitle.Width(width).Render("Nothing here yet."))
	default:
		b.WriteString(renderResults(s.pages[k], width))
	}
	return b.String()
}

func renderResults(rs []insights.Result, width int) string {
	w := min(width-8, 76)
	head := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim).Width(w)

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(head.Render(insights.Format(r)))
		if r.Description != "" {
			b.WriteString("\n")
			b.WriteString(desc.Render(r.Description))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(w).Render(b.String()))
}
