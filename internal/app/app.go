package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/screens/home"
	"github.com/similr/similr/internal/screens/rapidfire"
	"github.com/similr/similr/internal/screens/welcome"
	"github.com/similr/similr/internal/ui/layout"
)

// Options holds the dependencies the screens are built from.
type Options = screens.Deps

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int

	// start is pushed over the initial screen on Init.
	start screen.Screen
}

// newAppModel creates a new AppModel starting at the welcome splash.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(opts)
	}
	return newAppModelWith(opts, welcome.New(homeFactory))
}

func newAppModelWith(opts Options, initial screen.Screen) AppModel {
	return AppModel{
		router: router.New(initial),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	var cmd tea.Cmd
	if active := m.router.Active(); active != nil {
		cmd = active.Init()
	}
	if m.start != nil {
		start := m.start
		cmd = tea.Batch(cmd, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeAll()
			return m, tea.Quit
		case "esc":
			if capturing(m.router.Active()) {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// closeAll releases every screen still on the stack.
func (m AppModel) closeAll() {
	for m.router.Depth() > 1 {
		m.router.Pop()
	}
	if c, ok := m.router.Active().(router.Closer); ok {
		c.Close()
	}
}

func capturing(s screen.Screen) bool {
	c, ok := s.(screen.KeyCapturer)
	return ok && c.CapturingKeys()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, the active screen and the footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.opts.Username(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	return run(newAppModel(opts))
}

// RunRapidFire starts straight in the questionnaire, with the home menu
// underneath it.
func RunRapidFire(opts Options) error {
	m := newAppModelWith(opts, home.New(opts))
	m.start = rapidfire.New(opts)
	return run(m)
}

func run(m AppModel) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
