package rapidfire

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/ui/components"
	"github.com/similr/similr/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func spinnerFrame(i int) string {
	return spinnerFrames[i%len(spinnerFrames)]
}

const helpText = `Press ← or → to pick the option that fits you better.

If you have no preference or don't understand the question, press ↓ to skip.
Try to answer at least 100 pairs, but the more you answer, the better!

+ and - rate the prompt template used to generate the options.
y and n rate the options themselves.

t keeps the current prompt template for the next questions.
p picks a specific prompt template. g suggests a new one.

After you pick, you'll see the overall % of everyone who answered
and maybe a famous person's selection.

It's learning about you!`

func (s *RapidFireScreen) View(width, height int) string {
	if s.showHelp {
		return renderHelp(width, height)
	}

	var b strings.Builder
	b.WriteString(s.renderStatus(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if s.panel.open {
		b.WriteString(s.renderPanel(width))
		return b.String()
	}

	switch s.engine.State() {
	case engine.StateIdle, engine.StateLoading:
		b.WriteString(center(width, theme.Hint.Render(spinnerFrame(s.frame)+" Loading next question...")))
	case engine.StateFailed:
		b.WriteString(renderFailure(width, s.engine.Err()))
	default:
		b.WriteString(s.renderQuestion(width))
	}

	if n := s.notices(); n != "" {
		b.WriteString("\n\n")
		b.WriteString(n)
	}

	if s.engine.ReportAvailable() {
		b.WriteString("\n\n")
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render("★ Results ready! Press R to see your report")))
	}
	return b.String()
}

// renderStatus renders progress, accuracy and the active settings.
func (s *RapidFireScreen) renderStatus(width int) string {
	var lines []string

	if q := s.engine.Current(); q != nil {
		bar := components.NewProgressBar("Progress", q.ProgressFraction(), q.ProgressLabel(), min(width-4, 70))
		lines = append(lines, center(width, bar.View()))
	}

	if s.deps.Config.TrackAccuracy {
		acc := "N/A"
		if v, ok := s.engine.Accuracy(); ok {
			acc = fmt.Sprintf("%.2f%%", v*100)
		}
		lines = append(lines, center(width, theme.Body.Render("Current Accuracy: "+acc)))
	}

	set := s.engine.Settings()
	retain := "off"
	if set.RetainPromptTemplate {
		retain = "on"
	}
	tmpl := "any"
	if set.HasTemplate() {
		tmpl = "#" + set.SelectedPromptTemplateID
	}
	lines = append(lines, center(width, lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("[t] retain template: %s   [p] prompt: %s   [g] suggest", retain, tmpl))))

	return strings.Join(lines, "\n")
}

func (s *RapidFireScreen) renderQuestion(width int) string {
	q := s.engine.Current()
	if q == nil {
		return ""
	}

	switch q.Type {
	case question.TypeStandard:
		return s.renderComparison(width, q)
	case question.TypeProfileOption, question.TypeProfileText:
		return s.renderProfile(width, q)
	case question.TypeInsight:
		return renderInsight(width, q)
	default:
		return center(width, lipgloss.NewStyle().Foreground(theme.Accent).
			Render(fmt.Sprintf("Unknown question type %q.\n\nPress r to load another question.", q.RawType)))
	}
}

func (s *RapidFireScreen) renderComparison(width int, q *question.Question) string {
	c, _ := q.Comparison()
	pending, submitting := s.engine.Pending()

	var b strings.Builder
	if c.PromptTemplate != "" {
		b.WriteString(center(width, theme.Body.Render(c.PromptTemplate)+"  "+theme.Hint.Render("(+/-)")))
		b.WriteString("\n\n")
	}
	if q.Text != "" {
		b.WriteString(center(width, theme.Body.Bold(true).Render(q.Text)))
		b.WriteString("\n\n")
	}

	cardW := min((width-10)/2, 36)
	left := renderCard(c.Left, c.PercentLeft, c.LeftFamous, cardW, submitting, submitting && pending.Choice == string(engine.ChoiceLeft))
	right := renderCard(c.Right, c.PercentRight(), c.RightFamous, cardW, submitting, submitting && pending.Choice == string(engine.ChoiceRight))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Center, left, "  ", right)))
	b.WriteString("\n")
	b.WriteString(center(width, theme.Hint.Render("rate these options: y / n")))
	b.WriteString("\n\n")

	buttons := []components.Button{
		components.NewButton("← Left", !submitting, nil),
		components.NewButton("↓ Skip", !submitting, nil),
		components.NewButton("Right →", !submitting, nil),
	}
	if submitting {
		switch engine.Choice(pending.Choice) {
		case engine.ChoiceLeft:
			buttons[0].Active = true
		case engine.ChoiceSkip:
			buttons[1].Active = true
		case engine.ChoiceRight:
			buttons[2].Active = true
		}
	}
	views := make([]string, 0, len(buttons)*2)
	for i, btn := range buttons {
		if i > 0 {
			views = append(views, "  ")
		}
		views = append(views, btn.View())
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Center, views...)))
	return b.String()
}

// renderCard renders one option. While the answer is in flight the card
// reveals how everyone else answered.
func renderCard(label string, percent float64, famous question.FamousName, w int, reveal, chosen bool) string {
	style := theme.OptionCard
	if chosen {
		style = theme.OptionCardChosen
	}
	body := theme.Body.Bold(true).Render(label)
	if reveal {
		var extra []string
		if percent != 0 && percent != 100 {
			extra = append(extra, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("%.0f%%", percent)))
		}
		if famous != "" {
			extra = append(extra, theme.Hint.Render(string(famous)))
		}
		if len(extra) > 0 {
			body = strings.Join(extra, "\n") + "\n\n" + body
		}
	}
	return style.Width(w).Height(7).Render(body)
}

func (s *RapidFireScreen) renderProfile(width int, q *question.Question) string {
	p, _ := q.Profile()

	var b strings.Builder
	prompt := p.Prompt
	if prompt == "" {
		prompt = q.Text
	}
	b.WriteString(center(width, theme.Body.Bold(true).Render(prompt)))
	b.WriteString("\n\n")

	if !p.FreeText() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.options.View()))
		return b.String()
	}

	b.WriteString(center(width, s.input.View()))
	b.WriteString("\n\n")
	hint := "Enter to submit"
	switch {
	case s.engine.Busy():
		hint = spinnerFrame(s.frame) + " Sending..."
	case s.input.Blank():
		hint = theme.Disabled.Render("Enter to submit")
	}
	b.WriteString(center(width, theme.Hint.Render(hint)))
	return b.String()
}

func renderInsight(width int, q *question.Question) string {
	in, _ := q.Insight()

	text := in.Text
	if text == "" {
		text = q.Text
	}
	var head string
	if in.Category != "" {
		head = in.Category
		if in.Area != "" {
			head += " · " + in.Area
		}
	}

	card := theme.Card.Width(min(width-8, 70))
	var body strings.Builder
	if head != "" {
		body.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(head))
		body.WriteString("\n\n")
	}
	body.WriteString(theme.Body.Render(text))
	body.WriteString("\n\n")
	body.WriteString(theme.Hint.Render("Press Enter to continue"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, card.Render(body.String()))
}

func renderFailure(width int, err error) string {
	msg := "Couldn't load the next question."
	switch {
	case err == nil:
	case isAuthError(err):
		msg = "Your session has expired. Go back and sign in again."
	default:
		msg += "\n\n" + err.Error()
	}
	return center(width, lipgloss.NewStyle().Foreground(theme.Error).Render(msg)+"\n\n"+theme.Hint.Render("Press r to retry"))
}

func isAuthError(err error) bool {
	return api.IsUnauthorized(err) || errors.Is(err, auth.ErrNotLoggedIn)
}

func (s *RapidFireScreen) notices() string {
	var lines []string
	if n, ok := s.engine.Notice(); ok {
		lines = append(lines, renderNotice(n))
	}
	if s.flash != nil {
		lines = append(lines, renderNotice(*s.flash))
	}
	return strings.Join(lines, "\n")
}

func renderNotice(n engine.Notice) string {
	if n.Level == engine.NoticeError {
		return theme.NoticeError.Render("✗ " + n.Text)
	}
	return theme.NoticeInfo.Render("● " + n.Text)
}

func renderHelp(width, height int) string {
	box := theme.Card.Width(min(width-4, 80)).Render(
		theme.Title.Render("How to use Rapid Fire") + "\n\n" + theme.Body.Render(helpText))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
