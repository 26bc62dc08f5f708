package engine

import (
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
)

// Event is an input to Dispatch. User actions and completed commands are both events.
type Event interface {
	isEvent()
}

// Cmd is deferred work returned by Dispatch. The host runs it off the UI loop
// and dispatches the Event it returns.
type Cmd func() Event

// Choice is the answer to a comparison.
type Choice string

const (
	ChoiceLeft  Choice = "left"
	ChoiceRight Choice = "right"
	ChoiceSkip  Choice = "skip"
)

// Valid reports whether c is one of left, right or skip.
func (c Choice) Valid() bool {
	return c == ChoiceLeft || c == ChoiceRight || c == ChoiceSkip
}

// Mount starts the loop by fetching the first question.
type Mount struct{}

// SettingsChanged carries the host's new settings.
type SettingsChanged struct {
	Settings settings.Settings
}

// Reload retries after a failed fetch, or moves past an unrecognised question.
type Reload struct{}

// Choose answers a comparison.
type Choose struct {
	Choice Choice
}

// SelectOption answers a profile question by picking Options[Index].
type SelectOption struct {
	Index int
}

// SubmitText answers a free-text profile question.
type SubmitText struct {
	Text string
}

// Dismiss acknowledges an insight.
type Dismiss struct{}

// Fetched reports the result of a fetch command.
type Fetched struct {
	Gen      uint64
	Question *question.Question
	Err      error
}

// Submitted reports the result of a submit command.
type Submitted struct {
	Gen uint64
	Err error
}

func (Mount) isEvent()           {}
func (SettingsChanged) isEvent() {}
func (Reload) isEvent()          {}
func (Choose) isEvent()          {}
func (SelectOption) isEvent()    {}
func (SubmitText) isEvent()      {}
func (Dismiss) isEvent()         {}
func (Fetched) isEvent()         {}
func (Submitted) isEvent()       {}
