package rapidfire

import (
	"time"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/feedback"
)

// engineMsg carries the result of an engine Cmd back into the UI loop.
type engineMsg struct {
	Event engine.Event
}

// spinnerTickMsg is sent at short intervals to animate the loading spinner.
type spinnerTickMsg time.Time

// templatesLoadedMsg is sent when the prompt template list is available.
type templatesLoadedMsg struct {
	Templates []api.PromptTemplate
	Err       error
}

// settingsSavedMsg confirms that changed settings were persisted.
type settingsSavedMsg struct {
	Err error
}

// ratingMsg is the outcome of a thumbs up/down.
type ratingMsg feedback.Result
