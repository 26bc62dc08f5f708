package settings

import (
	"context"
	"strconv"
)

// Settings are the user-controlled parameters that shape which questions the
// backend serves. The hosting UI owns and mutates them; everything else
// receives copies.
type Settings struct {
	// RetainPromptTemplate asks the backend to keep serving the current template.
	RetainPromptTemplate bool

	// SelectedPromptTemplateID filters questions to one template. Empty means unset.
	SelectedPromptTemplateID string
}

// HasTemplate reports whether a template filter is selected.
func (s Settings) HasTemplate() bool {
	return s.SelectedPromptTemplateID != ""
}

// WithRetain returns a copy with RetainPromptTemplate set to v.
func (s Settings) WithRetain(v bool) Settings {
	s.RetainPromptTemplate = v
	return s
}

// WithTemplate returns a copy filtered to template id. An empty id clears the filter.
func (s Settings) WithTemplate(id string) Settings {
	s.SelectedPromptTemplateID = id
	return s
}

// Key returns a cache key covering every field, so that a value cached under
// one set of settings is never served after they change.
func (s Settings) Key() string {
	return "retain=" + strconv.FormatBool(s.RetainPromptTemplate) + "&template=" + s.SelectedPromptTemplateID
}

// Repo persists settings between runs.
type Repo interface {
	// Load returns the saved settings, or the zero value if none were saved.
	Load(ctx context.Context) (Settings, error)

	// Save replaces the saved settings.
	Save(ctx context.Context, s Settings) error
}
