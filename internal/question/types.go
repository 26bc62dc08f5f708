package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the variant tag carried in the envelope's question_type field.
type Type string

const (
	// TypeStandard is a binary comparison between a left and a right option.
	TypeStandard Type = "standard"

	// TypeProfileOption is a profile question answered by picking one option.
	TypeProfileOption Type = "profile_option"

	// TypeProfileText is a profile question answered with free text.
	TypeProfileText Type = "profile_text"

	// TypeInsight is an informational interstitial. It is acknowledged, never answered.
	TypeInsight Type = "insight"

	// TypeUnknown marks a tag this client does not understand.
	TypeUnknown Type = "unknown"
)

// SubmitType returns the question_type value sent with an answer for this variant.
func (t Type) SubmitType() string {
	switch t {
	case TypeProfileOption, TypeProfileText:
		return string(TypeProfileOption)
	case TypeInsight:
		return string(TypeInsight)
	default:
		return string(TypeStandard)
	}
}

// Envelope holds the fields every question carries regardless of variant.
type Envelope struct {
	// ID identifies the question (the option pair id for comparisons).
	ID string

	// Text is the display/prompt text.
	Text string

	// TotalAnswered is the server's running answer count for the user.
	TotalAnswered int

	// Milestone is the answer count that unlocks the next report.
	Milestone int

	// Progress is the server-computed percentage (0-100) shown in the progress bar.
	Progress float64
}

// Question is one unit of the questionnaire. Exactly one variant is populated,
// selected by Type; use the accessors to read it.
type Question struct {
	Envelope

	// Type is the decoded variant tag.
	Type Type

	// RawType is the tag exactly as the server sent it. It differs from Type
	// only when Type is TypeUnknown.
	RawType string

	comparison *Comparison
	profile    *Profile
	insight    *Insight
}

// Comparison is a forced choice between two labelled options.
type Comparison struct {
	Left          string
	Right         string
	LeftImageURL  string
	RightImageURL string

	// PercentLeft is the share (0-100) of all users who picked Left.
	PercentLeft float64

	LeftFamous  FamousName
	RightFamous FamousName

	LeftSimilarity  float64
	RightSimilarity float64

	PromptTemplateID string
	PromptTemplate   string

	// CurrentAccuracy is the model's running accuracy for this user, nil when unknown.
	CurrentAccuracy *float64
}

// PercentRight is the complement of PercentLeft.
func (c Comparison) PercentRight() float64 {
	return 100 - c.PercentLeft
}

// Profile is a question collecting a personal-profile answer.
type Profile struct {
	Prompt  string
	Options []string
}

// FreeText reports whether the question must be answered by typing.
func (p Profile) FreeText() bool {
	return len(p.Options) == 0
}

// HasOption reports whether s is exactly one of the offered options.
func (p Profile) HasOption(s string) bool {
	for _, o := range p.Options {
		if o == s {
			return true
		}
	}
	return false
}

// Insight is a non-interactive interstitial.
type Insight struct {
	Text     string
	Category string
	Area     string
	IsHigh   bool
}

// NewComparison builds a comparison question.
func NewComparison(env Envelope, c Comparison) *Question {
	return &Question{Envelope: env, Type: TypeStandard, RawType: string(TypeStandard), comparison: &c}
}

// NewProfile builds a profile question. The variant tag follows the options:
// no options means free text.
func NewProfile(env Envelope, p Profile) *Question {
	t := TypeProfileOption
	if p.FreeText() {
		t = TypeProfileText
	}
	return &Question{Envelope: env, Type: t, RawType: string(t), profile: &p}
}

// NewInsight builds an insight interstitial.
func NewInsight(env Envelope, in Insight) *Question {
	return &Question{Envelope: env, Type: TypeInsight, RawType: string(TypeInsight), insight: &in}
}

// NewUnknown builds a question whose tag is not understood.
func NewUnknown(env Envelope, rawType string) *Question {
	return &Question{Envelope: env, Type: TypeUnknown, RawType: rawType}
}

// Comparison returns the comparison variant. ok is false for any other variant.
func (q *Question) Comparison() (Comparison, bool) {
	if q == nil || q.Type != TypeStandard || q.comparison == nil {
		return Comparison{}, false
	}
	return *q.comparison, true
}

// Profile returns the profile variant. ok is false for any other variant.
func (q *Question) Profile() (Profile, bool) {
	if q == nil || (q.Type != TypeProfileOption && q.Type != TypeProfileText) || q.profile == nil {
		return Profile{}, false
	}
	return *q.profile, true
}

// Insight returns the insight variant. ok is false for any other variant.
func (q *Question) Insight() (Insight, bool) {
	if q == nil || q.Type != TypeInsight || q.insight == nil {
		return Insight{}, false
	}
	return *q.insight, true
}

// RequiresSubmission reports whether the question must be answered before the
// next one may be fetched. Insights are only acknowledged.
func (q *Question) RequiresSubmission() bool {
	return q != nil && q.Type != TypeInsight && q.Type != TypeUnknown
}

// Answer is the payload posted to the user-choices endpoint.
type Answer struct {
	QuestionID   string `json:"option_pair"`
	Choice       string `json:"choice"`
	QuestionType string `json:"question_type"`
}

// FamousName is the name of a well-known person who picked an option. The
// backend sends either a plain string or a {"first","last"} object.
type FamousName string

func (f *FamousName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FamousName(s)
		return nil
	}
	if data[0] == '{' {
		var n struct {
			First string `json:"first"`
			Last  string `json:"last"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FamousName(strings.TrimSpace(n.First + " " + n.Last))
		return nil
	}
	// Anything else carries no displayable name.
	*f = ""
	return nil
}

// flexID accepts a JSON string or number and keeps it as a string.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}
