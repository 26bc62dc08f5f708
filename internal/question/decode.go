package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidEnvelope indicates the server sent a payload that breaks the
// question contract (wrong types, missing comparison sides, bad progress).
type ErrInvalidEnvelope struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidEnvelope) Error() string {
	return fmt.Sprintf("invalid question envelope: %v", e.Err)
}

func (e *ErrInvalidEnvelope) Unwrap() error { return e.Err }

// envelopeSchema describes the next-question payload. Unknown question_type
// values are allowed here; they surface as TypeUnknown instead.
var envelopeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":             map[string]any{"type": []any{"string", "integer"}},
		"question_type":  map[string]any{"type": "string"},
		"text":           map[string]any{"type": []any{"string", "null"}},
		"total_answered": map[string]any{"type": "integer", "minimum": 0},
		"milestone":      map[string]any{"type": "integer", "minimum": 0},
		"progress":       map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 100},
		"left":           map[string]any{"type": "string"},
		"right":          map[string]any{"type": "string"},
		"percent_left":   map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 100},
		"options": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
		"is_high": map[string]any{"type": []any{"boolean", "null"}},
	},
	"required": []any{"id"},
	"allOf": []any{
		map[string]any{
			// A missing tag means the legacy comparison payload.
			"if": map[string]any{
				"properties": map[string]any{"question_type": map[string]any{"const": "standard"}},
			},
			"then": map[string]any{"required": []any{"left", "right"}},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func envelopeValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants plain decoded JSON values, not Go literals.
		defBytes, err := json.Marshal(envelopeSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://question-envelope.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// wireEnvelope mirrors the JSON served by GET /api/option-pairs/next/.
type wireEnvelope struct {
	ID            flexID   `json:"id"`
	QuestionType  string   `json:"question_type"`
	Text          string   `json:"text"`
	TotalAnswered int      `json:"total_answered"`
	Milestone     int      `json:"milestone"`
	Progress      *float64 `json:"progress"`

	Left             string     `json:"left"`
	Right            string     `json:"right"`
	LeftImageURL     string     `json:"left_image_url"`
	RightImageURL    string     `json:"right_image_url"`
	PercentLeft      *float64   `json:"percent_left"`
	LeftFamous       FamousName `json:"left_famous_username"`
	RightFamous      FamousName `json:"right_famous_username"`
	LeftSimilarity   float64    `json:"left_similarity"`
	RightSimilarity  float64    `json:"right_similarity"`
	PromptTemplateID flexID     `json:"prompt_template_id"`
	PromptTemplate   string     `json:"prompt_template"`
	CurrentAccuracy  *float64   `json:"current_accuracy"`

	Options []string `json:"options"`

	InsightCategory string `json:"insight_category"`
	InsightArea     string `json:"insight_area"`
	IsHigh          bool   `json:"is_high"`
}

// Decode validates raw against the envelope contract and builds the matching
// variant. Contract violations return *ErrInvalidEnvelope.
func Decode(raw []byte) (*Question, error) {
	schema, err := envelopeValidator()
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, &ErrInvalidEnvelope{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Validate(inst); err != nil {
		return nil, &ErrInvalidEnvelope{Content: raw, Err: err}
	}

	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &ErrInvalidEnvelope{Content: raw, Err: err}
	}

	env := Envelope{
		ID:            string(w.ID),
		Text:          w.Text,
		TotalAnswered: w.TotalAnswered,
		Milestone:     w.Milestone,
	}
	if w.Progress != nil {
		env.Progress = *w.Progress
	} else {
		env.Progress = DeriveProgress(w.TotalAnswered, w.Milestone)
	}

	switch Type(w.QuestionType) {
	case "", TypeStandard:
		c := Comparison{
			Left:             w.Left,
			Right:            w.Right,
			LeftImageURL:     w.LeftImageURL,
			RightImageURL:    w.RightImageURL,
			LeftFamous:       w.LeftFamous,
			RightFamous:      w.RightFamous,
			LeftSimilarity:   w.LeftSimilarity,
			RightSimilarity:  w.RightSimilarity,
			PromptTemplateID: string(w.PromptTemplateID),
			PromptTemplate:   w.PromptTemplate,
			CurrentAccuracy:  w.CurrentAccuracy,
		}
		if w.PercentLeft != nil {
			c.PercentLeft = *w.PercentLeft
		}
		if env.Text == "" {
			env.Text = w.PromptTemplate
		}
		return NewComparison(env, c), nil

	case TypeProfileOption, TypeProfileText:
		return NewProfile(env, Profile{Prompt: env.Text, Options: w.Options}), nil

	case TypeInsight:
		return NewInsight(env, Insight{
			Text:     env.Text,
			Category: w.InsightCategory,
			Area:     w.InsightArea,
			IsHigh:   w.IsHigh,
		}), nil

	default:
		return NewUnknown(env, w.QuestionType), nil
	}
}
