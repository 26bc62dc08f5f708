package question

import (
	"errors"
	"testing"
)

func TestDecode_LegacyComparison(t *testing.T) {
	raw := []byte(`{
		"id": "q1",
		"left": "Cats",
		"right": "Dogs",
		"percent_left": 42.5,
		"left_image_url": "https://img/cats.png",
		"left_famous_username": {"first": "Ada", "last": "Lovelace"},
		"right_famous_username": "Alan Turing",
		"prompt_template_id": 7,
		"prompt_template": "Which pet?",
		"total_answered": 12,
		"milestone": 300,
		"progress": 4,
		"current_accuracy": 0.61
	}`)

	q, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if q.Type != TypeStandard {
		t.Fatalf("Type = %q, want %q", q.Type, TypeStandard)
	}
	c, ok := q.Comparison()
	if !ok {
		t.Fatal("expected comparison variant")
	}
	if c.Left != "Cats" || c.Right != "Dogs" {
		t.Errorf("sides = %q/%q", c.Left, c.Right)
	}
	if c.PercentRight() != 57.5 {
		t.Errorf("PercentRight = %v, want 57.5", c.PercentRight())
	}
	if c.LeftFamous != "Ada Lovelace" {
		t.Errorf("LeftFamous = %q", c.LeftFamous)
	}
	if c.RightFamous != "Alan Turing" {
		t.Errorf("RightFamous = %q", c.RightFamous)
	}
	if c.PromptTemplateID != "7" {
		t.Errorf("PromptTemplateID = %q, want 7", c.PromptTemplateID)
	}
	if c.CurrentAccuracy == nil || *c.CurrentAccuracy != 0.61 {
		t.Errorf("CurrentAccuracy = %v", c.CurrentAccuracy)
	}
	if q.Text != "Which pet?" {
		t.Errorf("Text = %q, want prompt template fallback", q.Text)
	}
	if q.Progress != 4 {
		t.Errorf("Progress = %v, want server value 4", q.Progress)
	}
	if _, ok := q.Profile(); ok {
		t.Error("comparison must not expose a profile variant")
	}
	if _, ok := q.Insight(); ok {
		t.Error("comparison must not expose an insight variant")
	}
}

func TestDecode_ProgressTrustedFromServer(t *testing.T) {
	// 150/300 would derive 50; the delivered value wins.
	q, err := Decode([]byte(`{"id":"q1","left":"A","right":"B","total_answered":150,"milestone":300,"progress":37}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if q.Progress != 37 {
		t.Errorf("Progress = %v, want 37", q.Progress)
	}
}

func TestDecode_ProgressMissingFallsBack(t *testing.T) {
	q, err := Decode([]byte(`{"id":"q1","left":"A","right":"B","total_answered":150,"milestone":300}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if q.Progress != 50 {
		t.Errorf("Progress = %v, want 50", q.Progress)
	}

	q, err = Decode([]byte(`{"id":"q1","left":"A","right":"B","total_answered":600,"milestone":300,"progress":null}`))
	if err != nil {
		t.Fatalf("Decode null progress: %v", err)
	}
	if q.Progress != 100 {
		t.Errorf("Progress = %v, want 100", q.Progress)
	}
}

func TestDecode_ProfileVariants(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType Type
		freeText bool
	}{
		{
			name:     "options",
			raw:      `{"id":5,"question_type":"profile_option","text":"Favourite season?","options":["Summer","Winter"]}`,
			wantType: TypeProfileOption,
		},
		{
			name:     "free text",
			raw:      `{"id":6,"question_type":"profile_text","text":"Where did you grow up?"}`,
			wantType: TypeProfileText,
			freeText: true,
		},
		{
			name:     "option tag without options",
			raw:      `{"id":7,"question_type":"profile_option","text":"Job title?","options":[]}`,
			wantType: TypeProfileText,
			freeText: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if q.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", q.Type, tt.wantType)
			}
			p, ok := q.Profile()
			if !ok {
				t.Fatal("expected profile variant")
			}
			if p.FreeText() != tt.freeText {
				t.Errorf("FreeText = %v, want %v", p.FreeText(), tt.freeText)
			}
			if _, ok := q.Comparison(); ok {
				t.Error("profile must not expose a comparison variant")
			}
			if q.Type.SubmitType() != "profile_option" {
				t.Errorf("SubmitType = %q", q.Type.SubmitType())
			}
		})
	}
}

func TestDecode_Insight(t *testing.T) {
	q, err := Decode([]byte(`{"id":"i1","question_type":"insight","text":"You lean adventurous","insight_category":"Personality","insight_area":"Openness","is_high":true,"total_answered":40,"milestone":300}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	in, ok := q.Insight()
	if !ok {
		t.Fatal("expected insight variant")
	}
	if !in.IsHigh || in.Area != "Openness" || in.Category != "Personality" {
		t.Errorf("insight = %+v", in)
	}
	if q.RequiresSubmission() {
		t.Error("insight must not require a submission")
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	q, err := Decode([]byte(`{"id":"x","question_type":"hologram"}`))
	if err != nil {
		t.Fatalf("unknown tag must not be a decode error: %v", err)
	}
	if q.Type != TypeUnknown {
		t.Errorf("Type = %q, want unknown", q.Type)
	}
	if q.RawType != "hologram" {
		t.Errorf("RawType = %q", q.RawType)
	}
	if q.RequiresSubmission() {
		t.Error("unknown question must not accept a submission")
	}
}

func TestDecode_ContractViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"id":`},
		{"missing id", `{"left":"A","right":"B"}`},
		{"comparison missing right", `{"id":"q1","left":"A"}`},
		{"negative answered", `{"id":"q1","left":"A","right":"B","total_answered":-1}`},
		{"progress over 100", `{"id":"q1","left":"A","right":"B","progress":120}`},
		{"options not strings", `{"id":"q1","question_type":"profile_option","options":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var inv *ErrInvalidEnvelope
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidEnvelope, got %T", err)
			}
		})
	}
}

func TestProfile_HasOption(t *testing.T) {
	p := Profile{Options: []string{"Tea", "Coffee"}}
	if !p.HasOption("Tea") {
		t.Error("expected Tea to be an option")
	}
	if p.HasOption("tea") {
		t.Error("option match must be exact")
	}
	if p.HasOption("Water") {
		t.Error("Water is not an option")
	}
}
