package insights

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want string
	}{
		{"house high", Result{Category: "Hogwarts House", Area: "Ravenclaw", IsHigh: true, Score: 0.0423}, "You're a Ravenclaw! (42)"},
		{"house low", Result{Category: "Hogwarts House", Area: "Slytherin"}, "Not Hogwarts House: Slytherin"},
		{"class high", Result{Category: "D&D Class", Area: "Bard", IsHigh: true, Score: 0.1}, "You're a Bard! (100)"},
		{"ranked", Result{Category: "Personality", Area: "Openness", Rank: 2, Score: 0.0314}, "#2: Openness (31)"},
		{"ranked zero score", Result{Category: "Career", Area: "Chef", Rank: 1}, "#1: Chef ()"},
		{"like", Result{Category: "Food", Area: "Sushi", IsHigh: true}, "Sushi"},
		{"dislike", Result{Category: "Movie", Area: "Horror"}, "Predicted not to like Horror"},
		{"famous", Result{Category: "Famous Person", Area: "Ada Lovelace", Rank: 3, Score: 0.87}, "#3: Ada Lovelace (87)"},
		{"fallback", Result{Category: "Weather", Area: "Rain"}, "Your Insight in Rain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoriesAreFormattedSpecifically(t *testing.T) {
	for _, c := range Categories {
		got := Format(Result{Category: c, Area: "X", IsHigh: true, Rank: 1, Score: 0.5})
		if got == "Your Insight in X" {
			t.Errorf("category %q falls through to the generic text", c)
		}
	}
}
