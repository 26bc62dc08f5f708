// Package insights formats the personality report the backend unlocks once
// enough questions have been answered.
package insights

import (
	"fmt"
	"math"
)

// Result is one ranked insight for a category.
type Result struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Area        string  `json:"insight_area"`
	Category    string  `json:"insight_category"`
	IsHigh      bool    `json:"is_high"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
}

// Categories lists the report categories in display order.
var Categories = []string{
	"Personality",
	"Career",
	"Hogwarts House",
	"Archetype",
	"Hobby",
	"Food",
	"D&D Class",
	"Motivation",
	"Movie",
	"Music",
	"TV",
	"Gift Category",
	"General Personality",
	"General Career",
}

// Format renders r as a one-line headline. The wording depends on the category.
func Format(r Result) string {
	switch r.Category {
	case "Hogwarts House", "D&D Class":
		if r.IsHigh {
			return fmt.Sprintf("You're a %s! (%s)", r.Area, scaled(r.Score, 1000))
		}
		return "Not Hogwarts House: " + r.Area

	case "Archetype", "Personality", "Career", "General Personality", "General Career", "Motivation":
		return fmt.Sprintf("#%d: %s (%s)", r.Rank, r.Area, scaled(r.Score, 1000))

	case "Hobby", "Food", "Music", "Movie", "TV", "Gift Category", "Automobile Brand":
		if r.IsHigh {
			return r.Area
		}
		return "Predicted not to like " + r.Area

	case "Famous Person":
		return fmt.Sprintf("#%d: %s (%s)", r.Rank, r.Area, scaled(r.Score, 100))

	default:
		return "Your Insight in " + r.Area
	}
}

// scaled renders score*factor rounded to an integer, or "" for a zero score.
func scaled(score, factor float64) string {
	if score == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f", math.Round(score*factor))
}
