package mockapi

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/similr/similr/internal/insights"
	"github.com/similr/similr/internal/question"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.passwords[req.Username]; !ok || pw != req.Password {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Unable to log in with provided credentials."}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": s.issueToken(req.Username)})
}

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.passwords[req.Username]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"A user with that username already exists."}})
		return
	}
	s.passwords[req.Username] = req.Password
	c.JSON(http.StatusCreated, gin.H{"token": s.issueToken(req.Username), "isAdmin": false})
}

var pairs = [][2]string{
	{"Cats", "Dogs"},
	{"Tea", "Coffee"},
	{"Mountains", "Beach"},
	{"Books", "Movies"},
	{"Sunrise", "Sunset"},
}

var profileOptions = []struct {
	text    string
	options []string
}{
	{"What is your favourite season?", []string{"Spring", "Summer", "Autumn", "Winter"}},
	{"How do you recharge?", []string{"Alone", "With friends", "Outdoors"}},
}

var profileTexts = []string{
	"Where did you grow up?",
	"What do you do for a living?",
}

// nextQuestion cycles comparison, option profile, text profile and insight.
func (s *Server) nextQuestion(c *gin.Context) {
	user := c.GetString(userKey)
	templateID := c.Query("promptTemplateId")
	retain := c.Query("retainPrompt")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastQuery = map[string]string{"retainPrompt": retain}
	if templateID != "" {
		s.lastQuery["promptTemplateId"] = templateID
	}

	tmpl := s.templates[s.cursor%len(s.templates)]
	if templateID != "" {
		found := false
		for _, t := range s.templates {
			if t.ID == templateID {
				tmpl, found = t, true
				break
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Unknown prompt template."})
			return
		}
	}

	answered := s.answered[user]
	n := s.cursor
	s.cursor++

	body := gin.H{
		"total_answered": answered,
		"milestone":      s.milestone,
		"progress":       question.DeriveProgress(answered, s.milestone),
	}

	switch n % 4 {
	case 0:
		p := pairs[(n/4)%len(pairs)]
		percent := float64((n*37)%100 + 1)
		body["id"] = n + 1
		body["question_type"] = string(question.TypeStandard)
		body["left"] = p[0]
		body["right"] = p[1]
		body["percent_left"] = percent
		body["left_famous_username"] = gin.H{"first": "Ada", "last": "Lovelace"}
		body["right_famous_username"] = "Alan Turing"
		body["prompt_template_id"] = tmpl.ID
		body["prompt_template"] = tmpl.Text
		body["current_accuracy"] = math.Min(0.95, 0.5+float64(answered)*0.001)
	case 1:
		p := profileOptions[(n/4)%len(profileOptions)]
		body["id"] = strconv.Itoa(n + 1)
		body["question_type"] = string(question.TypeProfileOption)
		body["text"] = p.text
		body["options"] = p.options
	case 2:
		body["id"] = strconv.Itoa(n + 1)
		body["question_type"] = string(question.TypeProfileText)
		body["text"] = profileTexts[(n/4)%len(profileTexts)]
	default:
		body["id"] = strconv.Itoa(n + 1)
		body["question_type"] = string(question.TypeInsight)
		body["text"] = "People who answer like you tend to value novelty."
		body["insight_category"] = "Personality"
		body["insight_area"] = "Openness"
		body["is_high"] = true
	}

	c.JSON(http.StatusOK, body)
}

func (s *Server) recordChoice(c *gin.Context) {
	var a question.Answer
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if a.QuestionID == "" || strings.TrimSpace(a.Choice) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "option_pair and choice are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices = append(s.choices, a)
	s.answered[c.GetString(userKey)]++
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (s *Server) listTemplates(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Template, len(s.templates))
	copy(out, s.templates)
	c.JSON(http.StatusOK, out)
}

func (s *Server) suggestTemplate(c *gin.Context) {
	var req struct {
		Text string `json:"template_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "template_text is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append(s.suggestions, req.Text)
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (s *Server) rate(target string, up bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ratings = append(s.ratings, Rating{Target: target, ID: c.Param("id"), Up: up})
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

var sampleAreas = map[string][]string{
	"Personality":    {"Openness", "Conscientiousness", "Agreeableness"},
	"Career":         {"Engineer", "Designer", "Teacher"},
	"Hogwarts House": {"Ravenclaw", "Hufflepuff"},
	"Food":           {"Sushi", "Tacos"},
}

func (s *Server) listInsights(c *gin.Context) {
	category := c.Query("category")
	positive := c.Query("is_positive") != "false"

	areas, ok := sampleAreas[category]
	if !ok {
		areas = []string{"Curiosity"}
	}

	out := make([]insights.Result, 0, len(areas))
	for i, a := range areas {
		out = append(out, insights.Result{
			ID:       category + "-" + strconv.Itoa(i+1),
			Title:    category,
			Area:     a,
			Category: category,
			IsHigh:   positive,
			Rank:     i + 1,
			Score:    0.05 - float64(i)*0.01,
		})
	}
	c.JSON(http.StatusOK, out)
}
