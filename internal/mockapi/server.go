// Package mockapi is an in-memory stand-in for the personality/matching
// backend. It serves every endpoint the client uses and lets tests inject
// failures.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/question"
)

// DefaultMilestone is the answer count reported as the next milestone.
const DefaultMilestone = question.ReportThreshold

// Template is a prompt template served by the mock.
type Template struct {
	ID   string `json:"id"`
	Text string `json:"template_text"`
}

// Rating is one recorded thumbs up/down.
type Rating struct {
	Target string
	ID     string
	Up     bool
}

// Server holds the mock backend's state. All methods are safe for concurrent use.
type Server struct {
	logger    *zap.Logger
	milestone int

	mu          sync.Mutex
	passwords   map[string]string
	tokens      map[string]string
	templates   []Template
	answered    map[string]int
	cursor      int
	requests    map[string]int
	lastQuery   map[string]string
	choices     []question.Answer
	ratings     []Rating
	suggestions []string
	failures    map[string][]int
	delay       time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMilestone overrides the milestone reported with each question.
func WithMilestone(n int) Option {
	return func(s *Server) { s.milestone = n }
}

// WithUser registers an account with a fixed token.
func WithUser(username, password, token string) Option {
	return func(s *Server) {
		s.passwords[username] = password
		if token != "" {
			s.tokens[token] = username
		}
	}
}

// WithAnswered starts username at n answered questions.
func WithAnswered(username string, n int) Option {
	return func(s *Server) { s.answered[username] = n }
}

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// New creates a Server seeded with a demo account (demo/demo, token "demo-token").
func New(opts ...Option) *Server {
	s := &Server{
		logger:    zap.NewNop(),
		milestone: DefaultMilestone,
		passwords: map[string]string{"demo": "demo"},
		tokens:    map[string]string{"demo-token": "demo"},
		templates: []Template{
			{ID: "1", Text: "Which do you prefer?"},
			{ID: "2", Text: "Which would you rather do on a weekend?"},
			{ID: "3", Text: "Which describes you better?"},
		},
		answered: map[string]int{},
		failures: map[string][]int{},
		requests: map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(zapLoggerMiddleware(s.logger), gin.Recovery(), s.latencyMiddleware(), s.failureMiddleware())

	api := r.Group("/api")
	api.POST("/api-token-auth/", s.login)
	api.POST("/signup/", s.signup)

	authed := api.Group("", s.tokenAuthMiddleware())
	authed.GET("/option-pairs/next/", s.nextQuestion)
	authed.POST("/user-choices/", s.recordChoice)
	authed.GET("/prompt-templates/", s.listTemplates)
	authed.POST("/suggest-prompt-template/", s.suggestTemplate)
	authed.GET("/insights/", s.listInsights)
	for _, target := range []string{"prompt", "option"} {
		authed.POST("/"+target+"/:id/thumbs-up/", s.rate(target, true))
		authed.POST("/"+target+"/:id/thumbs-down/", s.rate(target, false))
	}
	return r
}

// FailNext makes the next request to path respond with status. Calls queue.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], status)
}

// Choices returns every recorded answer in arrival order.
func (s *Server) Choices() []question.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]question.Answer, len(s.choices))
	copy(out, s.choices)
	return out
}

// nextPath is the next-question endpoint.
const nextPath = "/api/option-pairs/next/"

// Fetches returns how many next-question requests arrived, including the
// ones answered with an injected failure.
func (s *Server) Fetches() int {
	return s.Requests(nextPath)
}

// Requests returns how many requests reached path.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// LastQuery returns the query parameters of the latest next-question request.
func (s *Server) LastQuery() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.lastQuery))
	for k, v := range s.lastQuery {
		out[k] = v
	}
	return out
}

// Ratings returns every recorded thumbs rating.
func (s *Server) Ratings() []Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Rating, len(s.ratings))
	copy(out, s.ratings)
	return out
}

// Suggestions returns every suggested template text.
func (s *Server) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// issueToken creates a token for username. Callers hold s.mu.
func (s *Server) issueToken(username string) string {
	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[tok] = username
	return tok
}

// zapLoggerMiddleware logs every request with zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

func (s *Server) latencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-c.Request.Context().Done():
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			}
		}
		c.Next()
	}
}

// failureMiddleware counts each request and serves queued FailNext statuses.
func (s *Server) failureMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests[c.Request.URL.Path]++
		queue := s.failures[c.Request.URL.Path]
		var status int
		if len(queue) > 0 {
			status = queue[0]
			s.failures[c.Request.URL.Path] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
			return
		}
		c.Next()
	}
}

const userKey = "username"

// tokenAuthMiddleware accepts "Authorization: Token <token>".
func (s *Server) tokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Token ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		token := strings.TrimSpace(header[len("Token "):])

		s.mu.Lock()
		user, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}
