package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/feedback"
	"github.com/similr/similr/internal/mockapi"
	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
)

func newTestClient(t *testing.T, opts ...mockapi.Option) (*Client, *mockapi.Server) {
	t.Helper()
	mock := mockapi.New(opts...)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, auth.Static{Token: "demo-token", Username: "demo"}, nil)
	require.NoError(t, err)
	return c, mock
}

func TestFetchNextSendsSettings(t *testing.T) {
	c, mock := newTestClient(t)

	q, err := c.FetchNext(context.Background(), settings.Settings{RetainPromptTemplate: true, SelectedPromptTemplateID: "3"})
	require.NoError(t, err)
	assert.Equal(t, question.TypeStandard, q.Type)
	assert.Equal(t, map[string]string{"retainPrompt": "true", "promptTemplateId": "3"}, mock.LastQuery())

	_, err = c.FetchNext(context.Background(), settings.Settings{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"retainPrompt": "false"}, mock.LastQuery(), "unset template must not be sent")
}

func TestFetchNextNeverCaches(t *testing.T) {
	c, mock := newTestClient(t)
	for i := 0; i < 3; i++ {
		_, err := c.FetchNext(context.Background(), settings.Settings{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mock.Fetches())
}

func TestFetchNextHTTPError(t *testing.T) {
	c, mock := newTestClient(t)
	mock.FailNext("/api/option-pairs/next/", http.StatusBadGateway)

	_, err := c.FetchNext(context.Background(), settings.Settings{})
	var ne *NetworkError
	require.True(t, errors.As(err, &ne), "got %T", err)
	assert.Equal(t, http.StatusBadGateway, ne.StatusCode)
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
}

func TestFetchNextInvalidEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"q1","left":"only one side"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, auth.Static{Token: "t"}, nil)
	require.NoError(t, err)

	_, err = c.FetchNext(context.Background(), settings.Settings{})
	var inv *question.ErrInvalidEnvelope
	assert.True(t, errors.As(err, &inv), "got %v", err)
}

func TestRequestsCarryHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/"}, auth.Static{Token: "abc"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.SubmitChoice(context.Background(), question.Answer{QuestionID: "1", Choice: "Cats", QuestionType: "standard"}))

	assert.Equal(t, "Token abc", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestNotLoggedInFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, auth.Static{}, nil)
	require.NoError(t, err)

	_, err = c.FetchNext(context.Background(), settings.Settings{})
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
	assert.Zero(t, hits.Load())
}

func TestSubmitChoice(t *testing.T) {
	c, mock := newTestClient(t)

	a := question.Answer{QuestionID: "5", Choice: "Summer", QuestionType: "profile_option"}
	require.NoError(t, c.SubmitChoice(context.Background(), a))
	assert.Equal(t, []question.Answer{a}, mock.Choices())

	mock.FailNext("/api/user-choices/", http.StatusInternalServerError)
	err := c.SubmitChoice(context.Background(), a)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestThumbs(t *testing.T) {
	c, mock := newTestClient(t)

	require.NoError(t, c.Thumbs(context.Background(), feedback.Target{Type: feedback.TargetPrompt, ID: "2"}, true))
	require.NoError(t, c.Thumbs(context.Background(), feedback.Target{Type: feedback.TargetOption, ID: "8"}, false))
	assert.Equal(t, []mockapi.Rating{
		{Target: "prompt", ID: "2", Up: true},
		{Target: "option", ID: "8", Up: false},
	}, mock.Ratings())

	err := c.Thumbs(context.Background(), feedback.Target{Type: "user", ID: "1"}, true)
	assert.ErrorIs(t, err, feedback.ErrInvalidTarget)
}

func TestLoginAndSignup(t *testing.T) {
	c, _ := newTestClient(t, mockapi.WithUser("ada", "pw", ""))

	s, err := c.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "ada", s.Username)

	_, err = c.Login(context.Background(), "ada", "wrong")
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	s, err = c.Signup(context.Background(), "grace", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.False(t, s.IsAdmin)
}

func TestLoginWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "ada", "pw")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSuggestPromptTemplate(t *testing.T) {
	c, mock := newTestClient(t)

	assert.ErrorIs(t, c.SuggestPromptTemplate(context.Background(), "   "), ErrEmptySuggestion)
	require.NoError(t, c.SuggestPromptTemplate(context.Background(), "  Which snack?  "))
	assert.Equal(t, []string{"Which snack?"}, mock.Suggestions())
}

func TestPromptTemplatesAndInsights(t *testing.T) {
	c, _ := newTestClient(t)

	tmpls, err := c.PromptTemplates(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tmpls)
	assert.Equal(t, "1", tmpls[0].ID)

	res, err := c.Insights(context.Background(), "Personality", true)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "Personality", res[0].Category)
	assert.Equal(t, 1, res[0].Rank)
}

func TestPromptTemplatesNumericIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 12, "template_text": "Pick one"}]`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, auth.Static{Token: "t"}, nil)
	require.NoError(t, err)
	tmpls, err := c.PromptTemplates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []PromptTemplate{{ID: "12", Text: "Pick one"}}, tmpls)
}

type countingLister struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (l *countingLister) PromptTemplates(ctx context.Context) ([]PromptTemplate, error) {
	if l.gate != nil {
		<-l.gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return []PromptTemplate{{ID: "1", Text: "Which?"}}, nil
}

func (l *countingLister) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestTemplateCacheTTL(t *testing.T) {
	src := &countingLister{}
	tc := NewTemplateCache(src, time.Minute)
	now := time.Unix(1000, 0)
	tc.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := tc.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.count())

	now = now.Add(2 * time.Minute)
	_, err := tc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.count(), "expired entries are refetched")

	tc.Invalidate()
	_, err = tc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, src.count())
}

func TestTemplateCacheDoesNotCacheFailures(t *testing.T) {
	src := &countingLister{err: errors.New("down")}
	tc := NewTemplateCache(src, time.Minute)

	_, err := tc.Get(context.Background())
	require.Error(t, err)
	_, err = tc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, src.count())
}

func TestTemplateCacheCoalescesConcurrentMisses(t *testing.T) {
	src := &countingLister{gate: make(chan struct{})}
	tc := NewTemplateCache(src, time.Minute)

	const n = 8
	var wg sync.WaitGroup
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			got, err := tc.Get(context.Background())
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	for i := 0; i < n; i++ {
		<-started
	}
	// Give the goroutines time to join the in-flight call before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.count(), 2)
}
