package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/store"
)

type fakeBackend struct {
	next      *question.Question
	submitErr error
	submitted []question.Answer
}

func (f *fakeBackend) FetchNext(context.Context, settings.Settings) (*question.Question, error) {
	return f.next, nil
}

func (f *fakeBackend) SubmitChoice(_ context.Context, a question.Answer) error {
	f.submitted = append(f.submitted, a)
	return f.submitErr
}

type failingAppender struct{ calls int }

func (f *failingAppender) Append(context.Context, store.AnswerRecord) (int64, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func openLog(t *testing.T) *store.AnswerLog {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.AnswerLog()
}

func comparison(id, templateID string) *question.Question {
	return question.NewComparison(question.Envelope{ID: id}, question.Comparison{
		Left: "Cats", Right: "Dogs", PromptTemplateID: templateID,
	})
}

func TestRecorderLogsAcknowledgedAnswers(t *testing.T) {
	ctx := context.Background()
	log := openLog(t)
	backend := &fakeBackend{next: comparison("42", "7")}
	rec := WithRecording(backend, log, nil)

	q, err := rec.FetchNext(ctx, settings.Settings{})
	require.NoError(t, err)
	require.Equal(t, "42", q.ID)

	err = rec.SubmitChoice(ctx, question.Answer{QuestionID: "42", Choice: "left", QuestionType: "standard"})
	require.NoError(t, err)

	got, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].QuestionID)
	assert.Equal(t, "left", got[0].Choice)
	assert.Equal(t, "standard", got[0].QuestionType)
	assert.Equal(t, "7", got[0].PromptTemplateID)
}

func TestRecorderSkipsFailedSubmissions(t *testing.T) {
	ctx := context.Background()
	log := openLog(t)
	backend := &fakeBackend{next: comparison("1", ""), submitErr: errors.New("boom")}
	rec := WithRecording(backend, log, nil)

	err := rec.SubmitChoice(ctx, question.Answer{QuestionID: "1", Choice: "right", QuestionType: "standard"})
	require.Error(t, err)

	n, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecorderProfileAnswerHasNoTemplate(t *testing.T) {
	ctx := context.Background()
	log := openLog(t)
	backend := &fakeBackend{next: question.NewProfile(question.Envelope{ID: "9"}, question.Profile{Prompt: "Favourite season?", Options: []string{"Spring", "Summer"}})}
	rec := WithRecording(backend, log, nil)

	_, err := rec.FetchNext(ctx, settings.Settings{})
	require.NoError(t, err)
	require.NoError(t, rec.SubmitChoice(ctx, question.Answer{QuestionID: "9", Choice: "Summer", QuestionType: "profile_option"}))

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].PromptTemplateID)
}

func TestRecorderIgnoresLogFailure(t *testing.T) {
	app := &failingAppender{}
	backend := &fakeBackend{}
	rec := WithRecording(backend, app, nil)

	err := rec.SubmitChoice(context.Background(), question.Answer{QuestionID: "3", Choice: "skip", QuestionType: "standard"})
	require.NoError(t, err)
	assert.Equal(t, 1, app.calls)
	assert.Len(t, backend.submitted, 1)
}
