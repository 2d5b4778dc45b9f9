package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"formbuilder/internal/app"
	"formbuilder/internal/cache"
	"formbuilder/internal/metrics"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
	"formbuilder/internal/viewer"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ids in the default form built with counterIDs("seed")
const (
	nameQuestion   = "seed-1"
	topicsQuestion = "seed-2"
)

func newTestFillService(t *testing.T) (*FillService, *recordingBroadcaster, *metrics.Metrics) {
	t.Helper()
	state, _ := newTestApp(t)
	b := &recordingBroadcaster{}
	m := metrics.New()
	svc := NewFillService(state, cache.NewMemoryFillSessionCache(), m, b, nil)
	svc.newID = counterIDs("sub")
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	return svc, b, m
}

func TestFillService_SessionFlow(t *testing.T) {
	svc, b, m := newTestFillService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewer.StateFilling, session.State)

	_, err = svc.SetAnswer(ctx, session.ID, nameQuestion, "Ada")
	require.NoError(t, err)
	_, err = svc.ToggleOption(ctx, session.ID, topicsQuestion, "Science", true)
	require.NoError(t, err)
	got, err := svc.ToggleOption(ctx, session.ID, topicsQuestion, "Technology", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Science", "Technology"}, got.Answers[topicsQuestion].Values())

	session, sub, err := svc.Submit(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, viewer.StateSubmitted, session.State)
	assert.Equal(t, sub.ID, session.SubmissionID)
	assert.Equal(t, "Ada", sub.Answers[nameQuestion].Value())

	subs := svc.state.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)
	assert.Equal(t, []string{EventSubmissionReceived}, b.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions))

	_, err = svc.SetAnswer(ctx, session.ID, nameQuestion, "Bob")
	assert.ErrorIs(t, err, viewer.ErrAlreadySubmitted)

	session, err = svc.Reset(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, viewer.StateFilling, session.State)
	assert.Empty(t, session.Answers)
}

func TestFillService_SubmitMissingRequiredKeepsErrors(t *testing.T) {
	svc, b, _ := newTestFillService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.SetAnswer(ctx, session.ID, nameQuestion, "")
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, session.ID)
	var verrs viewer.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, viewer.RequiredMessage, verrs[nameQuestion])

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, viewer.StateFilling, stored.State)
	assert.Equal(t, viewer.RequiredMessage, stored.Errors[nameQuestion])
	assert.Empty(t, svc.state.Submissions())
	assert.Empty(t, b.Events())
}

func TestFillService_UnknownSession(t *testing.T) {
	svc, _, _ := newTestFillService(t)
	_, err := svc.SetAnswer(context.Background(), "missing", nameQuestion, "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFillService_SubmitAnswers(t *testing.T) {
	svc, _, _ := newTestFillService(t)
	ctx := context.Background()

	sub, err := svc.SubmitAnswers(ctx, model.Answers{
		nameQuestion: model.Single("Grace"),
		"stale":      model.Single("dropped"),
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.ID)
	assert.NotContains(t, sub.Answers, "stale")

	_, err = svc.SubmitAnswers(ctx, model.Answers{})
	var verrs viewer.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Len(t, svc.state.Submissions(), 1)
}

// slowKV widens the window between reading and persisting state
type slowKV struct {
	*repository.MemoryKV
	delay time.Duration
}

func (s *slowKV) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(s.delay)
	return s.MemoryKV.Set(ctx, key, value)
}

func TestFillService_ConcurrentSubmitRecordsOnce(t *testing.T) {
	ctx := context.Background()
	state := app.New(&slowKV{MemoryKV: repository.NewMemoryKV(), delay: 20 * time.Millisecond}, "test", counterIDs("seed"), nil)
	require.NoError(t, state.Load(ctx))
	svc := NewFillService(state, cache.NewMemoryFillSessionCache(), nil, nil, nil)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.SetAnswer(ctx, session.ID, nameQuestion, "Ada")
	require.NoError(t, err)

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Submit(ctx, session.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, viewer.ErrAlreadySubmitted)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, state.Submissions(), 1)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, viewer.StateSubmitted, stored.State)
	assert.Equal(t, state.Submissions()[0].ID, stored.SubmissionID)
}

func TestFillService_ConcurrentTogglesAreNotLost(t *testing.T) {
	svc, _, _ := newTestFillService(t)
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	require.NoError(t, err)

	values := []string{"Technology", "Art & Design", "Science"}
	var wg sync.WaitGroup
	for _, v := range values {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			_, err := svc.ToggleOption(ctx, session.ID, topicsQuestion, v, true)
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, values, stored.Answers[topicsQuestion].Values())
}
