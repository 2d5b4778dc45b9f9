package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"formbuilder/internal/metrics"
	"formbuilder/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// leftover keep-alive connections from the fake Gemini tests
var leakOpts = []goleak.Option{
	goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
}

// stubGenerator blocks until release is closed
type stubGenerator struct {
	enabled bool
	release chan struct{}
	drafts  []model.QuestionDraft
	err     error
}

func (g *stubGenerator) Enabled() bool { return g.enabled }

func (g *stubGenerator) Generate(ctx context.Context, topic string) ([]model.QuestionDraft, error) {
	if g.release != nil {
		<-g.release
	}
	return g.drafts, g.err
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
	last   map[string]interface{}
}

func (b *recordingBroadcaster) Broadcast(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		b.last = make(map[string]interface{})
	}
	b.events = append(b.events, msgType)
	b.last[msgType] = payload
}

func (b *recordingBroadcaster) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func waitSettled(t *testing.T, tr *GenerationTracker) GenerationState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Wait(ctx))
	return tr.State()
}

func TestTracker_SettlesWithQuestions(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	gen := &stubGenerator{enabled: true, drafts: []model.QuestionDraft{{Title: "Q", Type: model.QuestionTypeText}}}
	var merged []model.QuestionDraft
	merge := func(ctx context.Context, d []model.QuestionDraft) (int, error) {
		merged = d
		return len(d), nil
	}
	m := metrics.New()
	b := &recordingBroadcaster{}
	tr := NewGenerationTracker(gen, merge, 0, m, b, nil)

	assert.Equal(t, GenerationIdle, tr.State().Phase)

	st, err := tr.Start(context.Background(), " Pets ")
	require.NoError(t, err)
	assert.Equal(t, GenerationPending, st.Phase)
	assert.Equal(t, "Pets", st.Topic)

	st = waitSettled(t, tr)
	assert.Equal(t, GenerationSettled, st.Phase)
	assert.Empty(t, st.Error)
	assert.Equal(t, 1, st.Added)
	assert.Equal(t, gen.drafts, merged)
	assert.Equal(t, []string{EventGenerationSettled}, b.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("ok")))
}

func TestTracker_RejectsConcurrentStart(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	gen := &stubGenerator{enabled: true, release: make(chan struct{})}
	tr := NewGenerationTracker(gen, nil, 0, nil, nil, nil)

	_, err := tr.Start(context.Background(), "Pets")
	require.NoError(t, err)

	_, err = tr.Start(context.Background(), "Cars")
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	assert.Equal(t, GenerationPending, tr.State().Phase)
	assert.Equal(t, "Pets", tr.State().Topic)

	close(gen.release)
	assert.Equal(t, GenerationSettled, waitSettled(t, tr).Phase)

	_, err = tr.Start(context.Background(), "Cars")
	require.NoError(t, err)
	waitSettled(t, tr)
}

func TestTracker_ErrorLeavesFormUntouched(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	gen := &stubGenerator{enabled: true, err: &GenerationError{Cause: errors.New("500")}}
	calls := 0
	merge := func(ctx context.Context, d []model.QuestionDraft) (int, error) {
		calls++
		return len(d), nil
	}
	m := metrics.New()
	tr := NewGenerationTracker(gen, merge, 0, m, nil, nil)

	_, err := tr.Start(context.Background(), "Pets")
	require.NoError(t, err)

	st := waitSettled(t, tr)
	assert.Equal(t, GenerationFailedMessage, st.Error)
	assert.Zero(t, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("error")))
}

func TestTracker_OutlivesRequestContext(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	gen := &stubGenerator{enabled: true, release: make(chan struct{}), drafts: []model.QuestionDraft{{Title: "Q"}}}
	tr := NewGenerationTracker(gen, nil, 0, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := tr.Start(ctx, "Pets")
	require.NoError(t, err)
	cancel()
	close(gen.release)

	st := waitSettled(t, tr)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Questions, 1)
}

func TestTracker_ValidatesBeforeStarting(t *testing.T) {
	tr := NewGenerationTracker(&stubGenerator{enabled: true}, nil, 0, nil, nil, nil)
	_, err := tr.Start(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyTopic)

	tr = NewGenerationTracker(&stubGenerator{}, nil, 0, nil, nil, nil)
	_, err = tr.Start(context.Background(), "Pets")
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, GenerationIdle, tr.State().Phase)
}

func TestTracker_RateLimited(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	tr := NewGenerationTracker(&stubGenerator{enabled: true}, nil, 1, nil, nil, nil)

	_, err := tr.Start(context.Background(), "Pets")
	require.NoError(t, err)
	waitSettled(t, tr)

	_, err = tr.Start(context.Background(), "Pets")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestTracker_StateJSONOmitsUnsetTimes(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	gen := &stubGenerator{enabled: true, release: make(chan struct{})}
	tr := NewGenerationTracker(gen, nil, 0, nil, nil, nil)

	idle, err := json.Marshal(tr.State())
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"idle"}`, string(idle))

	_, err = tr.Start(context.Background(), "Pets")
	require.NoError(t, err)
	pending, err := json.Marshal(tr.State())
	require.NoError(t, err)
	assert.Contains(t, string(pending), `"startedAt"`)
	assert.NotContains(t, string(pending), `"settledAt"`)
	assert.NotContains(t, string(pending), "0001-01-01")

	close(gen.release)
	st := waitSettled(t, tr)
	require.NotNil(t, st.SettledAt)
	require.NotNil(t, st.StartedAt)
	assert.False(t, st.SettledAt.Before(*st.StartedAt))
}
