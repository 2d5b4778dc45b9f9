package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"formbuilder/internal/metrics"
	"formbuilder/internal/model"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrGenerationInFlight = errors.New("a generation is already in progress")
	ErrRateLimited        = errors.New("too many generation requests, try again later")
)

// GenerationPhase is the state of the generation tracker
type GenerationPhase string

const (
	GenerationIdle    GenerationPhase = "idle"
	GenerationPending GenerationPhase = "pending"
	GenerationSettled GenerationPhase = "settled"
)

// GenerationState is a snapshot of the tracker
type GenerationState struct {
	Phase     GenerationPhase       `json:"phase"`
	Topic     string                `json:"topic,omitempty"`
	Questions []model.QuestionDraft `json:"questions,omitempty"`
	Added     int                   `json:"added,omitempty"`
	Error     string                `json:"error,omitempty"`
	StartedAt *time.Time            `json:"startedAt,omitempty"`
	SettledAt *time.Time            `json:"settledAt,omitempty"`
}

// MergeFunc receives a successful result and returns how many questions
// were added to the form
type MergeFunc func(ctx context.Context, drafts []model.QuestionDraft) (int, error)

// GenerationTracker runs at most one generation at a time
type GenerationTracker struct {
	generator QuestionGenerator
	merge     MergeFunc
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	broadcast Broadcaster
	logger    *zap.Logger

	mu    sync.Mutex
	state GenerationState
	done  chan struct{}
}

// NewGenerationTracker creates a tracker. ratePerMinute <= 0 disables
// rate limiting.
func NewGenerationTracker(generator QuestionGenerator, merge MergeFunc, ratePerMinute int, m *metrics.Metrics, broadcast Broadcaster, logger *zap.Logger) *GenerationTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	burst := 1
	if ratePerMinute > 0 {
		limit = rate.Limit(float64(ratePerMinute) / 60)
		burst = ratePerMinute
	}
	return &GenerationTracker{
		generator: generator,
		merge:     merge,
		limiter:   rate.NewLimiter(limit, burst),
		metrics:   m,
		broadcast: orNop(broadcast),
		logger:    logger,
		state:     GenerationState{Phase: GenerationIdle},
	}
}

// Start validates topic and runs the generation in the background. The
// request context only scopes validation; the call itself outlives it.
func (t *GenerationTracker) Start(ctx context.Context, topic string) (GenerationState, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return t.State(), ErrEmptyTopic
	}
	if !t.generator.Enabled() {
		return t.State(), &ConfigurationError{Reason: "API_KEY environment variable not set"}
	}

	t.mu.Lock()
	if t.state.Phase == GenerationPending {
		t.mu.Unlock()
		return t.State(), ErrGenerationInFlight
	}
	if !t.limiter.Allow() {
		t.mu.Unlock()
		return t.State(), ErrRateLimited
	}
	startedAt := time.Now()
	t.state = GenerationState{
		Phase:     GenerationPending,
		Topic:     topic,
		StartedAt: &startedAt,
	}
	done := make(chan struct{})
	t.done = done
	snapshot := t.state
	t.mu.Unlock()

	go t.run(context.WithoutCancel(ctx), snapshot.Topic, done)
	return snapshot, nil
}

func (t *GenerationTracker) run(ctx context.Context, topic string, done chan struct{}) {
	defer close(done)

	drafts, err := t.generator.Generate(ctx, topic)
	added := 0
	if err == nil && t.merge != nil {
		added, err = t.merge(ctx, drafts)
	}

	t.mu.Lock()
	t.state.Phase = GenerationSettled
	settledAt := time.Now()
	t.state.SettledAt = &settledAt
	if err != nil {
		t.state.Error = err.Error()
		t.state.Questions = nil
	} else {
		t.state.Questions = drafts
		t.state.Added = added
	}
	settled := t.state
	t.mu.Unlock()

	t.broadcast.Broadcast(EventGenerationSettled, settled)

	if err != nil {
		t.metrics.GenerationSettled("error")
		t.logger.Warn("generation settled with error", zap.String("topic", topic), zap.Error(err))
		return
	}
	t.metrics.GenerationSettled("ok")
	t.logger.Info("generation settled", zap.String("topic", topic), zap.Int("added", added))
}

// State returns a snapshot of the tracker
func (t *GenerationTracker) State() GenerationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	if s.Questions != nil {
		s.Questions = append([]model.QuestionDraft(nil), s.Questions...)
	}
	return s
}

// Wait blocks until the running generation settles or ctx is done
func (t *GenerationTracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
