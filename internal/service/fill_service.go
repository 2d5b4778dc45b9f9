package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formbuilder/internal/app"
	"formbuilder/internal/cache"
	"formbuilder/internal/metrics"
	"formbuilder/internal/model"
	"formbuilder/internal/viewer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("fill session not found")

// FillService drives fill sessions and records submissions
type FillService struct {
	state     *app.App
	sessions  cache.FillSessionCache
	metrics   *metrics.Metrics
	broadcast Broadcaster
	logger    *zap.Logger

	newID func() string
	now   func() time.Time
}

// NewFillService creates a new fill service
func NewFillService(state *app.App, sessions cache.FillSessionCache, m *metrics.Metrics, broadcast Broadcaster, logger *zap.Logger) *FillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FillService{
		state:     state,
		sessions:  sessions,
		metrics:   m,
		broadcast: orNop(broadcast),
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// StartSession opens a new session in the Filling state
func (s *FillService) StartSession(ctx context.Context) (*viewer.Session, error) {
	session := viewer.NewSession(s.newID(), s.now())
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// GetSession returns a stored session
func (s *FillService) GetSession(ctx context.Context, id string) (*viewer.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// update applies fn to a session as one atomic read-modify-write, so
// concurrent requests on the same session never overwrite each other
func (s *FillService) update(ctx context.Context, id string, fn func(*viewer.Session) error) (*viewer.Session, error) {
	session, err := s.sessions.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, viewer.ErrAlreadySubmitted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SetAnswer overwrites a single-valued answer
func (s *FillService) SetAnswer(ctx context.Context, sessionID, questionID, value string) (*viewer.Session, error) {
	return s.update(ctx, sessionID, func(session *viewer.Session) error {
		return session.SetAnswer(questionID, value, s.now())
	})
}

// ToggleOption checks or unchecks a checkbox value
func (s *FillService) ToggleOption(ctx context.Context, sessionID, questionID, value string, checked bool) (*viewer.Session, error) {
	return s.update(ctx, sessionID, func(session *viewer.Session) error {
		return session.ToggleOption(questionID, value, checked, s.now())
	})
}

// Submit validates the session against the current form and records the
// submission. Validation errors are kept on the session. The Submitted
// state is committed before the submission is recorded, so of several
// concurrent submits only one records and the rest get
// viewer.ErrAlreadySubmitted.
func (s *FillService) Submit(ctx context.Context, sessionID string) (*viewer.Session, model.Submission, error) {
	form := s.state.Form()
	submissionID := s.newID()
	now := s.now()

	var (
		sub   model.Submission
		verrs viewer.ValidationErrors
	)
	session, err := s.update(ctx, sessionID, func(session *viewer.Session) error {
		sub, verrs = model.Submission{}, nil
		var err error
		sub, err = session.Submit(form, submissionID, now)
		if errors.As(err, &verrs) {
			// keep the errors on the stored session
			return nil
		}
		return err
	})
	if err != nil {
		return nil, model.Submission{}, err
	}
	if verrs != nil {
		return session, model.Submission{}, verrs
	}

	if err := s.record(ctx, sub); err != nil {
		// hand the session back to the respondent so they can retry
		reverted, revertErr := s.update(ctx, sessionID, func(session *viewer.Session) error {
			if session.SubmissionID == sub.ID {
				session.State = viewer.StateFilling
				session.SubmissionID = ""
			}
			return nil
		})
		if revertErr != nil {
			s.logger.Error("failed to reopen session after record failure", zap.String("sessionId", sessionID), zap.Error(revertErr))
			return session, model.Submission{}, err
		}
		return reverted, model.Submission{}, err
	}
	return session, sub, nil
}

// Reset returns a session to Filling with no answers
func (s *FillService) Reset(ctx context.Context, sessionID string) (*viewer.Session, error) {
	return s.update(ctx, sessionID, func(session *viewer.Session) error {
		session.Reset(s.now())
		return nil
	})
}

// SubmitAnswers validates and records a complete answer map in one call
func (s *FillService) SubmitAnswers(ctx context.Context, answers model.Answers) (model.Submission, error) {
	sub, err := viewer.BuildSubmission(s.state.Form(), answers, s.newID(), s.now())
	if err != nil {
		return model.Submission{}, err
	}
	if err := s.record(ctx, sub); err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}

func (s *FillService) record(ctx context.Context, sub model.Submission) error {
	if err := s.state.AddSubmission(ctx, sub); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	s.metrics.SubmissionRecorded()
	s.logger.Info("submission recorded", zap.String("submissionId", sub.ID), zap.Int("answers", len(sub.Answers)))
	s.broadcast.Broadcast(EventSubmissionReceived, sub)
	return nil
}
