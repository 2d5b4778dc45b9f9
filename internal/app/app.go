// Package app holds the application state: the current view, the form
// and the recorded submissions. Every change is persisted through the
// injected key-value store before it becomes visible.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"formbuilder/internal/model"
	"formbuilder/internal/repository"

	"go.uber.org/zap"
)

// ShareFragment is the URL fragment that opens the fill-in view
const ShareFragment = "view=fill"

var ErrInvalidView = errors.New("invalid view")

type App struct {
	mu          sync.RWMutex
	view        model.View
	form        model.Form
	submissions []model.Submission
	loaded      bool

	formEntry       *repository.Entry[model.Form]
	submissionEntry *repository.Entry[[]model.Submission]
	logger          *zap.Logger
}

// New wires the state to store. Keys are "<namespace>:form" and
// "<namespace>:submissions".
func New(store repository.KVStore, namespace string, newID func() string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		view: model.ViewBuilder,
		formEntry: repository.NewEntry(store, namespace+":form", func() model.Form {
			return model.DefaultForm(newID)
		}),
		submissionEntry: repository.NewEntry(store, namespace+":submissions", func() []model.Submission {
			return []model.Submission{}
		}),
		logger: logger,
	}
}

// Load reads both keys, initialising absent ones with their defaults
func (a *App) Load(ctx context.Context) error {
	form, err := a.formEntry.Load(ctx)
	if err != nil {
		return err
	}
	submissions, err := a.submissionEntry.Load(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.form = form
	a.submissions = submissions
	a.loaded = true
	a.mu.Unlock()

	a.logger.Info("state loaded",
		zap.String("formKey", a.formEntry.Key()),
		zap.Int("questions", len(form.Questions)),
		zap.Int("submissions", len(submissions)),
	)
	return nil
}

// Form returns a copy of the current form
func (a *App) Form() model.Form {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.form.Clone()
}

// Submissions returns the recorded submissions in order
func (a *App) Submissions() []model.Submission {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.Submission, len(a.submissions))
	copy(out, a.submissions)
	return out
}

// UpdateForm applies fn to a copy of the form, persists the result and
// swaps it in. If fn or the write fails the form is unchanged.
func (a *App) UpdateForm(ctx context.Context, fn func(model.Form) (model.Form, error)) (model.Form, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return model.Form{}, errors.New("state not loaded")
	}

	next, err := fn(a.form.Clone())
	if err != nil {
		return a.form.Clone(), err
	}
	if err := a.formEntry.Store(ctx, next); err != nil {
		return a.form.Clone(), err
	}
	a.form = next
	return next.Clone(), nil
}

// ReplaceForm stores form as the whole document
func (a *App) ReplaceForm(ctx context.Context, form model.Form) error {
	_, err := a.UpdateForm(ctx, func(model.Form) (model.Form, error) {
		return form.Clone(), nil
	})
	return err
}

// AddSubmission appends s to the recorded submissions and persists the list
func (a *App) AddSubmission(ctx context.Context, s model.Submission) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return errors.New("state not loaded")
	}

	next := make([]model.Submission, len(a.submissions), len(a.submissions)+1)
	copy(next, a.submissions)
	next = append(next, s)
	if err := a.submissionEntry.Store(ctx, next); err != nil {
		return err
	}
	a.submissions = next
	return nil
}

// View returns the selected view
func (a *App) View() model.View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// SetView selects a view
func (a *App) SetView(v model.View) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
	return nil
}

// ResolveView applies the share convention: a "#view=fill" fragment
// forces the fill-in view, any other fragment leaves the selection as is.
func (a *App) ResolveView(fragment string) model.View {
	if IsShareFragment(fragment) {
		return model.ViewViewer
	}
	return a.View()
}

// IsShareFragment reports whether fragment is the share convention
func IsShareFragment(fragment string) bool {
	return strings.TrimPrefix(fragment, "#") == ShareFragment
}

// ShareLink returns base with the share fragment attached
func ShareLink(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	u.Fragment = ShareFragment
	return u.String(), nil
}
