package service

import (
	"context"
	"fmt"

	"formbuilder/internal/app"
	"formbuilder/internal/document"
	"formbuilder/internal/model"

	"go.uber.org/zap"
)

// FormService applies document edits to the stored form and notifies
// subscribers of the result
type FormService struct {
	state     *app.App
	editor    *document.Editor
	broadcast Broadcaster
	logger    *zap.Logger
}

// NewFormService creates a new form service
func NewFormService(state *app.App, editor *document.Editor, broadcast Broadcaster, logger *zap.Logger) *FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormService{
		state:     state,
		editor:    editor,
		broadcast: orNop(broadcast),
		logger:    logger,
	}
}

// Form returns the current form
func (s *FormService) Form() model.Form {
	return s.state.Form()
}

func (s *FormService) apply(ctx context.Context, op string, fn func(model.Form) (model.Form, error)) (model.Form, error) {
	form, err := s.state.UpdateForm(ctx, fn)
	if err != nil {
		return form, err
	}
	s.logger.Debug("form updated", zap.String("op", op), zap.Int("questions", len(form.Questions)))
	s.broadcast.Broadcast(EventFormUpdated, form)
	return form, nil
}

// Patch merges title, description, theme or header image
func (s *FormService) Patch(ctx context.Context, patch document.FormPatch) (model.Form, error) {
	return s.apply(ctx, "patch", func(f model.Form) (model.Form, error) {
		return document.SetFields(f, patch)
	})
}

// SetHeaderImage stores an uploaded image as the header
func (s *FormService) SetHeaderImage(ctx context.Context, data []byte, contentType string) (model.Form, error) {
	return s.apply(ctx, "set_header_image", func(f model.Form) (model.Form, error) {
		return document.SetHeaderImage(f, data, contentType)
	})
}

// ClearHeaderImage removes the header image
func (s *FormService) ClearHeaderImage(ctx context.Context) (model.Form, error) {
	return s.apply(ctx, "clear_header_image", func(f model.Form) (model.Form, error) {
		return document.ClearHeaderImage(f), nil
	})
}

// AddQuestion appends a default question and returns it
func (s *FormService) AddQuestion(ctx context.Context) (model.Question, model.Form, error) {
	form, err := s.apply(ctx, "add_question", func(f model.Form) (model.Form, error) {
		return s.editor.AddQuestion(f), nil
	})
	if err != nil {
		return model.Question{}, form, err
	}
	return form.Questions[len(form.Questions)-1].Clone(), form, nil
}

// UpdateQuestion merges patch into one question. Unknown ids leave the
// form as is.
func (s *FormService) UpdateQuestion(ctx context.Context, questionID string, patch document.QuestionPatch) (model.Form, error) {
	return s.apply(ctx, "update_question", func(f model.Form) (model.Form, error) {
		return document.UpdateQuestion(f, questionID, patch)
	})
}

// RemoveQuestion deletes a question
func (s *FormService) RemoveQuestion(ctx context.Context, questionID string) (model.Form, error) {
	return s.apply(ctx, "remove_question", func(f model.Form) (model.Form, error) {
		return document.RemoveQuestion(f, questionID), nil
	})
}

// AddOption appends a placeholder option to a question
func (s *FormService) AddOption(ctx context.Context, questionID string) (model.Form, error) {
	return s.apply(ctx, "add_option", func(f model.Form) (model.Form, error) {
		return s.editor.AddOption(f, questionID), nil
	})
}

// UpdateOption sets the text of an option
func (s *FormService) UpdateOption(ctx context.Context, questionID, optionID, value string) (model.Form, error) {
	return s.apply(ctx, "update_option", func(f model.Form) (model.Form, error) {
		return document.UpdateOption(f, questionID, optionID, value), nil
	})
}

// RemoveOption deletes an option
func (s *FormService) RemoveOption(ctx context.Context, questionID, optionID string) (model.Form, error) {
	return s.apply(ctx, "remove_option", func(f model.Form) (model.Form, error) {
		return document.RemoveOption(f, questionID, optionID), nil
	})
}

// MergeGenerated appends generated questions with fresh ids. It is the
// tracker's MergeFunc.
func (s *FormService) MergeGenerated(ctx context.Context, drafts []model.QuestionDraft) (int, error) {
	if len(drafts) == 0 {
		return 0, nil
	}
	if _, err := s.apply(ctx, "merge_generated", func(f model.Form) (model.Form, error) {
		return s.editor.AppendQuestions(f, drafts), nil
	}); err != nil {
		return 0, fmt.Errorf("failed to merge generated questions: %w", err)
	}
	return len(drafts), nil
}

// Reset replaces the stored form with the default document
func (s *FormService) Reset(ctx context.Context) (model.Form, error) {
	return s.apply(ctx, "reset", func(model.Form) (model.Form, error) {
		return model.DefaultForm(s.editor.NewID), nil
	})
}
