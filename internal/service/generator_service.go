package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"formbuilder/internal/config"
	"formbuilder/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenerationFailedMessage is shown whenever a generation call fails
const GenerationFailedMessage = "Failed to generate questions. Please check your API key and try again."

// UntitledQuestion replaces a missing generated title
const UntitledQuestion = "Untitled Question"

var ErrEmptyTopic = errors.New("Please enter a topic for your form.")

// ConfigurationError means no credential is configured for the service
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// GenerationError means the call failed, timed out or returned content
// that could not be parsed
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return GenerationFailedMessage
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// QuestionGenerator turns a topic into candidate questions
type QuestionGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, topic string) ([]model.QuestionDraft, error)
}

// GeneratorService asks Gemini for form questions using structured output
type GeneratorService struct {
	config *config.AIConfig
	newID  func() string
	logger *zap.Logger
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(cfg *config.AIConfig, logger *zap.Logger) *GeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		config: cfg,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Enabled returns true if an API key is configured
func (s *GeneratorService) Enabled() bool {
	return s.config.IsEnabled()
}

// questionSchema constrains the model output to a list of questions
var questionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "The question text.",
			},
			"type": {
				Type: genai.TypeString,
				Enum: []string{
					string(model.QuestionTypeText),
					string(model.QuestionTypeMultipleChoice),
					string(model.QuestionTypeCheckboxes),
					string(model.QuestionTypeDropdown),
				},
				Description: "The type of question.",
			},
			"required": {
				Type:        genai.TypeBoolean,
				Description: "Whether the question is required.",
			},
			"options": {
				Type:        genai.TypeArray,
				Description: "A list of option strings for multiple choice, checkbox, or dropdown questions. Empty for text questions.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required:         []string{"title", "type", "required"},
		PropertyOrdering: []string{"title", "type", "required", "options"},
	},
}

// generatedQuestion is one item of the model's JSON answer. Every field
// may be missing.
type generatedQuestion struct {
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

// Generate requests questions about topic. It does not touch the form.
func (s *GeneratorService) Generate(ctx context.Context, topic string) ([]model.QuestionDraft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if !s.Enabled() {
		return nil, &ConfigurationError{Reason: "API_KEY environment variable not set"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout())
	defer cancel()

	text, err := s.callGemini(ctx, s.buildPrompt(topic))
	if err != nil {
		s.logger.Error("question generation failed", zap.String("topic", topic), zap.Error(err))
		return nil, &GenerationError{Cause: err}
	}

	drafts, err := s.parseQuestions(text)
	if err != nil {
		s.logger.Error("question generation returned unparseable content", zap.String("topic", topic), zap.Error(err))
		return nil, &GenerationError{Cause: err}
	}

	s.logger.Info("questions generated", zap.String("topic", topic), zap.Int("count", len(drafts)))
	return drafts, nil
}

func (s *GeneratorService) buildPrompt(topic string) string {
	return fmt.Sprintf(`Generate a list of relevant questions for a form about "%s". The questions should be diverse and practical for collecting information.`, topic)
}

// callGemini makes one structured-output request and returns the text
func (s *GeneratorService) callGemini(ctx context.Context, prompt string) (string, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  s.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, s.config.ModelName(), genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

// parseQuestions maps the model's JSON onto question drafts, filling in
// defaults for missing fields
func (s *GeneratorService) parseQuestions(text string) ([]model.QuestionDraft, error) {
	var items []generatedQuestion
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("response is not a list of questions: %q", text)
	}

	drafts := make([]model.QuestionDraft, 0, len(items))
	for _, item := range items {
		d := model.QuestionDraft{
			Title:    item.Title,
			Type:     model.QuestionType(item.Type),
			Required: item.Required,
			Options:  make([]model.Option, 0, len(item.Options)),
		}
		if d.Title == "" {
			d.Title = UntitledQuestion
		}
		if !d.Type.Valid() {
			d.Type = model.QuestionTypeText
		}
		for _, opt := range item.Options {
			d.Options = append(d.Options, model.Option{ID: s.newID(), Value: opt})
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
