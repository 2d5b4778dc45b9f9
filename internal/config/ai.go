package config

import "time"

// DefaultGenerationModel is the Gemini model used for question generation
const DefaultGenerationModel = "gemini-2.5-flash"

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey        string `json:"-" mapstructure:"api_key"` // Never serialize
	BaseURL       string `json:"baseUrl" mapstructure:"base_url"`
	Model         string `json:"model" mapstructure:"model"`
	TimeoutMS     int    `json:"timeoutMs" mapstructure:"timeout_ms"`
	RatePerMinute int    `json:"ratePerMinute" mapstructure:"rate_per_minute"` // 0 disables limiting
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns the per-call deadline
func (c *AIConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ModelName returns the configured model or the default one
func (c *AIConfig) ModelName() string {
	if c.Model == "" {
		return DefaultGenerationModel
	}
	return c.Model
}
