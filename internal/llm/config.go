package llm

import (
	"fmt"
	"time"
)

// Config holds the model endpoint settings.
//
// Environment Variables (read by internal/config):
// - MODEL_ID: Bedrock model id (default: anthropic.claude-3-haiku-20240307-v1:0)
// - AWS_REGION: Bedrock region (default: us-east-1)
// - ANTHROPIC_VERSION: anthropic_version body field (default: bedrock-2023-05-31)
// - MODEL_MAX_TOKENS: default max tokens per call (default: 300)
// - MODEL_TEMPERATURE: default temperature (default: 1.0)
// - MODEL_TIMEOUT: request timeout in seconds (default: 60)
type Config struct {
	ModelID          string  `json:"model_id"`
	Region           string  `json:"region"`
	AnthropicVersion string  `json:"anthropic_version"`
	MaxTokens        int64   `json:"max_tokens"`
	Temperature      float64 `json:"temperature"`
	Timeout          int     `json:"timeout"`
}

// Validate validates the configuration, including that the model id belongs
// to a supported family.
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("model id is required")
	}
	if _, err := ResolveFamily(c.ModelID); err != nil {
		return err
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if err := c.DefaultParams().Validate(); err != nil {
		return err
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

// DefaultParams returns the generation parameters used when a caller leaves
// them unset.
func (c *Config) DefaultParams() GenerationParams {
	return GenerationParams{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
