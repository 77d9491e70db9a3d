package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"cheesemate/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		OpenAIAPIKey:   "sk-test",
		PineconeAPIKey: "pc-test",
		LLMProvider:    "openai",
		IndexDimension: 1536,
		TopK:           5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
		errIs   error
	}{
		{
			name:   "Valid Config",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "Missing OpenAI Key",
			mutate:  func(c *config.Config) { c.OpenAIAPIKey = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name:    "Missing Pinecone Key",
			mutate:  func(c *config.Config) { c.PineconeAPIKey = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name: "Gemini Provider Requires Key",
			mutate: func(c *config.Config) {
				c.LLMProvider = "gemini"
				c.GeminiAPIKey = ""
			},
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name: "Gemini Provider With Key",
			mutate: func(c *config.Config) {
				c.LLMProvider = "gemini"
				c.GeminiAPIKey = "g-test"
			},
		},
		{
			name:    "Zero Dimension",
			mutate:  func(c *config.Config) { c.IndexDimension = 0 },
			wantErr: true,
		},
		{
			name:    "Zero TopK",
			mutate:  func(c *config.Config) { c.TopK = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
