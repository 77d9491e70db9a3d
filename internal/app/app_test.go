package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheesemate/internal/config"
)

func testAppConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:     "sk-test",
		PineconeAPIKey:   "pc-test",
		LLMProvider:      "openai",
		IndexName:        "cheese-products",
		IndexDimension:   1536,
		Namespace:        "cheese",
		TopK:             5,
		RetryAttempts:    3,
		RetryBaseDelayMS: 500,
		RetryMaxDelayMS:  5000,
	}
}

func TestBootstrap_OpenAIProvider(t *testing.T) {
	deps, err := Bootstrap(testAppConfig())
	require.NoError(t, err)
	assert.NotNil(t, deps.OpenAI)
	assert.NotNil(t, deps.Store)
	// OpenAI doubles as the answer generator by default.
	assert.Equal(t, deps.OpenAI, deps.Generator)
}

func TestBootstrap_GeminiProvider(t *testing.T) {
	cfg := testAppConfig()
	cfg.LLMProvider = "gemini"
	cfg.GeminiAPIKey = "g-test"

	deps, err := Bootstrap(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, deps.OpenAI, deps.Generator)
}

func TestBootstrap_GeminiProviderMissingKey(t *testing.T) {
	cfg := testAppConfig()
	cfg.LLMProvider = "gemini"

	_, err := Bootstrap(cfg)
	assert.Error(t, err)
}

func TestRetryPolicy_FromConfig(t *testing.T) {
	p := RetryPolicy(testAppConfig())
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 5*time.Second, p.MaxDelay)
}

func TestNewIngestPipeline_NilDriverForReuse(t *testing.T) {
	deps, err := Bootstrap(testAppConfig())
	require.NoError(t, err)

	p := NewIngestPipeline(testAppConfig(), deps, nil, true)
	assert.NotNil(t, p)
}
