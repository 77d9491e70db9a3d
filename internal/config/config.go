package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Catalog page
	CatalogURL string `envconfig:"CATALOG_URL" default:"https://shop.kimelo.com/department/cheese/3365"`

	// Local data files
	DataDir  string `envconfig:"DATA_DIR" default:"data"`
	RawFile  string `envconfig:"RAW_FILE" default:"cheese_raw.json"`
	DocsFile string `envconfig:"DOCS_FILE" default:"cheese_docs.jsonl"`

	// OpenAI
	OpenAIAPIKey  string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	ChatModel     string  `envconfig:"CHAT_MODEL" default:"gpt-4"`
	EmbedModel    string  `envconfig:"EMBED_MODEL" default:"text-embedding-3-small"`
	Temperature   float32 `envconfig:"CHAT_TEMPERATURE" default:"0.7"`

	// Alternative answer generator. "openai" or "gemini".
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"openai"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Pinecone
	PineconeAPIKey  string `envconfig:"PINECONE_API_KEY"`
	PineconeBaseURL string `envconfig:"PINECONE_BASE_URL" default:"https://api.pinecone.io"`
	IndexHost       string `envconfig:"PINECONE_INDEX_HOST"`
	IndexName       string `envconfig:"PINECONE_INDEX_NAME" default:"cheese-products"`
	IndexDimension  int    `envconfig:"PINECONE_DIMENSION" default:"1536"`
	IndexMetric     string `envconfig:"PINECONE_METRIC" default:"cosine"`
	IndexCloud      string `envconfig:"PINECONE_CLOUD" default:"aws"`
	IndexRegion     string `envconfig:"PINECONE_REGION" default:"us-east-1"`
	Namespace       string `envconfig:"PINECONE_NAMESPACE" default:"cheese"`

	// Scraper
	ScrapeHeadless   bool          `envconfig:"SCRAPE_HEADLESS" default:"true"`
	ElementTimeout   time.Duration `envconfig:"SCRAPE_ELEMENT_TIMEOUT" default:"10s"`
	InitialSettle    time.Duration `envconfig:"SCRAPE_INITIAL_SETTLE" default:"3s"`
	PostScrollSettle time.Duration `envconfig:"SCRAPE_SCROLL_SETTLE" default:"2s"`

	// Retrieval
	TopK         int    `envconfig:"RAG_TOP_K" default:"5"`
	QueryLogFile string `envconfig:"QUERY_LOG_FILE" default:""`

	// Resilience
	CallTimeout      time.Duration `envconfig:"CALL_TIMEOUT" default:"60s"`
	RetryAttempts    int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelayMS int           `envconfig:"RETRY_BASE_DELAY_MS" default:"500"`
	RetryMaxDelayMS  int           `envconfig:"RETRY_MAX_DELAY_MS" default:"5000"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
	}
	if c.PineconeAPIKey == "" {
		return fmt.Errorf("%w: PINECONE_API_KEY", ErrMissingRequired)
	}
	if c.LLMProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY (LLM_PROVIDER=gemini)", ErrMissingRequired)
	}
	if c.IndexDimension <= 0 {
		return fmt.Errorf("PINECONE_DIMENSION must be positive, got %d", c.IndexDimension)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be positive, got %d", c.TopK)
	}
	return nil
}

// RawPath is the on-disk location of the scraped catalog.
func (c *Config) RawPath() string { return filepath.Join(c.DataDir, c.RawFile) }

// DocsPath is the on-disk location of the enriched corpus.
func (c *Config) DocsPath() string { return filepath.Join(c.DataDir, c.DocsFile) }
