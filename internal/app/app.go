package app

import (
	"fmt"
	"time"

	"cheesemate/internal/adapter/gemini"
	"cheesemate/internal/adapter/openai"
	"cheesemate/internal/adapter/pinecone"
	"cheesemate/internal/config"
	"cheesemate/internal/enrich"
	"cheesemate/internal/ingest"
	"cheesemate/internal/rag"
	"cheesemate/internal/retry"
	"cheesemate/internal/scraper"
	"cheesemate/internal/vector"
)

// Dependencies are the external clients every entry point shares.
type Dependencies struct {
	OpenAI    *openai.Client
	Store     vector.Store
	Generator rag.Generator
}

// Bootstrap builds the vendor clients from config. Setup failures here are
// fatal to whichever command called it.
func Bootstrap(cfg *config.Config) (*Dependencies, error) {
	oa, err := openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		ChatModel:   cfg.ChatModel,
		EmbedModel:  cfg.EmbedModel,
		Temperature: cfg.Temperature,
		Timeout:     cfg.CallTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	pc, err := pinecone.NewClient(pinecone.Config{
		APIKey:  cfg.PineconeAPIKey,
		BaseURL: cfg.PineconeBaseURL,
		Timeout: cfg.CallTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone client: %w", err)
	}

	store, err := pinecone.NewStore(pc, pinecone.StoreConfig{
		IndexName: cfg.IndexName,
		Dimension: cfg.IndexDimension,
		Metric:    cfg.IndexMetric,
		Cloud:     cfg.IndexCloud,
		Region:    cfg.IndexRegion,
		Host:      cfg.IndexHost,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone store: %w", err)
	}

	var generator rag.Generator = oa
	if cfg.LLMProvider == "gemini" {
		gen, err := gemini.NewGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			return nil, fmt.Errorf("gemini generator: %w", err)
		}
		generator = gen
	}

	return &Dependencies{OpenAI: oa, Store: store, Generator: generator}, nil
}

// NewIngestPipeline wires the full scrape-enrich-embed-upsert sequence.
// driver may be nil when reusing a persisted raw catalog.
func NewIngestPipeline(cfg *config.Config, deps *Dependencies, driver scraper.Driver, reuseRaw bool) *ingest.Pipeline {
	var sc ingest.Scraper
	if driver != nil {
		sc = scraper.New(driver, scraper.Config{
			URL:              cfg.CatalogURL,
			ElementTimeout:   cfg.ElementTimeout,
			InitialSettle:    cfg.InitialSettle,
			PostScrollSettle: cfg.PostScrollSettle,
		})
	}

	return ingest.NewPipeline(
		sc,
		enrich.New(deps.OpenAI),
		deps.OpenAI,
		deps.Store,
		ingest.Config{
			RawPath:     cfg.RawPath(),
			DocsPath:    cfg.DocsPath(),
			ReuseRaw:    reuseRaw,
			Namespace:   cfg.Namespace,
			CallTimeout: cfg.CallTimeout,
			Retry:       RetryPolicy(cfg),
		},
	)
}

// NewRAGService wires the question-answering path.
func NewRAGService(cfg *config.Config, deps *Dependencies) *rag.Service {
	return rag.NewService(deps.OpenAI, deps.Generator, deps.Store, rag.Config{
		Namespace:   cfg.Namespace,
		TopK:        cfg.TopK,
		CallTimeout: cfg.CallTimeout,
		Retry:       RetryPolicy(cfg),
	})
}

func RetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		Attempts:  cfg.RetryAttempts,
		BaseDelay: time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
		MaxDelay:  time.Duration(cfg.RetryMaxDelayMS) * time.Millisecond,
	}
}
