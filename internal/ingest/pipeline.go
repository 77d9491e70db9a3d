package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cheesemate/internal/catalog"
	"cheesemate/internal/retry"
	"cheesemate/internal/trace"
	"cheesemate/internal/vector"
)

// ErrNoVectors reports a run in which not a single product made it into the
// index. Partial failures are tolerated; total failure is not.
var ErrNoVectors = errors.New("no vectors ingested")

type Scraper interface {
	Scrape(ctx context.Context) ([]catalog.ProductRecord, error)
}

type Enricher interface {
	Enrich(ctx context.Context, rec catalog.ProductRecord) (catalog.EnrichedDocument, error)
}

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Config struct {
	RawPath  string
	DocsPath string
	// ReuseRaw skips the browser session and reads a previously persisted
	// raw catalog instead.
	ReuseRaw bool

	Namespace   string
	CallTimeout time.Duration
	Retry       retry.Policy

	// UpsertBatch bounds one index write. Defaults to 100.
	UpsertBatch int
}

// Stats summarizes one ingestion run.
type Stats struct {
	Scraped  int
	Enriched int
	Embedded int
	Upserted int
}

// Pipeline runs the full ingestion sequence: scrape, enrich, embed, upsert.
// One record at a time; a failed record is dropped and the rest continue.
type Pipeline struct {
	scraper  Scraper
	enricher Enricher
	embedder Embedder
	store    vector.Store
	cfg      Config
}

func NewPipeline(s Scraper, e Enricher, em Embedder, store vector.Store, cfg Config) *Pipeline {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.UpsertBatch <= 0 {
		cfg.UpsertBatch = 100
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = retry.Default
	}
	return &Pipeline{scraper: s, enricher: e, embedder: em, store: store, cfg: cfg}
}

func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	ctx = trace.WithRunID(ctx, trace.NewRunID())
	var stats Stats

	// One-time setup failures abort the run.
	if err := p.store.EnsureIndex(ctx); err != nil {
		return stats, fmt.Errorf("ensure index: %w", err)
	}

	products, err := p.collect(ctx)
	if err != nil {
		return stats, err
	}
	stats.Scraped = len(products)

	docs := p.enrichAll(ctx, products)
	stats.Enriched = len(docs)

	if p.cfg.DocsPath != "" {
		if err := catalog.SaveDocs(p.cfg.DocsPath, docs); err != nil {
			slog.WarnContext(ctx, "could not persist enriched corpus", "path", p.cfg.DocsPath, "error", err)
		}
	}

	vectors := p.embedAll(ctx, docs)
	stats.Embedded = len(vectors)

	upserted, err := p.upsertAll(ctx, vectors)
	stats.Upserted = upserted
	if err != nil {
		return stats, err
	}

	slog.InfoContext(ctx, "ingestion complete",
		"scraped", stats.Scraped,
		"enriched", stats.Enriched,
		"embedded", stats.Embedded,
		"upserted", stats.Upserted,
	)
	return stats, nil
}

func (p *Pipeline) collect(ctx context.Context) ([]catalog.ProductRecord, error) {
	if p.cfg.ReuseRaw {
		products, err := catalog.LoadRaw(p.cfg.RawPath)
		if err != nil {
			return nil, fmt.Errorf("load raw catalog: %w", err)
		}
		slog.InfoContext(ctx, "reusing persisted catalog", "path", p.cfg.RawPath, "products", len(products))
		return products, nil
	}

	products, err := p.scraper.Scrape(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	if p.cfg.RawPath != "" {
		if err := catalog.SaveRaw(p.cfg.RawPath, products); err != nil {
			slog.WarnContext(ctx, "could not persist raw catalog", "path", p.cfg.RawPath, "error", err)
		}
	}
	return products, nil
}

func (p *Pipeline) enrichAll(ctx context.Context, products []catalog.ProductRecord) []catalog.EnrichedDocument {
	docs := make([]catalog.EnrichedDocument, 0, len(products))
	for _, rec := range products {
		var doc catalog.EnrichedDocument
		err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
			defer cancel()
			var err error
			doc, err = p.enricher.Enrich(callCtx, rec)
			return err
		})
		if err != nil {
			slog.ErrorContext(ctx, "enrichment failed, dropping record", "title", rec.Title, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func (p *Pipeline) embedAll(ctx context.Context, docs []catalog.EnrichedDocument) []vector.Vector {
	vectors := make([]vector.Vector, 0, len(docs))
	for _, doc := range docs {
		var emb [][]float32
		err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
			defer cancel()
			var err error
			emb, err = p.embedder.Embed(callCtx, []string{doc.Text})
			return err
		})
		if err != nil || len(emb) != 1 {
			slog.ErrorContext(ctx, "embedding failed, dropping document", "title", doc.Title, "error", err)
			continue
		}
		vectors = append(vectors, vector.Vector{
			ID:       catalog.DocumentID(doc.ProductURL),
			Values:   emb[0],
			Metadata: doc.Metadata(),
		})
	}
	return vectors
}

func (p *Pipeline) upsertAll(ctx context.Context, vectors []vector.Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, ErrNoVectors
	}

	upserted := 0
	for start := 0; start < len(vectors); start += p.cfg.UpsertBatch {
		end := start + p.cfg.UpsertBatch
		if end > len(vectors) {
			end = len(vectors)
		}
		batch := vectors[start:end]

		err := p.cfg.Retry.Do(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
			defer cancel()
			return p.store.Upsert(callCtx, p.cfg.Namespace, batch)
		})
		if err != nil {
			slog.ErrorContext(ctx, "index upsert failed for batch", "from", start, "to", end, "error", err)
			continue
		}
		upserted += len(batch)
	}

	if upserted == 0 {
		return 0, fmt.Errorf("%w: every upsert batch failed", ErrNoVectors)
	}
	return upserted, nil
}
