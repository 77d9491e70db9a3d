package enrich

import (
	"context"
	"fmt"
	"strings"

	"cheesemate/internal/catalog"
)

// Completer is the single-turn generation call the enricher needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Enricher turns a scraped product into a short natural-language summary
// suitable for embedding and retrieval.
type Enricher struct {
	llm Completer
}

func New(llm Completer) *Enricher {
	return &Enricher{llm: llm}
}

const promptTemplate = `Write a 2-3 sentence product summary suitable for a cheese recommendation chatbot.

Include brand, product type, and a helpful suggestion for how this cheese might be used. Be helpful, friendly, and accurate.

Product info:
- Name: %s
- Price: %s
- Brand: %s
- Category: %s`

// Enrich produces one EnrichedDocument per record, carrying all structured
// fields through unchanged. Failures are the caller's to handle; no document
// is produced for a failed record.
func (e *Enricher) Enrich(ctx context.Context, rec catalog.ProductRecord) (catalog.EnrichedDocument, error) {
	text, err := e.llm.Complete(ctx, Prompt(rec))
	if err != nil {
		return catalog.EnrichedDocument{}, fmt.Errorf("enrich %q: %w", rec.Title, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return catalog.EnrichedDocument{}, fmt.Errorf("enrich %q: empty summary", rec.Title)
	}
	return catalog.NewEnrichedDocument(rec, text), nil
}

// Prompt renders the enrichment prompt for a record. Missing optional
// fields show as "N/A" so the model doesn't invent them.
func Prompt(rec catalog.ProductRecord) string {
	price := rec.Price
	if price == "" {
		price = "N/A"
	} else if rec.PricePerUnit != "" {
		price = fmt.Sprintf("%s (%s)", price, rec.PricePerUnit)
	}
	return fmt.Sprintf(promptTemplate, orNA(rec.Title), price, orNA(rec.Brand), orNA(rec.Category))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
