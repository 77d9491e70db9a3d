package catalog

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

var ErrMissingRequiredField = errors.New("missing required field")

// ProductRecord is one product as scraped from the catalog page. Title and
// ProductURL are required; everything else defaults to the empty string when
// the page doesn't render it.
type ProductRecord struct {
	Title        string `json:"title"`
	Price        string `json:"price"`
	PricePerUnit string `json:"price_per_unit"`
	Brand        string `json:"brand"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url"`
	ProductURL   string `json:"product_url"`
}

func (p ProductRecord) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title", ErrMissingRequiredField)
	}
	if p.ProductURL == "" {
		return fmt.Errorf("%w: product_url", ErrMissingRequiredField)
	}
	return nil
}

// EnrichedDocument is a ProductRecord plus its generated summary. Immutable
// once produced; the non-text fields are carried through unchanged.
type EnrichedDocument struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	Price      string `json:"price"`
	Brand      string `json:"brand"`
	Category   string `json:"category"`
	ProductURL string `json:"product_url"`
	ImageURL   string `json:"image_url"`
}

// NewEnrichedDocument binds a generated summary to its source record.
func NewEnrichedDocument(p ProductRecord, text string) EnrichedDocument {
	return EnrichedDocument{
		Title:      p.Title,
		Text:       text,
		Price:      p.Price,
		Brand:      p.Brand,
		Category:   p.Category,
		ProductURL: p.ProductURL,
		ImageURL:   p.ImageURL,
	}
}

// DocumentID derives a stable vector id from the product URL, so repeated
// ingestion runs upsert over the same entries instead of accumulating
// duplicates.
func DocumentID(productURL string) string {
	hash := sha256.Sum256([]byte(productURL))
	return fmt.Sprintf("%x", hash)
}

// Metadata is the canonical field set attached to every indexed vector.
func (d EnrichedDocument) Metadata() map[string]any {
	return map[string]any{
		"title":       d.Title,
		"text":        d.Text,
		"price":       d.Price,
		"brand":       d.Brand,
		"category":    d.Category,
		"product_url": d.ProductURL,
		"image_url":   d.ImageURL,
	}
}

// DocumentFromMetadata rebuilds a document from stored vector metadata.
// Unknown or missing keys resolve to empty strings.
func DocumentFromMetadata(m map[string]any) EnrichedDocument {
	str := func(key string) string {
		v, _ := m[key].(string)
		return v
	}
	return EnrichedDocument{
		Title:      str("title"),
		Text:       str("text"),
		Price:      str("price"),
		Brand:      str("brand"),
		Category:   str("category"),
		ProductURL: str("product_url"),
		ImageURL:   str("image_url"),
	}
}
