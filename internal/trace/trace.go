package trace

import (
	"context"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// WithRunID tags a context with a correlation id for one ingestion run or
// one RAG request. Log lines downstream pick it up via RunID.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runKey, id)
}

// NewRunID generates a fresh correlation id.
func NewRunID() string {
	return uuid.New().String()
}

func RunID(ctx context.Context) string {
	if id, ok := Lookup(ctx); ok {
		return id
	}
	return "unknown"
}

// Lookup reports the run id carried by ctx, if any.
func Lookup(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runKey).(string)
	return id, ok && id != ""
}
