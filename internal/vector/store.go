package vector

import "context"

// Vector is one entry in the similarity index: a fixed-dimension embedding
// keyed by a stable id, with the source document attached as metadata.
type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Match is one ranked query result. Score is cosine similarity, higher is
// closer.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Store is the similarity index the pipeline writes to and the retriever
// reads from. Implementations partition entries by namespace; upsert
// replaces by id within a namespace, and Query returns at most topK matches
// in descending score order. A namespace with no eligible entries yields an
// empty slice, not an error.
type Store interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
}
