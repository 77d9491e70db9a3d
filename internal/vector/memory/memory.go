package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"cheesemate/internal/vector"
)

// Store is an in-memory vector.Store using brute-force cosine similarity.
// It backs local runs and tests where no Pinecone index is reachable.
type Store struct {
	mu         sync.RWMutex
	dimension  int
	namespaces map[string]map[string]vector.Vector
}

func NewStore(dimension int) *Store {
	return &Store{
		dimension:  dimension,
		namespaces: make(map[string]map[string]vector.Vector),
	}
}

func (s *Store) EnsureIndex(ctx context.Context) error {
	if s.dimension <= 0 {
		return errors.New("invalid dimension")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range vectors {
		if len(v.Values) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]vector.Vector)
		s.namespaces[namespace] = ns
	}
	for _, v := range vectors {
		ns[v.ID] = v
	}
	return nil
}

func (s *Store) Query(ctx context.Context, namespace string, q []float32, topK int) ([]vector.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	ns := s.namespaces[namespace]
	matches := make([]vector.Match, 0, len(ns))
	for id, v := range ns {
		matches = append(matches, vector.Match{
			ID:       id,
			Score:    cosine(q, v.Values),
			Metadata: v.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count reports how many entries a namespace holds.
func (s *Store) Count(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
