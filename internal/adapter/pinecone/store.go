package pinecone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cheesemate/internal/vector"
)

// Store adapts Client to the vector.Store port, pinning one index and
// resolving its data-plane host on demand.
type Store struct {
	client *Client

	indexName string
	dimension int
	metric    string
	cloud     string
	region    string

	mu   sync.Mutex
	host string
}

type StoreConfig struct {
	IndexName string
	Dimension int
	Metric    string
	Cloud     string
	Region    string
	// Host skips describe_index resolution when set.
	Host string
}

func NewStore(client *Client, cfg StoreConfig) (*Store, error) {
	if client == nil {
		return nil, errors.New("pinecone client required")
	}
	if strings.TrimSpace(cfg.IndexName) == "" {
		return nil, errors.New("index name required")
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	if cfg.Metric == "" {
		cfg.Metric = "cosine"
	}
	if cfg.Cloud == "" {
		cfg.Cloud = "aws"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &Store{
		client:    client,
		indexName: cfg.IndexName,
		dimension: cfg.Dimension,
		metric:    cfg.Metric,
		cloud:     cfg.Cloud,
		region:    cfg.Region,
		host:      strings.TrimSpace(cfg.Host),
	}, nil
}

// EnsureIndex creates the index when absent and waits until it reports
// ready. An index that already exists is trusted as compatible; its
// dimension and metric are not re-validated.
func (s *Store) EnsureIndex(ctx context.Context) error {
	desc, err := s.client.DescribeIndex(ctx, s.indexName)
	if errors.Is(err, ErrIndexNotFound) {
		slog.Info("creating pinecone index",
			"index", s.indexName, "dimension", s.dimension, "metric", s.metric,
			"cloud", s.cloud, "region", s.region)
		if err := s.client.CreateIndex(ctx, s.indexName, s.dimension, s.metric, s.cloud, s.region); err != nil {
			return fmt.Errorf("create index %q: %w", s.indexName, err)
		}
		desc, err = s.waitReady(ctx)
	}
	if err != nil {
		return fmt.Errorf("describe index %q: %w", s.indexName, err)
	}

	s.mu.Lock()
	if s.host == "" {
		s.host = desc.Host
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) waitReady(ctx context.Context) (*IndexDescription, error) {
	for {
		desc, err := s.client.DescribeIndex(ctx, s.indexName)
		if err != nil {
			return nil, err
		}
		if desc.Status.Ready {
			return desc, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (s *Store) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	host, err := s.resolveHost(ctx)
	if err != nil {
		return err
	}

	wire := make([]Vector, len(vectors))
	for i, v := range vectors {
		wire[i] = Vector{ID: v.ID, Values: v.Values, Metadata: v.Metadata}
	}

	_, err = s.client.Upsert(ctx, host, UpsertRequest{Namespace: namespace, Vectors: wire})
	return err
}

func (s *Store) Query(ctx context.Context, namespace string, q []float32, topK int) ([]vector.Match, error) {
	host, err := s.resolveHost(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Query(ctx, host, QueryRequest{
		Namespace:       namespace,
		Vector:          q,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]vector.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, vector.Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (s *Store) resolveHost(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host != "" {
		return s.host, nil
	}

	desc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return "", fmt.Errorf("resolve index host: %w", err)
	}
	if strings.TrimSpace(desc.Host) == "" {
		return "", fmt.Errorf("index %q has no host", s.indexName)
	}
	s.host = desc.Host
	return s.host, nil
}
