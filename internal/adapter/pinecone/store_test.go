package pinecone_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheesemate/internal/adapter/pinecone"
	"cheesemate/internal/vector"
)

// fakePinecone serves both the control plane and the data plane from one
// httptest server; the index "host" it reports is its own address.
type fakePinecone struct {
	t *testing.T

	created   atomic.Bool
	preexists bool

	upserts []pinecone.UpsertRequest
	queryFn func(req map[string]any) []map[string]any
}

func (f *fakePinecone) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "test-key", r.Header.Get("Api-Key"))

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/indexes/cheese-products":
			if !f.preexists && !f.created.Load() {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"name":      "cheese-products",
				"host":      r.Host,
				"dimension": 3,
				"metric":    "cosine",
				"status":    map[string]any{"ready": true, "state": "Ready"},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/indexes":
			var req map[string]any
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(f.t, "cheese-products", req["name"])
			assert.Equal(f.t, float64(3), req["dimension"])
			assert.Equal(f.t, "cosine", req["metric"])
			f.created.Store(true)
			json.NewEncoder(w).Encode(map[string]any{"name": "cheese-products"})
		case r.Method == http.MethodPost && r.URL.Path == "/vectors/upsert":
			var req pinecone.UpsertRequest
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
			f.upserts = append(f.upserts, req)
			json.NewEncoder(w).Encode(map[string]any{"upsertedCount": len(req.Vectors)})
		case r.Method == http.MethodPost && r.URL.Path == "/query":
			var req map[string]any
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
			matches := []map[string]any{}
			if f.queryFn != nil {
				matches = f.queryFn(req)
			}
			json.NewEncoder(w).Encode(map[string]any{"matches": matches})
		default:
			f.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func newFakeStore(t *testing.T, f *fakePinecone) *pinecone.Store {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)

	client, err := pinecone.NewClient(pinecone.Config{
		APIKey:     "test-key",
		BaseURL:    ts.URL,
		HostScheme: "http",
	})
	require.NoError(t, err)

	store, err := pinecone.NewStore(client, pinecone.StoreConfig{
		IndexName: "cheese-products",
		Dimension: 3,
		Host:      u.Host,
	})
	require.NoError(t, err)
	return store
}

func TestEnsureIndex_CreatesWhenAbsent(t *testing.T) {
	f := &fakePinecone{t: t}
	store := newFakeStore(t, f)

	require.NoError(t, store.EnsureIndex(context.Background()))
	assert.True(t, f.created.Load())

	// Second call is idempotent: index now exists, no second create.
	require.NoError(t, store.EnsureIndex(context.Background()))
}

func TestEnsureIndex_ExistingIndexUntouched(t *testing.T) {
	f := &fakePinecone{t: t, preexists: true}
	store := newFakeStore(t, f)

	require.NoError(t, store.EnsureIndex(context.Background()))
	assert.False(t, f.created.Load())
}

func TestUpsert_SendsNamespaceAndVectors(t *testing.T) {
	f := &fakePinecone{t: t, preexists: true}
	store := newFakeStore(t, f)

	err := store.Upsert(context.Background(), "cheese", []vector.Vector{
		{ID: "p1", Values: []float32{1, 0, 0}, Metadata: map[string]any{"title": "Cheddar Block"}},
	})
	require.NoError(t, err)

	require.Len(t, f.upserts, 1)
	assert.Equal(t, "cheese", f.upserts[0].Namespace)
	require.Len(t, f.upserts[0].Vectors, 1)
	assert.Equal(t, "p1", f.upserts[0].Vectors[0].ID)
	assert.Equal(t, "Cheddar Block", f.upserts[0].Vectors[0].Metadata["title"])
}

func TestQuery_MapsMatches(t *testing.T) {
	f := &fakePinecone{t: t, preexists: true}
	f.queryFn = func(req map[string]any) []map[string]any {
		assert.Equal(t, "cheese", req["namespace"])
		assert.Equal(t, float64(1), req["topK"])
		assert.Equal(t, true, req["includeMetadata"])
		return []map[string]any{
			{"id": "p1", "score": 0.99, "metadata": map[string]any{"title": "Cheddar Block"}},
		}
	}
	store := newFakeStore(t, f)

	matches, err := store.Query(context.Background(), "cheese", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)
	assert.InDelta(t, 0.99, matches[0].Score, 1e-6)
	assert.Equal(t, "Cheddar Block", matches[0].Metadata["title"])
}

func TestQuery_EmptyNamespace(t *testing.T) {
	f := &fakePinecone{t: t, preexists: true}
	store := newFakeStore(t, f)

	matches, err := store.Query(context.Background(), "empty", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
