package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"cheesemate/internal/adapter/gemini"
)

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := gemini.NewGenerator("", "gemini-1.5-flash", 0.7)
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role": "model",
						"parts": []map[string]any{
							{"text": "Cheddar is a firm cow's milk cheese."},
						},
					},
				},
			},
		})
	}))
	defer ts.Close()

	gen, err := gemini.NewGenerator("test-key", "gemini-1.5-flash", 0.7,
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	defer gen.Close()

	got, err := gen.Complete(context.Background(), "what is cheddar?")
	require.NoError(t, err)
	assert.Equal(t, "Cheddar is a firm cow's milk cheese.", got)
}

func TestComplete_EmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"candidates": []map[string]any{}})
	}))
	defer ts.Close()

	gen, err := gemini.NewGenerator("test-key", "gemini-1.5-flash", 0.7,
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	defer gen.Close()

	_, err = gen.Complete(context.Background(), "what is cheddar?")
	assert.Error(t, err)
}
