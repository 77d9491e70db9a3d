package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Generator produces chat answers through the Gemini API. It satisfies the
// same generation port as the OpenAI client, selected via LLM_PROVIDER.
type Generator struct {
	apiKey      string
	model       string
	temperature float32
	clientOpts  []option.ClientOption

	mu     sync.Mutex
	client *genai.Client
}

func NewGenerator(apiKey, model string, temperature float32, opts ...option.ClientOption) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Generator{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		clientOpts:  opts,
	}, nil
}

// Complete generates the full answer for a prompt.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	model, err := g.generativeModel(ctx)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

// StreamComplete delivers partial text to onDelta as candidates arrive and
// returns the accumulated answer. onDelta may be nil.
func (g *Generator) StreamComplete(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	model, err := g.generativeModel(ctx)
	if err != nil {
		return "", err
	}

	iter := model.GenerateContentStream(ctx, genai.Text(prompt))
	var out strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		out.WriteString(chunk)
		if onDelta != nil {
			onDelta(chunk)
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

func (g *Generator) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		opts := append(g.clientOpts, option.WithAPIKey(g.apiKey))
		client, err := genai.NewClient(ctx, opts...)
		if err != nil {
			return nil, err
		}
		g.client = client
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	return model, nil
}

func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(out.String())
}
