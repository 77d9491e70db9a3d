package rag

import (
	"context"
	"log/slog"
	"time"

	"cheesemate/internal/catalog"
	"cheesemate/internal/retry"
	"cheesemate/internal/session"
	"cheesemate/internal/trace"
	"cheesemate/internal/vector"
)

// Stage names one step of the answer flow, for logging and tests.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageRetrieving Stage = "retrieving"
	StageComposing  Stage = "composing"
	StageGenerating Stage = "generating"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

// Embedder turns the question into a query vector.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Generator produces the answer text, optionally streaming deltas.
type Generator interface {
	StreamComplete(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}

// Answer is what a conversational surface receives for one question: a
// well-formed answer string and up to top-k product references. It is never
// a raw fault; failures degrade to Fallback with no references.
type Answer struct {
	Text       string
	References []session.Reference
	Stage      Stage
}

type Config struct {
	Namespace   string
	TopK        int
	CallTimeout time.Duration
	Retry       retry.Policy
}

type Service struct {
	embedder  Embedder
	generator Generator
	store     vector.Store
	queryLog  *QueryLogger
	cfg       Config
}

func NewService(e Embedder, g Generator, store vector.Store, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = retry.Default
	}
	return &Service{embedder: e, generator: g, store: store, cfg: cfg}
}

// WithQueryLogger records one entry per answered question. A nil logger
// disables recording.
func (s *Service) WithQueryLogger(l *QueryLogger) *Service {
	s.queryLog = l
	return s
}

// Ask answers one question against the indexed catalog. Both the question
// and the answer are appended to sess; the service keeps no reference to it.
// onDelta, when non-nil, receives incremental answer text as it streams.
func (s *Service) Ask(ctx context.Context, sess *session.Session, question string, onDelta func(string)) Answer {
	ctx = trace.WithRunID(ctx, trace.NewRunID())
	sess.Append(session.ChatTurn{Role: session.RoleUser, Content: question})

	start := time.Now()
	answer := s.answer(ctx, question, onDelta)

	if s.queryLog != nil {
		s.queryLog.Log(QueryLogEntry{
			Question:   question,
			NumMatches: len(answer.References),
			Stage:      answer.Stage,
			Duration:   time.Since(start),
			RunID:      trace.RunID(ctx),
		})
	}

	sess.Append(session.ChatTurn{
		Role:       session.RoleAssistant,
		Content:    answer.Text,
		References: answer.References,
	})
	return answer
}

func (s *Service) answer(ctx context.Context, question string, onDelta func(string)) Answer {
	stage := StageRetrieving
	slog.DebugContext(ctx, "answering question", "stage", stage, "top_k", s.cfg.TopK)

	queryVec, err := s.embedQuestion(ctx, question)
	if err != nil {
		slog.ErrorContext(ctx, "question embedding failed", "stage", stage, "error", err)
		return fallbackAnswer()
	}

	// An index failure on the query path degrades to an empty context; the
	// index is never mutated here, so there is nothing to roll back.
	matches, err := s.store.Query(ctx, s.cfg.Namespace, queryVec, s.cfg.TopK)
	if err != nil {
		slog.WarnContext(ctx, "index query failed, continuing with empty context", "error", err)
		matches = nil
	}

	stage = StageComposing
	docs := make([]catalog.EnrichedDocument, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, catalog.DocumentFromMetadata(m.Metadata))
	}
	prompt := composePrompt(docs, question)

	stage = StageGenerating
	text, err := s.generate(ctx, prompt, onDelta)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "stage", stage, "error", err)
		return fallbackAnswer()
	}

	return Answer{
		Text:       text,
		References: references(docs),
		Stage:      StageDone,
	}
}

func (s *Service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var vec []float32
	err := s.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		embs, err := s.embedder.Embed(callCtx, []string{question})
		if err != nil {
			return err
		}
		vec = embs[0]
		return nil
	})
	return vec, err
}

// generate retries only while nothing has been streamed yet; once the
// caller has seen deltas, a retry would replay partial output.
func (s *Service) generate(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	attempts := s.cfg.Retry.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var text string
	var err error
	for i := 0; i < attempts; i++ {
		streamed := false
		wrapped := func(d string) {
			streamed = true
			if onDelta != nil {
				onDelta(d)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		text, err = s.generator.StreamComplete(callCtx, prompt, wrapped)
		cancel()

		if err == nil {
			return text, nil
		}
		if streamed || ctx.Err() != nil {
			break
		}
	}
	return "", err
}

func references(docs []catalog.EnrichedDocument) []session.Reference {
	refs := make([]session.Reference, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, session.Reference{
			Title:      d.Title,
			Price:      d.Price,
			Brand:      d.Brand,
			ProductURL: d.ProductURL,
			ImageURL:   d.ImageURL,
		})
	}
	return refs
}

func fallbackAnswer() Answer {
	return Answer{
		Text:       Fallback,
		References: []session.Reference{},
		Stage:      StageError,
	}
}
