package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cheesemate/internal/app"
	"cheesemate/internal/config"
	"cheesemate/internal/logger"
	"cheesemate/internal/rag"
	"cheesemate/internal/session"
)

// Interactive REPL over the RAG service. Each line is one question; the
// answer streams to stdout followed by its product references.
func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stderr, nil))))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	deps, err := app.Bootstrap(cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}

	svc := app.NewRAGService(cfg, deps)
	if cfg.QueryLogFile != "" {
		ql, err := rag.NewFileQueryLogger(cfg.QueryLogFile)
		if err != nil {
			slog.Error("failed to open query log", "path", cfg.QueryLogFile, "error", err)
			os.Exit(1)
		}
		svc = svc.WithQueryLogger(ql)
	}
	sess := session.New()
	ctx := context.Background()

	fmt.Println("Ask me about cheese (ctrl-d to quit).")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		question := strings.TrimSpace(sc.Text())
		if question == "" {
			continue
		}

		answer := svc.Ask(ctx, sess, question, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()

		for _, ref := range answer.References {
			fmt.Printf("  • %s — %s (%s)\n", ref.Title, ref.Price, ref.ProductURL)
		}
		fmt.Println()
	}
}
