package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cheesemate/internal/app"
	"cheesemate/internal/catalog"
	"cheesemate/internal/config"
	"cheesemate/internal/logger"
)

// Queries the index directly and prints ranked matches, bypassing answer
// generation. Usage: query <free-text question>
func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stderr, nil))))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: query <free-text question>")
		os.Exit(2)
	}
	question := strings.Join(os.Args[1:], " ")

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

	ctx := context.Background()
	embs, err := deps.OpenAI.Embed(ctx, []string{question})
	if err != nil {
		slog.Error("failed to embed query", "error", err)
		os.Exit(1)
	}

	matches, err := deps.Store.Query(ctx, cfg.Namespace, embs[0], cfg.TopK)
	if err != nil {
		slog.Error("query failed", "error", err)
		os.Exit(1)
	}

	if len(matches) == 0 {
		fmt.Println("No matching cheeses found.")
		return
	}

	fmt.Println("\nTop Matching Cheeses:")
	fmt.Println(strings.Repeat("-", 60))
	for i, m := range matches {
		doc := catalog.DocumentFromMetadata(m.Metadata)
		fmt.Printf("%d. %s (score %.4f)\n", i+1, doc.Title, m.Score)
		fmt.Printf("   Brand: %s\n", doc.Brand)
		fmt.Printf("   Price: %s\n", doc.Price)
		fmt.Printf("   Link:  %s\n", doc.ProductURL)
		fmt.Printf("   Image: %s\n\n", doc.ImageURL)
	}
}
