package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SaveRaw writes the scraped catalog as one JSON array, creating the data
// directory if needed.
func SaveRaw(path string, products []ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raw file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return fmt.Errorf("encode raw catalog: %w", err)
	}
	return nil
}

// LoadRaw reads a previously scraped catalog.
func LoadRaw(path string) ([]ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()

	var products []ProductRecord
	if err := json.NewDecoder(f).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode raw catalog: %w", err)
	}
	return products, nil
}

// SaveDocs writes the enriched corpus, one JSON document per line.
func SaveDocs(path string, docs []EnrichedDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create docs file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode doc %q: %w", doc.Title, err)
		}
	}
	return w.Flush()
}

// LoadDocs reads the enriched corpus. Blank or corrupt lines are skipped
// with a warning rather than failing the whole load.
func LoadDocs(path string) ([]EnrichedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docs file: %w", err)
	}
	defer f.Close()

	var docs []EnrichedDocument
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc EnrichedDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			slog.Warn("skipping corrupt corpus line", "path", path, "line", line, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan docs file: %w", err)
	}
	return docs, nil
}
