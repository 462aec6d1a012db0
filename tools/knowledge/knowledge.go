// Package knowledge provides the SQLite-backed vector knowledge base behind
// the engine's KnowledgeBase interface: markdown ingestion with a chunk
// splitter, embedding storage and cosine-ranked retrieval.
package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/observability"
	"github.com/costcare-ai/agentcore/logging"
)

const (
	noResults  = "No relevant information found."
	emptyQuery = "Empty query provided."

	chunkSeparator = "\n\n---\n\n"
)

// Embedder turns text into a vector. The Gemini client satisfies this.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options configures the knowledge base.
type Options struct {
	ChunkSize    int // characters per chunk, default 1000
	ChunkOverlap int // carried-over characters, default 200
}

// Base is the knowledge base: a vector store plus an embedder. Implements
// handlers.KnowledgeBase.
type Base struct {
	store    *Store
	embedder Embedder
	opts     Options
	logger   logging.Logger
}

// New wraps an open store and an embedder into a knowledge base.
func New(store *Store, embedder Embedder, opts Options, logger logging.Logger) *Base {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = 200
	}
	return &Base{store: store, embedder: embedder, opts: opts, logger: logger}
}

// Search implements handlers.KnowledgeBase: embeds the query, ranks stored
// chunks by cosine similarity and joins the topK into one context block.
func (b *Base) Search(ctx context.Context, query string, topK int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return emptyQuery, nil
	}

	vector, err := b.embedder.Embed(ctx, query)
	if err != nil {
		observability.RecordKnowledgeSearch("error")
		return "", fmt.Errorf("knowledge: embed query: %w", err)
	}

	chunks, err := b.store.Nearest(ctx, vector, topK)
	if err != nil {
		observability.RecordKnowledgeSearch("error")
		return "", err
	}
	if len(chunks) == 0 {
		observability.RecordKnowledgeSearch("empty")
		return noResults, nil
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}

	observability.RecordKnowledgeSearch("success")
	b.logger.Debug("knowledge_search_completed",
		"results", len(chunks), "top_score", chunks[0].Score)
	return strings.Join(parts, chunkSeparator), nil
}

// Rebuild drops the index and re-ingests every markdown file under dir.
// Returns the number of chunks indexed.
func (b *Base) Rebuild(ctx context.Context, dir string) (int, error) {
	if err := b.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("knowledge: clear index: %w", err)
	}

	total := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".md") {
			return nil
		}

		n, err := b.indexFile(ctx, path)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("knowledge: rebuild from %s: %w", dir, err)
	}

	b.logger.Info("knowledge_index_rebuilt", "dir", dir, "chunks", total)
	return total, nil
}

// Count reports how many chunks are indexed.
func (b *Base) Count(ctx context.Context) (int, error) {
	return b.store.Count(ctx)
}

func (b *Base) indexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	source := filepath.Base(path)
	chunks := Split(string(data), b.opts.ChunkSize, b.opts.ChunkOverlap)
	for _, chunk := range chunks {
		vector, err := b.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed chunk of %s: %w", source, err)
		}
		if err := b.store.Insert(ctx, source, chunk, vector); err != nil {
			return 0, err
		}
	}

	b.logger.Debug("knowledge_file_indexed", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}
