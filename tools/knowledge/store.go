package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	source    TEXT NOT NULL,
	content   TEXT NOT NULL,
	embedding BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
`

// Store persists embedded chunks in SQLite. Vectors are stored as
// little-endian float32 blobs; similarity search scans and ranks in process,
// which is plenty for a knowledge base of company documents.
type Store struct {
	db *sql.DB
}

// Chunk is one scored retrieval unit.
type Chunk struct {
	ID      int64
	Source  string
	Content string
	Score   float64
}

// OpenStore opens (or creates) the store at path. ":memory:" works for tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("knowledge: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// Clear removes every chunk. Used by Rebuild before re-indexing.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

// Insert stores one embedded chunk.
func (s *Store) Insert(ctx context.Context, source, content string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("knowledge: refusing to store empty embedding")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (source, content, embedding) VALUES (?, ?, ?)`,
		source, content, encodeVector(embedding))
	if err != nil {
		return fmt.Errorf("knowledge: insert chunk: %w", err)
	}
	return nil
}

// Nearest returns the topK chunks ranked by cosine similarity to the query
// vector, best first.
func (s *Store) Nearest(ctx context.Context, query []float32, topK int) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, content, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("knowledge: query chunks: %w", err)
	}
	defer rows.Close()

	// Keep only the current topK while scanning.
	var best []Chunk
	for rows.Next() {
		var (
			c    Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("knowledge: scan chunk: %w", err)
		}
		c.Score = cosineSimilarity(query, decodeVector(blob))

		best = append(best, c)
		for i := len(best) - 1; i > 0 && best[i].Score > best[i-1].Score; i-- {
			best[i], best[i-1] = best[i-1], best[i]
		}
		if len(best) > topK {
			best = best[:topK]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return best, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
