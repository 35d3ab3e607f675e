package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Store is the knowledge base: embed on write, nearest-neighbor on read.
// The Query result slices are always equal-length and positionally aligned,
// ordered most-similar first.
type Store interface {
	Add(ctx context.Context, docs []Document) error
	Query(ctx context.Context, text, location string, topN int) (docs []string, metadata []map[string]string, err error)
}

// PostgresStore implements Store on pgx + pgvector.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewPostgresStore creates a knowledge store backed by the documents table.
func NewPostgresStore(pool *pgxpool.Pool, embedder Embedder) *PostgresStore {
	return &PostgresStore{pool: pool, embedder: embedder}
}

// Add embeds and upserts documents. Existing IDs are overwritten.
func (s *PostgresStore) Add(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		embedding, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", doc.ID, err)
		}

		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", doc.ID, err)
		}

		_, err = s.pool.Exec(ctx,
			`INSERT INTO documents (id, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding,
			     updated_at = now()`,
			doc.ID, doc.Content, metadataJSON, pgvector.NewVector(embedding),
		)
		if err != nil {
			return fmt.Errorf("upserting document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Query embeds text (qualified by location when non-empty) and returns the
// topN closest documents by cosine distance, most similar first.
func (s *PostgresStore) Query(ctx context.Context, text, location string, topN int) ([]string, []map[string]string, error) {
	query := text
	if location != "" {
		query = fmt.Sprintf("%s (Location: %s)", text, location)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata
		 FROM documents
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), topN,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var (
		docs     []string
		metadata []map[string]string
	)
	for rows.Next() {
		var (
			content      string
			metadataJSON []byte
		)
		if err := rows.Scan(&content, &metadataJSON); err != nil {
			return nil, nil, fmt.Errorf("scanning document: %w", err)
		}
		meta := map[string]string{}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &meta); err != nil {
				return nil, nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}
		docs = append(docs, content)
		metadata = append(metadata, meta)
	}
	return docs, metadata, rows.Err()
}
