// Package catalog provides the Postgres-backed product catalog and feedback
// stores. The products table is the source of truth for the fallback scan;
// feedback is append-only.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/donizo/pricing-engine/engine/domain"
)

// ProductStore reads and writes the products table.
type ProductStore struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection. The returned *sql.DB
// is pooled and safe for concurrent use.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return db, nil
}

// NewProductStore creates a ProductStore over an existing connection pool.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	product_id    TEXT PRIMARY KEY,
	material_name TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	unit_price    TEXT NOT NULL,
	unit          TEXT NOT NULL DEFAULT '',
	region        TEXT NOT NULL DEFAULT '',
	vendor        TEXT NOT NULL DEFAULT '',
	vat_rate      TEXT NOT NULL DEFAULT '',
	quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	source        TEXT NOT NULL DEFAULT '',
	embedding     DOUBLE PRECISION[] NOT NULL DEFAULT '{}'
);`

// EnsureSchema creates the products table if it doesn't exist.
func (s *ProductStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, productsSchema); err != nil {
		return fmt.Errorf("catalog: ensure products schema: %w", err)
	}
	return nil
}

// Upsert inserts a product or, on conflict, refreshes only the fields a
// re-ingest may change: embedding and updated_at.
func (s *ProductStore) Upsert(ctx context.Context, p domain.ProductRecord) error {
	emb := make([]float64, len(p.Embedding))
	for i, v := range p.Embedding {
		emb[i] = float64(v)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (product_id, material_name, description, unit_price, unit,
			region, vendor, vat_rate, quality_score, updated_at, source, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (product_id) DO UPDATE
			SET embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Description, p.UnitPrice, p.Unit,
		p.Region, p.Vendor, p.VATRate, p.QualityScore, p.UpdatedAt, p.Source, pq.Array(emb))
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", p.ID, err)
	}
	return nil
}

// ScanAll reads every product row including embeddings. This backs the
// exhaustive fallback search and the backfill reindex.
func (s *ProductStore) ScanAll(ctx context.Context) ([]domain.ProductRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, material_name, description, unit_price, unit,
			region, vendor, vat_rate, quality_score, updated_at, source, embedding
		FROM products`)
	if err != nil {
		return nil, fmt.Errorf("catalog: scan all: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductRecord
	for rows.Next() {
		var p domain.ProductRecord
		var emb []float64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.Unit,
			&p.Region, &p.Vendor, &p.VATRate, &p.QualityScore, &p.UpdatedAt, &p.Source,
			pq.Array(&emb)); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		p.Embedding = make([]float32, len(emb))
		for i, v := range emb {
			p.Embedding[i] = float32(v)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: scan rows: %w", err)
	}
	return out, nil
}

// Count returns the number of catalog rows.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}
