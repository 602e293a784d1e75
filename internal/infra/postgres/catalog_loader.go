package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drivequest/internal/catalog"
	"drivequest/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DefaultDocument is the row name used when none is configured.
const DefaultDocument = "default"

// CatalogLoader loads the catalog JSONB document from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
	name string
}

func NewCatalogLoader(pool *pgxpool.Pool, name string) *CatalogLoader {
	if name == "" {
		name = DefaultDocument
	}
	return &CatalogLoader{pool: pool, name: name}
}

func (l *CatalogLoader) Load(ctx context.Context) (catalog.Document, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalog_documents WHERE name=$1`, l.name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Document{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, l.name)
	}
	if err != nil {
		return catalog.Document{}, fmt.Errorf("load catalog: %w", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return doc, nil
}

// Publish validates doc and upserts it under the loader's document name.
func (l *CatalogLoader) Publish(ctx context.Context, doc catalog.Document) error {
	if _, err := catalog.New(doc); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
INSERT INTO catalog_documents (name, data, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		l.name, string(data))
	if err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}
	return nil
}
