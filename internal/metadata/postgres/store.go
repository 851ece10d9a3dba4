package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionScope/internal/metadata"
)

// Store provides Postgres persistence for auction metadata overrides.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the metadata table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS auction_metadata (
			auction_id BIGINT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Get returns the metadata record for an auction. A missing row is a normal
// miss, not an error.
func (s *Store) Get(ctx context.Context, auctionID uint64) (metadata.Record, bool, error) {
	var rec metadata.Record
	row := s.pool.QueryRow(ctx, `
		SELECT title, description, image_url FROM auction_metadata WHERE auction_id = $1
	`, int64(auctionID))
	if err := row.Scan(&rec.Title, &rec.Description, &rec.ImageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return metadata.Record{}, false, nil
		}
		return metadata.Record{}, false, err
	}
	return rec, true, nil
}

// Put inserts or updates the metadata record for an auction.
func (s *Store) Put(ctx context.Context, auctionID uint64, rec metadata.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auction_metadata (auction_id, title, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (auction_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			updated_at = now()
	`, int64(auctionID), rec.Title, rec.Description, rec.ImageURL)
	return err
}
