package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPayloadNotFound is returned when no payload exists for the product.
var ErrPayloadNotFound = errors.New("payload not found")

// ErrProductMissing is returned by Put when the product row to attach the
// payload to does not exist.
var ErrProductMissing = errors.New("product row missing")

// pgStore keeps the payload in the product row itself (bytea column).
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a FileStore backed by the products table.
func NewPGStore(pool *pgxpool.Pool) FileStore {
	return &pgStore{pool: pool}
}

func (s *pgStore) Put(ctx context.Context, productID int64, data []byte) error {
	tag, err := s.pool.Exec(ctx, `UPDATE products SET file = $2, updated_at = NOW() WHERE id = $1`, productID, data)
	if err != nil {
		return fmt.Errorf("storing payload for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrProductMissing, productID)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, productID int64) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT file FROM products WHERE id = $1`, productID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("loading payload for product %d: %w", productID, err)
	}
	if data == nil {
		return nil, ErrPayloadNotFound
	}
	return data, nil
}

// Delete is a no-op for the row-embedded backend: the payload goes away
// with the product row.
func (s *pgStore) Delete(ctx context.Context, productID int64) error {
	return nil
}
