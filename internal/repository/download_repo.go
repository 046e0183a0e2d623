package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDownloadLimitExceeded is returned when a user has exhausted the
// download cap for a purchased product.
var ErrDownloadLimitExceeded = errors.New("download_limit_exceeded")

// DownloadRepository owns the per-(user, product) download counter.
type DownloadRepository interface {
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Download, error)
	// IncrementCount atomically creates the counter row if absent and
	// increments it while count < max_allowed. Returns
	// ErrDownloadLimitExceeded, mutating nothing, when the cap is reached.
	IncrementCount(ctx context.Context, userID, productID int64, defaultMax int) (*model.Download, error)
}

type downloadRepo struct {
	pool *pgxpool.Pool
}

func NewDownloadRepo(pool *pgxpool.Pool) DownloadRepository {
	return &downloadRepo{pool: pool}
}

func (r *downloadRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Download, error) {
	const q = `
		SELECT id, user_id, product_id, count, max_allowed, created_at, updated_at
		FROM downloads
		WHERE user_id = $1 AND product_id = $2
	`
	var d model.Download
	err := r.pool.QueryRow(ctx, q, userID, productID).
		Scan(&d.ID, &d.UserID, &d.ProductID, &d.Count, &d.MaxAllowed, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching download record for user %d product %d: %w", userID, productID, err)
	}
	return &d, nil
}

// IncrementCount runs the insert-if-absent and conditional increment in one
// serializable transaction so two concurrent grants for the same pair can
// never both step past the cap.
func (r *downloadRepo) IncrementCount(ctx context.Context, userID, productID int64, defaultMax int) (*model.Download, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("starting transaction for download increment: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// A concurrent first-creation for the same pair is benign: DO NOTHING
	// leaves the existing row in place.
	const insertQ = `
		INSERT INTO downloads (user_id, product_id, count, max_allowed)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertQ, userID, productID, defaultMax); err != nil {
		return nil, fmt.Errorf("initializing download record for user %d product %d: %w", userID, productID, err)
	}

	const updateQ = `
		UPDATE downloads
		SET count = count + 1, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2 AND count < max_allowed
		RETURNING id, user_id, product_id, count, max_allowed, created_at, updated_at
	`
	var d model.Download
	err = tx.QueryRow(ctx, updateQ, userID, productID).
		Scan(&d.ID, &d.UserID, &d.ProductID, &d.Count, &d.MaxAllowed, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDownloadLimitExceeded
		}
		return nil, fmt.Errorf("incrementing download count for user %d product %d: %w", userID, productID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing download increment for user %d product %d: %w", userID, productID, err)
	}
	return &d, nil
}
