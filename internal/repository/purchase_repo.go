package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, p *model.Purchase) error
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Purchase, error)
	// ListByUser returns the user's purchases with the product row joined in.
	ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
	ExistsForProduct(ctx context.Context, productID int64) (bool, error)
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
}

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	const q = `
		INSERT INTO purchases (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, q, p.UserID, p.ProductID).
		Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("creating purchase for user %d product %d: %w", p.UserID, p.ProductID, err)
	}
	return nil
}

func (r *purchaseRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Purchase, error) {
	const q = `
		SELECT id, user_id, product_id, created_at
		FROM purchases
		WHERE user_id = $1 AND product_id = $2
	`
	var p model.Purchase
	err := r.pool.QueryRow(ctx, q, userID, productID).
		Scan(&p.ID, &p.UserID, &p.ProductID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching purchase for user %d product %d: %w", userID, productID, err)
	}
	return &p, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	const q = `
		SELECT pu.id, pu.user_id, pu.product_id, pu.created_at,
		       pr.id, pr.title, pr.description, pr.price, pr.created_at, pr.updated_at
		FROM purchases pu
		JOIN products pr ON pr.id = pu.product_id
		WHERE pu.user_id = $1
		ORDER BY pu.created_at ASC
	`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases for user %d: %w", userID, err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var (
			pu model.Purchase
			pr model.Product
		)
		if err := rows.Scan(
			&pu.ID, &pu.UserID, &pu.ProductID, &pu.CreatedAt,
			&pr.ID, &pr.Title, &pr.Description, &pr.Price, &pr.CreatedAt, &pr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		pu.Product = &pr
		purchases = append(purchases, pu)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepo) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM purchases WHERE product_id = $1)`
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking purchases for product %d: %w", productID, err)
	}
	return exists, nil
}

func (r *purchaseRepo) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1)`
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking purchases for user %d: %w", userID, err)
	}
	return exists, nil
}
