package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id int64) (int64, error)
}

type productRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) ProductRepository {
	return &productRepo{pool: pool}
}

func (r *productRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	const q = `
		INSERT INTO products (title, description, price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, q, p.Title, p.Description, p.Price).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("creating product %q: %w", p.Title, err)
	}
	return nil
}

func (r *productRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	const q = `
		SELECT id, title, description, price, created_at, updated_at
		FROM products WHERE id = $1
	`
	var p model.Product
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching product %d: %w", id, err)
	}
	return &p, nil
}

// ListProducts returns catalog metadata only; payloads stay in the file store.
func (r *productRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	const q = `
		SELECT id, title, description, price, created_at, updated_at
		FROM products
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	const q = `
		UPDATE products SET title = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, q, p.ID, p.Title, p.Description, p.Price).
		Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes the row and returns the number of rows affected.
// A referential-integrity failure is returned unwrapped enough for
// IsForeignKeyViolation to detect it.
func (r *productRepo) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting product %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}
