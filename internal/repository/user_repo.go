package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, q, u.Name, u.Email, u.Password, u.Role).
		Scan(&u.UserID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
		SELECT user_id, name, email, password, role, created_at, updated_at
		FROM users WHERE user_id = $1
	`
	var u model.User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT user_id, name, email, password, role, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u model.User
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return &u, nil
}

// ListUsersByRole returns accounts holding the given role, selecting only
// the fields safe to expose in admin listings.
func (r *userRepo) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	const q = `
		SELECT user_id, name, email, role
		FROM users WHERE role = $1
		ORDER BY user_id ASC
	`
	rows, err := r.pool.Query(ctx, q, role)
	if err != nil {
		return nil, fmt.Errorf("listing users with role %s: %w", role, err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	const q = `
		UPDATE users SET name = $2, email = $3, updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, name, email, password, role, created_at, updated_at
	`
	var u model.User
	err := r.pool.QueryRow(ctx, q, id, name, email).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return &u, nil
}

// DeleteUser removes the account and returns the number of rows affected.
func (r *userRepo) DeleteUser(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting user %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}
