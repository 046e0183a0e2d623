package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserHasPurchases = errors.New("user has purchases")
)

type UserService interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindMe(ctx context.Context, userID int64) (*model.User, error)
	UpdateMe(ctx context.Context, userID int64, name, email string) (*model.User, error)
	Remove(ctx context.Context, userID int64) (*model.User, error)
}

type userService struct {
	userRepo     repository.UserRepository
	purchaseRepo repository.PurchaseRepository
}

func NewUserService(userRepo repository.UserRepository, purchaseRepo repository.PurchaseRepository) UserService {
	return &userService{userRepo: userRepo, purchaseRepo: purchaseRepo}
}

// FindAll lists regular accounts only; admin accounts are not exposed.
func (s *userService) FindAll(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListUsersByRole(ctx, model.RoleUser)
}

func (s *userService) FindMe(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID int64, name, email string) (*model.User, error) {
	u, err := s.userRepo.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Remove deletes the account unless purchases still reference it. The guard
// is checked explicitly so the invariant stays testable without a live
// database; the FK restriction backs it up under races.
func (s *userService) Remove(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	hasPurchases, err := s.purchaseRepo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hasPurchases {
		return nil, ErrUserHasPurchases
	}
	affected, err := s.userRepo.DeleteUser(ctx, userID)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrUserHasPurchases
		}
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}
	return u, nil
}
