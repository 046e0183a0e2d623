package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"
)

var ErrQuotaExhausted = errors.New("download limit reached for this product")

// DownloadService owns the per-(user, product) download counter and cap.
type DownloadService interface {
	// GetOrInit returns the existing counter record, or an unpersisted
	// default (count 0, cap 3) when none exists yet.
	GetOrInit(ctx context.Context, userID, productID int64) (*model.Download, error)
	// TryIncrement bumps the counter if it is below its cap, persisting the
	// record on first use. Exhaustion mutates nothing.
	TryIncrement(ctx context.Context, userID, productID int64) (*model.Download, error)
}

type downloadService struct {
	downloadRepo repository.DownloadRepository
}

func NewDownloadService(downloadRepo repository.DownloadRepository) DownloadService {
	return &downloadService{downloadRepo: downloadRepo}
}

func (s *downloadService) GetOrInit(ctx context.Context, userID, productID int64) (*model.Download, error) {
	d, err := s.downloadRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &model.Download{
			UserID:     userID,
			ProductID:  productID,
			Count:      0,
			MaxAllowed: model.DefaultMaxDownloads,
		}, nil
	}
	return d, nil
}

func (s *downloadService) TryIncrement(ctx context.Context, userID, productID int64) (*model.Download, error) {
	d, err := s.downloadRepo.IncrementCount(ctx, userID, productID, model.DefaultMaxDownloads)
	if err != nil {
		if errors.Is(err, repository.ErrDownloadLimitExceeded) {
			return nil, ErrQuotaExhausted
		}
		return nil, err
	}
	return d, nil
}
