package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var ErrDuplicatePurchase = errors.New("product already purchased by this user")

// PurchaseCreatedEvent is published for downstream fulfillment when a
// purchase is recorded and a publisher is configured.
type PurchaseCreatedEvent struct {
	PurchaseID int64     `json:"purchaseId"`
	UserID     int64     `json:"userId"`
	ProductID  int64     `json:"productId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PurchaseService interface {
	// CreatePurchase records that the user bought the product. Payment is
	// simulated; the purchase is recorded directly.
	CreatePurchase(ctx context.Context, userID, productID int64) (*model.Purchase, error)
	GetUserPurchases(ctx context.Context, userID int64) ([]model.Purchase, error)
}

type purchaseService struct {
	purchaseRepo  repository.PurchaseRepository
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	publisher     pubsub.Publisher
	purchaseTopic string
	logger        zerolog.Logger
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	publisher pubsub.Publisher,
	purchaseTopic string,
	logger zerolog.Logger,
) PurchaseService {
	return &purchaseService{
		purchaseRepo:  purchaseRepo,
		userRepo:      userRepo,
		productRepo:   productRepo,
		publisher:     publisher,
		purchaseTopic: purchaseTopic,
		logger:        logger.With().Str("service", "PurchaseService").Logger(),
	}
}

// CreatePurchase checks for a duplicate purchase before verifying that the
// user and product exist. The ordering is a fixed contract: a duplicate is
// reported even when the referenced ids are stale in other ways.
func (s *purchaseService) CreatePurchase(ctx context.Context, userID, productID int64) (*model.Purchase, error) {
	existing, err := s.purchaseRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePurchase
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	purchase := &model.Purchase{UserID: userID, ProductID: productID}
	if err := s.purchaseRepo.CreatePurchase(ctx, purchase); err != nil {
		// A concurrent purchase of the same product lost the race to the
		// unique constraint; report it the same way as the pre-check.
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicatePurchase
		}
		return nil, err
	}

	purchase.Product = product
	s.publishCreated(ctx, purchase)
	return purchase, nil
}

func (s *purchaseService) GetUserPurchases(ctx context.Context, userID int64) ([]model.Purchase, error) {
	return s.purchaseRepo.ListByUser(ctx, userID)
}

// publishCreated emits a purchase-created event. Publishing is best effort:
// a failure is logged and never rolls back the recorded purchase.
func (s *purchaseService) publishCreated(ctx context.Context, p *model.Purchase) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(PurchaseCreatedEvent{
		PurchaseID: p.ID,
		UserID:     p.UserID,
		ProductID:  p.ProductID,
		CreatedAt:  p.CreatedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("purchase_id", p.ID).Msg("Failed to encode purchase event")
		return
	}
	if _, err := s.publisher.Publish(ctx, s.purchaseTopic, payload); err != nil {
		s.logger.Error().Err(err).Int64("purchase_id", p.ID).Msg("Failed to publish purchase event")
	}
}
