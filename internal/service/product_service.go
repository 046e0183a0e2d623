package service

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/storage"

	"github.com/rs/zerolog"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrFileRequired        = errors.New("product file is required")
	ErrAlreadyPurchased    = errors.New("product has been purchased and can no longer be edited")
	ErrProductHasPurchases = errors.New("product cannot be deleted because it has been purchased")
	ErrUnauthenticated     = errors.New("caller is not authenticated")
	ErrNotPurchased        = errors.New("product has not been purchased by this user")
)

// CatalogItem is a product as shown in listings, with the purchase flag of
// the requesting user when one is known.
type CatalogItem struct {
	model.Product
	Purchased *bool `json:"purchased,omitempty"`
}

type ProductService interface {
	Create(ctx context.Context, p *model.Product, file []byte) error
	FindAll(ctx context.Context, userID int64) ([]CatalogItem, error)
	FindOne(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, id int64, title string, description *string, price float64, file []byte) (*model.Product, error)
	Remove(ctx context.Context, id int64) error
	// GetFileIfPurchased is the access gateway for product payloads: it
	// grants or denies retrieval based on identity, role, purchase record
	// and download quota, in that order.
	GetFileIfPurchased(ctx context.Context, productID, requesterID int64, requesterRole string) ([]byte, error)
	FindPurchasedByUser(ctx context.Context, userID int64) ([]model.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	userRepo     repository.UserRepository
	downloads    DownloadService
	files        storage.FileStore
	logger       zerolog.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
	userRepo repository.UserRepository,
	downloads DownloadService,
	files storage.FileStore,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		downloads:    downloads,
		files:        files,
		logger:       logger.With().Str("service", "ProductService").Logger(),
	}
}

// Create stores the catalog row and its payload. The payload is mandatory.
func (s *productService) Create(ctx context.Context, p *model.Product, file []byte) error {
	if len(file) == 0 {
		return ErrFileRequired
	}
	if err := s.productRepo.CreateProduct(ctx, p); err != nil {
		return err
	}
	if err := s.files.Put(ctx, p.ID, file); err != nil {
		// Keep the catalog consistent: a product without a payload must not
		// remain visible.
		if _, delErr := s.productRepo.DeleteProduct(ctx, p.ID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("product_id", p.ID).Msg("Failed to roll back product after payload store failure")
		}
		return fmt.Errorf("storing product payload: %w", err)
	}
	return nil
}

// FindAll lists catalog metadata. When userID identifies a caller, every
// item carries a flag telling whether that user already bought it.
func (s *productService) FindAll(ctx context.Context, userID int64) ([]CatalogItem, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]CatalogItem, 0, len(products))
	if userID == 0 {
		for _, p := range products {
			items = append(items, CatalogItem{Product: p})
		}
		return items, nil
	}

	purchases, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	purchased := make(map[int64]bool, len(purchases))
	for _, pu := range purchases {
		purchased[pu.ProductID] = true
	}
	for _, p := range products {
		flag := purchased[p.ID]
		items = append(items, CatalogItem{Product: p, Purchased: &flag})
	}
	return items, nil
}

func (s *productService) FindOne(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Update rejects any edit once the product has been purchased: title,
// description, price and payload are immutable from the first sale on.
func (s *productService) Update(ctx context.Context, id int64, title string, description *string, price float64, file []byte) (*model.Product, error) {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	sold, err := s.purchaseRepo.ExistsForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if sold {
		return nil, ErrAlreadyPurchased
	}

	p.Title = title
	p.Description = description
	p.Price = price
	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	if len(file) > 0 {
		if err := s.files.Put(ctx, p.ID, file); err != nil {
			return nil, fmt.Errorf("replacing product payload: %w", err)
		}
	}
	return p, nil
}

// Remove deletes the product. The outcome is read off the storage result:
// zero rows means the product never existed, a referential-integrity
// failure means it has been purchased.
func (s *productService) Remove(ctx context.Context, id int64) error {
	affected, err := s.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return ErrProductHasPurchases
		}
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	if err := s.files.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("Failed to delete product payload")
	}
	return nil
}

// GetFileIfPurchased decides ALLOW / DENY for a payload retrieval. The
// check order is part of the contract: authentication, then product
// existence, then the admin bypass, then purchase, then quota. Admins get
// the payload without touching purchase or download state.
func (s *productService) GetFileIfPurchased(ctx context.Context, productID, requesterID int64, requesterRole string) ([]byte, error) {
	if requesterID == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user %d", ErrUnauthenticated, requesterID)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	// Admins have unlimited access and never accrue download state.
	if user.Role == model.RoleAdmin {
		return s.files.Get(ctx, productID)
	}

	purchase, err := s.purchaseRepo.GetByUserAndProduct(ctx, requesterID, productID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, ErrNotPurchased
	}

	// Fetch the payload before touching the counter: a storage fault must
	// not consume quota for a download the user never received.
	data, err := s.files.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	d, err := s.downloads.TryIncrement(ctx, requesterID, productID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", requesterID).
		Int64("product_id", productID).
		Int("count", d.Count).
		Int("max_allowed", d.MaxAllowed).
		Msg("Download granted")

	return data, nil
}

// FindPurchasedByUser lists the products a user has bought, without payloads.
func (s *productService) FindPurchasedByUser(ctx context.Context, userID int64) ([]model.Product, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	purchases, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(purchases))
	for _, pu := range purchases {
		if pu.Product != nil {
			products = append(products, *pu.Product)
		}
	}
	return products, nil
}
