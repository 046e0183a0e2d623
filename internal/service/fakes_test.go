package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory fakes for the repository and storage interfaces. They keep the
// same contracts as the Postgres implementations: nil on missing rows,
// pgconn errors for constraint violations, serialized counter increments.

func uniqueViolation() error {
	return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
}

func foreignKeyViolation() error {
	return fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
}

type pairKey struct {
	userID    int64
	productID int64
}

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) addUser(name, email, password, role string) *model.User {
	u := &model.User{
		UserID:    f.nextID,
		Name:      name,
		Email:     email,
		Password:  password,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[u.UserID] = u
	f.nextID++
	return u
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return uniqueViolation()
		}
	}
	u.UserID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	copied := *u
	f.users[u.UserID] = &copied
	f.nextID++
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok && u.Role == role {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email == email {
			return nil, uniqueViolation()
		}
	}
	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id int64) (int64, error) {
	if _, ok := f.users[id]; !ok {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

type fakeProductRepo struct {
	products map[int64]*model.Product
	nextID   int64
	// deleteErr, when set, is returned by DeleteProduct to simulate a
	// storage-level failure such as a FK violation.
	deleteErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*model.Product), nextID: 1}
}

func (f *fakeProductRepo) addProduct(title string, price float64) *model.Product {
	p := &model.Product{
		ID:        f.nextID,
		Title:     title,
		Price:     price,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.products[p.ID] = p
	f.nextID++
	return p
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	copied := *p
	f.products[p.ID] = &copied
	f.nextID++
	return nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	existing, ok := f.products[p.ID]
	if !ok {
		return fmt.Errorf("product %d not found", p.ID)
	}
	*existing = *p
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.products[id]; !ok {
		return 0, nil
	}
	delete(f.products, id)
	return 1, nil
}

type fakePurchaseRepo struct {
	purchases map[pairKey]*model.Purchase
	products  *fakeProductRepo
	nextID    int64
}

func newFakePurchaseRepo(products *fakeProductRepo) *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[pairKey]*model.Purchase), products: products, nextID: 1}
}

func (f *fakePurchaseRepo) addPurchase(userID, productID int64) *model.Purchase {
	p := &model.Purchase{ID: f.nextID, UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	f.purchases[pairKey{userID, productID}] = p
	f.nextID++
	return p
}

func (f *fakePurchaseRepo) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	key := pairKey{p.UserID, p.ProductID}
	if _, ok := f.purchases[key]; ok {
		return uniqueViolation()
	}
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	copied := *p
	f.purchases[key] = &copied
	f.nextID++
	return nil
}

func (f *fakePurchaseRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Purchase, error) {
	p, ok := f.purchases[pairKey{userID, productID}]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePurchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	var purchases []model.Purchase
	for id := int64(1); id < f.nextID; id++ {
		for _, p := range f.purchases {
			if p.ID == id && p.UserID == userID {
				copied := *p
				if f.products != nil {
					if product, ok := f.products.products[p.ProductID]; ok {
						productCopy := *product
						copied.Product = &productCopy
					}
				}
				purchases = append(purchases, copied)
			}
		}
	}
	return purchases, nil
}

func (f *fakePurchaseRepo) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	for key := range f.purchases {
		if key.productID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePurchaseRepo) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	for key := range f.purchases {
		if key.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

// fakeDownloadRepo serializes increments per pair exactly like the
// transactional Postgres implementation.
type fakeDownloadRepo struct {
	mu        sync.Mutex
	downloads map[pairKey]*model.Download
	nextID    int64
}

func newFakeDownloadRepo() *fakeDownloadRepo {
	return &fakeDownloadRepo{downloads: make(map[pairKey]*model.Download), nextID: 1}
}

func (f *fakeDownloadRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.downloads[pairKey{userID, productID}]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDownloadRepo) IncrementCount(ctx context.Context, userID, productID int64, defaultMax int) (*model.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{userID, productID}
	d, ok := f.downloads[key]
	if !ok {
		d = &model.Download{
			ID:         f.nextID,
			UserID:     userID,
			ProductID:  productID,
			Count:      0,
			MaxAllowed: defaultMax,
			CreatedAt:  time.Now(),
		}
		f.downloads[key] = d
		f.nextID++
	}
	if d.Count >= d.MaxAllowed {
		return nil, repository.ErrDownloadLimitExceeded
	}
	d.Count++
	d.UpdatedAt = time.Now()
	copied := *d
	return &copied, nil
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[int64][]byte
	// putErr, when set, is returned by Put to simulate a storage fault.
	putErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[int64][]byte)}
}

func (f *fakeFileStore) Put(ctx context.Context, productID int64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.files[productID] = data
	return nil
}

func (f *fakeFileStore) Get(ctx context.Context, productID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[productID]
	if !ok {
		return nil, storage.ErrPayloadNotFound
	}
	return data, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, productID)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return "msg-1", nil
}
