package service

import (
	"context"
	"encoding/json"
	"testing"

	"app/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	users     *fakeUserRepo
	products  *fakeProductRepo
	purchases *fakePurchaseRepo
	publisher *fakePublisher
	svc       PurchaseService
}

func newPurchaseFixture() *purchaseFixture {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	purchases := newFakePurchaseRepo(products)
	publisher := &fakePublisher{}
	svc := NewPurchaseService(purchases, users, products, publisher, "purchase-created", zerolog.Nop())
	return &purchaseFixture{
		users:     users,
		products:  products,
		purchases: purchases,
		publisher: publisher,
		svc:       svc,
	}
}

func TestCreatePurchase(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)

	purchase, err := f.svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.NotZero(t, purchase.ID)
	assert.Equal(t, u.UserID, purchase.UserID)
	assert.Equal(t, p.ID, purchase.ProductID)
	require.NotNil(t, purchase.Product)
	assert.Equal(t, "Guide", purchase.Product.Title)

	require.Len(t, f.publisher.topics, 1)
	assert.Equal(t, "purchase-created", f.publisher.topics[0])

	var event PurchaseCreatedEvent
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &event))
	assert.Equal(t, purchase.ID, event.PurchaseID)
	assert.Equal(t, u.UserID, event.UserID)
	assert.Equal(t, p.ID, event.ProductID)
}

func TestCreatePurchaseDuplicate(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)

	_, err := f.svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.NoError(t, err)

	_, err = f.svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.ErrorIs(t, err, ErrDuplicatePurchase)
	assert.Len(t, f.publisher.topics, 1, "duplicate attempts must not publish")
}

// racingPurchaseRepo hides existing rows from the pre-check so the insert
// itself collides with the unique constraint, like a concurrent purchase
// committed between the two statements.
type racingPurchaseRepo struct {
	*fakePurchaseRepo
}

func (r *racingPurchaseRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Purchase, error) {
	return nil, nil
}

func TestCreatePurchaseLostInsertRace(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)
	f.purchases.addPurchase(u.UserID, p.ID)

	svc := NewPurchaseService(&racingPurchaseRepo{f.purchases}, f.users, f.products, f.publisher, "purchase-created", zerolog.Nop())

	_, err := svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.ErrorIs(t, err, ErrDuplicatePurchase)
	assert.Empty(t, f.publisher.topics, "a purchase that lost the race must not publish")
}

func TestCreatePurchaseDuplicateCheckedBeforeExistence(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)
	f.purchases.addPurchase(u.UserID, p.ID)

	// Even with the user gone, the recorded pair still reads as a duplicate.
	delete(f.users.users, u.UserID)

	_, err := f.svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.ErrorIs(t, err, ErrDuplicatePurchase)
}

func TestCreatePurchaseUnknownUser(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.addProduct("Guide", 10.0)

	_, err := f.svc.CreatePurchase(context.Background(), 42, p.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)

	_, err := f.svc.CreatePurchase(context.Background(), u.UserID, 99)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreatePurchasePublishFailureIsNotFatal(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)
	f.publisher.err = assert.AnError

	purchase, err := f.svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, purchase)
}

func TestCreatePurchaseWithoutPublisher(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p := f.products.addProduct("Guide", 10.0)

	svc := NewPurchaseService(f.purchases, f.users, f.products, nil, "", zerolog.Nop())
	purchase, err := svc.CreatePurchase(context.Background(), u.UserID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, purchase)
}

func TestGetUserPurchasesResolvesProducts(t *testing.T) {
	f := newPurchaseFixture()
	u := f.users.addUser("Ana", "ana@example.com", "hash", model.RoleUser)
	p1 := f.products.addProduct("Guide", 10.0)
	p2 := f.products.addProduct("Atlas", 20.0)
	f.purchases.addPurchase(u.UserID, p1.ID)
	f.purchases.addPurchase(u.UserID, p2.ID)

	purchases, err := f.svc.GetUserPurchases(context.Background(), u.UserID)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	for _, purchase := range purchases {
		require.NotNil(t, purchase.Product)
		assert.Equal(t, purchase.ProductID, purchase.Product.ID)
	}
}
