package service

import (
	"context"
	"errors"
	"testing"

	"shop-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, []model.CartItem, error) {
	args := m.Called(ctx, userID)
	var cart *model.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*model.Cart)
	}
	var items []model.CartItem
	if args.Get(1) != nil {
		items = args.Get(1).([]model.CartItem)
	}
	return cart, items, args.Error(2)
}

func (m *MockCartRepository) EnsureCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCartRepository) GetItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, tx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) error {
	args := m.Called(ctx, tx, cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string) (bool, error) {
	args := m.Called(ctx, tx, cartID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) ClearItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	args := m.Called(ctx, tx, cartID)
	return args.Error(0)
}

// cartFixture wires a cart service with mocks and the common happy-path
// expectations for a single mutation followed by a cart read.
type cartFixture struct {
	cartRepo    *MockCartRepository
	productRepo *MockProductRepository
	tx          *MockTx
	userID      uuid.UUID
	cartID      uuid.UUID
	service     CartService
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{
		cartRepo:    new(MockCartRepository),
		productRepo: new(MockProductRepository),
		tx:          new(MockTx),
		userID:      uuid.New(),
		cartID:      uuid.New(),
	}
	f.service = NewCartService(f.cartRepo, f.productRepo, zerolog.Nop())
	return f
}

func (f *cartFixture) expectMutation(ctx context.Context, items []model.CartItem) {
	f.cartRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.cartRepo.On("EnsureCart", ctx, f.tx, f.userID).Return(f.cartID, nil)
	f.cartRepo.On("GetItems", ctx, f.tx, f.cartID).Return(items, nil)
}

func (f *cartFixture) expectRead(ctx context.Context, items []model.CartItem, products []model.Product) {
	cart := &model.Cart{ID: f.cartID, UserID: f.userID}
	f.cartRepo.On("GetByUser", ctx, f.userID).Return(cart, items, nil)
	if len(items) > 0 {
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}
		f.productRepo.On("GetByIDs", ctx, ids).Return(products, nil)
	}
}

func TestCartService_Get_NoCartYet(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	f.cartRepo.On("GetByUser", ctx, f.userID).Return(nil, nil, nil)

	resp, err := f.service.Get(ctx, f.userID)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, f.userID, resp.UserID)
	assert.Empty(t, resp.Products)
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_Get_EnrichesLines(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	items := []model.CartItem{
		{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1},
	}
	products := []model.Product{
		{ID: "P001", Title: "Widget", Price: 100.00, Discount: 20, NumberInStock: 9},
	}

	f.expectRead(ctx, items, products)

	resp, err := f.service.Get(ctx, f.userID)

	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	line := resp.Products[0]
	assert.Equal(t, "P001", line.ProductID)
	assert.Equal(t, 100.00, line.Price)
	assert.Equal(t, 80.00, line.DiscountedPrice)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 9, line.NumberInStock)
}

func TestCartService_Get_SkipsMissingProducts(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	items := []model.CartItem{
		{CartID: f.cartID, ProductID: "P001", Quantity: 1, Position: 1},
		{CartID: f.cartID, ProductID: "GONE", Quantity: 1, Position: 2},
	}
	products := []model.Product{
		{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5},
	}

	f.expectRead(ctx, items, products)

	resp, err := f.service.Get(ctx, f.userID)

	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "P001", resp.Products[0].ProductID)
}

func TestCartService_AddProduct_NewLine(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5}
	items := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1}}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, []model.CartItem{})
	f.cartRepo.On("UpsertItem", ctx, f.tx, f.cartID, "P001", 2).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.expectRead(ctx, items, []model.Product{*product})

	resp, err := f.service.AddProduct(ctx, f.userID, "P001", 2)

	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, 2, resp.Products[0].Quantity)
	f.cartRepo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestCartService_AddProduct_MergesQuantities(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5}
	existing := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1}}
	merged := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 5, Position: 1}}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, existing)
	f.cartRepo.On("UpsertItem", ctx, f.tx, f.cartID, "P001", 5).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.expectRead(ctx, merged, []model.Product{*product})

	resp, err := f.service.AddProduct(ctx, f.userID, "P001", 3)

	require.NoError(t, err)
	assert.Equal(t, 5, resp.Products[0].Quantity)
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_AddProduct_ExceedsStock(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 3}
	existing := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1}}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, existing)
	f.tx.On("Rollback", ctx).Return(nil)

	resp, err := f.service.AddProduct(ctx, f.userID, "P001", 2)

	require.Error(t, err)
	assert.Equal(t, model.ErrExceedsStock, err)
	assert.Nil(t, resp)
	f.cartRepo.AssertNotCalled(t, "UpsertItem")
	f.tx.AssertExpectations(t)
}

func TestCartService_AddProduct_InvalidQuantity(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	for _, quantity := range []int{0, -1} {
		resp, err := f.service.AddProduct(ctx, f.userID, "P001", quantity)

		require.Error(t, err)
		assert.Equal(t, model.ErrInvalidQuantity, err)
		assert.Nil(t, resp)
	}

	f.productRepo.AssertNotCalled(t, "GetByID")
	f.cartRepo.AssertNotCalled(t, "BeginTx")
}

func TestCartService_AddProduct_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	f.productRepo.On("GetByID", ctx, "P999").Return(nil, nil)

	resp, err := f.service.AddProduct(ctx, f.userID, "P999", 1)

	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotFound, err)
	assert.Nil(t, resp)
	f.cartRepo.AssertNotCalled(t, "BeginTx")
}

func TestCartService_SetQuantity_LineMissing(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, []model.CartItem{})
	f.tx.On("Rollback", ctx).Return(nil)

	resp, err := f.service.SetQuantity(ctx, f.userID, "P001", 3)

	require.Error(t, err)
	assert.Equal(t, model.ErrCartItemNotFound, err)
	assert.Nil(t, resp)
	f.cartRepo.AssertNotCalled(t, "UpsertItem")
}

func TestCartService_Increment_CappedByStock(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 2}
	existing := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1}}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, existing)
	f.tx.On("Rollback", ctx).Return(nil)

	resp, err := f.service.Increment(ctx, f.userID, "P001")

	require.Error(t, err)
	assert.Equal(t, model.ErrExceedsStock, err)
	assert.Nil(t, resp)
}

func TestCartService_Decrement_RemovesAtOne(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	existing := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 1, Position: 1}}

	f.expectMutation(ctx, existing)
	f.cartRepo.On("RemoveItem", ctx, f.tx, f.cartID, "P001").Return(true, nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.expectRead(ctx, []model.CartItem{}, nil)

	resp, err := f.service.Decrement(ctx, f.userID, "P001")

	require.NoError(t, err)
	assert.Empty(t, resp.Products)
	f.cartRepo.AssertNotCalled(t, "UpsertItem")
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_Decrement_LowersQuantity(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5}
	existing := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 3, Position: 1}}
	after := []model.CartItem{{CartID: f.cartID, ProductID: "P001", Quantity: 2, Position: 1}}

	f.expectMutation(ctx, existing)
	f.cartRepo.On("UpsertItem", ctx, f.tx, f.cartID, "P001", 2).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.expectRead(ctx, after, []model.Product{product})

	resp, err := f.service.Decrement(ctx, f.userID, "P001")

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Products[0].Quantity)
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_Remove_NotInCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	f.expectMutation(ctx, []model.CartItem{})
	f.cartRepo.On("RemoveItem", ctx, f.tx, f.cartID, "P001").Return(false, nil)
	f.tx.On("Rollback", ctx).Return(nil)

	resp, err := f.service.Remove(ctx, f.userID, "P001")

	require.Error(t, err)
	assert.Equal(t, model.ErrCartItemNotFound, err)
	assert.Nil(t, resp)
}

func TestCartService_Clear_EmptiesCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	items := []model.CartItem{
		{CartID: f.cartID, ProductID: "P001", Quantity: 2},
		{CartID: f.cartID, ProductID: "P002", Quantity: 1},
	}

	f.expectMutation(ctx, items)
	f.cartRepo.On("ClearItems", ctx, f.tx, f.cartID).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.expectRead(ctx, []model.CartItem{}, nil)

	resp, err := f.service.Clear(ctx, f.userID)

	require.NoError(t, err)
	assert.Empty(t, resp.Products)
	f.cartRepo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestCartService_Mutation_RollbackOnRepositoryError(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	product := &model.Product{ID: "P001", Title: "Widget", Price: 10.00, NumberInStock: 5}

	f.productRepo.On("GetByID", ctx, "P001").Return(product, nil)
	f.expectMutation(ctx, []model.CartItem{})
	f.cartRepo.On("UpsertItem", ctx, f.tx, f.cartID, "P001", 1).
		Return(errors.New("database error"))
	f.tx.On("Rollback", ctx).Return(nil)

	resp, err := f.service.AddProduct(ctx, f.userID, "P001", 1)

	require.Error(t, err)
	assert.Nil(t, resp)
	f.tx.AssertExpectations(t)
	f.tx.AssertNotCalled(t, "Commit")
}
