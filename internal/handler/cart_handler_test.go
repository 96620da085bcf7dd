package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop-kart/internal/middleware"
	"shop-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) AddProduct(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Increment(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Decrement(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

// authenticated attaches a user identity to the request context.
func authenticated(req *http.Request, userID uuid.UUID, isAdmin bool) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), userID, isAdmin))
}

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	cart := &model.CartResponse{
		ID:     uuid.New(),
		UserID: userID,
		Products: []model.CartLine{
			{ProductID: "P001", Title: "Widget", Price: 100.00, DiscountedPrice: 80.00, Discount: 20, Quantity: 2},
		},
	}

	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, logger)

	mockService.On("Get", mock.Anything, userID).Return(cart, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/cart", nil), userID, false)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, userID, got.UserID)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 80.00, got.Products[0].DiscountedPrice)
	mockService.AssertExpectations(t)
}

func TestCartHandler_Get_Unauthenticated(t *testing.T) {
	logger := zerolog.Nop()

	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockService.AssertNotCalled(t, "Get")
}

func TestCartHandler_Add(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	cart := &model.CartResponse{ID: uuid.New(), UserID: userID, Products: []model.CartLine{}}

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.CartResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"productId":"P001","quantity":2}`,
			mockReturn:     cart,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `{invalid`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing product ID",
			body:           `{"quantity":2}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Product not found",
			body:           `{"productId":"P999","quantity":1}`,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Exceeds stock",
			body:           `{"productId":"P001","quantity":99}`,
			mockError:      model.ErrExceedsStock,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid quantity",
			body:           `{"productId":"P001","quantity":0}`,
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, logger)

			if tt.expectService {
				mockService.On("AddProduct", mock.Anything, userID, mock.AnythingOfType("string"), mock.AnythingOfType("int")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := authenticated(httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(tt.body)), userID, false)
			rec := httptest.NewRecorder()

			handler.Add(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_SetQuantity(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	cart := &model.CartResponse{ID: uuid.New(), UserID: userID, Products: []model.CartLine{}}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("SetQuantity", mock.Anything, userID, "P001", 3).Return(cart, nil)

		req := authenticated(httptest.NewRequest(http.MethodPut, "/api/cart/P001", strings.NewReader(`{"quantity":3}`)), userID, false)
		rec := httptest.NewRecorder()

		handler.SetQuantity(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Line missing", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("SetQuantity", mock.Anything, userID, "P001", 3).Return(nil, model.ErrCartItemNotFound)

		req := authenticated(httptest.NewRequest(http.MethodPut, "/api/cart/P001", strings.NewReader(`{"quantity":3}`)), userID, false)
		rec := httptest.NewRecorder()

		handler.SetQuantity(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCartHandler_IncrementDecrement(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	cart := &model.CartResponse{ID: uuid.New(), UserID: userID, Products: []model.CartLine{}}

	t.Run("Increment", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("Increment", mock.Anything, userID, "P001").Return(cart, nil)

		req := authenticated(httptest.NewRequest(http.MethodPut, "/api/cart/increment/P001", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Increment(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Increment capped by stock", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("Increment", mock.Anything, userID, "P001").Return(nil, model.ErrExceedsStock)

		req := authenticated(httptest.NewRequest(http.MethodPut, "/api/cart/increment/P001", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Increment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Decrement", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("Decrement", mock.Anything, userID, "P001").Return(cart, nil)

		req := authenticated(httptest.NewRequest(http.MethodPut, "/api/cart/decrement/P001", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Decrement(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCartHandler_Remove(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	cart := &model.CartResponse{ID: uuid.New(), UserID: userID, Products: []model.CartLine{}}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("Remove", mock.Anything, userID, "P001").Return(cart, nil)

		req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/cart/P001", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Remove(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Not in cart", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		mockService.On("Remove", mock.Anything, userID, "P001").Return(nil, model.ErrCartItemNotFound)

		req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/cart/P001", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Remove(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCartHandler_Clear(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		empty := &model.CartResponse{ID: uuid.New(), UserID: userID, Products: []model.CartLine{}}
		mockService.On("Clear", mock.Anything, userID).Return(empty, nil)

		req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), userID, false)
		rec := httptest.NewRecorder()

		handler.Clear(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp model.CartResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Empty(t, resp.Products)
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
		rec := httptest.NewRecorder()

		handler.Clear(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockService.AssertNotCalled(t, "Clear")
	})
}
