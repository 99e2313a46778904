package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *MockProductService) GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *MockProductService) GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	page := model.Pagination{Page: 0, Size: 20}
	expected := model.NewPage([]model.Product{
		{PublicID: uuid.New(), Name: "Laptop", Brand: "Acme", Price: 999.00},
	}, page, 1)

	tests := []struct {
		name           string
		target         string
		expectedPage   model.Pagination
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success with defaults",
			target:         "/api/products",
			expectedPage:   page,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Success with explicit pagination",
			target:         "/api/products?page=2&size=5",
			expectedPage:   model.Pagination{Page: 2, Size: 5},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Oversized page request capped",
			target:         "/api/products?size=500",
			expectedPage:   model.Pagination{Page: 0, Size: model.MaxPageSize},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Service error",
			target:         "/api/products",
			expectedPage:   page,
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			mockService.On("GetAll", mock.Anything, tt.expectedPage).Return(expected, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_ListFeatured(t *testing.T) {
	logger := zerolog.Nop()

	page := model.Pagination{Page: 0, Size: 20}
	expected := model.NewPage([]model.Product{
		{PublicID: uuid.New(), Name: "Laptop", Featured: true, Price: 999.00},
	}, page, 1)

	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger)

	mockService.On("GetFeatured", mock.Anything, page).Return(expected, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/featured", nil)
	rec := httptest.NewRecorder()

	handler.ListFeatured(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp model.Page[model.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Content, 1)
	assert.True(t, resp.Content[0].Featured)

	mockService.AssertExpectations(t)
}

func TestProductHandler_List_MethodNotAllowed(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	mockService.AssertNotCalled(t, "GetAll")
}
