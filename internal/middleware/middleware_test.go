package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cargo-shop/internal/model"
	"cargo-shop/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) SyncWithIdP(ctx context.Context, token service.IdPToken) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func signToken(t *testing.T, secret, subject string, roles []string, lastSignedIn time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            subject,
		"roles":          roles,
		"last_signed_in": lastSignedIn.Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestBearerAuth_ValidToken(t *testing.T) {
	logger := zerolog.Nop()

	buyer := &model.User{PublicID: uuid.New(), Email: "buyer@example.com"}
	signedIn := time.Now().Add(-time.Minute).Truncate(time.Second)

	mockUsers := new(MockUserService)
	mockUsers.On("SyncWithIdP", mock.Anything, service.IdPToken{
		Subject:      "kp_123",
		Roles:        []string{"ROLE_USER"},
		LastSignedIn: signedIn,
	}).Return(buyer, nil)

	var seenUser *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := BearerAuth(testSecret, mockUsers, nil, logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/user", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "kp_123", []string{"ROLE_USER"}, signedIn))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, buyer, seenUser)
	mockUsers.AssertExpectations(t)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	logger := zerolog.Nop()
	mockUsers := new(MockUserService)

	handler := BearerAuth(testSecret, mockUsers, nil, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/user", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertNotCalled(t, "SyncWithIdP")
}

func TestBearerAuth_WrongSecret(t *testing.T) {
	logger := zerolog.Nop()
	mockUsers := new(MockUserService)

	handler := BearerAuth(testSecret, mockUsers, nil, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/user", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "kp_123", nil, time.Now()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertNotCalled(t, "SyncWithIdP")
}

func TestBearerAuth_SkipPaths(t *testing.T) {
	logger := zerolog.Nop()
	mockUsers := new(MockUserService)

	skip := []string{"/health", "/api/orders/webhook"}
	handler := BearerAuth(testSecret, mockUsers, skip, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range skip {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	mockUsers.AssertNotCalled(t, "SyncWithIdP")
}

func TestBearerAuth_SyncFailure(t *testing.T) {
	logger := zerolog.Nop()

	mockUsers := new(MockUserService)
	mockUsers.On("SyncWithIdP", mock.Anything, mock.AnythingOfType("service.IdPToken")).
		Return(nil, errors.New("provider unavailable"))

	handler := BearerAuth(testSecret, mockUsers, nil, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when sync fails")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/user", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "kp_123", nil, time.Now()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLogging_CapturesStatus(t *testing.T) {
	logger := zerolog.Nop()

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecovery_HandlesPanic(t *testing.T) {
	logger := zerolog.Nop()

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
