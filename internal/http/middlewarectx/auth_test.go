package middlewarectx_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/models"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) RetrieveByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *ProviderMock) RetrieveByCredentials(ctx context.Context, credentials map[string]string) (*models.User, error) {
	args := m.Called(ctx, credentials)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *ProviderMock) ValidateCredentials(ctx context.Context, user *models.User, credentials map[string]string) (string, error) {
	args := m.Called(ctx, user, credentials)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) RetrieveByToken(ctx context.Context, token string) *models.User {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user
}

func (m *ProviderMock) UpdateRememberToken(ctx context.Context, user *models.User, token string) error {
	return m.Called(ctx, user, token).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func protected(provider *ProviderMock) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard, _ := middlewarectx.GuardFromContext(r.Context())
		_, _ = w.Write([]byte(guard.User(r.Context()).Email))
	})
	return middlewarectx.Authenticate(provider, config.Auth{})(middlewarectx.RequireUser(newNoopLogger())(final))
}

func TestRequireUser_Authenticated(t *testing.T) {
	provider := new(ProviderMock)
	provider.On("RetrieveByToken", mock.Anything, "tok").Return(&models.User{ID: 1, Email: "ann@example.com"}).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	protected(provider).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", rec.Body.String())
	// пользователь разрешается один раз на запрос
	provider.AssertNumberOfCalls(t, "RetrieveByToken", 1)
}

func TestRequireUser_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  *models.User
	}{
		{name: "no token"},
		{name: "invalid token", token: "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(ProviderMock)
			if tt.token != "" {
				provider.On("RetrieveByToken", mock.Anything, tt.token).Return(tt.user).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: "jwt_token", Value: tt.token})
			}
			rec := httptest.NewRecorder()
			protected(provider).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"status":"Error","error":"unauthenticated"}`, rec.Body.String())
			provider.AssertExpectations(t)
		})
	}
}

func TestRequireUser_WithoutGuard(t *testing.T) {
	handler := middlewarectx.RequireUser(newNoopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_KeepsBodyForHandler(t *testing.T) {
	provider := new(ProviderMock)
	body := `{"email":"ann@example.com","jwt_token":"tok"}`

	var got []byte
	handler := middlewarectx.Authenticate(provider, config.Auth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		got, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		guard, ok := middlewarectx.GuardFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "tok", guard.TokenForRequest())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, body, string(got))
	provider.AssertNotCalled(t, "RetrieveByToken", mock.Anything, mock.Anything)
}
