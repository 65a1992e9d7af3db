package auth_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/storefront/internal/models"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// UserServiceMock мок удалённого сервиса пользователей.
type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserServiceMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserServiceMock) Auth(ctx context.Context, credentials map[string]string) (string, error) {
	args := m.Called(ctx, credentials)
	return args.String(0), args.Error(1)
}

func (m *UserServiceMock) IsAuth(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// ProviderMock мок UserProvider.
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

// PasswordResetServiceMock мок удалённых операций сброса пароля.
type PasswordResetServiceMock struct {
	mock.Mock
}

func (m *PasswordResetServiceMock) CreatePasswordReset(ctx context.Context, data models.PasswordReset) (*models.PasswordReset, error) {
	args := m.Called(ctx, data)
	record, _ := args.Get(0).(*models.PasswordReset)
	return record, args.Error(1)
}

func (m *PasswordResetServiceMock) ValidatePasswordResetToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *PasswordResetServiceMock) DeletePasswordReset(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
