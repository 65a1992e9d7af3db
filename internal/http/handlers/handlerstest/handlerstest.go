// Package handlerstest содержит общие моки и помощники для тестов HTTP-обработчиков.
package handlerstest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// GuardMock мок auth.Guard.
type GuardMock struct {
	mock.Mock
}

func (m *GuardMock) User(ctx context.Context) *models.User {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*models.User)
	return user
}

func (m *GuardMock) Check(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *GuardMock) Validate(ctx context.Context, credentials map[string]string) *models.User {
	args := m.Called(ctx, credentials)
	user, _ := args.Get(0).(*models.User)
	return user
}

func (m *GuardMock) Login(ctx context.Context, credentials map[string]string) (string, error) {
	args := m.Called(ctx, credentials)
	return args.String(0), args.Error(1)
}

func (m *GuardMock) Logout() {
	m.Called()
}

func (m *GuardMock) SetUser(user *models.User) {
	m.Called(user)
}

func (m *GuardMock) TokenForRequest() string {
	return m.Called().String(0)
}

// NewNoopLogger логгер, отбрасывающий записи.
func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// NewRequest собирает запрос с request_id и guard в контексте.
// Строковое тело передаётся как есть, остальное кодируется в JSON.
func NewRequest(method, target string, body any, guard *GuardMock) *http.Request {
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
	if guard != nil {
		ctx = middlewarectx.WithGuard(ctx, guard)
	}
	return req.WithContext(ctx)
}

// Decode разбирает JSON-ответ в map.
func Decode(rec *httptest.ResponseRecorder) map[string]any {
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		panic(err)
	}
	return got
}
