// Package microapi клиент удалённого сервиса пользователей.
//
// Все методы ходят по HTTP+JSON через rpc.Client с префиксом /user/userService.
// Любая ошибка транспорта или разбора ответа логируется с исходной причиной
// и возвращается вызывающему как ErrRemoteCall.
package microapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/rpc"
)

const servicePrefix = "/user/userService"

// ErrRemoteCall единственная ошибка, которую видит вызывающий код.
var ErrRemoteCall = errors.New("failed to call remote service")

// Caller выполняет запрос к удалённому сервису.
type Caller interface {
	Request(ctx context.Context, method, uri string, opts rpc.Options) (*resty.Response, error)
}

// UserService клиент сервиса пользователей.
type UserService struct {
	client Caller
	log    *slog.Logger
}

// NewUserService создаёт клиент сервиса пользователей.
func NewUserService(client Caller, log *slog.Logger) *UserService {
	return &UserService{client: client, log: log}
}

// Create регистрирует пользователя. Из fields используются только name, email и password.
func (s *UserService) Create(ctx context.Context, fields map[string]string) (*models.User, error) {
	const op = "microapi.UserService.Create"

	var out userResponse
	if err := s.call(ctx, op, http.MethodPost, "/create", userFields(fields), &out); err != nil {
		return nil, err
	}
	return toUser(out.User), nil
}

// Auth обменивает учётные данные на токен.
func (s *UserService) Auth(ctx context.Context, credentials map[string]string) (string, error) {
	const op = "microapi.UserService.Auth"

	var out tokenResponse
	if err := s.call(ctx, op, http.MethodPost, "/auth", userFields(credentials), &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetByID возвращает пользователя или nil, если он не найден.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "microapi.UserService.GetByID"

	var out userResponse
	if err := s.call(ctx, op, http.MethodPost, "/get", UserItem{ID: id}, &out); err != nil {
		return nil, err
	}
	return toUser(out.User), nil
}

// GetByEmail возвращает пользователя или nil, если он не найден.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "microapi.UserService.GetByEmail"

	var out userResponse
	if err := s.call(ctx, op, http.MethodPost, "/get", UserItem{Email: email}, &out); err != nil {
		return nil, err
	}
	return toUser(out.User), nil
}

// GetAll возвращает всех пользователей.
func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	const op = "microapi.UserService.GetAll"

	var out usersResponse
	if err := s.call(ctx, op, http.MethodGet, "/getAll", nil, &out); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(out.Users))
	for _, item := range out.Users {
		if u := toUser(item); u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// IsAuth проверяет токен на стороне сервиса.
func (s *UserService) IsAuth(ctx context.Context, token string) (bool, error) {
	const op = "microapi.UserService.IsAuth"

	var out validResponse
	if err := s.call(ctx, op, http.MethodPost, "/validateToken", TokenItem{Token: token}, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// CreatePasswordReset создаёт запись сброса пароля. Пустые поля не передаются.
// Возвращает nil, если сервис вернул пустую запись.
func (s *UserService) CreatePasswordReset(ctx context.Context, data models.PasswordReset) (*models.PasswordReset, error) {
	const op = "microapi.UserService.CreatePasswordReset"

	item := PasswordResetItem{Email: data.Email, Token: data.Token}
	var out passwordResetResponse
	if err := s.call(ctx, op, http.MethodPost, "/createPasswordReset", item, &out); err != nil {
		return nil, err
	}
	return toPasswordReset(out.PasswordReset), nil
}

// DeletePasswordReset удаляет записи сброса пароля для email.
// Тело ответа не разбирается.
func (s *UserService) DeletePasswordReset(ctx context.Context, email string) (bool, error) {
	const op = "microapi.UserService.DeletePasswordReset"

	if err := s.call(ctx, op, http.MethodPost, "/deletePasswordReset", PasswordResetItem{Email: email}, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ValidatePasswordResetToken проверяет токен сброса пароля. Запись при этом не удаляется.
func (s *UserService) ValidatePasswordResetToken(ctx context.Context, token string) (bool, error) {
	const op = "microapi.UserService.ValidatePasswordResetToken"

	var out validResponse
	if err := s.call(ctx, op, http.MethodPost, "/validatePasswordResetToken", TokenItem{Token: token}, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// Update сохраняет пользователя целиком, включая пароль и remember_token.
func (s *UserService) Update(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "microapi.UserService.Update"

	var out userResponse
	if err := s.call(ctx, op, http.MethodPost, "/update", fromUser(user), &out); err != nil {
		return nil, err
	}
	return toUser(out.User), nil
}

// call выполняет запрос и разбирает ответ в out. out == nil означает, что тело не нужно.
func (s *UserService) call(ctx context.Context, op, method, path string, body, out any) error {
	opts := rpc.Options{}
	if body != nil {
		opts.JSON = body
	}

	resp, err := s.client.Request(ctx, method, servicePrefix+path, opts)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to call remote service", sl.Op(op), sl.Err(err))
		return ErrRemoteCall
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		s.log.ErrorContext(ctx, "failed to decode remote response", sl.Op(op), sl.Err(err))
		return ErrRemoteCall
	}
	return nil
}
