// Package auth реализует аутентификацию через удалённый сервис пользователей.
//
// MicroUserProvider переводит операции поиска и проверки пользователя в вызовы
// microapi.UserService, JWTGuard разрешает пользователя текущего запроса
// по токену и кеширует результат на время запроса.
package auth

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// DefaultTokenKey имя параметра, заголовка-cookie и поля учётных данных с токеном.
const DefaultTokenKey = "jwt_token"

// UserService удалённые операции, нужные провайдеру.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Auth(ctx context.Context, credentials map[string]string) (string, error)
	IsAuth(ctx context.Context, token string) (bool, error)
}

// TokenDecoder локально разбирает JWT.
type TokenDecoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// UserProvider источник пользователей для Guard.
type UserProvider interface {
	RetrieveByID(ctx context.Context, id int64) (*models.User, error)
	RetrieveByCredentials(ctx context.Context, credentials map[string]string) (*models.User, error)
	ValidateCredentials(ctx context.Context, user *models.User, credentials map[string]string) (string, error)
	RetrieveByToken(ctx context.Context, token string) *models.User
	UpdateRememberToken(ctx context.Context, user *models.User, token string) error
}

// MicroUserProvider UserProvider поверх удалённого сервиса пользователей.
type MicroUserProvider struct {
	users    UserService
	decoder  TokenDecoder
	tokenKey string
	log      *slog.Logger
}

// NewMicroUserProvider создаёт провайдер.
func NewMicroUserProvider(users UserService, decoder TokenDecoder, log *slog.Logger) *MicroUserProvider {
	return &MicroUserProvider{
		users:    users,
		decoder:  decoder,
		tokenKey: DefaultTokenKey,
		log:      log,
	}
}

// RetrieveByID ищет пользователя по id. Отсутствующий пользователь это nil без ошибки.
func (p *MicroUserProvider) RetrieveByID(ctx context.Context, id int64) (*models.User, error) {
	return p.users.GetByID(ctx, id)
}

// RetrieveByCredentials ищет пользователя по email из учётных данных.
//
// Пустые учётные данные и учётные данные из одного пароля не приводят к запросу
// и дают nil без ошибки.
func (p *MicroUserProvider) RetrieveByCredentials(ctx context.Context, credentials map[string]string) (*models.User, error) {
	const op = "auth.RetrieveByCredentials"

	if len(credentials) == 0 {
		return nil, nil
	}
	if _, onlyPassword := credentials["password"]; onlyPassword && len(credentials) == 1 {
		return nil, nil
	}

	user, err := p.users.GetByEmail(ctx, credentials["email"])
	if err != nil {
		p.log.WarnContext(ctx, "user lookup failed", sl.Op(op), sl.Err(err))
		return nil, errEmailMismatch
	}
	if user == nil {
		return nil, errEmailNotFound
	}
	return user, nil
}

// ValidateCredentials возвращает bearer-токен для пользователя.
//
// Если в учётных данных уже есть токен, он проверяется удалённо и возвращается
// без изменений. Иначе выполняется аутентификация по паролю и возвращается новый токен.
func (p *MicroUserProvider) ValidateCredentials(ctx context.Context, _ *models.User, credentials map[string]string) (string, error) {
	const op = "auth.ValidateCredentials"

	token := credentials[p.tokenKey]
	if token == "" {
		issued, err := p.users.Auth(ctx, credentials)
		if err != nil {
			p.log.WarnContext(ctx, "password authentication failed", sl.Op(op), sl.Err(err))
			return "", errCredentialMismatch
		}
		return issued, nil
	}

	valid, err := p.users.IsAuth(ctx, token)
	if err != nil {
		p.log.WarnContext(ctx, "token validation failed", sl.Op(op), sl.Err(err))
		return "", errTokenInvalid
	}
	if !valid {
		return "", errTokenInvalid
	}
	return token, nil
}

// RetrieveByToken строит пользователя из claims JWT без обращения к сервису.
// Пустой, недействительный или истёкший токен даёт nil.
func (p *MicroUserProvider) RetrieveByToken(ctx context.Context, token string) *models.User {
	const op = "auth.RetrieveByToken"

	if token == "" {
		return nil
	}
	claims, err := p.decoder.Decode(token)
	if err != nil {
		p.log.DebugContext(ctx, "token rejected", sl.Op(op), sl.Err(err))
		return nil
	}
	return claims.User()
}

// UpdateRememberToken ничего не делает: remember-токены не хранятся в сервисе.
func (p *MicroUserProvider) UpdateRememberToken(context.Context, *models.User, string) error {
	return nil
}
