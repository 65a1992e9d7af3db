// Package passwordreset реализует сброс пароля через удалённый сервис пользователей.
//
// SendResetLink создаёт токен и ставит в очередь письмо со ссылкой,
// Reset проверяет токен, сохраняет новый пароль и удаляет запись сброса.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/storefront/internal/auth"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/rabbitmq"
)

const rememberTokenLength = 60

var (
	// ErrInvalidUser пользователь с таким email не найден.
	ErrInvalidUser = errors.New("we can't find a user with that email address")
	// ErrInvalidToken токен сброса пароля недействителен.
	ErrInvalidToken = errors.New("this password reset token is invalid")
	// ErrLookupFailed пользователя не удалось найти из-за сбоя удалённого сервиса.
	ErrLookupFailed = errors.New("user lookup failed")
)

// UserLookup поиск пользователя по учётным данным.
type UserLookup interface {
	RetrieveByCredentials(ctx context.Context, credentials map[string]string) (*models.User, error)
}

// TokenRepository хранилище токенов сброса пароля.
type TokenRepository interface {
	Create(ctx context.Context, user *models.User) (string, error)
	Exists(ctx context.Context, user *models.User, token string) (bool, error)
	Delete(ctx context.Context, user *models.User) error
}

// UserUpdater сохраняет пользователя.
type UserUpdater interface {
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// Publisher ставит задачу в очередь.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Broker управляет сбросом пароля.
type Broker struct {
	users     UserLookup
	tokens    TokenRepository
	updater   UserUpdater
	publisher Publisher
	linkBase  string
	log       *slog.Logger
}

// NewBroker создаёт Broker. linkBase адрес страницы сброса пароля.
func NewBroker(users UserLookup, tokens TokenRepository, updater UserUpdater, publisher Publisher, linkBase string, log *slog.Logger) *Broker {
	return &Broker{
		users:     users,
		tokens:    tokens,
		updater:   updater,
		publisher: publisher,
		linkBase:  linkBase,
		log:       log,
	}
}

// SendResetLink создаёт токен для пользователя и публикует задачу отправки письма.
func (b *Broker) SendResetLink(ctx context.Context, email string) error {
	const op = "passwordreset.SendResetLink"

	user, err := b.user(ctx, email)
	if err != nil {
		return err
	}

	token, err := b.tokens.Create(ctx, user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	mail := models.PasswordResetMail{
		Email: user.EmailForPasswordReset(),
		Name:  user.Name,
		Link:  b.resetLink(token, user.EmailForPasswordReset()),
	}
	if err := b.publisher.Publish(ctx, rabbitmq.PasswordResetMailQueue, mail); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.log.InfoContext(ctx, "password reset link queued", sl.Op(op), slog.Int64("user_id", user.ID))
	return nil
}

// Reset меняет пароль пользователя, если токен действителен.
//
// Пользователь получает новый remember_token, запись сброса удаляется после сохранения.
func (b *Broker) Reset(ctx context.Context, email, token, password string) (*models.User, error) {
	const op = "passwordreset.Reset"

	user, err := b.user(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := b.tokens.Exists(ctx, user, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	remember, err := auth.RandomString(rememberTokenLength)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Password = password
	user.RememberToken = remember

	updated, err := b.updater.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := b.tokens.Delete(ctx, user); err != nil {
		// пароль уже изменён, запись истечёт на стороне сервиса
		b.log.WarnContext(ctx, "failed to delete password reset record", sl.Op(op), sl.Err(err))
	}
	if updated == nil {
		updated = user
	}
	return updated, nil
}

func (b *Broker) user(ctx context.Context, email string) (*models.User, error) {
	const op = "passwordreset.user"

	user, err := b.users.RetrieveByCredentials(ctx, map[string]string{"email": email})
	if err != nil {
		if auth.KindOf(err) == auth.KindNotFound {
			return nil, ErrInvalidUser
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLookupFailed, err)
	}
	if user == nil {
		return nil, ErrInvalidUser
	}
	return user, nil
}

func (b *Broker) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return b.linkBase + "?" + q.Encode()
}
