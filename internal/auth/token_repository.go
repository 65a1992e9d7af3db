package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/models"
)

const (
	resetTokenSeedLength = 40
	alphanumeric         = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// PasswordResetService удалённые операции с записями сброса пароля.
type PasswordResetService interface {
	CreatePasswordReset(ctx context.Context, data models.PasswordReset) (*models.PasswordReset, error)
	ValidatePasswordResetToken(ctx context.Context, token string) (bool, error)
	DeletePasswordReset(ctx context.Context, email string) (bool, error)
}

// ServiceTokenRepository хранит токены сброса пароля в удалённом сервисе.
type ServiceTokenRepository struct {
	service PasswordResetService
	key     []byte
}

// NewServiceTokenRepository создаёт репозиторий. Ключ с префиксом base64: декодируется.
func NewServiceTokenRepository(service PasswordResetService, appKey string) (*ServiceTokenRepository, error) {
	const op = "auth.NewServiceTokenRepository"

	key := []byte(appKey)
	if encoded, ok := strings.CutPrefix(appKey, "base64:"); ok {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		key = decoded
	}
	return &ServiceTokenRepository{service: service, key: key}, nil
}

// Create создаёт запись сброса пароля и возвращает её токен.
func (r *ServiceTokenRepository) Create(ctx context.Context, user *models.User) (string, error) {
	const op = "auth.ServiceTokenRepository.Create"

	seed, err := RandomString(resetTokenSeedLength)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	mac := hmac.New(sha256.New, r.key)
	mac.Write([]byte(seed))
	token := hex.EncodeToString(mac.Sum(nil))

	payload := models.PasswordReset{Email: user.EmailForPasswordReset(), Token: token}
	if _, err := r.service.CreatePasswordReset(ctx, payload); err != nil {
		return "", err
	}
	return token, nil
}

// Exists проверяет токен удалённо. Запись при этом не удаляется.
func (r *ServiceTokenRepository) Exists(ctx context.Context, _ *models.User, token string) (bool, error) {
	return r.service.ValidatePasswordResetToken(ctx, token)
}

// Delete удаляет записи сброса пароля пользователя.
func (r *ServiceTokenRepository) Delete(ctx context.Context, user *models.User) error {
	_, err := r.service.DeletePasswordReset(ctx, user.EmailForPasswordReset())
	return err
}

// DeleteExpired ничего не делает: срок жизни записей контролирует сервис.
func (r *ServiceTokenRepository) DeleteExpired(context.Context) error {
	return nil
}

// RandomString возвращает случайную строку из букв и цифр.
func RandomString(n int) (string, error) {
	limit := big.NewInt(int64(len(alphanumeric)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = alphanumeric[idx.Int64()]
	}
	return string(buf), nil
}
