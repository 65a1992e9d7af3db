package password

import (
	"context"

	"github.com/magabrotheeeer/storefront/internal/models"
)

// Broker отправляет ссылки сброса пароля и выполняет сброс.
type Broker interface {
	SendResetLink(ctx context.Context, email string) error
	Reset(ctx context.Context, email, token, password string) (*models.User, error)
}
