package register

import (
	"context"

	"github.com/magabrotheeeer/storefront/internal/models"
)

// Service создаёт пользователя на удалённом сервисе.
type Service interface {
	Create(ctx context.Context, fields map[string]string) (*models.User, error)
}
