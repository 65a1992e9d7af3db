// Package jwt разбирает JWT, выпущенные удалённым сервисом пользователей.
//
// Токены подписываются на стороне сервиса, приложение только проверяет подпись
// и срок действия и строит из claims модель пользователя.
package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/storefront/internal/models"
)

// Claims описывает данные пользователя, хранящиеся в JWT.
type Claims struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Status               int32  `json:"status"`
	jwt.RegisteredClaims        // exp обязателен
}

// User строит модель пользователя из claims. Пароль в токене не передаётся.
func (c *Claims) User() *models.User {
	return &models.User{
		ID:     c.ID,
		Name:   c.Name,
		Email:  c.Email,
		Status: c.Status,
	}
}
