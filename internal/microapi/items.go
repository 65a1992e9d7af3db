package microapi

import "github.com/magabrotheeeer/storefront/internal/models"

// UserItem пользователь в формате удалённого сервиса.
type UserItem struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Password      string `json:"password,omitempty"`
	Status        int32  `json:"status,omitempty"`
	RememberToken string `json:"remember_token,omitempty"`
}

// TokenItem обёртка токена для validateToken и validatePasswordResetToken.
type TokenItem struct {
	Token string `json:"token"`
}

// PasswordResetItem запись сброса пароля.
type PasswordResetItem struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token,omitempty"`
}

type userResponse struct {
	User *UserItem `json:"user"`
}

type usersResponse struct {
	Users []*UserItem `json:"users"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type validResponse struct {
	Valid bool `json:"valid"`
}

type passwordResetResponse struct {
	PasswordReset *PasswordResetItem `json:"passwordReset"`
}

// userFields оставляет только поля, которые принимает сервис при создании и аутентификации.
func userFields(fields map[string]string) UserItem {
	return UserItem{
		Name:     fields["name"],
		Email:    fields["email"],
		Password: fields["password"],
	}
}

// toUser переносит в модель только id, name, email и status.
func toUser(item *UserItem) *models.User {
	if item == nil {
		return nil
	}
	return &models.User{
		ID:     item.ID,
		Name:   item.Name,
		Email:  item.Email,
		Status: item.Status,
	}
}

func fromUser(user *models.User) UserItem {
	return UserItem{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Password:      user.Password,
		Status:        user.Status,
		RememberToken: user.RememberToken,
	}
}

func toPasswordReset(item *PasswordResetItem) *models.PasswordReset {
	if item == nil || (item.Email == "" && item.Token == "") {
		return nil
	}
	return &models.PasswordReset{Email: item.Email, Token: item.Token}
}
