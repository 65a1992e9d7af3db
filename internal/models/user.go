// Package models содержит проекцию пользователя удалённого сервиса,
// используемую в течение одного запроса, и запись сброса пароля.
package models

// User представляет аутентифицированного пользователя (principal).
//
// Запись никогда не сохраняется локально: она собирается из ответа
// удалённого сервиса или из claims JWT и живёт в пределах одной единицы работы.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Status        int32  `json:"status"`
	Password      string `json:"-"` // Никогда не сериализуется наружу
	RememberToken string `json:"-"`
}

// AuthIdentifier возвращает уникальный идентификатор пользователя.
func (u *User) AuthIdentifier() int64 {
	return u.ID
}

// EmailForPasswordReset возвращает адрес, на который отправляется ссылка сброса пароля.
func (u *User) EmailForPasswordReset() string {
	return u.Email
}
