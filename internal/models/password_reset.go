package models

// PasswordReset запись сброса пароля, хранящаяся только на удалённом сервисе.
type PasswordReset struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// PasswordResetMail сообщение очереди для отправки письма со ссылкой сброса пароля.
type PasswordResetMail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Link  string `json:"link"`
}
