// Package password реализует HTTP-обработчики сброса пароля:
// отправку ссылки на email и установку нового пароля по токену.
package password

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/services/passwordreset"
)

// EmailRequest запрос ссылки сброса пароля.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetRequest установка нового пароля.
type ResetRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// EmailHandler отправляет ссылку сброса пароля.
type EmailHandler struct {
	log      *slog.Logger
	broker   Broker
	validate *validator.Validate
}

// NewEmailHandler создаёт обработчик отправки ссылки.
func NewEmailHandler(log *slog.Logger, broker Broker) *EmailHandler {
	return &EmailHandler{log: log, broker: broker, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Ссылка сброса пароля
// @Description Создаёт токен сброса и ставит в очередь письмо со ссылкой.
// @Tags Password
// @Accept  json
// @Produce  json
// @Param request body EmailRequest true "Email пользователя"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Пользователь не найден или ошибка валидации"
// @Failure 500 {object} response.ErrorResponse
// @Router /password/email [post]
func (h *EmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.password.email"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req EmailRequest
	if !decode(w, r, log, h.validate, &req) {
		return
	}

	err := h.broker.SendResetLink(r.Context(), req.Email)
	switch {
	case errors.Is(err, passwordreset.ErrInvalidUser):
		log.InfoContext(r.Context(), "reset link requested for unknown user")
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(passwordreset.ErrInvalidUser.Error()))
		return
	case err != nil:
		log.ErrorContext(r.Context(), "failed to send reset link", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send reset link"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "we have emailed your password reset link",
	}))
}

// ResetHandler устанавливает новый пароль.
type ResetHandler struct {
	log      *slog.Logger
	broker   Broker
	validate *validator.Validate
}

// NewResetHandler создаёт обработчик сброса пароля.
func NewResetHandler(log *slog.Logger, broker Broker) *ResetHandler {
	return &ResetHandler{log: log, broker: broker, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Сброс пароля
// @Description Проверяет токен на сервисе пользователей и устанавливает новый пароль.
// @Tags Password
// @Accept  json
// @Produce  json
// @Param request body ResetRequest true "Токен и новый пароль"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Недействительный токен или пользователь"
// @Failure 500 {object} response.ErrorResponse
// @Router /password/reset [post]
func (h *ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.password.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req ResetRequest
	if !decode(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.broker.Reset(r.Context(), req.Email, req.Token, req.Password)
	switch {
	case errors.Is(err, passwordreset.ErrInvalidUser):
		log.InfoContext(r.Context(), "password reset rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(passwordreset.ErrInvalidUser.Error()))
		return
	case errors.Is(err, passwordreset.ErrInvalidToken):
		log.InfoContext(r.Context(), "password reset rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(passwordreset.ErrInvalidToken.Error()))
		return
	case err != nil:
		log.ErrorContext(r.Context(), "password reset failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reset password"))
		return
	}

	if guard, ok := middlewarectx.GuardFromContext(r.Context()); ok {
		guard.SetUser(user)
	}

	log.InfoContext(r.Context(), "password reset", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "your password has been reset",
		"user":    user,
	}))
}

func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *validator.Validate, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.InfoContext(r.Context(), "failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	if err := v.Struct(req); err != nil {
		log.InfoContext(r.Context(), "validation failed", sl.Err(err))
		code, body := response.Validation(err)
		render.Status(r, code)
		render.JSON(w, r, body)
		return false
	}
	return true
}
