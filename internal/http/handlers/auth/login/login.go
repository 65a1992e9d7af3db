// Package login реализует HTTP-обработчик входа пользователя.
//
// Учётные данные передаются guard запроса, который проверяет их на удалённом сервисе
// пользователей. Выданный сервисом токен возвращается в теле ответа и кладётся в cookie.
package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/auth"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/cookie"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
)

// Request входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	cfg      config.Auth
	validate *validator.Validate
}

// New создаёт обработчик входа.
func New(log *slog.Logger, cfg config.Auth) *Handler {
	return &Handler{
		log:      log,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль на сервисе пользователей. Возвращает токен и пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	guard, ok := middlewarectx.GuardFromContext(r.Context())
	if !ok {
		log.ErrorContext(r.Context(), "guard is not set for request")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.InfoContext(r.Context(), "failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.InfoContext(r.Context(), "validation failed", sl.Err(err))
		code, body := response.Validation(err)
		render.Status(r, code)
		render.JSON(w, r, body)
		return
	}

	token, err := guard.Login(r.Context(), map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		log.InfoContext(r.Context(), "login rejected", slog.String("kind", auth.KindOf(err).String()))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	case err != nil:
		log.ErrorContext(r.Context(), "login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	case token == "":
		log.InfoContext(r.Context(), "login returned no token")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	cookie.SetToken(w, h.cfg.CookieName(), token, h.cfg.CookieTTL)

	log.InfoContext(r.Context(), "login success")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  guard.User(r.Context()),
	}))
}
