// Package register реализует HTTP-обработчик регистрации.
//
// Пользователь создаётся на удалённом сервисе, после чего выполняется вход
// с теми же email и паролем, и токен кладётся в cookie.
package register

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/cookie"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
)

// Request входные данные для регистрации
type Request struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type Handler struct {
	log      *slog.Logger
	users    Service
	cfg      config.Auth
	validate *validator.Validate
}

func New(log *slog.Logger, users Service, cfg config.Auth) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	user, err := h.users.Create(r.Context(), map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil || user == nil {
		log.ErrorContext(r.Context(), "registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	token, err := guard.Login(r.Context(), map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil || token == "" {
		// пользователь уже создан, поэтому ответ успешный, но без сессии
		log.WarnContext(r.Context(), "login after registration failed", sl.Err(err))
		guard.SetUser(user)
	} else {
		cookie.SetToken(w, h.cfg.CookieName(), token, h.cfg.CookieTTL)
	}

	log.InfoContext(r.Context(), "user registered", slog.Int64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
