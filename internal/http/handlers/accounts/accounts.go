// Package accounts реализует HTTP-обработчики личного кабинета.
// Оба обработчика подключаются за middlewarectx.RequireUser.
package accounts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// Service получает актуальную запись пользователя с удалённого сервиса.
type Service interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Handler отдаёт страницу аккаунта текущего пользователя.
type Handler struct {
	log   *slog.Logger
	users Service
}

func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Аккаунт пользователя
// @Description Возвращает актуальную запись текущего пользователя.
// @Tags Accounts
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /accounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.accounts"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	current := currentUser(r)
	if current == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthenticated"))
		return
	}

	customer, err := h.users.GetByID(r.Context(), current.ID)
	if err != nil {
		log.ErrorContext(r.Context(), "failed to load customer", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load account"))
		return
	}
	if customer == nil {
		customer = current
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"customer": customer,
	}))
}

// UserHandler отдаёт пользователя из guard без обращения к сервису.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Accounts
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /user [get]
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthenticated"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(user))
}

func currentUser(r *http.Request) *models.User {
	guard, ok := middlewarectx.GuardFromContext(r.Context())
	if !ok {
		return nil
	}
	return guard.User(r.Context())
}
