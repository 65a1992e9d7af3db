// Package logout реализует HTTP-обработчик выхода пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/cookie"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
)

type Handler struct {
	log *slog.Logger
	cfg config.Auth
}

func New(log *slog.Logger, cfg config.Auth) *Handler {
	return &Handler{log: log, cfg: cfg}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Сбрасывает пользователя запроса и удаляет cookie с токеном. Удалённый сервис не вызывается.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if guard, ok := middlewarectx.GuardFromContext(r.Context()); ok {
		guard.Logout()
	}
	cookie.ClearToken(w, h.cfg.CookieName())

	log.InfoContext(r.Context(), "user logged out")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out",
	}))
}
