package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/auth"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/response"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// GuardKey ключ guard аутентификации в контексте запроса.
const GuardKey Key = "auth_guard"

// WithGuard кладёт guard в контекст.
func WithGuard(ctx context.Context, guard auth.Guard) context.Context {
	return context.WithValue(ctx, GuardKey, guard)
}

// GuardFromContext возвращает guard текущего запроса.
func GuardFromContext(ctx context.Context) (auth.Guard, bool) {
	guard, ok := ctx.Value(GuardKey).(auth.Guard)
	return guard, ok
}

// Authenticate создаёт JWTGuard для каждого запроса и кладёт его в контекст.
// Пользователь разрешается лениво, при первом обращении к guard.
func Authenticate(provider auth.UserProvider, cfg config.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := auth.NewJWTGuard(provider, r, cfg.InputKey, cfg.StorageKey)
			// тело читается и восстанавливается до копирования запроса
			guard.TokenForRequest()
			next.ServeHTTP(w, r.WithContext(WithGuard(r.Context(), guard)))
		})
	}
}

// RequireUser отвечает 401, если запрос не аутентифицирован.
func RequireUser(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireUser"

			guard, ok := GuardFromContext(r.Context())
			if !ok || !guard.Check(r.Context()) {
				log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				).InfoContext(r.Context(), "unauthenticated request")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthenticated"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
