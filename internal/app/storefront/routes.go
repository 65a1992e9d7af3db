// Package storefront собирает HTTP-приложение: маршруты, зависимости и сервер.
package storefront

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/storefront/internal/auth"
	"github.com/magabrotheeeer/storefront/internal/config"
	_ "github.com/magabrotheeeer/storefront/internal/docs"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/accounts"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// UserService операции сервиса пользователей, нужные обработчикам.
type UserService interface {
	register.Service
	accounts.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Log      *slog.Logger
	Tracer   *tracing.Tracer
	Provider auth.UserProvider
	Users    UserService
	Broker   password.Broker
	Auth     config.Auth
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middlewarectx.TraceMiddleware(d.Tracer),
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.Authenticate(d.Provider, d.Auth))

		// Открытые конечные точки с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(d.Log, rate.Limit(10), 20))
			r.Post("/register", register.New(d.Log, d.Users, d.Auth).ServeHTTP)
			r.Post("/login", login.New(d.Log, d.Auth).ServeHTTP)
			r.Post("/password/email", password.NewEmailHandler(d.Log, d.Broker).ServeHTTP)
			r.Post("/password/reset", password.NewResetHandler(d.Log, d.Broker).ServeHTTP)
		})
		r.Post("/logout", logout.New(d.Log, d.Auth).ServeHTTP)

		// Группа, требующая аутентифицированного пользователя
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireUser(d.Log))
			r.Get("/accounts", accounts.New(d.Log, d.Users).ServeHTTP)
			r.Get("/user", accounts.NewUserHandler().ServeHTTP)
		})
	})

	r.Get("/health", health.New().ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// NewRouter создаёт chi-роутер со всеми маршрутами.
func NewRouter(d Deps) http.Handler {
	router := chi.NewRouter()
	RegisterRoutes(router, d)
	return router
}
