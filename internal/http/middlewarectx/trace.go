// Package middlewarectx содержит HTTP middleware приложения: трассировку запроса,
// создание guard аутентификации и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.opentelemetry.io/otel/propagation"

	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// TraceMiddleware открывает корневой спан на каждый запрос.
//
// Спан становится дочерним для traceparent из заголовков запроса. После обработки
// имя спана заменяется шаблоном маршрута chi (или остаётся путём, если маршрут не найден),
// проставляется итоговый статус, спан завершается и отправляется.
func TraceMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			unit := tracer.Begin(r.Context(), tracing.ModeServer, r.URL.Path, propagation.HeaderCarrier(r.Header))
			defer unit.Terminate(context.WithoutCancel(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			unit.Span().SetTag("http.method", r.Method)

			next.ServeHTTP(ww, r.WithContext(unit.Context()))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				unit.SetOperationName(rctx.RoutePattern())
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			unit.SetStatus(status)
		})
	}
}
