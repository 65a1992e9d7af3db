package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/tracing/tracingtest"
)

const inboundTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestTraceMiddleware_NamesSpanByRoutePattern(t *testing.T) {
	tr, rec := tracingtest.New()

	var handlerSpan trace.SpanContext
	router := chi.NewRouter()
	router.Use(middlewarectx.TraceMiddleware(tr))
	router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		handlerSpan = trace.SpanContextFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set("traceparent", inboundTraceparent)
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, rec.Ended(), 1)
	span := rec.Ended()[0]
	assert.Equal(t, "/users/{id}", span.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.Parent().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
	assert.Equal(t, span.SpanContext().SpanID(), handlerSpan.SpanID())

	status, ok := tracingtest.Attr(span, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusAccepted), status.AsInt64())
	url, _ := tracingtest.Attr(span, "http.url")
	assert.Equal(t, "/users/42", url.AsString())
	assert.Equal(t, 1, rec.Flushes())
}

func TestTraceMiddleware_RootSpanWithoutInboundContext(t *testing.T) {
	tr, rec := tracingtest.New()

	router := chi.NewRouter()
	router.Use(middlewarectx.TraceMiddleware(tr))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, rec.Ended(), 1)
	span := rec.Ended()[0]
	assert.False(t, span.Parent().IsValid())
	status, _ := tracingtest.Attr(span, "http.status_code")
	assert.Equal(t, int64(http.StatusOK), status.AsInt64())
}

func TestTraceMiddleware_UnknownRouteKeepsPath(t *testing.T) {
	tr, rec := tracingtest.New()

	router := chi.NewRouter()
	router.Use(middlewarectx.TraceMiddleware(tr))
	router.Get("/health", func(http.ResponseWriter, *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "/missing", rec.Ended()[0].Name())
	status, _ := tracingtest.Attr(rec.Ended()[0], "http.status_code")
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
}

func TestTraceMiddleware_TerminatesOnPanic(t *testing.T) {
	tr, rec := tracingtest.New()

	handler := middlewarectx.TraceMiddleware(tr)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, 1, rec.Flushes())
}
