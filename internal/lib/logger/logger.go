// Package logger настраивает slog под окружение запуска.
package logger

import (
	"io"
	"log/slog"

	"github.com/magabrotheeeer/storefront/internal/tracing"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Setup создаёт логгер для окружения env:
// local пишет текст с уровнем debug, dev пишет JSON с уровнем debug, prod пишет JSON с уровнем info.
// Неизвестное окружение настраивается как prod. Каждая запись дополняется trace_id и span_id.
func Setup(env string, w io.Writer) *slog.Logger {
	var h slog.Handler
	switch env {
	case envLocal:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envDev:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(tracing.NewLogHandler(h)).With(slog.String("env", env))
}
