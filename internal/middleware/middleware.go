// Package middleware holds the server-wide HTTP middleware, built on
// gorilla/handlers and reporting through slog.
package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/samber/lo"
)

// Logger logs one line per request once the handler returns.
func Logger(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		slog.Info("request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"bytes", p.Size,
			"duration", time.Since(p.TimeStamp),
		)
	})
}

type slogRecovery struct{}

func (slogRecovery) Println(v ...interface{}) {
	slog.Error("panic recovered", "error", fmt.Sprint(v...))
}

// Recovery turns a handler panic into a 500.
func Recovery(next http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slogRecovery{}),
		handlers.PrintRecoveryStack(true),
	)(next)
}

// CORS allows the given origins. Entries may be full origins
// ("http://localhost:5173") or bare hosts ("localhost:5173"); "*" allows
// any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	hosts := lo.Map(origins, func(o string, _ int) string {
		return strings.TrimSuffix(originHost(o), "/")
	})
	allowAll := lo.Contains(hosts, "*")

	return handlers.CORS(
		handlers.AllowedOriginValidator(func(origin string) bool {
			return origin != "" && (allowAll || lo.Contains(hosts, originHost(origin)))
		}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
}

func originHost(origin string) string {
	if i := strings.Index(origin, "://"); i >= 0 {
		return origin[i+3:]
	}
	return origin
}
