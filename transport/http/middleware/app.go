package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"suitesync/config"
	"suitesync/infras/otel"
	"suitesync/shared/cache"
	"suitesync/shared/constant"
	"suitesync/shared/failure"
	"suitesync/transport/http/response"
)

const (
	otelHTTPScopeName = "http"
)

type AppMiddleware interface {
	Tracing(next http.Handler) http.Handler
	APIKey(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	otel   otel.Otel
	config *config.Config
	cache  cache.RedisCache
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache) AppMiddleware {
	return &appMiddleware{
		otel:   otel,
		config: config,
		cache:  cache,
	}
}

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		spanName := fmt.Sprintf("%s %s", request.Method, request.URL.Path)
		if rctx := chi.RouteContext(request.Context()); rctx != nil && rctx.RoutePattern() != "" {
			spanName = fmt.Sprintf("%s %s", request.Method, rctx.RoutePattern())
		}

		ctx, scope := a.otel.NewScope(request.Context(), otelHTTPScopeName, spanName)
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
			"http.user_agent": a.getUA(request),
			"http.host":       request.Host,
			"http.source":     a.getClientIP(request),
		})

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// APIKey guards the operational endpoints with a shared key. With no key
// configured the guard is disabled, which fits a localhost-only deployment.
func (a *appMiddleware) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		expected := a.config.App.APIKey
		if expected == "" {
			next.ServeHTTP(writer, request)

			return
		}

		provided := request.Header.Get(constant.RequestHeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.WithError(writer, failure.Unauthorized("Invalid or missing API key"))

			return
		}

		next.ServeHTTP(writer, request)
	})
}
