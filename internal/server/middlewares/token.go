package middlewares

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openmined/dsmanager/internal/server/handlers/api"
)

const (
	bearerPrefix = "Bearer "
	authHeader   = "Authorization"
)

var (
	errMissingToken = errors.New("authorization header is missing")
	errBadScheme    = errors.New("authorization header format must be Bearer {token}")
	errBadToken     = errors.New("invalid api token")
)

// TokenAuth requires a static bearer token. An empty token disables the check.
func TokenAuth(token string) gin.HandlerFunc {
	if token == "" {
		slog.Info("token auth disabled")
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}
	slog.Info("token auth enabled")

	want := []byte(token)
	return func(ctx *gin.Context) {
		value := ctx.GetHeader(authHeader)
		if value == "" {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAccessDenied, errMissingToken)
			return
		}
		if !strings.HasPrefix(value, bearerPrefix) {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAccessDenied, errBadScheme)
			return
		}
		got := []byte(strings.TrimPrefix(value, bearerPrefix))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAccessDenied, errBadToken)
			return
		}
		ctx.Next()
	}
}
