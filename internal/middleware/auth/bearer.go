package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/tokens"
)

const userContextKey = "user"

// RequireBearer rejects requests without a bearer token with 401 and
// requests whose token does not verify (bad signature, wrong algorithm,
// expired) with 403.
func RequireBearer(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "auth.require_bearer")

			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("auth_error", "status", 401, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			claims, err := tokens.ParseAuthClaims(raw, secret)
			if err != nil {
				l.Warn("auth_error", "status", 403, "reason", "invalid bearer token", "error", err)
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}

			c.Set(userContextKey, claims)
			enriched := logging.FromContext(ctx).With("user_id", claims.ID)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, enriched)))
			return next(c)
		}
	}
}

// Claims returns the verified token payload of the current request.
func Claims(c echo.Context) (*tokens.AuthClaims, bool) {
	claims, ok := c.Get(userContextKey).(*tokens.AuthClaims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
