package middleware

import (
	"context"
	"net/http"
	"strings"

	"kasir-system/internal/api"
	"kasir-system/internal/database/models"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "auth.claims"

type TokenParser interface {
	ParseToken(token string) (*utils.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth requires a valid, unrevoked bearer token and stores its claims on
// the gin context.
func JWTAuth(parser TokenParser, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logging.FromContext(c.Request.Context()).Error("revocation check failed", zap.Error(err))
				api.Abort(c, http.StatusInternalServerError, "Authentication service error")
				return
			}
			if isRevoked {
				api.Abort(c, http.StatusUnauthorized, "Token has been revoked.")
				return
			}
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(logging.WithUser(c.Request.Context(), claims.UserId, string(claims.Role)))
		c.Next()
	}
}

// RequireRoles allows the request through only when the caller's role is in
// the allow-list.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if !models.HasRole(roles, claims.Role) {
			api.Abort(c, http.StatusForbidden, "Akses ditolak untuk role "+string(claims.Role))
			return
		}
		c.Next()
	}
}

func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
