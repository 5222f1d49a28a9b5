package middleware

import (
	"errors"
	"net/http"
	"strings"

	adminjwt "github.com/Aaditya88888/netwin-tournament-sub001/pkg/jwt"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
// The token subject becomes the acting admin ID recorded on every money movement.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			abortUnauthorized(c, "Authorization header must start with Bearer ")
			return
		}
		tokenString := authHeader[len(BearerSchema):]

		claims, err := adminjwt.Parse(secret, tokenString)
		if err != nil {
			slog.Warn("JWTAuthMiddleware: Token validation failed", "error", err, "client_ip", c.ClientIP())
			if errors.Is(err, adminjwt.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired")
			} else {
				abortUnauthorized(c, "Invalid token")
			}
			return
		}
		sub, role := claims.Subject, claims.Role

		c.Set(UserIDKey, sub)
		c.Set(UserRoleKey, role)
		slog.Debug("JWTAuthMiddleware: Token validated", "user_id", sub, "role", role)
		c.Next()
	}
}

// RequireRole allows only callers whose token role is one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if _, ok := allowed[role]; !ok {
			slog.Warn("RequireRole: Access denied", "user_id", c.GetString(UserIDKey), "role", role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
				"code":    "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"code":    "UNAUTHORIZED",
	})
}
