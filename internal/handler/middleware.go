package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/runcoach/backend/internal/model"
	"github.com/runcoach/backend/internal/service"
)

const authUserKey = "auth_user"

// SessionMiddleware resolves the session cookie to a user and aborts with 401
// when there is no valid session. The token travels only in the cookie; the
// middleware extracts it and passes it down explicitly.
func SessionMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, _ := c.Cookie(authService.CookieConfig().Name)
		user, err := authService.RequireUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			}
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.User {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
