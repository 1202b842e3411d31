package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/cache"
	"wayfarer/internal/models"
	"wayfarer/internal/repository"
)

// Ctx key and helpers for the authenticated user.
// Using unexported type to avoid collisions.

type ctxKey string

const userKey ctxKey = "user"

const ginUserKey = "user"

func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// CurrentUser returns the authenticated user set by BasicAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ginUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// CORS middleware for cross-origin requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger middleware for structured request logging
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if user, ok := CurrentUser(c); ok {
			logFields = append(logFields, "user_id", user.ID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		}
	}
}

// Recovery middleware recovers from panics with detailed logging
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates the caller via HTTP Basic Auth. The email and
// password hash are looked up in the redis cache first, then in the
// users table. The full user record ends up in both the gin context and
// the request context.
func BasicAuth(userRepo *repository.UserRepository, authCache *cache.AuthCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()

		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		// Cache hit still needs the user record for the admin flag, but
		// skips the password comparison
		if authCache != nil {
			if userID, err := authCache.GetUserID(ctx, email, passwordHash); err == nil {
				if user, err := userRepo.GetByID(ctx, userID); err == nil && user != nil && user.IsActive {
					attachUser(c, user)
					c.Next()
					return
				}
			}
		}

		user, err := userRepo.GetByEmail(ctx, email)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid credentials"})
			return
		}

		if user.PasswordHash == "" || passwordHash != user.PasswordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid credentials"})
			return
		}

		if authCache != nil {
			authCache.SetUserID(ctx, email, passwordHash, user.ID)
		}

		attachUser(c, user)
		c.Next()
	}
}

func attachUser(c *gin.Context, user *models.User) {
	c.Set(ginUserKey, user)
	c.Request = c.Request.WithContext(ContextWithUser(c.Request.Context(), user))
}

// RequireAdmin rejects non-admin callers. Must run after BasicAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "fail", "message": "Admin access required"})
			return
		}
		c.Next()
	}
}
