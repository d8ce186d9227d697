// internal/middleware/auth.go
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"receipt-tracker/internal/auth"
	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	// Ключи контекста gin, проставляются в RequireAuth
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
	CtxUser     = "user"
)

type AuthMiddleware struct {
	tokenService *auth.TokenService
	users        storage.UserStorage
}

func NewAuthMiddleware(ts *auth.TokenService, users storage.UserStorage) *AuthMiddleware {
	return &AuthMiddleware{tokenService: ts, users: users}
}

// RequireAuth: bearer-токен → проверка подписи → перечитывание пользователя.
// Удалённый пользователь с живым токеном получает 401, а не призрачный доступ.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header required"})
			return
		}

		var tokenStr string
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = authHeader[7:]
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Authorization header format"})
			return
		}

		userID, err := m.tokenService.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		user, err := m.users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				slog.Error("auth user lookup failed", "error", err, "user_id", userID)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxUserRole, user.Role)
		c.Set(CtxUser, user)
		c.Next()
	}
}

// RequireRole объявляется рядом с маршрутом и заменяет разбросанные
// проверки if role == admin внутри хендлеров.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

// UserID возвращает id аутентифицированного пользователя из контекста.
func UserID(c *gin.Context) string {
	id, _ := c.Get(CtxUserID)
	s, _ := id.(string)
	return s
}

// UserRole возвращает роль аутентифицированного пользователя.
func UserRole(c *gin.Context) domain.Role {
	r, _ := c.Get(CtxUserRole)
	role, _ := r.(domain.Role)
	return role
}

// IsAdmin — короткая проверка для владельческих правил в хендлерах.
func IsAdmin(c *gin.Context) bool {
	return UserRole(c) == domain.RoleAdmin
}
