// internal/handler/router.go
package handler

import (
	"net/http"

	"receipt-tracker/internal/auth"
	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/middleware"
	"receipt-tracker/internal/notify"
	"receipt-tracker/internal/storage"
	"receipt-tracker/internal/upload"

	"github.com/gin-gonic/gin"
)

// NewRouter собирает все API-маршруты. Политика доступа объявлена здесь же,
// рядом с маршрутом: RequireAuth на группе, RequireRole на админских ручках.
func NewRouter(store storage.Storage, tokens *auth.TokenService, uploads *upload.Saver, notifier notify.Notifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(store, tokens, notifier)
	receiptH := NewReceiptHandler(store, uploads)
	userH := NewUserHandler(store)
	authMW := middleware.NewAuthMiddleware(tokens, store)

	api := router.Group("/api")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	protected := api.Group("", authMW.RequireAuth())
	{
		protected.PUT("/auth/profile", authH.UpdateProfile)

		protected.GET("/receipts", receiptH.List)
		protected.POST("/receipts", receiptH.Create)
		protected.GET("/receipts/stats/summary", receiptH.Stats)
		protected.GET("/receipts/:id", receiptH.Get)
		protected.PUT("/receipts/:id", receiptH.Update)
		protected.DELETE("/receipts/:id", receiptH.Delete)
		protected.POST("/receipts/:id/like", receiptH.ToggleLike)

		protected.GET("/users/profile", userH.GetProfile)
		protected.DELETE("/users/me", userH.DeleteMyAccount)

		admin := protected.Group("", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/users", userH.ListUsers)
			admin.DELETE("/users/all", userH.DeleteAllUsers)
			admin.DELETE("/users/:id", userH.DeleteUser)
			admin.PUT("/users/:id/role", userH.ChangeRole)
		}
	}

	return router
}
