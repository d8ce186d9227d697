// internal/handler/user.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/middleware"
	"receipt-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store storage.Storage
}

func NewUserHandler(store storage.Storage) *UserHandler {
	return &UserHandler{store: store}
}

// GetProfile — GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondInternal(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// DeleteMyAccount — DELETE /api/users/me. Сначала чеки, потом учётка.
func (h *UserHandler) DeleteMyAccount(c *gin.Context) {
	userID := middleware.UserID(c)

	if _, err := h.store.DeleteReceiptsByUser(c.Request.Context(), userID); err != nil {
		respondInternal(c, "delete account receipts", err)
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), userID); err != nil {
		respondInternal(c, "delete account", err)
		return
	}

	slog.Info("account deleted", "user_id", userID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account and all receipts deleted successfully"})
}

// ListUsers — GET /api/users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		respondInternal(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "data": users})
}

// DeleteUser — DELETE /api/users/:id (admin). Каскад: чеки удаляются
// до записи пользователя.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.store.GetUserByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondInternal(c, "delete user", err)
		return
	}

	deleted, err := h.store.DeleteReceiptsByUser(c.Request.Context(), id)
	if err != nil {
		respondInternal(c, "delete user receipts", err)
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		respondInternal(c, "delete user", err)
		return
	}

	slog.Info("user deleted by admin", "user_id", id, "receipts_deleted", deleted, "admin_id", middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User and all their receipts deleted successfully"})
}

// DeleteAllUsers — DELETE /api/users/all (admin). Вызывающий админ остаётся.
func (h *UserHandler) DeleteAllUsers(c *gin.Context) {
	adminID := middleware.UserID(c)

	if _, err := h.store.DeleteReceiptsExceptUser(c.Request.Context(), adminID); err != nil {
		respondInternal(c, "delete all receipts", err)
		return
	}
	deleted, err := h.store.DeleteUsersExcept(c.Request.Context(), adminID)
	if err != nil {
		respondInternal(c, "delete all users", err)
		return
	}

	slog.Info("all users deleted", "count", deleted, "admin_id", adminID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All users (except admin) and their receipts deleted"})
}

// ChangeRole — PUT /api/users/:id/role (admin)
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	id := c.Param("id")
	if err := h.store.UpdateRole(c.Request.Context(), id, domain.Role(req.Role)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondInternal(c, "change role", err)
		return
	}

	slog.Info("role changed", "user_id", id, "role", req.Role, "admin_id", middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated"})
}

// === DTO ===

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,rolename"`
}
