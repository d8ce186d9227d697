// internal/handler/auth.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"receipt-tracker/internal/auth"
	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/middleware"
	"receipt-tracker/internal/notify"
	"receipt-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	store    storage.UserStorage
	tokens   *auth.TokenService
	notifier notify.Notifier
}

func NewAuthHandler(store storage.UserStorage, tokens *auth.TokenService, notifier notify.Notifier) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, notifier: notifier}
}

// Register — POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(c, "hash password", err)
		return
	}

	user := &domain.User{
		ID:              uuid.NewString(),
		Username:        sanitizeText(req.Username),
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            domain.RoleUser,
		Budget:          domain.DefaultBudget,
		DefaultCurrency: domain.DefaultCurrency,
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			respondError(c, http.StatusBadRequest, "Email already registered")
			return
		}
		respondInternal(c, "register", err)
		return
	}

	// Приветствие — best-effort, регистрацию не блокирует
	go h.notifier.Welcome(user.Username, user.Email)

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		respondInternal(c, "generate token", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
}

// Login — POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Одно и то же сообщение для «нет такого пользователя» и «неверный пароль»
	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondInternal(c, "login", err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		respondInternal(c, "generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// UpdateProfile — PUT /api/auth/profile. Частичное обновление:
// отсутствующие поля остаются как были.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondInternal(c, "load profile", err)
		return
	}

	if req.Username != nil {
		user.Username = sanitizeText(*req.Username)
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Budget != nil {
		user.Budget = *req.Budget
	}
	if req.DefaultCurrency != nil {
		user.DefaultCurrency = *req.DefaultCurrency
	}

	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			respondError(c, http.StatusBadRequest, "Email already registered")
			return
		}
		respondInternal(c, "update profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// === DTO ===

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username        *string  `json:"username" validate:"omitempty,notblank,min=3,max=30"`
	Email           *string  `json:"email" validate:"omitempty,email"`
	Avatar          *string  `json:"avatar"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	DefaultCurrency *string  `json:"defaultCurrency" validate:"omitempty,currencycode"`
}
