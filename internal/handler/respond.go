// internal/handler/respond.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	val "receipt-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Все ошибки уходят клиенту в одном конверте: {success: false, message}.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondInternal — единая точка для неожиданных ошибок (БД, файловая система).
// Наружу уходит безопасное сообщение, детали — в лог.
func respondInternal(c *gin.Context, op string, err error) {
	slog.Error(op+" failed", "error", err, "path", c.FullPath())
	respondError(c, http.StatusInternalServerError, "Internal error")
}

// validateStruct возвращает сообщение первого нарушенного ограничения.
func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok || len(errs) == 0 {
			return err
		}
		return fmt.Errorf("%s", fieldErrorToString(errs[0]))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		return fmt.Sprintf("%s is too short (min %s)", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s is too long (max %s)", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	case "receiptcategory":
		return fmt.Sprintf("%s must be one of the known categories", e.Field())
	case "paymentmethod":
		return fmt.Sprintf("%s must be a known payment method", e.Field())
	case "currencycode":
		return fmt.Sprintf("%s must be a supported currency", e.Field())
	case "rolename":
		return fmt.Sprintf("%s must be user or admin", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
