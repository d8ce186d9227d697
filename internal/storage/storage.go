// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"receipt-tracker/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ReceiptFilter — фильтры списка чеков. Нулевые значения означают «без фильтра».
type ReceiptFilter struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string // подстрока в title или merchant, без учёта регистра
}

type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	DeleteUser(ctx context.Context, id string) error
	// DeleteUsersExcept удаляет всех, кроме указанного (вызывающего админа).
	DeleteUsersExcept(ctx context.Context, keepID string) (int64, error)
}

type ReceiptStorage interface {
	CreateReceipt(ctx context.Context, r *domain.Receipt) error
	GetReceiptByID(ctx context.Context, id string) (*domain.Receipt, error)
	// ListReceipts: ownerID == "" — все чеки (админ), иначе только чеки владельца.
	// withOwner подмешивает username/email владельца в каждую строку.
	ListReceipts(ctx context.Context, ownerID string, f ReceiptFilter, withOwner bool) ([]domain.Receipt, error)
	UpdateReceipt(ctx context.Context, r *domain.Receipt) error
	// UpdateLikes пишет только likedBy, не трогая остальные поля.
	UpdateLikes(ctx context.Context, id string, likedBy []string) error
	DeleteReceipt(ctx context.Context, id string) error
	DeleteReceiptsByUser(ctx context.Context, userID string) (int64, error)
	DeleteReceiptsExceptUser(ctx context.Context, keepID string) (int64, error)
}

// Storage — полный набор операций хранилища.
type Storage interface {
	UserStorage
	ReceiptStorage
}
