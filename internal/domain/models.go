// internal/domain/models.go
package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	// Бюджет по умолчанию — 200000 тенге в месяц
	DefaultBudget   = 200000.0
	DefaultCurrency = "KZT"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Currencies — валюты, которые принимает чек.
// У GBP нет курса в internal/currency, он считается 1:1 к тенге.
var Currencies = []string{"USD", "EUR", "GBP", "KZT", "RUB"}

var Categories = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Entertainment",
	"Health",
	"Bills & Utilities",
	"Travel",
	"Education",
	"Other",
}

var PaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "Digital Wallet", "Bank Transfer"}

func ValidCurrency(code string) bool      { return contains(Currencies, code) }
func ValidCategory(name string) bool      { return contains(Categories, name) }
func ValidPaymentMethod(name string) bool { return contains(PaymentMethods, name) }

func ValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// User — учётная запись. Email уникален, username — только для отображения.
// Хеш пароля никогда не попадает в JSON-ответы.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	Avatar          string    `json:"avatar,omitempty"`
	Budget          float64   `json:"budget"`
	DefaultCurrency string    `json:"defaultCurrency"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OwnerInfo — данные владельца чека, подмешиваются только в админских выборках.
type OwnerInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Receipt — чек. Владелец выставляется из токена при создании и больше не меняется.
// Status зарезервирован: хранится и отдаётся, но никакой workflow по нему не ходит.
type Receipt struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Merchant      string     `json:"merchant"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category"`
	Date          time.Time  `json:"date"`
	Description   string     `json:"description,omitempty"`
	PaymentMethod string     `json:"paymentMethod"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Tags          []string   `json:"tags"`
	Status        string     `json:"status"`
	LikedBy       []string   `json:"likedBy"`
	UserID        string     `json:"user"`
	Owner         *OwnerInfo `json:"owner,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Liked сообщает, есть ли пользователь в likedBy.
func (r *Receipt) Liked(userID string) bool {
	return contains(r.LikedBy, userID)
}
