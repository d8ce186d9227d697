package handler_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"receipt-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScopedToOwner(t *testing.T) {
	e := newEnv(t)
	alice, aliceToken := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	bob, _ := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)

	e.addReceipt(t, alice.ID, func(r *domain.Receipt) { r.Title = "Alice lunch" })
	e.addReceipt(t, bob.ID, func(r *domain.Receipt) { r.Title = "Bob taxi" })

	w := e.do(t, http.MethodGet, "/api/receipts", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].([]any)
	for _, item := range data {
		r := item.(map[string]any)
		assert.Equal(t, alice.ID, r["user"], "чужой чек не должен попадать в выборку")
	}
}

func TestListAdminSeesAllWithOwner(t *testing.T) {
	e := newEnv(t)
	alice, _ := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	bob, _ := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)
	_, adminToken := e.addUser(t, "root", "root@example.com", domain.RoleAdmin)

	e.addReceipt(t, alice.ID, nil)
	e.addReceipt(t, bob.ID, nil)

	w := e.do(t, http.MethodGet, "/api/receipts", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	for _, item := range body["data"].([]any) {
		r := item.(map[string]any)
		owner := r["owner"].(map[string]any)
		assert.NotEmpty(t, owner["username"])
		assert.NotEmpty(t, owner["email"])
	}
}

func TestListFiltersAndTotal(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)

	march := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.Title = "Business lunch"
		r.Amount = 100
		r.Currency = "USD"
		r.Date = march
	})
	e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.Title = "Bus ticket"
		r.Merchant = "CityBus"
		r.Category = "Transportation"
		r.Amount = 500
		r.Currency = "KZT"
		r.Date = march.AddDate(0, 1, 0)
	})

	t.Run("category", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts?category=Transportation", nil, token)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("date range inclusive", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts?startDate=2026-03-01&endDate=2026-03-31", nil, token)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("search is case-insensitive over title and merchant", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts?search=citybus", nil, token)
		assert.Equal(t, float64(1), decode(t, w)["count"])

		w = e.do(t, http.MethodGet, "/api/receipts?search=BUS", nil, token)
		assert.Equal(t, float64(2), decode(t, w)["count"], "подстрока ищется и в title, и в merchant")
	})

	t.Run("total is currency-normalized", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts", nil, token)
		// 100 USD × 450 + 500 KZT × 1
		assert.Equal(t, float64(45500), decode(t, w)["totalAmount"])
	})

	t.Run("sorted by date descending", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts", nil, token)
		data := decode(t, w)["data"].([]any)
		first := data[0].(map[string]any)
		assert.Equal(t, "Bus ticket", first["title"])
	})

	t.Run("bad date rejected", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/receipts?startDate=yesterday", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetReceiptOwnership(t *testing.T) {
	e := newEnv(t)
	alice, aliceToken := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	_, bobToken := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)
	_, adminToken := e.addUser(t, "root", "root@example.com", domain.RoleAdmin)

	receipt := e.addReceipt(t, alice.ID, nil)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/receipts/"+receipt.ID, nil, aliceToken).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, "/api/receipts/"+receipt.ID, nil, bobToken).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/receipts/"+receipt.ID, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/receipts/no-such-id", nil, aliceToken).Code)
}

func TestCreateReceiptForcesOwnerAndDefaults(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)

	w := e.do(t, http.MethodPost, "/api/receipts", map[string]any{
		"title":    "Coffee",
		"merchant": "Starbucks",
		"amount":   1500,
		"category": "Food & Dining",
		"user":     "someone-else", // клиентский владелец игнорируется
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, alice.ID, data["user"])
	assert.Equal(t, "USD", data["currency"])
	assert.Equal(t, "Cash", data["paymentMethod"])
	assert.Equal(t, "approved", data["status"])
	assert.NotEmpty(t, data["date"])
}

func TestCreateReceiptValidation(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)

	tests := []struct {
		name    string
		payload map[string]any
		message string
	}{
		{"missing title", map[string]any{"merchant": "m", "amount": 1, "category": "Other"}, "title is required"},
		{"missing merchant", map[string]any{"title": "t", "amount": 1, "category": "Other"}, "merchant is required"},
		{"missing amount", map[string]any{"title": "t", "merchant": "m", "category": "Other"}, "amount is required"},
		{"missing category", map[string]any{"title": "t", "merchant": "m", "amount": 1}, "category is required"},
		{"negative amount", map[string]any{"title": "t", "merchant": "m", "amount": -5, "category": "Other"}, ""},
		{"unknown category", map[string]any{"title": "t", "merchant": "m", "amount": 1, "category": "Crypto"}, ""},
		{"unknown currency", map[string]any{"title": "t", "merchant": "m", "amount": 1, "category": "Other", "currency": "BTC"}, ""},
		{"title too long", map[string]any{"title": strings.Repeat("x", 101), "merchant": "m", "amount": 1, "category": "Other"}, ""},
		{"description too long", map[string]any{"title": "t", "merchant": "m", "amount": 1, "category": "Other", "description": strings.Repeat("x", 501)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/receipts", tt.payload, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, w)["message"])
			}
		})
	}
}

func TestUpdateReceiptPartial(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	receipt := e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.Amount = 777
		r.Currency = "EUR"
	})

	w := e.do(t, http.MethodPut, "/api/receipts/"+receipt.ID, map[string]any{"title": "Renamed"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Renamed", data["title"])
	// amount не присылали — остался прежним
	assert.Equal(t, float64(777), data["amount"])
	assert.Equal(t, "EUR", data["currency"])
	assert.Equal(t, alice.ID, data["user"], "владелец неизменяем")
}

func TestUpdateReceiptOwnership(t *testing.T) {
	e := newEnv(t)
	alice, _ := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	_, bobToken := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)
	receipt := e.addReceipt(t, alice.ID, nil)

	w := e.do(t, http.MethodPut, "/api/receipts/"+receipt.ID, map[string]any{"title": "Hacked"}, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, err := e.store.GetReceiptByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", stored.Title)
}

func TestUpdateReplacesImageFile(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)

	// заводим чек со «старой» картинкой на диске
	oldPath := filepath.Join(e.uploads.Dir, "receipt-old.png")
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0o644))
	receipt := e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.ImageURL = "/uploads/receipt-old.png"
	})

	w := e.doMultipart(t, http.MethodPut, "/api/receipts/"+receipt.ID,
		map[string]string{"title": "With new image"}, "new.png", []byte("png-bytes"), token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	newURL := data["imageUrl"].(string)
	assert.NotEqual(t, "/uploads/receipt-old.png", newURL)

	// старый файл удалён, новый существует
	_, err := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "старый файл должен быть удалён")
	newName := strings.TrimPrefix(newURL, "/uploads/")
	_, err = os.Stat(filepath.Join(e.uploads.Dir, newName))
	assert.NoError(t, err)
}

func TestDeleteReceiptRemovesImage(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)

	imgPath := filepath.Join(e.uploads.Dir, "receipt-del.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("img"), 0o644))
	receipt := e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.ImageURL = "/uploads/receipt-del.png"
	})

	w := e.do(t, http.MethodDelete, "/api/receipts/"+receipt.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/receipts/"+receipt.ID, nil, token).Code)
	_, err := os.Stat(imgPath)
	assert.True(t, os.IsNotExist(err))
}

func TestToggleLike(t *testing.T) {
	e := newEnv(t)
	alice, _ := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	bob, bobToken := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)

	// лайкать можно чужой чек — проверки владельца нет
	receipt := e.addReceipt(t, alice.ID, nil)

	w := e.do(t, http.MethodPost, "/api/receipts/"+receipt.ID+"/like", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["liked"])

	data := body["data"].(map[string]any)
	likedBy := data["likedBy"].([]any)
	assert.Contains(t, likedBy, bob.ID)

	// повторный лайк возвращает всё как было
	w = e.do(t, http.MethodPost, "/api/receipts/"+receipt.ID+"/like", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["liked"])
	assert.Empty(t, body["data"].(map[string]any)["likedBy"])
}

func TestStatsSummary(t *testing.T) {
	e := newEnv(t)
	alice, token := e.addUser(t, "alice", "alice@example.com", domain.RoleUser)
	bob, _ := e.addUser(t, "bob", "bob@example.com", domain.RoleUser)

	e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.Amount = 100
		r.Currency = "USD"
		r.Category = "Shopping"
	})
	e.addReceipt(t, alice.ID, func(r *domain.Receipt) {
		r.Amount = 2000
		r.Currency = "KZT"
		r.Category = "Shopping"
	})
	// чужой чек в сводку не попадает
	e.addReceipt(t, bob.ID, func(r *domain.Receipt) { r.Amount = 99999 })

	w := e.do(t, http.MethodGet, "/api/receipts/stats/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["totalReceipts"])
	// 100 USD × 450 = 45000 плюс 2000 KZT
	assert.Equal(t, float64(47000), data["totalAmountKZT"])

	byCategory := data["byCategory"].(map[string]any)
	shopping := byCategory["Shopping"].(map[string]any)
	assert.Equal(t, float64(2), shopping["count"])
	assert.Equal(t, float64(47000), shopping["amount"])
}
