// internal/handler/receipt.go
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"receipt-tracker/internal/currency"
	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/middleware"
	"receipt-tracker/internal/storage"
	"receipt-tracker/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceiptHandler struct {
	store   storage.ReceiptStorage
	uploads *upload.Saver
}

func NewReceiptHandler(store storage.ReceiptStorage, uploads *upload.Saver) *ReceiptHandler {
	return &ReceiptHandler{store: store, uploads: uploads}
}

// List — GET /api/receipts?category=&startDate=&endDate=&search=
// Не-админ видит только свои чеки; админ — все, с данными владельца.
func (h *ReceiptHandler) List(c *gin.Context) {
	filter := storage.ReceiptFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if s := c.Query("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "startDate must be a valid date")
			return
		}
		filter.StartDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "endDate must be a valid date")
			return
		}
		filter.EndDate = &t
	}

	ownerID := middleware.UserID(c)
	isAdmin := middleware.IsAdmin(c)
	if isAdmin {
		ownerID = "" // админ видит все чеки
	}

	receipts, err := h.store.ListReceipts(c.Request.Context(), ownerID, filter, isAdmin)
	if err != nil {
		respondInternal(c, "list receipts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(receipts),
		"totalAmount": currency.Total(receipts),
		"data":        receipts,
	})
}

// Get — GET /api/receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	receipt, ok := h.loadOwned(c, "access")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipt})
}

// Create — POST /api/receipts (JSON или multipart с полем image).
// Владелец всегда берётся из токена, что бы клиент ни прислал.
func (h *ReceiptHandler) Create(c *gin.Context) {
	form, file, ok := h.bindReceiptForm(c)
	if !ok {
		return
	}
	if msg := requireFields(form); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	date := time.Now()
	if form.Date != nil && *form.Date != "" {
		t, err := parseDate(*form.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date must be a valid date")
			return
		}
		date = t
	}

	receipt := &domain.Receipt{
		ID:            uuid.NewString(),
		Title:         sanitizeText(*form.Title),
		Merchant:      sanitizeText(*form.Merchant),
		Amount:        *form.Amount,
		Currency:      "USD",
		Category:      *form.Category,
		Date:          date,
		PaymentMethod: "Cash",
		Tags:          []string{},
		Status:        domain.StatusApproved,
		LikedBy:       []string{},
		UserID:        middleware.UserID(c),
	}
	if form.Currency != nil {
		receipt.Currency = *form.Currency
	}
	if form.Description != nil {
		receipt.Description = *form.Description
	}
	if form.PaymentMethod != nil {
		receipt.PaymentMethod = *form.PaymentMethod
	}
	if form.Tags != nil {
		receipt.Tags = form.Tags
	}
	if form.ImageURL != nil {
		receipt.ImageURL = *form.ImageURL
	}

	if file != nil {
		url, err := h.saveImage(c, file)
		if err != nil {
			return // ответ уже отправлен
		}
		receipt.ImageURL = url
	}

	if err := h.store.CreateReceipt(c.Request.Context(), receipt); err != nil {
		respondInternal(c, "create receipt", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": receipt})
}

// Update — PUT /api/receipts/:id. Частичное обновление: поля, которых нет
// в запросе, не меняются; владелец не меняется никогда.
func (h *ReceiptHandler) Update(c *gin.Context) {
	form, file, ok := h.bindReceiptForm(c)
	if !ok {
		return
	}

	receipt, ok := h.loadOwned(c, "update")
	if !ok {
		return
	}

	if form.Title != nil {
		receipt.Title = sanitizeText(*form.Title)
	}
	if form.Merchant != nil {
		receipt.Merchant = sanitizeText(*form.Merchant)
	}
	if form.Amount != nil {
		receipt.Amount = *form.Amount
	}
	if form.Currency != nil {
		receipt.Currency = *form.Currency
	}
	if form.Category != nil {
		receipt.Category = *form.Category
	}
	if form.Date != nil && *form.Date != "" {
		t, err := parseDate(*form.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date must be a valid date")
			return
		}
		receipt.Date = t
	}
	if form.Description != nil {
		receipt.Description = *form.Description
	}
	if form.PaymentMethod != nil {
		receipt.PaymentMethod = *form.PaymentMethod
	}
	if form.Tags != nil {
		receipt.Tags = form.Tags
	}
	if form.ImageURL != nil {
		receipt.ImageURL = *form.ImageURL
	}

	if file != nil {
		url, err := h.saveImage(c, file)
		if err != nil {
			return
		}
		// старый файл убираем до подмены пути
		h.uploads.Remove(receipt.ImageURL)
		receipt.ImageURL = url
	}

	if err := h.store.UpdateReceipt(c.Request.Context(), receipt); err != nil {
		respondInternal(c, "update receipt", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipt})
}

// Delete — DELETE /api/receipts/:id. Файл картинки убирается best-effort
// уже после удаления записи.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	receipt, ok := h.loadOwned(c, "delete")
	if !ok {
		return
	}

	if err := h.store.DeleteReceipt(c.Request.Context(), receipt.ID); err != nil {
		respondInternal(c, "delete receipt", err)
		return
	}
	h.uploads.Remove(receipt.ImageURL)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Receipt deleted successfully"})
}

// Stats — GET /api/receipts/stats/summary. Сводка всегда по чекам вызывающего.
func (h *ReceiptHandler) Stats(c *gin.Context) {
	receipts, err := h.store.ListReceipts(c.Request.Context(), middleware.UserID(c), storage.ReceiptFilter{}, false)
	if err != nil {
		respondInternal(c, "receipt stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": currency.Aggregate(receipts)})
}

// ToggleLike — POST /api/receipts/:id/like. Единственная операция без
// проверки владельца: лайкать можно чужие чеки.
func (h *ReceiptHandler) ToggleLike(c *gin.Context) {
	receipt, err := h.store.GetReceiptByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Receipt not found")
			return
		}
		respondInternal(c, "toggle like", err)
		return
	}

	userID := middleware.UserID(c)
	liked := false
	if receipt.Liked(userID) {
		likedBy := make([]string, 0, len(receipt.LikedBy))
		for _, id := range receipt.LikedBy {
			if id != userID {
				likedBy = append(likedBy, id)
			}
		}
		receipt.LikedBy = likedBy
	} else {
		receipt.LikedBy = append(receipt.LikedBy, userID)
		liked = true
	}

	if err := h.store.UpdateLikes(c.Request.Context(), receipt.ID, receipt.LikedBy); err != nil {
		respondInternal(c, "toggle like", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "liked": liked, "data": receipt})
}

// loadOwned достаёт чек и применяет владельческое правило:
// доступ есть у владельца и у админа. Отвечает сам при 404/403/500.
func (h *ReceiptHandler) loadOwned(c *gin.Context, action string) (*domain.Receipt, bool) {
	receipt, err := h.store.GetReceiptByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Receipt not found")
			return nil, false
		}
		respondInternal(c, "load receipt", err)
		return nil, false
	}
	if receipt.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		respondError(c, http.StatusForbidden, "Not authorized to "+action+" this receipt")
		return nil, false
	}
	return receipt, true
}

func (h *ReceiptHandler) bindReceiptForm(c *gin.Context) (*ReceiptForm, *multipart.FileHeader, bool) {
	var form ReceiptForm
	var file *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&form); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid form data")
			return nil, nil, false
		}
		if fh, err := c.FormFile("image"); err == nil {
			file = fh
		}
	} else {
		if err := c.ShouldBindJSON(&form); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid JSON")
			return nil, nil, false
		}
	}

	if err := validateStruct(form); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return &form, file, true
}

func (h *ReceiptHandler) saveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	url, err := h.uploads.Save(c, file, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrNotAnImage) {
			respondError(c, http.StatusBadRequest, err.Error())
		} else {
			respondInternal(c, "save image", err)
		}
		return "", err
	}
	return url, nil
}

// requireFields проверяет обязательные поля создания чека в порядке схемы.
func requireFields(form *ReceiptForm) string {
	switch {
	case form.Title == nil:
		return "title is required"
	case form.Merchant == nil:
		return "merchant is required"
	case form.Amount == nil:
		return "amount is required"
	case form.Category == nil:
		return "category is required"
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// === DTO ===

// ReceiptForm принимает и JSON, и multipart-форму. Указатели отличают
// «поле не прислали» от «прислали нулевое» — на этом держится partial update.
type ReceiptForm struct {
	Title         *string  `json:"title" form:"title" validate:"omitempty,notblank,max=100"`
	Merchant      *string  `json:"merchant" form:"merchant" validate:"omitempty,notblank"`
	Amount        *float64 `json:"amount" form:"amount" validate:"omitempty,gte=0"`
	Currency      *string  `json:"currency" form:"currency" validate:"omitempty,currencycode"`
	Category      *string  `json:"category" form:"category" validate:"omitempty,receiptcategory"`
	Date          *string  `json:"date" form:"date"`
	Description   *string  `json:"description" form:"description" validate:"omitempty,max=500"`
	PaymentMethod *string  `json:"paymentMethod" form:"paymentMethod" validate:"omitempty,paymentmethod"`
	Tags          []string `json:"tags" form:"tags"`
	ImageURL      *string  `json:"imageUrl" form:"imageUrl"`
}
