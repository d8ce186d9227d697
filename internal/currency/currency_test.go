package currency

import (
	"testing"

	"receipt-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestToBase(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   float64
	}{
		{"kzt is identity", 1500, "KZT", 1500},
		{"usd", 100, "USD", 45000},
		{"eur", 10, "EUR", 4850},
		{"rub", 200, "RUB", 1000},
		{"gbp has no rate, falls back to 1", 100, "GBP", 100},
		{"unknown code falls back to 1", 42, "JPY", 42},
		{"zero amount", 0, "USD", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBase(tt.amount, tt.code))
		})
	}
}

func TestAggregate(t *testing.T) {
	receipts := []domain.Receipt{
		{Amount: 100, Currency: "USD", Category: "Food & Dining"},
		{Amount: 2000, Currency: "KZT", Category: "Food & Dining"},
		{Amount: 10, Currency: "EUR", Category: "Travel"},
	}

	stats := Aggregate(receipts)

	assert.Equal(t, 3, stats.TotalReceipts)
	assert.Equal(t, 45000.0+2000+4850, stats.TotalAmountKZT)
	assert.Equal(t, CategoryStat{Count: 2, Amount: 47000}, stats.ByCategory["Food & Dining"])
	assert.Equal(t, CategoryStat{Count: 1, Amount: 4850}, stats.ByCategory["Travel"])
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := []domain.Receipt{
		{Amount: 1, Currency: "USD", Category: "Other"},
		{Amount: 2, Currency: "RUB", Category: "Health"},
		{Amount: 3, Currency: "GBP", Category: "Other"},
	}
	b := []domain.Receipt{a[2], a[0], a[1]}

	assert.Equal(t, Aggregate(a), Aggregate(b))
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	assert.Equal(t, 0, stats.TotalReceipts)
	assert.Zero(t, stats.TotalAmountKZT)
	assert.Empty(t, stats.ByCategory)
}

func TestTotalMatchesAggregate(t *testing.T) {
	receipts := []domain.Receipt{
		{Amount: 100, Currency: "USD", Category: "Shopping"},
		{Amount: 50, Currency: "GBP", Category: "Travel"},
	}
	assert.Equal(t, Aggregate(receipts).TotalAmountKZT, Total(receipts))
}
