// internal/currency/currency.go
package currency

import "receipt-tracker/internal/domain"

// Rates — статические курсы к тенге.
// GBP в таблице нет: такие чеки считаются 1:1, пока стейкхолдеры не дадут курс.
var Rates = map[string]float64{
	"KZT": 1,
	"USD": 450,
	"EUR": 485,
	"RUB": 5,
}

// ToBase переводит сумму в тенге. Неизвестная валюта — множитель 1.
func ToBase(amount float64, code string) float64 {
	rate, ok := Rates[code]
	if !ok {
		rate = 1
	}
	return amount * rate
}

// CategoryStat — срез по одной категории.
type CategoryStat struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// Stats — сводка по набору чеков. Суммы уже в тенге.
type Stats struct {
	TotalReceipts  int                     `json:"totalReceipts"`
	TotalAmountKZT float64                 `json:"totalAmountKZT"`
	ByCategory     map[string]CategoryStat `json:"byCategory"`
}

// Aggregate считает сводку. Чистая функция, порядок чеков не важен.
func Aggregate(receipts []domain.Receipt) Stats {
	stats := Stats{
		TotalReceipts: len(receipts),
		ByCategory:    make(map[string]CategoryStat),
	}
	for _, r := range receipts {
		base := ToBase(r.Amount, r.Currency)
		stats.TotalAmountKZT += base

		cs := stats.ByCategory[r.Category]
		cs.Count++
		cs.Amount += base
		stats.ByCategory[r.Category] = cs
	}
	return stats
}

// Total — нормализованная сумма по выборке, используется в ответе списка чеков.
func Total(receipts []domain.Receipt) float64 {
	var sum float64
	for _, r := range receipts {
		sum += ToBase(r.Amount, r.Currency)
	}
	return sum
}
