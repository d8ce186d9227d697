// internal/validator/validator.go
package validator

import (
	"regexp"

	"receipt-tracker/internal/domain"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	// Строка не пустая и не только пробелы
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(regexp.MustCompile(`\S`).FindString(s)) > 0
	})

	// Категории и способы оплаты содержат пробелы, поэтому встроенный oneof не подходит
	_ = Validate.RegisterValidation("receiptcategory", func(fl validator.FieldLevel) bool {
		return domain.ValidCategory(fl.Field().String())
	})

	_ = Validate.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		return domain.ValidPaymentMethod(fl.Field().String())
	})

	_ = Validate.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
		return domain.ValidCurrency(fl.Field().String())
	})

	_ = Validate.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
		return domain.ValidRole(fl.Field().String())
	})
}
