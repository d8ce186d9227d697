// internal/handler/sanitize.go
package handler

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// sanitizeText чинит текст, вставленный из банковских приложений: невалидный
// UTF-8 пробуем перекодировать из windows-1251, остатки выбрасываем,
// лишние пробелы схлопываем.
func sanitizeText(s string) string {
	if !utf8.ValidString(s) {
		decoder := charmap.Windows1251.NewDecoder()
		if fixed, err := decoder.String(s); err == nil && utf8.ValidString(fixed) {
			s = fixed
		} else {
			s = strings.ToValidUTF8(s, "")
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
