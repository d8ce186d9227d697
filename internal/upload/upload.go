// internal/upload/upload.go
package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const MaxFileSize = 5 << 20 // 5MB

var (
	ErrTooLarge   = errors.New("image must not exceed 5MB")
	ErrNotAnImage = errors.New("not an image! Please upload only images")
)

// Saver кладёт картинки чеков в публичную директорию и раздаёт их по URL.
type Saver struct {
	Dir string // например public/uploads
}

func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir}
}

// Save проверяет размер и MIME-тип и сохраняет файл под уникальным именем
// receipt-<userID>-<unix>-<случайный суффикс><ext>. Возвращает URL-путь.
func (s *Saver) Save(c *gin.Context, fh *multipart.FileHeader, userID string) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", ErrNotAnImage
	}

	name := fmt.Sprintf("receipt-%s-%d-%d%s",
		userID, time.Now().UnixMilli(), rand.Int63n(1_000_000_000), filepath.Ext(fh.Filename))

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := c.SaveUploadedFile(fh, filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return "/uploads/" + name, nil
}

// Remove удаляет файл по его URL-пути. Best-effort: ошибка логируется,
// наверх не поднимается — осиротевший файл лучше, чем упавший запрос.
func (s *Saver) Remove(imageURL string) {
	if imageURL == "" {
		return
	}
	name := strings.TrimPrefix(imageURL, "/uploads/")
	// не даём выйти за пределы каталога загрузок
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove receipt image", "error", err, "image", imageURL)
	}
}
