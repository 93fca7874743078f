package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"instaclone/internal/domain"
)

// Image es un archivo de imagen recibido en un formulario multipart.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader sube imagenes y devuelve la URL publica del objeto.
type Uploader interface {
	Upload(ctx context.Context, key string, img Image) (string, error)
}

type disabledUploader struct {
	reason string
}

func NewDisabledUploader(reason string) Uploader {
	return &disabledUploader{reason: reason}
}

func (u *disabledUploader) Upload(_ context.Context, _ string, _ Image) (string, error) {
	if u.reason == "" {
		return "", errors.New("image uploads disabled")
	}
	return "", errors.New(u.reason)
}

// Validate verifica que img sea una imagen de hasta maxBytes.
func Validate(img Image, maxBytes int64) error {
	if img.Body == nil {
		return domain.ErrImageRequired
	}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return domain.ErrInvalidImage
	}
	if maxBytes > 0 && img.Size > maxBytes {
		return domain.ErrImageTooLarge
	}
	return nil
}

// PostKey arma la clave posts/<yyyy>/<mm>/<uuid><ext>.
func PostKey(now time.Time, filename string) string {
	now = now.UTC()
	return fmt.Sprintf("posts/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), extension(filename))
}

// AvatarKey arma la clave avatars/<userID>/<uuid><ext>.
func AvatarKey(userID, filename string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), extension(filename))
}

func extension(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
