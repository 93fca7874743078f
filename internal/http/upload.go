package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/domain"
	"instaclone/internal/media"
)

// formImage lee el archivo field del formulario multipart. Devuelve nil si no
// se envio. El Content-Type se detecta del contenido, no del header del cliente.
func formImage(c *gin.Context, field string) (*media.Image, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, domain.ErrInvalidImage
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, noop, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, noop, err
	}

	img := &media.Image{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(sniff[:n]),
		Size:        header.Size,
		Body:        file,
	}
	return img, func() { _ = file.Close() }, nil
}
