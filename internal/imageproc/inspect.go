// Package imageproc provides operations for images: decode-validation, profile fitting and re-encoding.
package imageproc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // webp на вход принимаем, регистрируем декодер
)

var formatCType = map[string]string{
	"jpeg": model.JPEG,
	"png":  model.PNG,
	"gif":  model.GIF,
	"webp": model.WEBP,
}

// Inspect validates that the buffer is a genuine image and fully decodes it.
// Returns the decoded image and the content-type of the source format.
func Inspect(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: missing dimensions", model.ErrInvalidImage)
	}

	cType, ok := formatCType[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: unrecognized format %q", model.ErrInvalidImage, format)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}

	return img, cType, nil
}
