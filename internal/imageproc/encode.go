package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Encode re-encodes img to the requested content-type at the given quality.
// PNG gets maximum compression effort, JPEG the quality setting, WebP the bare
// quality parameter. GIF sources are promoted to PNG since the pipeline emits
// static images only. Returns the encoded buffer and the actual content-type.
func Encode(img image.Image, cType string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch cType {
	case model.PNG, model.GIF:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), model.PNG, nil

	case model.JPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), model.JPEG, nil

	case model.WEBP:
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, "", fmt.Errorf("encode webp: %w", err)
		}
		return buf.Bytes(), model.WEBP, nil

	default:
		return nil, "", fmt.Errorf("unsupported target content-type %q", cType)
	}
}
