package imageproc

import (
	"github.com/capyconnect/imagehub/internal/model"
)

// Apply runs the full pipeline for one buffer under the given profile:
// decode-validate, fit to bounds, re-encode. Nothing is written anywhere -
// the caller decides what to do with the result.
func Apply(data []byte, p model.Profile) ([]byte, string, error) {
	img, srcCType, err := Inspect(data)
	if err != nil {
		return nil, "", err
	}

	switch p.Fit {
	case model.FitCover:
		img = FitCover(img, p.MaxWidth, p.MaxHeight)
	default:
		img = FitInside(img, p.MaxWidth, p.MaxHeight)
	}

	target := p.Format
	if target == "" {
		target = srcCType // format-preserving профиль
	}

	return Encode(img, target, p.Quality)
}
