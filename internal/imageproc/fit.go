package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// FitInside shrinks img so that neither side exceeds maxW x maxH,
// preserving aspect ratio. Images already within the bounds pass through untouched.
func FitInside(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// FitCover crop-scales img to exactly fill w x h, anchored center,
// and flattens any transparency onto a white background.
func FitCover(img image.Image, w, h int) image.Image {
	filled := imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	return flattenWhite(filled)
}

// flattenWhite - альфа-канал кладем на белый фон
func flattenWhite(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
