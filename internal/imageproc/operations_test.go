package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, format)
	require.NoError(t, err)

	return buf.Bytes()
}

func mustDecode(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotNil(t, img)

	return img
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantCType string
		wantErr   bool
	}{
		{
			name:      "OK png",
			data:      testImageBytes(t, 100, 60, imaging.PNG),
			wantCType: model.PNG,
		},
		{
			name:      "OK jpeg",
			data:      testImageBytes(t, 100, 60, imaging.JPEG),
			wantCType: model.JPEG,
		},
		{
			name:    "text renamed to png",
			data:    []byte("definitely not an image"),
			wantErr: true,
		},
		{
			name:    "empty buffer",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, cType, err := Inspect(tt.data)

			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrInvalidImage)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, img)
			require.Equal(t, tt.wantCType, cType)
		})
	}
}

func TestFitInside(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{
			name: "within bounds stays untouched",
			srcW: 600, srcH: 400,
			maxW: 1200, maxH: 800,
			wantW: 600, wantH: 400,
		},
		{
			name: "oversize shrinks keeping ratio",
			srcW: 2000, srcH: 1500,
			maxW: 1200, maxH: 800,
			wantW: 1066, wantH: 800,
		},
		{
			name: "wide image bound by width",
			srcW: 2400, srcH: 600,
			maxW: 1200, maxH: 800,
			wantW: 1200, wantH: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := mustDecode(t, testImageBytes(t, tt.srcW, tt.srcH, imaging.PNG))

			res := FitInside(src, tt.maxW, tt.maxH)

			require.LessOrEqual(t, res.Bounds().Dx(), tt.maxW)
			require.LessOrEqual(t, res.Bounds().Dy(), tt.maxH)
			// допускаем 1px на округление
			require.InDelta(t, tt.wantW, res.Bounds().Dx(), 1)
			require.InDelta(t, tt.wantH, res.Bounds().Dy(), 1)
		})
	}
}

func TestFitCover(t *testing.T) {
	src := mustDecode(t, testImageBytes(t, 1000, 400, imaging.PNG))

	res := FitCover(src, 800, 600)

	require.Equal(t, 800, res.Bounds().Dx())
	require.Equal(t, 600, res.Bounds().Dy())
}

func TestEncode(t *testing.T) {
	img := mustDecode(t, testImageBytes(t, 50, 50, imaging.PNG))

	tests := []struct {
		name      string
		cType     string
		wantCType string
		wantErr   bool
	}{
		{name: "png", cType: model.PNG, wantCType: model.PNG},
		{name: "jpeg", cType: model.JPEG, wantCType: model.JPEG},
		{name: "webp", cType: model.WEBP, wantCType: model.WEBP},
		{name: "gif promoted to png", cType: model.GIF, wantCType: model.PNG},
		{name: "unknown type", cType: "image/tiff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, cType, err := Encode(img, tt.cType, 85)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, data)
			require.Equal(t, tt.wantCType, cType)
		})
	}
}

func TestApply_MarketplaceProfile(t *testing.T) {
	profile := model.Profile{
		Name:      "marketplace",
		MaxWidth:  1200,
		MaxHeight: 800,
		Quality:   85,
		Fit:       model.FitInside,
	}

	data, cType, err := Apply(testImageBytes(t, 2000, 1500, imaging.PNG), profile)
	require.NoError(t, err)
	require.Equal(t, model.PNG, cType) // формат исходника сохраняется

	res := mustDecode(t, data)
	require.LessOrEqual(t, res.Bounds().Dx(), 1200)
	require.LessOrEqual(t, res.Bounds().Dy(), 800)
}

func TestApply_SmallImageKeepsDimensions(t *testing.T) {
	profile := model.Profile{
		Name:      "marketplace",
		MaxWidth:  1200,
		MaxHeight: 800,
		Quality:   85,
		Fit:       model.FitInside,
	}

	data, _, err := Apply(testImageBytes(t, 640, 480, imaging.JPEG), profile)
	require.NoError(t, err)

	res := mustDecode(t, data)
	require.Equal(t, 640, res.Bounds().Dx())
	require.Equal(t, 480, res.Bounds().Dy())
}

func TestApply_StandardizedProfile(t *testing.T) {
	profile := model.Profile{
		Name:      "standardized",
		MaxWidth:  800,
		MaxHeight: 600,
		Quality:   80,
		Format:    model.JPEG,
		Fit:       model.FitCover,
	}

	data, cType, err := Apply(testImageBytes(t, 2000, 1500, imaging.PNG), profile)
	require.NoError(t, err)
	require.Equal(t, model.JPEG, cType)

	res := mustDecode(t, data)
	require.Equal(t, 800, res.Bounds().Dx())
	require.Equal(t, 600, res.Bounds().Dy())
}

func TestApply_BrokenBuffer(t *testing.T) {
	profile := model.Profile{Name: "marketplace", MaxWidth: 1200, MaxHeight: 800, Quality: 85, Fit: model.FitInside}

	_, _, err := Apply([]byte("broken"), profile)
	require.ErrorIs(t, err, model.ErrInvalidImage)
}
