package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

var marketplaceProfile = model.Profile{
	Name:      "marketplace",
	MaxWidth:  1200,
	MaxHeight: 800,
	Quality:   85,
	Fit:       model.FitInside,
}

var standardizedProfile = model.Profile{
	Name:      "standardized",
	MaxWidth:  800,
	MaxHeight: 600,
	Quality:   80,
	Format:    model.JPEG,
	Fit:       model.FitCover,
}

func newHandler(svc ImageService) *ImageHandler {
	return NewImageHandler(svc, marketplaceProfile, standardizedProfile)
}

func TestImageHandler_Ping(t *testing.T) {
	r := gin.New()
	h := newHandler(nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

// newUploadRequest - собирает multipart-запрос с N файлами в поле images
func newUploadRequest(t *testing.T, target string, count int) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i := 0; i < count; i++ {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="photo%d.png"`, i))
		hdr.Set("Content-Type", model.PNG)
		fw, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image payload"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImageHandler_UploadSimple(t *testing.T) {
	tests := []struct {
		name       string
		fileCount  int
		mock       *mockImageService
		wantStatus int
	}{
		{
			name:      "success",
			fileCount: 2,
			mock: &mockImageService{
				uploadSimpleFn: func(ctx context.Context, files []model.UploadedFile) ([]string, error) {
					require.Len(t, files, 2)
					require.Equal(t, model.PNG, files[0].ContentType)
					return []string{"/api/images/a.png", "/api/images/b.png"}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "no files",
			fileCount:  0,
			mock:       &mockImageService{},
			wantStatus: 400,
		},
		{
			name:       "over the limit",
			fileCount:  9,
			mock:       &mockImageService{},
			wantStatus: 400,
		},
		{
			name:      "service failure",
			fileCount: 1,
			mock: &mockImageService{
				uploadSimpleFn: func(ctx context.Context, files []model.UploadedFile) ([]string, error) {
					return nil, model.ErrCommon500
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := newHandler(tt.mock)

			r.POST("/api/images/upload-simple", func(c *gin.Context) {
				h.UploadSimple((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newUploadRequest(t, "/api/images/upload-simple", tt.fileCount))

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == 200 {
				var body uploadResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.True(t, body.Success)
				require.Len(t, body.ImageURLs, 2)
			}
		})
	}
}

func TestImageHandler_UploadProcessed(t *testing.T) {
	tests := []struct {
		name       string
		fileCount  int
		mock       *mockImageService
		wantStatus int
		wantError  string
	}{
		{
			name:      "success uses marketplace profile",
			fileCount: 3,
			mock: &mockImageService{
				uploadProcessedFn: func(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error) {
					require.Equal(t, "marketplace", p.Name)
					require.Len(t, files, 3)
					return []string{"/objects/images/a.png", "/objects/images/b.png", "/objects/images/c.png"}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "over the limit",
			fileCount:  4,
			mock:       &mockImageService{},
			wantStatus: 400,
		},
		{
			name:      "invalid image becomes storage-level failure",
			fileCount: 1,
			mock: &mockImageService{
				uploadProcessedFn: func(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error) {
					return nil, fmt.Errorf("%q: %w", "photo0.png", model.ErrInvalidImage)
				},
			},
			wantStatus: 500,
			wantError:  "Failed to upload images",
		},
		{
			name:      "file too large",
			fileCount: 1,
			mock: &mockImageService{
				uploadProcessedFn: func(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error) {
					return nil, fmt.Errorf("%q: %w", "photo0.png", model.ErrFileTooLarge)
				},
			},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := newHandler(tt.mock)

			r.POST("/api/images/upload", func(c *gin.Context) {
				h.UploadProcessed((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newUploadRequest(t, "/api/images/upload", tt.fileCount))

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantError != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, tt.wantError, body["error"])
				require.NotEmpty(t, body["details"])
			}
		})
	}
}

func TestImageHandler_UploadStandard_UsesStandardizedProfile(t *testing.T) {
	mock := &mockImageService{
		uploadProcessedFn: func(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error) {
			require.Equal(t, "standardized", p.Name)
			require.Equal(t, model.FitCover, p.Fit)
			return []string{"/objects/images/a.jpg"}, nil
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.POST("/api/images/upload-standard", func(c *gin.Context) {
		h.UploadStandard((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, "/api/images/upload-standard", 1))

	require.Equal(t, 200, w.Code)
}

func TestImageHandler_GetImage(t *testing.T) {
	payload := []byte("jpeg bytes here")

	mock := &mockImageService{
		fetchFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
			require.Equal(t, "uid.jpg", id)
			return io.NopCloser(bytes.NewReader(payload)), model.JPEG, nil
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.GET("/api/images/:imageId", func(c *gin.Context) {
		h.GetImage((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images/uid.jpg", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, model.JPEG, w.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	require.Equal(t, payload, w.Body.Bytes())
}

func TestImageHandler_GetImage_NotFound(t *testing.T) {
	mock := &mockImageService{
		fetchFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
			return nil, "", model.ErrImageNotFound
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.GET("/api/images/:imageId", func(c *gin.Context) {
		h.GetImage((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images/ghost.jpg", nil))

	require.Equal(t, 404, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Image not found", body["error"])
}

func TestImageHandler_GetObject(t *testing.T) {
	mock := &mockImageService{
		fetchObjectFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			require.Equal(t, "images/uid.png", key)
			return io.NopCloser(bytes.NewReader([]byte("png bytes"))), model.PNG, nil
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.GET("/objects/*key", func(c *gin.Context) {
		h.GetObject((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/objects/images/uid.png", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, model.PNG, w.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
}

func TestImageHandler_CreateUploadTicket(t *testing.T) {
	mock := &mockImageService{
		issueTicketFn: func(ctx context.Context) (string, error) {
			return "http://minio:9000/images/uid?X-Amz-Signature=abc", nil
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.POST("/api/objects/upload", func(c *gin.Context) {
		h.CreateUploadTicket((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/objects/upload", nil))

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body["uploadURL"], "X-Amz-Signature")
}

func TestImageHandler_GetAllImages(t *testing.T) {
	mock := &mockImageService{
		getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error) {
			require.Equal(t, 2, req.Page)
			return []model.StoredImage{{Key: "images/a.png"}}, nil
		},
	}

	r := gin.New()
	h := newHandler(mock)

	r.GET("/api/images", func(c *gin.Context) {
		h.GetAllImages((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images?page=2&limit=10", nil))

	require.Equal(t, 200, w.Code)

	var body []model.StoredImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
}
