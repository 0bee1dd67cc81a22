// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/wb-go/wbf/ginext"
)

const (
	maxSimpleFiles = 8  // лимит файлов на pass-through запрос
	maxBatchFiles  = 3  // лимит файлов на запрос с обработкой
	maxFormMemory  = 64 << 20
	cacheControl   = "public, max-age=3600"
)

type ImageHandler struct {
	service      ImageService
	marketplace  model.Profile
	standardized model.Profile
}

type ImageService interface {
	UploadSimple(ctx context.Context, files []model.UploadedFile) ([]string, error)
	UploadProcessed(ctx context.Context, files []model.UploadedFile, profile model.Profile) ([]string, error)
	Fetch(ctx context.Context, id string) (io.ReadCloser, string, error)          // скачать по короткому id
	FetchObject(ctx context.Context, key string) (io.ReadCloser, string, error)   // скачать по полному ключу
	IssueDirectTicket(ctx context.Context) (string, error)                        // pre-signed URL для прямой загрузки
	GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error)
}

func NewImageHandler(svc ImageService, marketplace, standardized model.Profile) *ImageHandler {
	return &ImageHandler{
		service:      svc,
		marketplace:  marketplace,
		standardized: standardized,
	}
}

type uploadResponse struct {
	Success   bool     `json:"success"`
	ImageURLs []string `json:"imageUrls"`
	Message   string   `json:"message"`
}

func (h ImageHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// UploadSimple - pass-through загрузка без валидации содержимого
func (h ImageHandler) UploadSimple(ctx *ginext.Context) {
	files, cleanup, err := collectFiles(ctx, maxSimpleFiles)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer cleanup()

	refs, err := h.service.UploadSimple(ctx.Request.Context(), files)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, uploadResponse{
		Success:   true,
		ImageURLs: refs,
		Message:   fmt.Sprintf("%d image(s) uploaded successfully", len(refs)),
	})
}

// UploadProcessed - загрузка с валидацией и подгонкой под профиль marketplace
func (h ImageHandler) UploadProcessed(ctx *ginext.Context) {
	h.processUpload(ctx, h.marketplace)
}

// UploadStandard - загрузка с принудительной стандартизацией под витрину
func (h ImageHandler) UploadStandard(ctx *ginext.Context) {
	h.processUpload(ctx, h.standardized)
}

func (h ImageHandler) processUpload(ctx *ginext.Context, profile model.Profile) {
	files, cleanup, err := collectFiles(ctx, maxBatchFiles)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer cleanup()

	refs, err := h.service.UploadProcessed(ctx.Request.Context(), files, profile)
	if err != nil {
		code := errorCodeDefiner(err)
		if code == 500 {
			ctx.JSON(code, map[string]string{
				"error":   "Failed to upload images",
				"details": err.Error(),
			})
			return
		}
		ctx.JSON(code, map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, uploadResponse{
		Success:   true,
		ImageURLs: refs,
		Message:   fmt.Sprintf("%d image(s) uploaded successfully", len(refs)),
	})
}

// GetImage - отдает картинку по короткому id: сперва из памяти, потом из стореджа
func (h ImageHandler) GetImage(ctx *ginext.Context) {
	id := ctx.Param("imageId")

	res, cType, err := h.service.Fetch(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	writeImage(ctx, id, res, cType)
}

// GetObject - отдает объект стореджа по полному ключу из /objects/-ссылки
func (h ImageHandler) GetObject(ctx *ginext.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")

	res, cType, err := h.service.FetchObject(ctx.Request.Context(), key)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	writeImage(ctx, key, res, cType)
}

// CreateUploadTicket - выдает pre-signed URL для прямой загрузки в сторедж
func (h ImageHandler) CreateUploadTicket(ctx *ginext.Context) {
	url, err := h.service.IssueDirectTicket(ctx.Request.Context())
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]string{"uploadURL": url})
}

func (h ImageHandler) GetAllImages(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func writeImage(ctx *ginext.Context, key string, res io.Reader, cType string) {
	if cType == "" {
		cType = model.JPEG
	}
	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.Header().Set("Cache-Control", cacheControl)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for file %q: %v", n, key, err)
	}
}

// collectFiles - парсит multipart-форму и открывает все файлы из поля images
func collectFiles(ctx *ginext.Context, limit int) ([]model.UploadedFile, func(), error) {
	if err := ctx.Request.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, model.ErrIncorrectQuery
	}

	form := ctx.Request.MultipartForm
	if form == nil || len(form.File["images"]) == 0 {
		return nil, nil, model.ErrNoFiles
	}

	headers := form.File["images"]
	if len(headers) > limit {
		return nil, nil, fmt.Errorf("%w: max %d file(s) per request", model.ErrLimitExceeded, limit)
	}

	files := make([]model.UploadedFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range opened {
			closeFileFlow(f)
		}
	}

	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			cleanup()
			return nil, nil, model.ErrCommon500
		}
		opened = append(opened, f)
		files = append(files, model.UploadedFile{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Data:        f,
		})
	}

	return files, cleanup, nil
}
