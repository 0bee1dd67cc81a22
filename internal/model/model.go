// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"io"
	"time"
)

type Fit string

const (
	// FitInside shrinks the image so neither side exceeds the bounds,
	// keeps aspect ratio, never upscales.
	FitInside Fit = "inside"
	// FitCover crop-scales the image to exactly fill the bounds,
	// anchored center, transparency flattened onto white.
	FitCover Fit = "cover"
)

// Profile - именованный набор параметров обработки, собирается один раз на старте
type Profile struct {
	Name      string
	MaxWidth  int
	MaxHeight int
	Quality   int    // 1-100
	Format    string // целевой content-type; пустая строка = сохраняем формат исходника
	Fit       Fit
}

//---------------------

// UploadedFile - транзиентное представление одного файла из multipart-запроса
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// StoredImage - строка реестра по одному успешно сохраненному артефакту
type StoredImage struct {
	Key          string     `json:"key"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	Profile      string     `json:"profile,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// WriteTicket - разовое разрешение на запись одного блоба в хранилище
type WriteTicket struct {
	Key         string
	URL         string
	ContentType string
	ExpiresAt   time.Time
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByKey     = "key"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

var (
	ErrCommon500      error = errors.New("something went wrong. Try again later") // 500
	ErrIncorrectQuery error = errors.New("incorrect query parameters")            // 400
	ErrNoFiles        error = errors.New("no files provided")                     // 400
	ErrLimitExceeded  error = errors.New("too many files in one batch")           // 400
	ErrFileTooLarge   error = errors.New("file exceeds the size limit")           // 400
	ErrNotAnImage     error = errors.New("file is not an image")                  // 400
	ErrInvalidImage   error = errors.New("buffer could not be decoded as image")  // 500 with details
	ErrUploadFailed   error = errors.New("object store did not accept the write") // 500 with details
	ErrImageNotFound  error = errors.New("Image not found")                       // 404
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
}
