package transport

import (
	"errors"
	"io"
	"log"

	"github.com/capyconnect/imagehub/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrInvalidImage),
		errors.Is(err, model.ErrUploadFailed):
		return 500
	case errors.Is(err, model.ErrImageNotFound):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrNoFiles),
		errors.Is(err, model.ErrLimitExceeded),
		errors.Is(err, model.ErrFileTooLarge),
		errors.Is(err, model.ErrNotAnImage):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.Closer) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
