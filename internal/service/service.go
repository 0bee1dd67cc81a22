// Package service provides business-logic for the app
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/capyconnect/imagehub/internal/imageproc"
	"github.com/capyconnect/imagehub/internal/model"
	"github.com/capyconnect/imagehub/internal/mwlogger"
	"github.com/capyconnect/imagehub/internal/repository"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"golang.org/x/sync/errgroup"
)

type ImageService struct {
	ephemeral    BlobStore
	durable      BlobStore
	registry     repository.ImageRegistry
	publisher    TaskPublisher
	keyPrefix    string
	maxFileBytes int64
}

func NewImageService(ephemeral, durable BlobStore, reg repository.ImageRegistry, pub TaskPublisher) *ImageService {
	return &ImageService{
		ephemeral:    ephemeral,
		durable:      durable,
		registry:     reg,
		publisher:    pub,
		keyPrefix:    "images/",
		maxFileBytes: 10 << 20, // 10 MiB на файл
	}
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// BlobStore - контракт для работы с хранилищем: двухфазная запись через тикет,
// чтение по ключу. Оба бэкенда (in-memory и MinIO) ходят через него одинаково.
type BlobStore interface {
	IssueTicket(ctx context.Context, key, contentType string) (*model.WriteTicket, error)
	Put(ctx context.Context, t *model.WriteTicket, data []byte) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Reference(t *model.WriteTicket) string
}

// NoopPublisher - заглушка на случай запуска без очереди задач
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error {
	return nil
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// UploadSimple stores every file as-is in the ephemeral table, best effort per
// file: one file's failure does not affect siblings already stored.
func (c *ImageService) UploadSimple(ctx context.Context, files []model.UploadedFile) ([]string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(files) == 0 {
		return nil, model.ErrNoFiles
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		data, err := io.ReadAll(f.Data)
		if err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to read file %q, skipping", f.Name))
			continue
		}

		key := uuid.New().String() + model.GetImageFileExt[f.ContentType]
		ticket, err := c.ephemeral.IssueTicket(ctx, key, f.ContentType)
		if err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to issue ticket for %q, skipping", f.Name))
			continue
		}

		if err := c.ephemeral.Put(ctx, ticket, data); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to store file %q, skipping", f.Name))
			continue
		}

		refs = append(refs, "/api/images/"+key)
	}

	if len(refs) == 0 {
		return nil, model.ErrCommon500
	}
	return refs, nil
}

type encodedFile struct {
	name  string
	data  []byte
	cType string
}

// UploadProcessed runs the validated-transform pipeline under the given
// profile. Phase one decodes, fits and re-encodes every file concurrently;
// any failure aborts the batch before a single byte reaches storage. Phase
// two performs the two-phase ticket write for every encoded buffer.
func (c *ImageService) UploadProcessed(ctx context.Context, files []model.UploadedFile, profile model.Profile) ([]string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(files) == 0 {
		return nil, model.ErrNoFiles
	}

	// фаза 1: валидация и трансформация, в хранилище еще ничего не пишем
	encoded := make([]encodedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if c.maxFileBytes > 0 && f.Size > c.maxFileBytes {
				return fmt.Errorf("%q: %w", f.Name, model.ErrFileTooLarge)
			}

			data, err := io.ReadAll(f.Data)
			if err != nil {
				return fmt.Errorf("%q: %w: %v", f.Name, model.ErrInvalidImage, err)
			}

			out, cType, err := imageproc.Apply(data, profile)
			if err != nil {
				return fmt.Errorf("%q: %w", f.Name, err)
			}

			encoded[i] = encodedFile{name: f.Name, data: out, cType: cType}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// фаза 2: двухфазная запись - тикет, затем PUT
	refs := make([]string, len(encoded))
	g2, gctx2 := errgroup.WithContext(ctx)
	for i, e := range encoded {
		i, e := i, e
		g2.Go(func() error {
			key := c.keyPrefix + uuid.New().String() + model.GetImageFileExt[e.cType]

			ticket, err := c.durable.IssueTicket(gctx2, key, e.cType)
			if err != nil {
				return fmt.Errorf("%q: %w", e.name, err)
			}

			if err := c.durable.Put(gctx2, ticket, e.data); err != nil {
				return fmt.Errorf("%q: %w", e.name, err)
			}

			refs[i] = c.durable.Reference(ticket)

			c.record(gctx2, key, e.name, e.cType, int64(len(e.data)), profile.Name)

			// стандартизованный вариант заказываем только для еще не стандартизованных
			if profile.Fit != model.FitCover {
				c.announce(gctx2, key)
			}
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		logger.Error().Err(err).Msg("Batch store failed")
		return nil, err
	}

	return refs, nil
}

// record - запись в реестр best-effort: блоб уже сохранен, откатывать нечего
func (c *ImageService) record(ctx context.Context, key, name, cType string, size int64, profile string) {
	if c.registry == nil {
		return
	}

	logger := mwlogger.LoggerFromContext(ctx)
	now := time.Now().UTC()
	img := &model.StoredImage{
		Key:          key,
		OriginalName: name,
		ContentType:  cType,
		SizeBytes:    size,
		Profile:      profile,
		CreatedAt:    &now,
	}

	if err := c.registry.Create(ctx, img); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to record stored image %q in registry", key))
	}
}

// announce - кладем ключ в очередь задач на генерацию варианта, тоже best-effort
func (c *ImageService) announce(ctx context.Context, key string) {
	if c.publisher == nil {
		return
	}

	logger := mwlogger.LoggerFromContext(ctx)
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(key), nil); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish stored key %q to task-queue", key))
	}
}

// Fetch reads an image by id: the ephemeral table first, then the durable
// store under the images/ prefix.
func (c *ImageService) Fetch(ctx context.Context, id string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	data, cType, err := c.ephemeral.Get(ctx, id)
	if err == nil {
		return data, cType, nil
	}
	if !errors.Is(err, model.ErrImageNotFound) {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %q from ephemeral table", id))
		return nil, "", model.ErrCommon500
	}

	data, cType, err = c.durable.Get(ctx, c.keyPrefix+id)
	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			return nil, "", model.ErrImageNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %q from Storage", id))
		return nil, "", model.ErrCommon500
	}

	return data, cType, nil
}

// FetchObject reads a durable-store object by its full key.
func (c *ImageService) FetchObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	data, cType, err := c.durable.Get(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			return nil, "", model.ErrImageNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch object %q from Storage", key))
		return nil, "", model.ErrCommon500
	}

	return data, cType, nil
}

// IssueDirectTicket hands out a pre-signed write URL for direct
// client-to-store upload.
func (c *ImageService) IssueDirectTicket(ctx context.Context) (string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	key := c.keyPrefix + uuid.New().String()
	ticket, err := c.durable.IssueTicket(ctx, key, "application/octet-stream")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue direct write ticket")
		return "", model.ErrCommon500
	}

	return ticket.URL, nil
}

func (c *ImageService) GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.registry.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch stored images list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}
