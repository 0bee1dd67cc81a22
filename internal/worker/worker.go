// Package worker contains the standardized-variant generator fed from the task-queue
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/capyconnect/imagehub/internal/imageproc"
	"github.com/capyconnect/imagehub/internal/model"
	"github.com/capyconnect/imagehub/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
)

// VariantRegistry - контракт для записи/проверки вариантов в реестре
type VariantRegistry interface {
	Create(ctx context.Context, img *model.StoredImage) error
	Get(ctx context.Context, key string) (*model.StoredImage, error)
}

type Worker struct {
	storage       service.BlobStore
	registry      VariantRegistry
	queue         <-chan kafkago.Message
	consumer      *wbfkafka.Consumer
	variantPrefix string
	profile       model.Profile
}

func NewWorkerInstance(strg service.BlobStore, reg VariantRegistry, q <-chan kafkago.Message, cons *wbfkafka.Consumer, varPr string, profile model.Profile) *Worker {
	return &Worker{storage: strg, registry: reg, queue: q, consumer: cons, variantPrefix: varPr, profile: profile}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			key := string(msg.Key)
			if err := w.processTask(ctx, key); err != nil && !errors.Is(err, model.ErrImageNotFound) {
				log.Printf("Task %s failed: %v", key, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) processTask(ctx context.Context, key string) error {
	variantKey := w.variantKeyFor(key)

	// если вариант уже есть - задача скорее всего повторная, пропускаем
	if existing, _, err := w.storage.Get(ctx, variantKey); err == nil {
		closeFileFlow(existing)
		return nil
	} else if !errors.Is(err, model.ErrImageNotFound) {
		return fmt.Errorf("worker failed to probe variant %q in storage: %w", variantKey, err)
	}

	// достать из storage исходник
	base, _, err := w.storage.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("worker failed to fetch base-image %q from storage: %w", key, err)
	}
	defer closeFileFlow(base)

	data, err := io.ReadAll(base)
	if err != nil {
		return fmt.Errorf("worker failed to read base-image %q: %w", key, err)
	}

	// выполнить саму операцию
	out, cType, err := imageproc.Apply(data, w.profile)
	if err != nil {
		return fmt.Errorf("worker failed to standardize image %q: %w", key, err)
	}

	// положить результат в сторедж через тикет, как и все записи
	ticket, err := w.storage.IssueTicket(ctx, variantKey, cType)
	if err != nil {
		return fmt.Errorf("worker failed to issue ticket for variant %q: %w", variantKey, err)
	}
	if err := w.storage.Put(ctx, ticket, out); err != nil {
		return fmt.Errorf("worker failed to put variant %q to storage: %w", variantKey, err)
	}

	// обновить запись в БД
	if w.registry != nil {
		now := time.Now().UTC()
		rec := &model.StoredImage{
			Key:         variantKey,
			ContentType: cType,
			SizeBytes:   int64(len(out)),
			Profile:     w.profile.Name,
			CreatedAt:   &now,
		}
		if err := w.registry.Create(ctx, rec); err != nil {
			return fmt.Errorf("worker failed to save variant %q to DB: %w", variantKey, err)
		}
	}

	return nil
}

// variantKeyFor - "images/<uid>.<ext>" -> "variants/<uid>.jpg"
func (w *Worker) variantKeyFor(key string) string {
	base := path.Base(key)
	base = strings.TrimSuffix(base, path.Ext(base))
	return w.variantPrefix + base + model.GetImageFileExt[model.JPEG]
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
