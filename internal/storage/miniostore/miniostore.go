// Package miniostore provides the durable blob backend over MinIO,
// written through pre-signed PUT URLs.
package miniostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
)

const putTimeout = 30 * time.Second

type MinioBlobStorage struct {
	bucket    string
	client    *minio.Client
	http      *http.Client
	ticketTTL time.Duration
}

func NewMinioClient(cfg *config.Config) (*MinioBlobStorage, error) {
	bucket := cfg.GetString("BUCKET_NAME")

	if bucket == "" {
		bucket = "default"
		log.Printf("Bucket name is empty. Using default value %q...", bucket)
	}

	user := cfg.GetString("MINIO_USER")
	pass := cfg.GetString("MINIO_PASS")
	addr := cfg.GetString("MINIO_CONTAINER_NAME")

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(addr+":9000", &minio.Options{
		Creds:  credentials.NewStaticV4(user, pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(context.Background(), strg, bucket); err != nil {
		log.Println("Failed to create bucket in MinIO:", err)
		return nil, err
	}

	return &MinioBlobStorage{
		bucket:    bucket,
		client:    strg,
		http:      &http.Client{Timeout: putTimeout},
		ticketTTL: 15 * time.Minute,
	}, nil
}

// IssueTicket requests a pre-signed write URL for the key.
func (s *MinioBlobStorage) IssueTicket(ctx context.Context, key, contentType string) (*model.WriteTicket, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.ticketTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: presign for %q: %v", model.ErrUploadFailed, key, err)
	}

	return &model.WriteTicket{
		Key:         key,
		URL:         u.String(),
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(s.ticketTTL),
	}, nil
}

// Put performs the second phase of the handshake: PUT the buffer to the
// pre-signed URL. Not retried - retry is the caller's responsibility.
func (s *MinioBlobStorage) Put(ctx context.Context, t *model.WriteTicket, data []byte) error {
	if t == nil {
		return fmt.Errorf("%w: nil write ticket", model.ErrUploadFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", t.ContentType)
	req.ContentLength = int64(len(data))

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: store answered %d", model.ErrUploadFailed, resp.StatusCode)
	}

	return nil
}

func (s *MinioBlobStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	res, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}

	resStat, err := res.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", model.ErrImageNotFound
		}
		return nil, "", err
	}

	return res, resStat.ContentType, nil
}

// Reference normalizes the ticket's pre-signed URL into the internal
// /objects/... path: query parameters stripped, bucket prefix rewritten.
func (s *MinioBlobStorage) Reference(t *model.WriteTicket) string {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "/objects/" + t.Key
	}

	path := strings.TrimPrefix(u.Path, "/"+s.bucket)
	path = strings.TrimPrefix(path, "/")

	return "/objects/" + path
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func closeBody(b io.ReadCloser) {
	if err := b.Close(); err != nil && !errors.Is(err, io.EOF) {
		log.Println("Failed to close response body after PUT:", err)
	}
}
