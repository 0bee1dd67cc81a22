// Package memstore provides an ephemeral in-process blob table, lost on restart.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/capyconnect/imagehub/internal/model"
)

type object struct {
	data  []byte
	cType string
}

type MemBlobStorage struct {
	mu      sync.RWMutex
	objects map[string]object
}

func New() *MemBlobStorage {
	return &MemBlobStorage{objects: make(map[string]object)}
}

// IssueTicket - тикет здесь чисто формальный, протокол един для обоих бэкендов
func (s *MemBlobStorage) IssueTicket(_ context.Context, key, contentType string) (*model.WriteTicket, error) {
	return &model.WriteTicket{
		Key:         key,
		URL:         "mem://" + key,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (s *MemBlobStorage) Put(_ context.Context, t *model.WriteTicket, data []byte) error {
	if t == nil {
		return fmt.Errorf("%w: nil write ticket", model.ErrUploadFailed)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[t.Key] = object{data: buf, cType: t.ContentType}
	s.mu.Unlock()

	return nil
}

func (s *MemBlobStorage) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, "", model.ErrImageNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.cType, nil
}

func (s *MemBlobStorage) Reference(t *model.WriteTicket) string {
	return "/objects/" + t.Key
}

// Len reports the number of stored blobs.
func (s *MemBlobStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
