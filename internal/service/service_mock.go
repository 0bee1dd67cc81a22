package service

import (
	"context"
	"io"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/wb-go/wbf/retry"
)

// mockBlobStore - ручной мок хранилища для юнит-тестов сервиса
type mockBlobStore struct {
	IssueTicketFunc func(ctx context.Context, key, contentType string) (*model.WriteTicket, error)
	PutFunc         func(ctx context.Context, t *model.WriteTicket, data []byte) error
	GetFunc         func(ctx context.Context, key string) (io.ReadCloser, string, error)
	ReferenceFunc   func(t *model.WriteTicket) string
}

func (m *mockBlobStore) IssueTicket(ctx context.Context, key, contentType string) (*model.WriteTicket, error) {
	return m.IssueTicketFunc(ctx, key, contentType)
}

func (m *mockBlobStore) Put(ctx context.Context, t *model.WriteTicket, data []byte) error {
	return m.PutFunc(ctx, t, data)
}

func (m *mockBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.GetFunc(ctx, key)
}

func (m *mockBlobStore) Reference(t *model.WriteTicket) string {
	return m.ReferenceFunc(t)
}

// mockPublisher - ручной мок очереди
type mockPublisher struct {
	SendWithRetryFunc func(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error {
	return m.SendWithRetryFunc(ctx, strategy, key, v)
}

// mockRegistry - ручной мок реестра
type mockRegistry struct {
	CreateFunc  func(ctx context.Context, img *model.StoredImage) error
	GetFunc     func(ctx context.Context, key string) (*model.StoredImage, error)
	GetListFunc func(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error)
}

func (m *mockRegistry) Create(ctx context.Context, img *model.StoredImage) error {
	return m.CreateFunc(ctx, img)
}

func (m *mockRegistry) Get(ctx context.Context, key string) (*model.StoredImage, error) {
	return m.GetFunc(ctx, key)
}

func (m *mockRegistry) GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error) {
	return m.GetListFunc(ctx, req)
}
