package worker

import (
	"context"
	"io"

	"github.com/capyconnect/imagehub/internal/model"
)

type mockRegistry struct {
	createFn func(ctx context.Context, img *model.StoredImage) error
	getFn    func(ctx context.Context, key string) (*model.StoredImage, error)
}

func (m *mockRegistry) Create(ctx context.Context, img *model.StoredImage) error {
	return m.createFn(ctx, img)
}

func (m *mockRegistry) Get(ctx context.Context, key string) (*model.StoredImage, error) {
	return m.getFn(ctx, key)
}

//----------------------------------

type mockStorage struct {
	issueFn func(ctx context.Context, key, cType string) (*model.WriteTicket, error)
	putFn   func(ctx context.Context, t *model.WriteTicket, data []byte) error
	getFn   func(ctx context.Context, key string) (io.ReadCloser, string, error)
}

func (m *mockStorage) IssueTicket(ctx context.Context, key, cType string) (*model.WriteTicket, error) {
	return m.issueFn(ctx, key, cType)
}

func (m *mockStorage) Put(ctx context.Context, t *model.WriteTicket, data []byte) error {
	return m.putFn(ctx, t, data)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Reference(t *model.WriteTicket) string {
	return "/objects/" + t.Key
}
