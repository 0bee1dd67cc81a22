package transport

import (
	"context"
	"io"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	uploadSimpleFn    func(ctx context.Context, files []model.UploadedFile) ([]string, error)
	uploadProcessedFn func(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error)
	fetchFn           func(ctx context.Context, id string) (io.ReadCloser, string, error)
	fetchObjectFn     func(ctx context.Context, key string) (io.ReadCloser, string, error)
	issueTicketFn     func(ctx context.Context) (string, error)
	getListFn         func(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error)
}

func (m *mockImageService) UploadSimple(ctx context.Context, files []model.UploadedFile) ([]string, error) {
	return m.uploadSimpleFn(ctx, files)
}

func (m *mockImageService) UploadProcessed(ctx context.Context, files []model.UploadedFile, p model.Profile) ([]string, error) {
	return m.uploadProcessedFn(ctx, files, p)
}

func (m *mockImageService) Fetch(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.fetchFn(ctx, id)
}

func (m *mockImageService) FetchObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.fetchObjectFn(ctx, key)
}

func (m *mockImageService) IssueDirectTicket(ctx context.Context) (string, error) {
	return m.issueTicketFn(ctx)
}

func (m *mockImageService) GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error) {
	return m.getListFn(ctx, req)
}

func init() {
	gin.SetMode(gin.TestMode)
}
