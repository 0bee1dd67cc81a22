package imgpostgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/capyconnect/imagehub/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newRegistryWithMock(t *testing.T) (PostgresRegistry, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	pg := &dbpg.DB{Master: db}

	return PostgresRegistry{DB: pg}, mock
}

// CREATE - SUCCESS
func TestPostgresRegistry_Create_OK(t *testing.T) {
	repo, mock := newRegistryWithMock(t)

	ctime := time.Now()
	img := &model.StoredImage{
		Key:          "images/uid.png",
		OriginalName: "cat.png",
		ContentType:  model.PNG,
		SizeBytes:    1024,
		Profile:      "marketplace",
		CreatedAt:    &ctime,
	}

	mock.ExpectQuery(`INSERT INTO stored_images`).
		WithArgs(
			img.Key,
			img.OriginalName,
			img.ContentType,
			img.SizeBytes,
			img.Profile,
			img.CreatedAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := repo.Create(context.Background(), img)
	require.NoError(t, err)
}

// GET - SUCCESS
func TestPostgresRegistry_Get_OK(t *testing.T) {
	repo, mock := newRegistryWithMock(t)

	rows := sqlmock.NewRows([]string{
		"object_key", "original_name", "content_type", "size_bytes", "profile", "created_at",
	}).AddRow(
		"images/uid.png", "cat.png", model.PNG, 1024, "marketplace", time.Now(),
	)

	mock.ExpectQuery(`SELECT object_key`).
		WithArgs("images/uid.png").
		WillReturnRows(rows)

	img, err := repo.Get(context.Background(), "images/uid.png")
	require.NoError(t, err)
	require.Equal(t, "images/uid.png", img.Key)
	require.Equal(t, model.PNG, img.ContentType)
}

// GET - NOT FOUND
func TestPostgresRegistry_Get_NotFound(t *testing.T) {
	repo, mock := newRegistryWithMock(t)

	mock.ExpectQuery(`SELECT object_key`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// GETLIST - SUCCESS
func TestPostgresRegistry_GetList_OK(t *testing.T) {
	repo, mock := newRegistryWithMock(t)

	rows := sqlmock.NewRows([]string{
		"object_key", "original_name", "content_type", "size_bytes", "profile", "created_at",
	}).
		AddRow("images/a.png", "a.png", model.PNG, 10, "marketplace", time.Now()).
		AddRow("images/b.jpg", "b.jpg", model.JPEG, 20, "standardized", time.Now())

	mock.ExpectQuery(`SELECT object_key`).
		WithArgs(30, 0).
		WillReturnRows(rows)

	req := &model.ListRequest{Page: 1, Limit: 30, Sort: "created_at", Order: "DESC"}

	images, err := repo.GetList(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, "images/a.png", images[0].Key)
}
