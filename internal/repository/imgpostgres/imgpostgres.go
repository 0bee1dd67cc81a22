package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRegistry struct {
	DB *dbpg.DB
}

func (p PostgresRegistry) Create(ctx context.Context, img *model.StoredImage) error {
	query := `INSERT INTO stored_images (object_key, original_name, content_type, size_bytes, profile, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	return p.DB.QueryRowContext(ctx, query, img.Key, img.OriginalName, img.ContentType, img.SizeBytes, img.Profile, img.CreatedAt).Err()
}

func (p PostgresRegistry) Get(ctx context.Context, key string) (*model.StoredImage, error) {
	query := `SELECT object_key, original_name, content_type, size_bytes, profile, created_at
	FROM stored_images
	WHERE object_key = $1`
	var img model.StoredImage

	err := p.DB.QueryRowContext(ctx, query, key).Scan(&img.Key,
		&img.OriginalName,
		&img.ContentType,
		&img.SizeBytes,
		&img.Profile,
		&img.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrImageNotFound
		default:
			return nil, err // 500
		}
	}
	return &img, nil
}

func (p PostgresRegistry) GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error) {
	query := fmt.Sprintf(`SELECT object_key, original_name, content_type, size_bytes, profile, created_at
	FROM stored_images
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	images := make([]model.StoredImage, 0, req.Limit)
	for rows.Next() {
		var img model.StoredImage
		if err := rows.Scan(&img.Key,
			&img.OriginalName,
			&img.ContentType,
			&img.SizeBytes,
			&img.Profile,
			&img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return images, nil
}
