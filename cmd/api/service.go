package main

import (
	"context"
	"io"
	"strconv"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/wb-go/wbf/config"
)

type ImageAPIService interface {
	UploadSimple(ctx context.Context, files []model.UploadedFile) ([]string, error)
	UploadProcessed(ctx context.Context, files []model.UploadedFile, profile model.Profile) ([]string, error)
	Fetch(ctx context.Context, id string) (io.ReadCloser, string, error)
	FetchObject(ctx context.Context, key string) (io.ReadCloser, string, error)
	IssueDirectTicket(ctx context.Context) (string, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.StoredImage, error)
}

// buildProfiles - собирает профили обработки, границы можно переопределить энвами
func buildProfiles(cfg *config.Config) (model.Profile, model.Profile) {
	marketplace := model.Profile{
		Name:      "marketplace",
		MaxWidth:  envInt(cfg, "MARKETPLACE_MAX_WIDTH", 1200),
		MaxHeight: envInt(cfg, "MARKETPLACE_MAX_HEIGHT", 800),
		Quality:   envInt(cfg, "MARKETPLACE_QUALITY", 85),
		Fit:       model.FitInside, // формат исходника сохраняется
	}

	standardized := model.Profile{
		Name:      "standardized",
		MaxWidth:  envInt(cfg, "STANDARD_MAX_WIDTH", 800),
		MaxHeight: envInt(cfg, "STANDARD_MAX_HEIGHT", 600),
		Quality:   envInt(cfg, "STANDARD_QUALITY", 80),
		Format:    model.JPEG, // витрина всегда отдает JPEG
		Fit:       model.FitCover,
	}

	return marketplace, standardized
}

func envInt(cfg *config.Config, key string, def int) int {
	if v := cfg.GetString(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
