package main

import (
	"strconv"

	"github.com/capyconnect/imagehub/internal/model"
	"github.com/wb-go/wbf/config"
)

// standardizedProfile - тот же профиль что и у api, воркер должен давать байт-в-байт
// такой же результат для одинакового исходника
func standardizedProfile(cfg *config.Config) model.Profile {
	return model.Profile{
		Name:      "standardized",
		MaxWidth:  envInt(cfg, "STANDARD_MAX_WIDTH", 800),
		MaxHeight: envInt(cfg, "STANDARD_MAX_HEIGHT", 600),
		Quality:   envInt(cfg, "STANDARD_QUALITY", 80),
		Format:    model.JPEG,
		Fit:       model.FitCover,
	}
}

func envInt(cfg *config.Config, key string, def int) int {
	if v := cfg.GetString(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
