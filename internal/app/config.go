package app

import (
	"github.com/kbrou/chatorder-backend/internal/platform/envutil"
)

type Config struct {
	Port    string
	LogMode string

	// RedisEnabled toggles the state cache; off means Postgres-only
	// rehydration.
	RedisEnabled bool
	// ArchiveMedia toggles GCS archiving of inbound media.
	ArchiveMedia bool
}

func LoadConfig() Config {
	return Config{
		Port:         envutil.Str("PORT", "8080"),
		LogMode:      envutil.Str("LOG_MODE", "development"),
		RedisEnabled: envutil.Str("REDIS_ADDR", "") != "",
		ArchiveMedia: envutil.Str("MEDIA_GCS_BUCKET_NAME", "") != "",
	}
}
