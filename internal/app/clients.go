package app

import (
	"fmt"

	"github.com/kbrou/chatorder-backend/internal/clients/twilio"
	"github.com/kbrou/chatorder-backend/internal/platform/gcp"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/platform/openai"
	"github.com/kbrou/chatorder-backend/internal/platform/redisx"
)

type Clients struct {
	Twilio  twilio.Client
	AI      openai.Client
	Caption gcp.Caption
	Receipt gcp.Receipt
	Bucket  gcp.Bucket
	Cache   redisx.StateCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	tw, err := twilio.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init twilio client: %w", err)
	}

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	caption, err := gcp.NewCaption(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init vision caption client: %w", err)
	}

	receipt, err := gcp.NewReceipt(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init receipt OCR client: %w", err)
	}

	var bucket gcp.Bucket
	if cfg.ArchiveMedia {
		bucket, err = gcp.NewBucket(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init media bucket: %w", err)
		}
	}

	var cache redisx.StateCache
	if cfg.RedisEnabled {
		cache, err = redisx.NewStateCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis state cache: %w", err)
		}
	}

	return Clients{
		Twilio:  tw,
		AI:      ai,
		Caption: caption,
		Receipt: receipt,
		Bucket:  bucket,
		Cache:   cache,
	}, nil
}
