package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/kbrou/chatorder-backend/internal/platform/ctxutil"
	"github.com/kbrou/chatorder-backend/internal/platform/envutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// Bucket archives inbound customer media so disputes can be reviewed later.
// Archival is best-effort: the order flow never blocks on it.
type Bucket interface {
	ArchiveMedia(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	bucketName := envutil.Str("MEDIA_GCS_BUCKET_NAME", "")
	if bucketName == "" {
		return nil, fmt.Errorf("missing MEDIA_GCS_BUCKET_NAME")
	}

	ctx := context.Background()
	sc, err := storage.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{
		log:           log.With("service", "gcp.Bucket"),
		storageClient: sc,
		bucketName:    bucketName,
	}, nil
}

func (s *bucketService) Close() error {
	if s == nil || s.storageClient == nil {
		return nil
	}
	return s.storageClient.Close()
}

func (s *bucketService) ArchiveMedia(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("key required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty media")
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.storageClient.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if strings.TrimSpace(contentType) != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write media object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close media object: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", s.bucketName, key)
	s.log.Debug("Media archived", "uri", uri, "bytes", len(data))
	return uri, nil
}
