package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kbrou/chatorder-backend/internal/clients/twilio"
	"github.com/kbrou/chatorder-backend/internal/modules/order/steps"
	"github.com/kbrou/chatorder-backend/internal/platform/gcp"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// ExtractedSignals is everything one inbound image yields for the turn.
// Either signal can be nil: a provider that errored simply contributed
// nothing, the turn still proceeds.
type ExtractedSignals struct {
	Vision *steps.VisionSignal
	OCR    *steps.OCRSignal

	// ArchiveURI is the gs:// location of the raw media, best effort.
	ArchiveURI string
}

// SignalExtractionService fetches an inbound media attachment and fans out to
// the vision and OCR providers concurrently.
type SignalExtractionService interface {
	Extract(ctx context.Context, conversationID uuid.UUID, mediaURL, contentTypeHint string) (*ExtractedSignals, error)
}

type signalExtractionService struct {
	log     *logger.Logger
	twilio  twilio.Client
	caption gcp.Caption
	receipt gcp.Receipt
	bucket  gcp.Bucket
}

// NewSignalExtractionService wires the extraction fan-out. bucket may be nil;
// archiving is then skipped.
func NewSignalExtractionService(baseLog *logger.Logger, tw twilio.Client, caption gcp.Caption, receipt gcp.Receipt, bucket gcp.Bucket) (SignalExtractionService, error) {
	if baseLog == nil || tw == nil || caption == nil || receipt == nil {
		return nil, fmt.Errorf("signal extraction: missing deps")
	}
	return &signalExtractionService{
		log:     baseLog.With("service", "SignalExtractionService"),
		twilio:  tw,
		caption: caption,
		receipt: receipt,
		bucket:  bucket,
	}, nil
}

func (s *signalExtractionService) Extract(ctx context.Context, conversationID uuid.UUID, mediaURL, contentTypeHint string) (*ExtractedSignals, error) {
	media, contentType, err := s.twilio.FetchMedia(ctx, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	if contentType == "" {
		contentType = contentTypeHint
	}

	out := &ExtractedSignals{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.caption.DescribeImage(gctx, media, contentType)
		if err != nil {
			s.log.Warn("Vision caption failed", "error", err.Error())
			return nil
		}
		out.Vision = &steps.VisionSignal{
			Description: res.Description,
			Confidence:  res.Confidence,
			TextInImage: res.TextInImage,
			ErrorCode:   res.ErrorCode,
		}
		return nil
	})
	g.Go(func() error {
		res, err := s.receipt.ReadReceipt(gctx, media, contentType)
		if err != nil {
			s.log.Warn("Receipt OCR failed", "error", err.Error())
			return nil
		}
		out.OCR = &steps.OCRSignal{
			Amount:    res.Amount,
			Currency:  res.Currency,
			Recipient: res.Recipient,
			Valid:     res.Valid,
			ErrorCode: res.ErrorCode,
		}
		return nil
	})
	_ = g.Wait()

	if s.bucket != nil {
		key := fmt.Sprintf("conversations/%s/%s%s", conversationID, uuid.NewString(), extensionFor(contentType))
		uri, err := s.bucket.ArchiveMedia(ctx, key, contentType, media)
		if err != nil {
			s.log.Warn("Media archive failed", "error", err.Error(), "key", key)
		} else {
			out.ArchiveURI = uri
		}
	}

	return out, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
