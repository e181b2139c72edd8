package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/kbrou/chatorder-backend/internal/platform/ctxutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// Caption describes an inbound customer image so the order flow can decide
// whether it is a product photo. It never interprets receipts; that is the
// Receipt reader's job.
type Caption interface {
	DescribeImage(ctx context.Context, img []byte, mimeType string) (*CaptionResult, error)
	Close() error
}

type CaptionResult struct {
	Provider    string  `json:"provider"`
	MimeType    string  `json:"mime_type,omitempty"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	TextInImage string  `json:"text_in_image,omitempty"`
	// ErrorCode is a correctable input problem: "too_small" or "unsupported_format".
	ErrorCode string `json:"error_code,omitempty"`
}

const minCaptionImageBytes = 4 * 1024

type captionService struct {
	log          *logger.Logger
	visionClient *vision.ImageAnnotatorClient
}

func NewCaption(log *logger.Logger) (Caption, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Caption")

	ctx := context.Background()
	vClient, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &captionService{log: slog, visionClient: vClient}, nil
}

func (s *captionService) Close() error {
	if s == nil || s.visionClient == nil {
		return nil
	}
	return s.visionClient.Close()
}

func (s *captionService) DescribeImage(ctx context.Context, img []byte, mimeType string) (*CaptionResult, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	out := &CaptionResult{Provider: "gcp_vision", MimeType: mimeType}

	if mimeType != "" && !strings.HasPrefix(mimeType, "image/") {
		out.ErrorCode = "unsupported_format"
		return out, nil
	}
	if len(img) == 0 {
		out.ErrorCode = "too_small"
		return out, nil
	}
	if len(img) < minCaptionImageBytes {
		out.ErrorCode = "too_small"
		return out, nil
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 10},
			{Type: visionpb.Feature_TEXT_DETECTION},
		},
	}
	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := s.visionClient.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return out, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	labels := make([]string, 0, len(r0.LabelAnnotations))
	topScore := 0.0
	for _, la := range r0.LabelAnnotations {
		if la == nil || strings.TrimSpace(la.Description) == "" {
			continue
		}
		labels = append(labels, strings.ToLower(strings.TrimSpace(la.Description)))
		if float64(la.Score) > topScore {
			topScore = float64(la.Score)
		}
	}
	out.Description = strings.Join(labels, ", ")
	out.Confidence = topScore

	if r0.FullTextAnnotation != nil {
		out.TextInImage = collapseWhitespace(r0.FullTextAnnotation.Text)
	}

	s.log.Debug("Image described",
		"labels", len(labels),
		"confidence", out.Confidence,
		"has_text", out.TextInImage != "",
	)
	return out, nil
}
