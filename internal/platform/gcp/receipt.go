package gcp

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/kbrou/chatorder-backend/internal/platform/ctxutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// Receipt reads mobile-money payment screenshots (Wave, Orange Money) via
// Document AI and extracts the transfer amount and recipient number.
type Receipt interface {
	ReadReceipt(ctx context.Context, img []byte, mimeType string) (*ReceiptResult, error)
	Close() error
}

type ReceiptResult struct {
	Provider    string `json:"provider"`
	Processor   string `json:"processor,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	PrimaryText string `json:"primary_text"`

	Amount    *int   `json:"amount,omitempty"`
	Currency  string `json:"currency"`
	Recipient string `json:"recipient,omitempty"`
	Valid     bool   `json:"valid"`
	// ErrorCode: "empty" (no text found) or "unreadable" (text but no amount).
	ErrorCode string `json:"error_code,omitempty"`
}

type receiptService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient

	projectID        string
	location         string
	processorID      string
	processorVersion string
}

func NewReceipt(log *logger.Logger) (Receipt, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Receipt")

	projectID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROJECT_ID"))
	processorID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_ID"))
	if projectID == "" || processorID == "" {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}
	location := strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	if location == "" {
		location = "eu"
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)

	ctx := context.Background()
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint)

	return &receiptService{
		log:              slog,
		docClient:        c,
		projectID:        projectID,
		location:         location,
		processorID:      processorID,
		processorVersion: strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_VERSION")),
	}, nil
}

func (s *receiptService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *receiptService) processorName() string {
	if s.processorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			s.projectID, s.location, s.processorID, s.processorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.projectID, s.location, s.processorID)
}

func (s *receiptService) ReadReceipt(ctx context.Context, img []byte, mimeType string) (*ReceiptResult, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	out := &ReceiptResult{Provider: "gcp_documentai", MimeType: mimeType, Currency: "XOF"}
	if len(img) == 0 {
		out.ErrorCode = "empty"
		return out, nil
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	name := s.processorName()
	r := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  img,
				MimeType: mimeType,
			},
		},
	}

	resp, err := s.docClient.ProcessDocument(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	out.Processor = name
	if resp == nil || resp.Document == nil || strings.TrimSpace(resp.Document.Text) == "" {
		out.ErrorCode = "empty"
		return out, nil
	}

	out.PrimaryText = collapseWhitespace(resp.Document.Text)
	ParseReceiptText(out)

	s.log.Debug("Receipt read",
		"chars", len(out.PrimaryText),
		"valid", out.Valid,
		"error_code", out.ErrorCode,
	)
	return out, nil
}

var (
	// "2 000 F", "2.000 FCFA", "2000F", "2000 XOF", "2 000 francs"
	amountRe = regexp.MustCompile(`(?i)(\d{1,3}(?:[ .,\x{00a0}]\d{3})*|\d+)\s*(?:f\b|fr\b|fcfa\b|xof\b|francs?\b)`)
	// A local subscriber number somewhere in the receipt body.
	recipientRe = regexp.MustCompile(`0\d{9}`)
	digitsOnly  = regexp.MustCompile(`\D`)
)

// ParseReceiptText fills Amount/Recipient/Valid/ErrorCode from PrimaryText.
// Exposed so the result can be rebuilt from stored OCR text.
func ParseReceiptText(out *ReceiptResult) {
	if out == nil {
		return
	}
	text := out.PrimaryText
	if strings.TrimSpace(text) == "" {
		out.ErrorCode = "empty"
		return
	}

	if m := amountRe.FindStringSubmatch(text); len(m) > 1 {
		cleaned := digitsOnly.ReplaceAllString(m[1], "")
		if n, err := strconv.Atoi(cleaned); err == nil && n > 0 {
			out.Amount = &n
		}
	}
	if out.Amount == nil {
		out.ErrorCode = "unreadable"
		return
	}

	if m := recipientRe.FindString(text); m != "" {
		out.Recipient = m
	}
	out.Valid = true
}
