package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/platform/openai"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewFromEnv(testLogger(t))
	if err != nil {
		t.Fatalf("catalog.NewFromEnv: %v", err)
	}
	return c
}

// fixedNow is a weekday morning, before the same-day delivery cutoff.
func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
}

func intp(n int) *int { return &n }

// fakeAI returns a canned reply, or fails when err is set.
type fakeAI struct {
	text  string
	err   error
	calls int
}

var _ openai.Client = (*fakeAI)(nil)

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{}, nil
}

func (f *fakeAI) GenerateTextWithImages(ctx context.Context, system, user string, images []openai.ImageInput) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

var errAIDown = errors.New("model unavailable")
