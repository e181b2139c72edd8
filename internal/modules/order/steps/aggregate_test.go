package steps

import (
	"testing"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

func aggregateDeps(t *testing.T) AggregateDeps {
	t.Helper()
	return AggregateDeps{Log: testLogger(t), Catalog: testCatalog(t), Now: fixedNow}
}

func TestAggregateProductPhoto(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		Vision: &VisionSignal{Description: "shoe, footwear, sneakers, white", Confidence: 0.92},
	})
	if out.PhotoAttempt == nil || out.PhotoAttempt.ErrorSubtype != "" {
		t.Fatalf("expected qualifying photo attempt, got %+v", out.PhotoAttempt)
	}
	if out.PhotoAttempt.Product != "chaussures" {
		t.Fatalf("expected product chaussures, got %q", out.PhotoAttempt.Product)
	}
	if out.PaymentAttempt != nil {
		t.Fatalf("unexpected payment attempt: %+v", out.PaymentAttempt)
	}
}

func TestAggregateScreenshotIsNotAPhoto(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		Vision: &VisionSignal{Description: "screenshot, text, font, number"},
		OCR:    &OCRSignal{Amount: intp(2000), Currency: "XOF", Recipient: "0787360757", Valid: true},
	})
	if out.PhotoAttempt != nil {
		t.Fatalf("screenshot must not become a product photo: %+v", out.PhotoAttempt)
	}
	if out.PaymentAttempt == nil || out.PaymentAttempt.Amount != 2000 || out.PaymentAttempt.ErrorSubtype != "" {
		t.Fatalf("expected qualifying payment attempt, got %+v", out.PaymentAttempt)
	}
}

func TestAggregateUnreadableScreenshot(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		Vision: &VisionSignal{Description: "screenshot, text"},
		OCR:    &OCRSignal{Valid: false, ErrorCode: "unreadable"},
	})
	if out.PaymentAttempt == nil || out.PaymentAttempt.ErrorSubtype != types.PaymentErrUnreadable {
		t.Fatalf("expected unreadable payment attempt, got %+v", out.PaymentAttempt)
	}
	if out.PhotoAttempt != nil {
		t.Fatalf("unexpected photo attempt: %+v", out.PhotoAttempt)
	}
}

func TestAggregateMissingRecipient(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		OCR: &OCRSignal{Amount: intp(2000), Valid: true},
	})
	if out.PaymentAttempt == nil || out.PaymentAttempt.ErrorSubtype != types.PaymentErrMissingRecipient {
		t.Fatalf("expected missing_recipient attempt, got %+v", out.PaymentAttempt)
	}
}

func TestAggregateAmbiguousCaption(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		Vision: &VisionSignal{Description: "sky, cloud, blue"},
	})
	if out.PhotoAttempt == nil || out.PhotoAttempt.ErrorSubtype != types.PhotoErrAmbiguousCaption {
		t.Fatalf("expected ambiguous caption attempt, got %+v", out.PhotoAttempt)
	}
}

func TestAggregateTooSmallImage(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		Vision: &VisionSignal{ErrorCode: "too_small"},
	})
	if out.PhotoAttempt == nil || out.PhotoAttempt.ErrorSubtype != types.PhotoErrTooSmall {
		t.Fatalf("expected too_small attempt, got %+v", out.PhotoAttempt)
	}
}

func TestAggregateZoneAndPhoneFromText(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{
		MessageText: "je suis à Yopougon, mon numéro 0787360757",
	})
	if out.ZoneMention == nil || out.ZoneMention.Name != "Yopougon" || out.ZoneMention.Cost != 1500 {
		t.Fatalf("unexpected zone mention: %+v", out.ZoneMention)
	}
	if out.ZoneMention.Category != types.ZoneLocal {
		t.Fatalf("expected local zone, got %q", out.ZoneMention.Category)
	}
	if out.ZoneMention.DeliveryEstimate != "livraison aujourd'hui" {
		t.Fatalf("unexpected delivery estimate: %q", out.ZoneMention.DeliveryEstimate)
	}
	if out.PhoneMention == nil || out.PhoneMention.Number != "0787360757" || !out.PhoneMention.Valid {
		t.Fatalf("unexpected phone mention: %+v", out.PhoneMention)
	}
}

func TestAggregateAbsentSourcesContributeNothing(t *testing.T) {
	out := Aggregate(aggregateDeps(t), TurnInput{MessageText: "bonjour"})
	if out.PhotoAttempt != nil || out.PaymentAttempt != nil || out.ZoneMention != nil || out.PhoneMention != nil {
		t.Fatalf("expected no candidates, got %+v", out)
	}
}
