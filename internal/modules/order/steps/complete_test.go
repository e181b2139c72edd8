package steps

import (
	"reflect"
	"testing"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

func TestDetectCompletionNilWhileMissing(t *testing.T) {
	deps := CompleteDeps{Catalog: testCatalog(t), Now: fixedNow}

	fields := completeFields()
	fields.Payment = types.PaymentField{}
	if got := DetectCompletion(deps, fields); got != nil {
		t.Fatalf("expected nil with a missing field, got %+v", got)
	}

	// Collected but invalid phone does not complete.
	fields = completeFields()
	fields.Phone = types.PhoneField{Collected: true, Valid: false, Number: "078736075", Error: types.PhoneErrTooShort}
	if got := DetectCompletion(deps, fields); got != nil {
		t.Fatalf("expected nil with an invalid phone, got %+v", got)
	}
}

func TestDetectCompletionSnapshot(t *testing.T) {
	deps := CompleteDeps{Catalog: testCatalog(t), Now: fixedNow}

	got := DetectCompletion(deps, completeFields())
	if got == nil {
		t.Fatalf("expected a snapshot")
	}
	want := &SnapshotData{
		PhotoDescription: "shoe, footwear",
		ProductName:      "chaussures",
		Amount:           2000,
		Currency:         "XOF",
		ZoneName:         "Cocody",
		ZoneCost:         1500,
		ZoneCategory:     types.ZoneLocal,
		Phone:            "0787360757",
		DeliveryEstimate: "livraison aujourd'hui",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestDetectCompletionIdempotent(t *testing.T) {
	deps := CompleteDeps{Catalog: testCatalog(t), Now: fixedNow}
	first := DetectCompletion(deps, completeFields())
	second := DetectCompletion(deps, completeFields())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("completion must be deterministic:\n%+v\n%+v", first, second)
	}
}
