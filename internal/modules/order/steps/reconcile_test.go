package steps

import (
	"testing"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

func collectedZone(name string, cost int) types.ZoneField {
	return types.ZoneField{Collected: true, Valid: true, Name: name, Cost: cost, Category: types.ZoneLocal, Provenance: types.ProvenancePersisted}
}

func TestReconcileFirstTimeCollection(t *testing.T) {
	log := testLogger(t)
	fields, pending := Reconcile(log, types.OrderFields{}, nil, AggregateResult{
		ZoneMention:  &ZonePayload{Name: "Cocody", Cost: 1500, Category: types.ZoneLocal},
		PhoneMention: &PhonePayload{Number: "0787360757", Valid: true},
	})
	if !fields.Zone.Collected || fields.Zone.Name != "Cocody" {
		t.Fatalf("zone not collected: %+v", fields.Zone)
	}
	if !fields.Phone.Collected || !fields.Phone.Valid {
		t.Fatalf("phone not collected: %+v", fields.Phone)
	}
	if len(pending) != 0 {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}

func TestReconcileZoneContradictionRaisesPending(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Zone: collectedZone("Cocody", 1500)}

	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		ZoneMention: &ZonePayload{Name: "Yopougon", Cost: 1500, Category: types.ZoneLocal},
	})

	// No silent overwrite: the confirmed zone stays authoritative.
	if fields.Zone.Name != "Cocody" {
		t.Fatalf("zone overwritten without confirmation: %+v", fields.Zone)
	}
	if len(pending) != 1 || pending[0].Field != types.FieldZone {
		t.Fatalf("expected one zone pending, got %+v", pending)
	}
	if pending[0].OldValue != "Cocody" || pending[0].NewValue != "Yopougon" {
		t.Fatalf("unexpected pending values: %+v", pending[0])
	}
	if pending[0].CandidateZone == nil || pending[0].CandidateZone.Name != "Yopougon" {
		t.Fatalf("missing zone candidate: %+v", pending[0])
	}
}

func TestReconcileSameZoneIsNotAContradiction(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Zone: collectedZone("Cocody", 1500)}
	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		ZoneMention: &ZonePayload{Name: "Cocody", Cost: 1500, Category: types.ZoneLocal},
	})
	if len(pending) != 0 || fields.Zone.Name != "Cocody" {
		t.Fatalf("restating the same zone must be silent: %+v %+v", fields.Zone, pending)
	}
}

func TestReconcilePendingFieldRejectsAutomaticUpdates(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Zone: collectedZone("Cocody", 1500)}
	open := []types.PendingConfirmation{{
		Field: types.FieldZone, OldValue: "Cocody", NewValue: "Yopougon",
		CandidateZone: &types.ZoneField{Collected: true, Valid: true, Name: "Yopougon", Cost: 1500, Category: types.ZoneLocal},
	}}

	fields, pending := Reconcile(log, prev, open, AggregateResult{
		ZoneMention: &ZonePayload{Name: "Abobo", Cost: 2000, Category: types.ZoneLocal},
	})
	if fields.Zone.Name != "Cocody" {
		t.Fatalf("zone changed while a confirmation is open: %+v", fields.Zone)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the open pending only, got %+v", pending)
	}
}

func TestReconcilePhotoSupersedes(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Photo: types.PhotoField{Collected: true, Description: "bag, leather", Provenance: types.ProvenancePersisted}}

	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PhotoAttempt: &PhotoPayload{Description: "shoe, footwear", Product: "chaussures"},
	})
	if fields.Photo.Description != "shoe, footwear" {
		t.Fatalf("new qualifying photo must supersede: %+v", fields.Photo)
	}
	if fields.Product.Name != "chaussures" {
		t.Fatalf("product must follow the photo: %+v", fields.Product)
	}
	if len(pending) != 0 {
		t.Fatalf("photo supersede must be silent, got %+v", pending)
	}
}

func TestReconcileFailedPhotoAttemptChangesNothing(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Photo: types.PhotoField{Collected: true, Description: "bag, leather"}}
	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PhotoAttempt: &PhotoPayload{ErrorSubtype: types.PhotoErrTooSmall},
	})
	if fields.Photo.Description != "bag, leather" || len(pending) != 0 {
		t.Fatalf("failed attempt must not touch state: %+v %+v", fields.Photo, pending)
	}
}

func TestReconcilePaymentTolerance(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Payment: types.PaymentField{Collected: true, Amount: 2000, Currency: "XOF", Provenance: types.ProvenanceOCR}}

	// OCR jitter within tolerance is the same payment.
	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PaymentAttempt: &PaymentPayload{Amount: 2025, Currency: "XOF", Recipient: "0787360757"},
	})
	if fields.Payment.Amount != 2000 || len(pending) != 0 {
		t.Fatalf("amount within tolerance must be silent: %+v %+v", fields.Payment, pending)
	}

	// A genuinely different amount is a contradiction.
	fields, pending = Reconcile(log, prev, nil, AggregateResult{
		PaymentAttempt: &PaymentPayload{Amount: 5000, Currency: "XOF", Recipient: "0787360757"},
	})
	if fields.Payment.Amount != 2000 {
		t.Fatalf("payment overwritten without confirmation: %+v", fields.Payment)
	}
	if len(pending) != 1 || pending[0].Field != types.FieldPayment || pending[0].CandidatePayment == nil {
		t.Fatalf("expected payment pending, got %+v", pending)
	}
}

func TestReconcileInvalidPhoneCorrectedSilently(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Phone: types.PhoneField{Collected: true, Valid: false, Number: "078736075", Error: types.PhoneErrTooShort}}

	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PhoneMention: &PhonePayload{Number: "0787360757", Valid: true},
	})
	if !fields.Phone.Valid || fields.Phone.Number != "0787360757" {
		t.Fatalf("correcting an invalid phone must apply silently: %+v", fields.Phone)
	}
	if len(pending) != 0 {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}

func TestReconcileValidPhoneContradiction(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Phone: types.PhoneField{Collected: true, Valid: true, Number: "0787360757"}}

	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PhoneMention: &PhonePayload{Number: "0103040506", Valid: true},
	})
	if fields.Phone.Number != "0787360757" {
		t.Fatalf("phone overwritten without confirmation: %+v", fields.Phone)
	}
	if len(pending) != 1 || pending[0].Field != types.FieldPhone {
		t.Fatalf("expected phone pending, got %+v", pending)
	}
}

func TestReconcileInvalidPhoneNeverDisplacesValid(t *testing.T) {
	log := testLogger(t)
	prev := types.OrderFields{Phone: types.PhoneField{Collected: true, Valid: true, Number: "0787360757"}}

	fields, pending := Reconcile(log, prev, nil, AggregateResult{
		PhoneMention: &PhonePayload{Number: "078736", Valid: false, ErrorSubtype: types.PhoneErrTooShort},
	})
	if fields.Phone.Number != "0787360757" || len(pending) != 0 {
		t.Fatalf("invalid candidate must be ignored: %+v %+v", fields.Phone, pending)
	}
}
