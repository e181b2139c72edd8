package steps

import (
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

// ClassifyTrigger picks exactly one category for the turn. The ordering is
// load-bearing: a single turn can carry several candidate signals (a photo
// whose caption mentions a zone), and the first match wins.
func ClassifyTrigger(fields types.OrderFields, pending []types.PendingConfirmation, agg AggregateResult, completed bool) TriggerResult {
	if completed {
		return TriggerResult{Triggered: true, Category: TriggerCompletion}
	}

	if len(pending) > 0 {
		return TriggerResult{Triggered: true, Category: TriggerConfirmation}
	}

	if a := agg.PhotoAttempt; a != nil && a.ErrorSubtype == "" {
		return TriggerResult{Triggered: true, Category: TriggerPhoto, Photo: a}
	}
	if a := agg.PaymentAttempt; a != nil && a.ErrorSubtype == "" {
		return TriggerResult{Triggered: true, Category: TriggerPayment, Payment: a}
	}
	if a := agg.PhotoAttempt; a != nil {
		return TriggerResult{Triggered: true, Category: TriggerPhoto, Photo: a}
	}
	if a := agg.PaymentAttempt; a != nil {
		return TriggerResult{Triggered: true, Category: TriggerPayment, Payment: a}
	}

	if z := agg.ZoneMention; z != nil {
		return TriggerResult{Triggered: true, Category: TriggerZone, Zone: z}
	}

	if p := agg.PhoneMention; p != nil {
		category := TriggerPhoneIntermediate
		if phoneIsLastMissing(fields) {
			category = TriggerPhoneFinal
		}
		return TriggerResult{Triggered: true, Category: category, Phone: p}
	}

	return TriggerResult{Triggered: false, Category: TriggerNone}
}

// phoneIsLastMissing reports whether every required field except the phone is
// already satisfied.
func phoneIsLastMissing(fields types.OrderFields) bool {
	for _, name := range fields.Missing() {
		if name != types.FieldPhone {
			return false
		}
	}
	return true
}
