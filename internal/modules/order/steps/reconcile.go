package steps

import (
	"fmt"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// OCR reads of the same receipt jitter by a few francs; amounts this close
// count as the same payment.
const paymentAmountTolerance = 50

// Reconcile merges this turn's candidates into the persisted field state.
// First-time collections and consistent refinements apply silently; a
// genuine contradiction on a collected field raises a PendingConfirmation and
// keeps the previous value authoritative. Fields with an open confirmation
// accept no automatic updates until the customer answers.
func Reconcile(log *logger.Logger, prev types.OrderFields, pending []types.PendingConfirmation, agg AggregateResult) (types.OrderFields, []types.PendingConfirmation) {
	fields := prev
	out := append([]types.PendingConfirmation{}, pending...)

	// Photo: a qualifying new caption supersedes a stale one. Caption text is
	// never byte-identical across shots, so inequality here is not a
	// contradiction; the newest clear product photo is the one the customer
	// wants.
	if a := agg.PhotoAttempt; a != nil && a.ErrorSubtype == "" && !types.HasPending(pending, types.FieldPhoto) {
		if fields.Photo.Collected {
			log.Info("Photo superseded", "product", a.Product)
		}
		fields.Photo = types.PhotoField{
			Collected:   true,
			Description: a.Description,
			Provenance:  types.ProvenanceVision,
		}
		if a.Product != "" {
			fields.Product = types.ProductField{
				Collected:  true,
				Name:       a.Product,
				Provenance: types.ProvenanceVision,
			}
		}
	}

	if a := agg.PaymentAttempt; a != nil && a.ErrorSubtype == "" && !types.HasPending(pending, types.FieldPayment) {
		switch {
		case !fields.Payment.Collected:
			fields.Payment = types.PaymentField{
				Collected:  true,
				Amount:     a.Amount,
				Currency:   a.Currency,
				Provenance: types.ProvenanceOCR,
			}
		case amountsEqual(fields.Payment.Amount, a.Amount):
			// Same receipt re-read; keep the collected value.
		default:
			out = append(out, types.PendingConfirmation{
				Field:    types.FieldPayment,
				OldValue: fields.DisplayValue(types.FieldPayment),
				NewValue: paymentDisplay(a.Amount, a.Currency),
				CandidatePayment: &types.PaymentField{
					Collected:  true,
					Amount:     a.Amount,
					Currency:   a.Currency,
					Provenance: types.ProvenanceOCR,
				},
			})
			log.Info("Payment contradiction",
				"old_amount", fields.Payment.Amount,
				"new_amount", a.Amount,
			)
		}
	}

	if z := agg.ZoneMention; z != nil && !types.HasPending(pending, types.FieldZone) {
		switch {
		case !fields.Zone.Collected:
			fields.Zone = types.ZoneField{
				Collected:  true,
				Valid:      true,
				Name:       z.Name,
				Cost:       z.Cost,
				Category:   z.Category,
				Provenance: types.ProvenanceRegex,
			}
		case fields.Zone.Name == z.Name:
			// Restating the same zone is not a change.
		default:
			out = append(out, types.PendingConfirmation{
				Field:    types.FieldZone,
				OldValue: fields.Zone.Name,
				NewValue: z.Name,
				CandidateZone: &types.ZoneField{
					Collected:  true,
					Valid:      true,
					Name:       z.Name,
					Cost:       z.Cost,
					Category:   z.Category,
					Provenance: types.ProvenanceRegex,
				},
			})
			log.Info("Zone contradiction", "old_zone", fields.Zone.Name, "new_zone", z.Name)
		}
	}

	if p := agg.PhoneMention; p != nil && !types.HasPending(pending, types.FieldPhone) {
		switch {
		case !fields.Phone.Collected,
			// Correcting an invalid number is a refinement, not a conflict.
			!fields.Phone.Valid && p.Valid:
			fields.Phone = types.PhoneField{
				Collected:  true,
				Valid:      p.Valid,
				Number:     p.Number,
				Error:      p.ErrorSubtype,
				Provenance: types.ProvenanceRegex,
			}
		case fields.Phone.Number == p.Number:
			// Same number again.
		case p.Valid:
			out = append(out, types.PendingConfirmation{
				Field:    types.FieldPhone,
				OldValue: fields.Phone.Number,
				NewValue: p.Number,
				CandidatePhone: &types.PhoneField{
					Collected:  true,
					Valid:      true,
					Number:     p.Number,
					Provenance: types.ProvenanceRegex,
				},
			})
			log.Info("Phone contradiction", "phone", p.Number)
		default:
			// An invalid new number never displaces a valid collected one.
		}
	}

	return fields, out
}

func amountsEqual(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= paymentAmountTolerance
}

func paymentDisplay(amount int, currency string) string {
	if currency == "" || currency == "XOF" {
		currency = "FCFA"
	}
	return fmt.Sprintf("%d %s", amount, currency)
}
