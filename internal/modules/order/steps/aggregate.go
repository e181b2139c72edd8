package steps

import (
	"time"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type AggregateDeps struct {
	Log     *logger.Logger
	Catalog *catalog.Catalog
	Now     func() time.Time
}

// Aggregate evaluates this turn's raw signals against the rehydrated state
// and produces the turn-local candidates. It never mutates the persisted
// fields; Reconcile decides what actually applies. A source that errored or
// is absent simply contributes nothing.
func Aggregate(deps AggregateDeps, in TurnInput) AggregateResult {
	out := AggregateResult{Fields: in.Fields}

	out.PhotoAttempt, out.PaymentAttempt = classifyImage(deps, in)

	if z := deps.Catalog.MatchZone(in.MessageText); z != nil {
		out.ZoneMention = &ZonePayload{
			Name:             z.Name,
			Cost:             z.Cost,
			Category:         z.Category,
			DeliveryEstimate: deps.Catalog.DeliveryEstimate(*z, deps.Now()),
		}
		deps.Log.Debug("Zone mention detected",
			"zone", z.Name,
			"category", string(z.Category),
		)
	}

	if digits, ok := ExtractPhoneCandidate(in.MessageText); ok {
		valid, subtype := ValidatePhone(digits)
		out.PhoneMention = &PhonePayload{Number: digits, Valid: valid, ErrorSubtype: subtype}
		deps.Log.Debug("Phone candidate detected", "phone", digits, "valid", valid)
	}

	return out
}

// classifyImage decides whether this turn's image is a product photo, a
// payment screenshot, or a failed attempt at either. A caption on the
// screenshot exclusion list routes the image to the payment path even when
// the OCR read failed, so the correction message talks about the receipt and
// not the product.
func classifyImage(deps AggregateDeps, in TurnInput) (*PhotoPayload, *PaymentPayload) {
	var photo *PhotoPayload
	var payment *PaymentPayload

	screenshot := in.Vision != nil && catalog.LooksLikeScreenshot(in.Vision.Description)

	if in.OCR != nil {
		switch {
		case in.OCR.Valid && in.OCR.Amount != nil && *in.OCR.Amount > 0:
			if in.OCR.Recipient == "" {
				payment = &PaymentPayload{
					Amount:       *in.OCR.Amount,
					Currency:     currencyOrDefault(in.OCR.Currency),
					ErrorSubtype: types.PaymentErrMissingRecipient,
				}
			} else {
				payment = &PaymentPayload{
					Amount:    *in.OCR.Amount,
					Currency:  currencyOrDefault(in.OCR.Currency),
					Recipient: in.OCR.Recipient,
				}
			}
		case screenshot && in.OCR.ErrorCode == "empty":
			payment = &PaymentPayload{ErrorSubtype: types.PaymentErrEmpty}
		case screenshot:
			payment = &PaymentPayload{ErrorSubtype: types.PaymentErrUnreadable}
		}
	}

	if in.Vision != nil && payment == nil && !screenshot {
		switch in.Vision.ErrorCode {
		case "too_small":
			photo = &PhotoPayload{ErrorSubtype: types.PhotoErrTooSmall}
		case "unsupported_format":
			photo = &PhotoPayload{ErrorSubtype: types.PhotoErrUnsupportedFormat}
		default:
			if product := catalog.MatchProduct(in.Vision.Description); product != "" {
				photo = &PhotoPayload{Description: in.Vision.Description, Product: product}
			} else if in.Vision.Description != "" {
				photo = &PhotoPayload{Description: in.Vision.Description, ErrorSubtype: types.PhotoErrAmbiguousCaption}
			}
		}
	}

	if photo != nil {
		deps.Log.Debug("Photo attempt",
			"product", photo.Product,
			"error_subtype", string(photo.ErrorSubtype),
		)
	}
	if payment != nil {
		deps.Log.Debug("Payment attempt",
			"amount", payment.Amount,
			"error_subtype", string(payment.ErrorSubtype),
		)
	}
	return photo, payment
}

func currencyOrDefault(cur string) string {
	if cur == "" {
		return "XOF"
	}
	return cur
}
