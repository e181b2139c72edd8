package steps

import (
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

// VisionSignal is the caption output for an inbound image this turn, already
// normalized by the signal-extraction service. A nil signal means no image or
// the caption call failed; either way it simply contributes nothing.
type VisionSignal struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	TextInImage string  `json:"text_in_image,omitempty"`
	// ErrorCode: "too_small" | "unsupported_format".
	ErrorCode string `json:"error_code,omitempty"`
}

// OCRSignal is the payment-receipt reading for an inbound image this turn.
type OCRSignal struct {
	Amount    *int   `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Valid     bool   `json:"valid"`
	// ErrorCode: "empty" | "unreadable".
	ErrorCode string `json:"error_code,omitempty"`
}

type TriggerCategory string

const (
	TriggerPhoto             TriggerCategory = "photo"
	TriggerPayment           TriggerCategory = "payment"
	TriggerZone              TriggerCategory = "zone"
	TriggerPhoneIntermediate TriggerCategory = "phone_intermediate"
	TriggerPhoneFinal        TriggerCategory = "phone_final"
	TriggerCompletion        TriggerCategory = "completion"
	TriggerConfirmation      TriggerCategory = "confirmation"
	TriggerNone              TriggerCategory = "none"
)

type PhotoPayload struct {
	Description  string                  `json:"description,omitempty"`
	Product      string                  `json:"product,omitempty"`
	ErrorSubtype types.PhotoErrorSubtype `json:"error_subtype,omitempty"`
}

type PaymentPayload struct {
	Amount       int                       `json:"amount,omitempty"`
	Currency     string                    `json:"currency,omitempty"`
	Recipient    string                    `json:"recipient,omitempty"`
	ErrorSubtype types.PaymentErrorSubtype `json:"error_subtype,omitempty"`
}

type ZonePayload struct {
	Name             string             `json:"name"`
	Cost             int                `json:"cost"`
	Category         types.ZoneCategory `json:"category"`
	DeliveryEstimate string             `json:"delivery_estimate,omitempty"`
}

type PhonePayload struct {
	Number       string                  `json:"number"`
	Valid        bool                    `json:"valid"`
	ErrorSubtype types.PhoneErrorSubtype `json:"error_subtype,omitempty"`
}

// TriggerResult carries exactly one active category per turn; the payload
// pointer matching Category is set, all others are nil.
type TriggerResult struct {
	Triggered bool            `json:"triggered"`
	Category  TriggerCategory `json:"category"`

	Photo   *PhotoPayload   `json:"photo,omitempty"`
	Payment *PaymentPayload `json:"payment,omitempty"`
	Zone    *ZonePayload    `json:"zone,omitempty"`
	Phone   *PhonePayload   `json:"phone,omitempty"`
}

// AggregateResult is the merged field state this turn plus the turn-local
// attempts, kept separately so the trigger classifier can tell "collected
// long ago" from "just arrived" and so failed attempts still produce precise
// correction replies.
type AggregateResult struct {
	Fields types.OrderFields

	PhotoAttempt   *PhotoPayload
	PaymentAttempt *PaymentPayload
	ZoneMention    *ZonePayload
	PhoneMention   *PhonePayload
}

// SnapshotData is the immutable completion record in memory, before the
// persistence layer writes it.
type SnapshotData struct {
	PhotoDescription string             `json:"photo_description"`
	ProductName      string             `json:"product_name,omitempty"`
	Amount           int                `json:"amount"`
	Currency         string             `json:"currency"`
	ZoneName         string             `json:"zone_name"`
	ZoneCost         int                `json:"zone_cost"`
	ZoneCategory     types.ZoneCategory `json:"zone_category"`
	Phone            string             `json:"phone"`
	DeliveryEstimate string             `json:"delivery_estimate,omitempty"`
}

type ReplySource string

const (
	SourceDeterministic ReplySource = "deterministic"
	SourceLLM           ReplySource = "llm"
	SourceFallback      ReplySource = "fallback"
)

// TurnInput is everything the orchestrator needs for one customer turn:
// the raw message, this turn's extracted signals, and the rehydrated state.
type TurnInput struct {
	MessageText string
	Vision      *VisionSignal
	OCR         *OCRSignal

	Status  types.ConversationStatus
	Fields  types.OrderFields
	Pending []types.PendingConfirmation

	HasSnapshot bool
}

// TurnOutput is the full result of one turn: the reply to send, the state to
// persist, and the snapshot when this turn completed the order.
type TurnOutput struct {
	ReplyText string
	Source    ReplySource
	Trigger   TriggerResult

	Status  types.ConversationStatus
	Fields  types.OrderFields
	Pending []types.PendingConfirmation

	Snapshot  *SnapshotData
	Checklist Checklist
}
