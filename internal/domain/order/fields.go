package order

import "fmt"

// FieldName is the closed set of order attributes tracked per conversation.
// Four are required for completion; product is tracked for the recap only.
type FieldName string

const (
	FieldPhoto   FieldName = "photo"
	FieldPayment FieldName = "payment"
	FieldZone    FieldName = "zone"
	FieldPhone   FieldName = "phone"
	FieldProduct FieldName = "product"
)

// RequiredFields returns the fields needed for completion, in the order the
// bot asks for them.
func RequiredFields() []FieldName {
	return []FieldName{FieldPhoto, FieldPayment, FieldZone, FieldPhone}
}

// Provenance records which source produced the current value of a field.
// Precedence (low to high): vision/ocr < regex < persisted.
type Provenance string

const (
	ProvenanceVision    Provenance = "vision"
	ProvenanceOCR       Provenance = "ocr"
	ProvenanceRegex     Provenance = "regex"
	ProvenancePersisted Provenance = "persisted"
)

type ZoneCategory string

const (
	ZoneLocal  ZoneCategory = "local"
	ZoneRemote ZoneCategory = "remote"
)

type PhoneErrorSubtype string

const (
	PhoneErrNone        PhoneErrorSubtype = ""
	PhoneErrTooShort    PhoneErrorSubtype = "too_short"
	PhoneErrTooLong     PhoneErrorSubtype = "too_long"
	PhoneErrWrongPrefix PhoneErrorSubtype = "wrong_prefix"
)

type PhotoErrorSubtype string

const (
	PhotoErrTooSmall          PhotoErrorSubtype = "too_small"
	PhotoErrAmbiguousCaption  PhotoErrorSubtype = "ambiguous_caption"
	PhotoErrUnsupportedFormat PhotoErrorSubtype = "unsupported_format"
)

type PaymentErrorSubtype string

const (
	PaymentErrMissingRecipient PaymentErrorSubtype = "missing_recipient"
	PaymentErrUnreadable       PaymentErrorSubtype = "unreadable"
	PaymentErrEmpty            PaymentErrorSubtype = "empty"
)

type PhotoField struct {
	Collected   bool       `json:"collected"`
	Description string     `json:"description,omitempty"`
	Provenance  Provenance `json:"provenance,omitempty"`
}

type PaymentField struct {
	Collected  bool       `json:"collected"`
	Amount     int        `json:"amount,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

type ZoneField struct {
	Collected  bool         `json:"collected"`
	Valid      bool         `json:"valid"`
	Name       string       `json:"name,omitempty"`
	Cost       int          `json:"cost,omitempty"`
	Category   ZoneCategory `json:"category,omitempty"`
	Provenance Provenance   `json:"provenance,omitempty"`
}

type PhoneField struct {
	Collected  bool              `json:"collected"`
	Valid      bool              `json:"valid"`
	Number     string            `json:"number,omitempty"`
	Error      PhoneErrorSubtype `json:"error,omitempty"`
	Provenance Provenance        `json:"provenance,omitempty"`
}

type ProductField struct {
	Collected  bool       `json:"collected"`
	Name       string     `json:"name,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// OrderFields is the canonical per-conversation field state. One explicit
// record per field; no map keys to typo.
type OrderFields struct {
	Photo   PhotoField   `json:"photo"`
	Payment PaymentField `json:"payment"`
	Zone    ZoneField    `json:"zone"`
	Phone   PhoneField   `json:"phone"`
	Product ProductField `json:"product"`
}

// FieldCollected reports whether the named required field is satisfied.
// Phone must also be valid; a collected-but-invalid phone still needs a
// corrected answer from the customer.
func (f OrderFields) FieldCollected(name FieldName) bool {
	switch name {
	case FieldPhoto:
		return f.Photo.Collected
	case FieldPayment:
		return f.Payment.Collected
	case FieldZone:
		return f.Zone.Collected
	case FieldPhone:
		return f.Phone.Collected && f.Phone.Valid
	case FieldProduct:
		return f.Product.Collected
	default:
		return false
	}
}

// Missing lists the required fields not yet satisfied, in asking order.
func (f OrderFields) Missing() []FieldName {
	var out []FieldName
	for _, name := range RequiredFields() {
		if !f.FieldCollected(name) {
			out = append(out, name)
		}
	}
	return out
}

// Complete reports whether every required field is collected and valid.
func (f OrderFields) Complete() bool {
	return len(f.Missing()) == 0
}

// DisplayValue renders the current value of a field for confirmation
// questions and the checklist.
func (f OrderFields) DisplayValue(name FieldName) string {
	switch name {
	case FieldPhoto:
		return f.Photo.Description
	case FieldPayment:
		if !f.Payment.Collected {
			return ""
		}
		cur := f.Payment.Currency
		if cur == "" {
			cur = "FCFA"
		}
		return fmt.Sprintf("%d %s", f.Payment.Amount, cur)
	case FieldZone:
		return f.Zone.Name
	case FieldPhone:
		return f.Phone.Number
	case FieldProduct:
		return f.Product.Name
	default:
		return ""
	}
}
