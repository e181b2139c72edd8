package steps

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

// Checklist is the dual rendering of field status handed to the language
// model on every delegated turn: a short human-readable bullet list for the
// prompt body and a machine snapshot declared as the sole source of truth,
// so the model never infers field status from conversation history.
type Checklist struct {
	Human   string `json:"human"`
	Machine string `json:"machine"`
}

type machineChecklist struct {
	Fields   types.OrderFields           `json:"fields"`
	Missing  []types.FieldName           `json:"missing"`
	Pending  []types.PendingConfirmation `json:"pending,omitempty"`
	Complete bool                        `json:"complete"`
}

var fieldLabels = map[types.FieldName]string{
	types.FieldPhoto:   "photo de l'article",
	types.FieldPayment: "paiement",
	types.FieldZone:    "zone de livraison",
	types.FieldPhone:   "numéro de téléphone",
	types.FieldProduct: "article",
}

// FieldLabel is the customer-facing French name of a field.
func FieldLabel(name types.FieldName) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return string(name)
}

// BuildChecklist renders both views from the same reconciled state.
func BuildChecklist(fields types.OrderFields, pending []types.PendingConfirmation) Checklist {
	var b strings.Builder
	for _, name := range types.RequiredFields() {
		if fields.FieldCollected(name) {
			fmt.Fprintf(&b, "- %s : reçu (%s)\n", FieldLabel(name), fields.DisplayValue(name))
			continue
		}
		if name == types.FieldPhone && fields.Phone.Collected && !fields.Phone.Valid {
			fmt.Fprintf(&b, "- %s : invalide (%s, %s)\n", FieldLabel(name), fields.Phone.Number, phoneErrorLabel(fields.Phone.Error))
			continue
		}
		fmt.Fprintf(&b, "- %s : manquant\n", FieldLabel(name))
	}
	for _, p := range pending {
		fmt.Fprintf(&b, "- à confirmer : %s (%s ou %s ?)\n", FieldLabel(p.Field), p.OldValue, p.NewValue)
	}

	snapshot := machineChecklist{
		Fields:   fields,
		Missing:  fields.Missing(),
		Pending:  pending,
		Complete: fields.Complete(),
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		raw = []byte(`{"complete":false}`)
	}

	return Checklist{Human: strings.TrimRight(b.String(), "\n"), Machine: string(raw)}
}

func phoneErrorLabel(subtype types.PhoneErrorSubtype) string {
	switch subtype {
	case types.PhoneErrTooShort:
		return "trop court"
	case types.PhoneErrTooLong:
		return "trop long"
	case types.PhoneErrWrongPrefix:
		return "préfixe inconnu"
	default:
		return "format incorrect"
	}
}
