package order

// PendingConfirmation is raised when a collected field receives a
// contradictory new observation. The previous value stays authoritative until
// the customer answers yes or no; while one is open, automatic updates for
// that field are ignored.
type PendingConfirmation struct {
	Field    FieldName `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`

	// Typed candidate to apply on an affirmative answer. Exactly one is set,
	// matching Field.
	CandidateZone    *ZoneField    `json:"candidate_zone,omitempty"`
	CandidatePhone   *PhoneField   `json:"candidate_phone,omitempty"`
	CandidatePayment *PaymentField `json:"candidate_payment,omitempty"`
}

// HasPending reports whether a confirmation is open for the named field.
func HasPending(pending []PendingConfirmation, field FieldName) bool {
	for _, p := range pending {
		if p.Field == field {
			return true
		}
	}
	return false
}
