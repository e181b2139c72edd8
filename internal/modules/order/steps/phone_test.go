package steps

import (
	"testing"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		digits  string
		valid   bool
		subtype types.PhoneErrorSubtype
	}{
		{"0787360757", true, types.PhoneErrNone},
		{"0103040506", true, types.PhoneErrNone},
		{"2122334455", true, types.PhoneErrNone},
		{"2722334455", true, types.PhoneErrNone},
		{"078736075", false, types.PhoneErrTooShort},
		{"07873607571", false, types.PhoneErrTooLong},
		{"1787360757", false, types.PhoneErrWrongPrefix},
		{"0987360757", false, types.PhoneErrWrongPrefix},
	}
	for _, c := range cases {
		valid, subtype := ValidatePhone(c.digits)
		if valid != c.valid || subtype != c.subtype {
			t.Fatalf("ValidatePhone(%q): got valid=%v subtype=%q, want valid=%v subtype=%q",
				c.digits, valid, subtype, c.valid, c.subtype)
		}
	}
}

func TestExtractPhoneCandidate(t *testing.T) {
	cases := []struct {
		text   string
		digits string
		found  bool
	}{
		{"mon numéro 0787360757", "0787360757", true},
		{"c'est le 07 87 36 07 57 merci", "0787360757", true},
		{"07-87-36-07-57", "0787360757", true},
		{"+225 07 87 36 07 57", "0787360757", true},
		{"00225 0787360757", "0787360757", true},
		{"2 articles à 1500 FCFA", "", false},
		{"rien ici", "", false},
	}
	for _, c := range cases {
		digits, found := ExtractPhoneCandidate(c.text)
		if found != c.found || digits != c.digits {
			t.Fatalf("ExtractPhoneCandidate(%q): got %q/%v, want %q/%v",
				c.text, digits, found, c.digits, c.found)
		}
	}
}
