package gcp

import "testing"

func TestParseReceiptText(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		amount    int
		recipient string
		valid     bool
		errorCode string
	}{
		{
			name:      "wave transfer",
			text:      "Transfert réussi 2 000F à 0787360757 le 12/08",
			amount:    2000,
			recipient: "0787360757",
			valid:     true,
		},
		{
			name:   "orange money fcfa",
			text:   "Vous avez envoyé 1500 FCFA. Nouveau solde: 4500 FCFA",
			amount: 1500,
			valid:  true,
		},
		{
			name:      "no amount",
			text:      "Capture d'écran du menu principal",
			errorCode: "unreadable",
		},
		{
			name:      "empty",
			text:      "   ",
			errorCode: "empty",
		},
		{
			name:   "dotted thousands",
			text:   "Montant: 10.000 XOF",
			amount: 10000,
			valid:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &ReceiptResult{PrimaryText: tc.text, Currency: "XOF"}
			ParseReceiptText(out)

			if tc.valid != out.Valid {
				t.Fatalf("valid=%v want %v", out.Valid, tc.valid)
			}
			if tc.errorCode != out.ErrorCode {
				t.Fatalf("error_code=%q want %q", out.ErrorCode, tc.errorCode)
			}
			if tc.amount > 0 {
				if out.Amount == nil || *out.Amount != tc.amount {
					t.Fatalf("amount=%v want %d", out.Amount, tc.amount)
				}
			}
			if tc.recipient != "" && out.Recipient != tc.recipient {
				t.Fatalf("recipient=%q want %q", out.Recipient, tc.recipient)
			}
		})
	}
}
