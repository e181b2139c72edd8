package steps

import (
	"regexp"
	"strings"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

// Ivorian numbering plan after the 2021 migration: 10 digits, prefix 01/05/07
// for mobile or 21/25/27 for fixed lines.
var mobilePrefixes = []string{"01", "05", "07"}
var fixedPrefixes = []string{"21", "25", "27"}

// A run of at least 8 digits, allowing the separators people actually type
// ("07 87 36 07 57", "07-87-36-07-57", "07.87.36.07.57").
var phoneRunRe = regexp.MustCompile(`\d[\d .\-]{6,}\d`)

var nonDigitRe = regexp.MustCompile(`\D`)

// ExtractPhoneCandidate finds the first phone-like digit run in free text and
// returns its bare digits. Short numbers (prices, quantities) never qualify.
func ExtractPhoneCandidate(text string) (string, bool) {
	for _, run := range phoneRunRe.FindAllString(text, -1) {
		digits := nonDigitRe.ReplaceAllString(run, "")
		if len(digits) < 8 {
			continue
		}
		// Strip an international prefix typed as +225 or 00225.
		if strings.HasPrefix(digits, "00225") && len(digits) > 10 {
			digits = digits[5:]
		} else if strings.HasPrefix(digits, "225") && len(digits) > 10 {
			digits = digits[3:]
		}
		return digits, true
	}
	return "", false
}

// ValidatePhone checks a bare digit string against the local numbering plan
// and names the exact defect so the reply can ask for a precise correction.
func ValidatePhone(digits string) (bool, types.PhoneErrorSubtype) {
	if len(digits) < 10 {
		return false, types.PhoneErrTooShort
	}
	if len(digits) > 10 {
		return false, types.PhoneErrTooLong
	}
	prefix := digits[:2]
	for _, p := range mobilePrefixes {
		if prefix == p {
			return true, types.PhoneErrNone
		}
	}
	for _, p := range fixedPrefixes {
		if prefix == p {
			return true, types.PhoneErrNone
		}
	}
	return false, types.PhoneErrWrongPrefix
}
