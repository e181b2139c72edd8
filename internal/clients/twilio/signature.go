package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// ComputeSignature builds the X-Twilio-Signature value for a form-encoded
// webhook request: HMAC-SHA1 over the full URL followed by every POST
// parameter name+value in lexicographic order, base64-encoded.
func ComputeSignature(authToken, fullURL string, form url.Values) string {
	var b strings.Builder
	b.WriteString(fullURL)

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature checks a webhook's X-Twilio-Signature header.
func ValidateSignature(authToken, fullURL string, form url.Values, signature string) bool {
	if strings.TrimSpace(authToken) == "" || strings.TrimSpace(signature) == "" {
		return false
	}
	expected := ComputeSignature(authToken, fullURL, form)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
