package twilio

import (
	"net/url"
	"testing"
)

func TestComputeSignature(t *testing.T) {
	// Request parameters from Twilio's security documentation, signed with a
	// fixed test token.
	form := url.Values{}
	form.Set("CallSid", "CA1234567890ABCDE")
	form.Set("Caller", "+12349013030")
	form.Set("Digits", "1234")
	form.Set("From", "+12349013030")
	form.Set("To", "+18005551212")

	got := ComputeSignature(
		"12345",
		"https://mycompany.com/myapp.php?foo=1&bar=2",
		form,
	)
	want := "0/KCTR6DLpKmkAf8muzZqo1nDgQ="
	if got != want {
		t.Fatalf("signature=%q want %q", got, want)
	}
}

func TestValidateSignature(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+2250787360757")
	form.Set("Body", "Cocody")

	fullURL := "https://bot.example.com/webhooks/twilio"
	sig := ComputeSignature("token", fullURL, form)

	if !ValidateSignature("token", fullURL, form, sig) {
		t.Fatalf("valid signature rejected")
	}
	if ValidateSignature("token", fullURL, form, sig+"x") {
		t.Fatalf("tampered signature accepted")
	}
	if ValidateSignature("other", fullURL, form, sig) {
		t.Fatalf("wrong token accepted")
	}
	if ValidateSignature("", fullURL, form, sig) {
		t.Fatalf("empty token accepted")
	}
}
