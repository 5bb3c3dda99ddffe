package modal

import "testing"

func TestVerifySignature(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"modelId":"m1","status":"Generated"}`)

	if !VerifySignature(secret, body, Sign(secret, body)) {
		t.Fatalf("valid signature rejected")
	}
	if VerifySignature(secret, body, "") {
		t.Fatalf("missing signature accepted")
	}
	if VerifySignature(secret, body, Sign("other-secret", body)) {
		t.Fatalf("signature under wrong secret accepted")
	}
	// The digest covers exact bytes; any body mutation invalidates it.
	if VerifySignature(secret, []byte(`{"modelId":"m1", "status":"Generated"}`), Sign(secret, body)) {
		t.Fatalf("signature accepted for altered body")
	}
}
