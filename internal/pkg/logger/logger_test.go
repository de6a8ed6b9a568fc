package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"password", "hunter22",
		"attempt_id", "a-1",
	})
	if len(out) != 6 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("secrets not redacted: %v", out)
	}
	if out[5] != "a-1" {
		t.Fatalf("attempt_id should pass through, got %v", out[5])
	}
}

func TestSanitizeKVsHashesUserID(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "7f0c"})
	got, ok := out[1].(string)
	if !ok || len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("user_id not hashed: %v", out[1])
	}
	again := sanitizeKVs([]interface{}{"user_id", "7f0c"})
	if again[1] != got {
		t.Fatalf("hash must be stable: %v vs %v", again[1], got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"status", 200, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1.eyJzdWIiOiIxMjM0NTY3.sig") {
		t.Fatalf("expected jwt-shaped string to be detected")
	}
	if looksLikeJWT("a.b.c") {
		t.Fatalf("short dotted string is not a jwt")
	}
}
