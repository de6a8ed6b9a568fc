package utils

import (
	"testing"
	"time"
)

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("EG_TEST_DURATION", "45s")
	if got := GetEnvAsDuration("EG_TEST_DURATION", time.Second, nil); got != 45*time.Second {
		t.Fatalf("got %v want 45s", got)
	}
	t.Setenv("EG_TEST_DURATION", "90")
	if got := GetEnvAsDuration("EG_TEST_DURATION", time.Second, nil); got != 90*time.Second {
		t.Fatalf("bare seconds: got %v want 90s", got)
	}
	t.Setenv("EG_TEST_DURATION", "soon")
	if got := GetEnvAsDuration("EG_TEST_DURATION", time.Minute, nil); got != time.Minute {
		t.Fatalf("bad value should fall back: got %v", got)
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("EG_TEST_INT", "x")
	if got := GetEnvAsInt("EG_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("got %d want 7", got)
	}
	t.Setenv("EG_TEST_BOOL", "true")
	if !GetEnvAsBool("EG_TEST_BOOL", false, nil) {
		t.Fatalf("expected true")
	}
	t.Setenv("EG_TEST_STR", "  ")
	if got := GetEnv("EG_TEST_STR", "def", nil); got != "def" {
		t.Fatalf("blank value should use default, got %q", got)
	}
	if got := GetEnvAsFloat("EG_TEST_MISSING_FLOAT", 0.7, nil); got != 0.7 {
		t.Fatalf("got %v want 0.7", got)
	}
}
