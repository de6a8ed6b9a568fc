package httpx

import (
	"testing"
	"time"
)

func TestIsRetryableStatus(t *testing.T) {
	cases := map[int]bool{
		200: false, 400: false, 401: false, 404: false,
		408: true, 429: true, 500: true, 502: true, 503: true, 599: true,
	}
	for code, want := range cases {
		if got := IsRetryableStatus(code); got != want {
			t.Fatalf("IsRetryableStatus(%d)=%v want %v", code, got, want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := ParseRetryAfter(" 12 "); got != 12*time.Second {
		t.Fatalf("got %s", got)
	}
	for _, v := range []string{"", "0", "-3", "Wed, 21 Oct 2015 07:28:00 GMT"} {
		if got := ParseRetryAfter(v); got != 0 {
			t.Fatalf("ParseRetryAfter(%q)=%s want 0", v, got)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 200; i++ {
		got := Jitter(base, 0.2)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter out of bounds: %s", got)
		}
	}
	if Jitter(0, 0.2) != 0 || Jitter(base, 0) != base {
		t.Fatalf("degenerate inputs should pass through")
	}
}
