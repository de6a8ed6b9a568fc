package httpx

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// IsRetryableStatus reports whether an upstream status is worth another try.
func IsRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// ParseRetryAfter reads a delta-seconds Retry-After value. Dates and garbage yield 0.
func ParseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Jitter spreads base uniformly over [base-frac*base, base+frac*base].
func Jitter(base time.Duration, frac float64) time.Duration {
	if base <= 0 {
		return 0
	}
	if frac <= 0 {
		return base
	}
	delta := float64(base) * frac
	v := float64(base) - delta + rand.Float64()*2*delta
	if v < 0 {
		v = 0
	}
	return time.Duration(v)
}
