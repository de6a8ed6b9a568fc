package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

// RateLimitConfig allows Max requests per client IP over Window.
type RateLimitConfig struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
}

var (
	AuthRateLimit = RateLimitConfig{
		Name:    "auth",
		Window:  15 * time.Minute,
		Max:     10,
		Message: "Too many authentication attempts, please try again later.",
	}
	UploadRateLimit = RateLimitConfig{
		Name:    "upload",
		Window:  time.Hour,
		Max:     10,
		Message: "Upload limit exceeded, please try again later.",
	}
	GeneralRateLimit = RateLimitConfig{
		Name:    "general",
		Window:  15 * time.Minute,
		Max:     1000,
		Message: "API rate limit exceeded, please slow down your requests.",
	}
	AdminRateLimit = RateLimitConfig{
		Name:    "admin",
		Window:  15 * time.Minute,
		Max:     200,
		Message: "Admin API rate limit exceeded.",
	}
)

type RateLimitBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retry_after"`
	Type       string `json:"type"`
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimiter is a per-IP token bucket refilled at Max per Window.
type RateLimiter struct {
	cfg   RateLimitConfig
	log   *logger.Logger
	now   func() time.Time
	every rate.Limit

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func NewRateLimiter(log *logger.Logger, cfg RateLimitConfig) *RateLimiter {
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		log:     log.With("middleware", "RateLimiter", "limiter", cfg.Name),
		now:     time.Now,
		every:   rate.Every(cfg.Window / time.Duration(cfg.Max)),
		clients: map[string]*clientBucket{},
	}
}

// Handler returns the gin middleware. A nil limiter lets every request through.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := rl.now()
		res := rl.bucket(ip, now).ReserveN(now, 1)
		delay := res.DelayFrom(now)
		if !res.OK() || delay > 0 {
			res.CancelAt(now)
			retry := int(math.Ceil(delay.Seconds()))
			if !res.OK() || retry < 1 {
				retry = int(math.Ceil(rl.cfg.Window.Seconds()))
			}
			rl.log.Warn("Rate limit exceeded", "client_ip", ip, "path", c.FullPath())
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitBody{
				Error:      rl.cfg.Message,
				Code:       "rate_limited",
				RetryAfter: retry,
				Type:       "RATE_LIMIT_EXCEEDED",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) bucket(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// idle buckets are full again after one window and can be dropped
	if now.Sub(rl.lastSweep) > rl.cfg.Window {
		for k, b := range rl.clients {
			if now.Sub(b.seen) > rl.cfg.Window {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.every, rl.cfg.Max)}
		rl.clients[ip] = b
	}
	b.seen = now
	return b.limiter
}
