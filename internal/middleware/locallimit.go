package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/iliyamo/radical-ticket/internal/config"
)

// localLimiter keeps one token bucket per key in process memory.  Entries
// idle for longer than ttl are dropped on the next sweep.
type localLimiter struct {
	cfg      config.RateLimitConfig
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
	swept    time.Time
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLocalLimiter is the single-node counterpart of NewTokenBucket, used
// when no Redis server is reachable.  Limits apply per process.
func NewLocalLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return newLocalLimiter(cfg, time.Now).middleware
}

func newLocalLimiter(cfg config.RateLimitConfig, now func() time.Time) *localLimiter {
	return &localLimiter{cfg: cfg, now: now, visitors: make(map[string]*visitor), swept: now()}
}

func (l *localLimiter) allow(key string) (bool, float64) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.cfg.TTL {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > l.cfg.TTL {
				delete(l.visitors, k)
			}
		}
		l.swept = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := l.cfg.RefillInterval / time.Duration(l.cfg.RefillTokens)
		v = &visitor{lim: rate.NewLimiter(rate.Every(every), l.cfg.Capacity)}
		l.visitors[key] = v
	}
	v.seen = now
	ok = v.lim.AllowN(now, 1)
	return ok, v.lim.TokensAt(now)
}

func (l *localLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, remaining := l.allow(buildRateKey(l.cfg, c))
		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, int(remaining))))
		if !ok {
			h.Set("Retry-After", strconv.Itoa(int(l.cfg.RefillInterval.Round(time.Second)/time.Second)))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":   "too_many_requests",
				"message": "rate limit exceeded",
			})
		}
		return next(c)
	}
}
