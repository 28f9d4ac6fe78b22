package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter ограничивает число запросов с одного адреса в фиксированном окне.
// Используется для публичных endpoints: вход, регистрация и guardian ссылки.
type RateLimiter struct {
	logger *slog.Logger
	// OnReject вызывается для каждого отклоненного запроса, если задан
	OnReject func(r *http.Request)

	windows map[string]*window
	done    chan struct{}
	limit   int
	period  time.Duration
	mu      sync.Mutex
	stop    sync.Once
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter allows limit requests per key in every period.
// A background goroutine evicts idle keys until Stop is called.
func NewRateLimiter(limit int, period time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		logger:  logger,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
		limit:   limit,
		period:  period,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(2 * rl.period)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.Sub(w.start) > 2*rl.period {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop is safe to call more than once
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

// Allow consumes one request of key's current window
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Middleware отвечает 429 с Retry-After, когда окно адреса исчерпано
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)
		if rl.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("ip", ip),
			slog.String("method", r.Method),
			slog.String("path", sanitizePath(r.URL.Path)),
		)
		if rl.OnReject != nil {
			rl.OnReject(r)
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(rl.period.Seconds())))
		writeError(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
	})
}

// getClientIP берет адрес клиента с учетом прокси: X-Forwarded-For, затем X-Real-IP
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
