package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"relytailors-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Register / login (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Frontend-heavy apps
	limitFrontend = rate.Limit(20)
	burstFrontend = 40

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200

	visitorTTL = 3 * time.Minute
)

const authPathPrefix = "/api/auth/"

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	internalKey string

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter builds a limiter; internalKey is the X-Service-Auth secret
// that unlocks the internal tier (empty disables it).
func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

// Cleanup removes idle visitors every interval until ctx is done.
func (l *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.resolveRateTier(r)

		key := fmt.Sprintf("%s:%s", identity(r), tier)
		if !l.getVisitor(key, limit, burst).Allow() {
			utils.WriteJSONError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity prefers an authenticated user, then a client device id, then the
// remote IP. The user branch only applies where the limiter is mounted after
// Protect.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// resolveRateTier determines which rate limit policy applies to the request.
func (l *RateLimiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if strings.HasPrefix(r.URL.Path, authPathPrefix) {
		return limitStrict, burstStrict, "strict"
	}

	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return limitFrontend, burstFrontend, "frontend"
	}

	return limitGeneral, burstGeneral, "general"
}
