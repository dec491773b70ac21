package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"modpanel/apperrors"

	"golang.org/x/time/rate"
)

// minIdleTTL bounds how quickly an unused client entry is dropped.
const minIdleTTL = time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore keeps one limiter per client IP.
type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burstSize int
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func newRateLimiterStore(r rate.Limit, burst int) *rateLimiterStore {
	// An entry idle for longer than a full refill is indistinguishable
	// from a fresh one, so it can be dropped.
	ttl := minIdleTTL
	if r > 0 {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > ttl {
			ttl = refill
		}
	}
	return &rateLimiterStore{
		limiters:  make(map[string]*limiterEntry),
		rate:      r,
		burstSize: burst,
		idleTTL:   ttl,
		now:       time.Now,
	}
}

func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastPrune) >= s.idleTTL {
		s.prune(now)
		s.lastPrune = now
	}

	entry, exists := s.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burstSize)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// prune drops entries idle for longer than idleTTL. Callers hold mu.
func (s *rateLimiterStore) prune(now time.Time) {
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > s.idleTTL {
			delete(s.limiters, key)
		}
	}
}

// clientIP returns the remote host. The first X-Forwarded-For hop is only
// honoured when trustProxy is set, since clients can send any header.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginLimiter throttles login submissions per client IP.
type LoginLimiter struct {
	store      *rateLimiterStore
	trustProxy bool
}

func NewLoginLimiter(perSecond float64, burst int, trustProxy bool) *LoginLimiter {
	return &LoginLimiter{
		store:      newRateLimiterStore(rate.Limit(perSecond), burst),
		trustProxy: trustProxy,
	}
}

// Limit only counts POST requests; showing the form is free.
func (l *LoginLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limiter := l.store.getLimiter(clientIP(r, l.trustProxy))
			if !limiter.Allow() {
				retry := time.Duration(float64(time.Second) / float64(limiter.Limit()))
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				appErr := apperrors.NewRateLimitError()
				http.Error(w, appErr.Message, appErr.HTTPStatus)
				return
			}
		}
		next(w, r)
	}
}
