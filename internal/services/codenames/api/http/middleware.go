package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/platform/requestctx"
)

// requestIDLogger copies chi's request id onto the request logger and context.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chimw.GetReqID(r.Context())
		if requestID == "" {
			next.ServeHTTP(w, r)
			return
		}
		log := zerolog.Ctx(r.Context())
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", requestID)
		})
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), requestID)))
	})
}

// sessionFromRequest returns the cookie session id, falling back to the header.
func sessionFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

func (s *Server) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID := sessionFromRequest(r); sessionID != "" {
			r = r.WithContext(requestctx.WithSessionID(r.Context(), sessionID))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionFromRequest(r)
		if sessionID == "" {
			writeError(w, r, apperrors.New(apperrors.CodeSessionRequired, "session id is required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithSessionID(r.Context(), sessionID)))
	})
}

// rateLimit applies the per-session limiter. Requests without a session share
// one bucket keyed by remote address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := requestctx.SessionIDFromContext(r.Context())
		if key == "" {
			key = "addr:" + r.RemoteAddr
		}
		if !s.limiter.allow(key) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "RATE_LIMITED", Detail: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterIdleTTL is how long a bucket must go unused before it may be swept.
const limiterIdleTTL = time.Minute

// sessionLimiter keeps one token bucket per key. Buckets idle for
// limiterIdleTTL that have refilled to burst are dropped; a fresh bucket for
// the same key behaves identically.
type sessionLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
	limiters  map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newSessionLimiter(limit rate.Limit, burst int) *sessionLimiter {
	if burst < 1 {
		burst = 1
	}
	return &sessionLimiter{
		limit:    limit,
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (l *sessionLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.sweep(now)
		l.lastSweep = now
	}
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *sessionLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) < limiterIdleTTL {
			continue
		}
		if entry.limiter.TokensAt(now) < float64(l.burst) {
			continue
		}
		delete(l.limiters, key)
	}
}
