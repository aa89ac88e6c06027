package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"checkout-be/internal/utils"

	"golang.org/x/time/rate"
)

type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

// Rate Limit Tiers
var (
	// Payment confirmation / creation (Strict)
	TierStrict = Tier{Name: "strict", Limit: rate.Limit(2), Burst: 5}

	// Provider webhooks arrive in bursts from a few IPs
	TierWebhook = Tier{Name: "webhook", Limit: rate.Limit(50), Burst: 100}

	// General (Default)
	TierGeneral = Tier{Name: "general", Limit: rate.Limit(10), Burst: 20}
)

const (
	visitorTTL    = 3 * time.Minute
	pruneInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per identity and tier. Idle buckets are
// pruned on access, at most once per pruneInterval.
type Limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
	now       func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *Limiter) get(key string, t Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= pruneInterval {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(t.Limit, t.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Middleware limits requests per identity for the given tier.
func (l *Limiter) Middleware(t Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", identity(r), t.Name)

			if !l.get(key, t).AllowN(l.now(), 1) {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// identity prefers the session user, then the client IP.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
