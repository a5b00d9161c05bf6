package usecase

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserLimiter token bucket independiente por usuario.
type UserLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// idleTTL tiempo tras el cual se descarta el limitador de un usuario inactivo.
const idleTTL = 30 * time.Minute

// NewUserLimiter perMinute <= 0 desactiva el límite.
func NewUserLimiter(perMinute float64, burst int) *UserLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := rate.Inf
	if perMinute > 0 {
		l = rate.Limit(perMinute / 60)
	}
	return &UserLimiter{limit: l, burst: burst, limiters: make(map[string]*limiterEntry), now: time.Now}
}

// Allow consume un token del usuario; false si excedió su cuota.
func (u *UserLimiter) Allow(userID string) bool {
	if u == nil || u.limit == rate.Inf {
		return true
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	e, ok := u.limiters[userID]
	if !ok {
		if len(u.limiters) > 1024 {
			u.evict(now)
		}
		e = &limiterEntry{lim: rate.NewLimiter(u.limit, u.burst)}
		u.limiters[userID] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

func (u *UserLimiter) evict(now time.Time) {
	for id, e := range u.limiters {
		if now.Sub(e.lastSeen) > idleTTL {
			delete(u.limiters, id)
		}
	}
}
