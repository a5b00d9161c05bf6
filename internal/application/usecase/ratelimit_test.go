package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLimiter_BurstYRecarga(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewUserLimiter(6, 2) // un token cada 10s
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))
	assert.True(t, l.Allow("u2"), "bucket independiente")

	now = now.Add(10 * time.Second)
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))
}

func TestUserLimiter_DesactivadoYNil(t *testing.T) {
	l := NewUserLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("u1"))
	}
	var none *UserLimiter
	assert.True(t, none.Allow("u1"))
}

func TestUserLimiter_DescartaInactivos(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewUserLimiter(60, 1)
	l.now = func() time.Time { return now }
	l.Allow("viejo")

	now = now.Add(idleTTL + time.Minute)
	l.evict(now)
	assert.NotContains(t, l.limiters, "viejo")
}
