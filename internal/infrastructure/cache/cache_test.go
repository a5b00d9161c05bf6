package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/ports"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	_, err := c.Get(ctx, "perm:user:1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "perm:user:1", []byte(`{"sales":{}}`), time.Minute))
	got, err := c.Get(ctx, "perm:user:1")
	require.NoError(t, err)
	assert.Equal(t, `{"sales":{}}`, string(got))

	require.NoError(t, c.Delete(ctx, "perm:user:1", "inexistente"))
	_, err = c.Get(ctx, "perm:user:1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestMemoryCache_Expira(t *testing.T) {
	c := NewMemoryCache(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 5*time.Minute))
	now = now.Add(4 * time.Minute)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestMemoryCache_VencidaNoBorraEntradaNueva(t *testing.T) {
	c := NewMemoryCache(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", []byte("viejo"), time.Minute))
	now = now.Add(2 * time.Minute)

	// Get ve la entrada vencida y, antes de tomar el lock de escritura, otro Set la reemplaza
	replaced := false
	c.now = func() time.Time {
		if !replaced {
			replaced = true
			require.NoError(t, c.Set(ctx, "k", []byte("nuevo"), time.Minute))
		}
		return now
	}

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("nuevo"), v)
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("nuevo"), v)
}

func TestMemoryCache_CopiaDefensivaYLimite(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	val := []byte("abc")
	require.NoError(t, c.Set(ctx, "a", val, 0))
	val[0] = 'x'
	got, _ := c.Get(ctx, "a")
	assert.Equal(t, "abc", string(got))

	require.NoError(t, c.Set(ctx, "b", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("c"), 0))
	_, err := c.Get(ctx, "c")
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(c.items), 2)
}

func TestNewRedisCache_URLInvalida(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "http://no-es-redis")
	assert.Error(t, err)
}
