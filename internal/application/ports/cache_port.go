package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss la clave no existe o expiró.
var ErrCacheMiss = errors.New("cache miss")

// Cache almacén clave/valor con TTL (Redis o memoria).
// Los valores viajan serializados; cada consumidor elige el formato.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
