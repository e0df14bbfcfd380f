// Package redislock candado distribuido sobre Redis (SET NX + borrado con token).
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

const keyPrefix = "lock:"

// solo borra la clave si sigue siendo nuestra
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var _ billing.Locker = (*Locker)(nil)

// Locker implementa billing.Locker.
type Locker struct {
	client *redis.Client
	log    zerolog.Logger
}

// New conecta a partir de una URL redis://[:password@]host:port/db y verifica la conexión.
func New(ctx context.Context, url string, log zerolog.Logger) (*Locker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewWithClient(client, log), nil
}

// NewWithClient usa un cliente existente.
func NewWithClient(client *redis.Client, log zerolog.Logger) *Locker {
	return &Locker{client: client, log: log}
}

// TryLock intenta tomar key durante ttl sin esperar.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: setnx %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// el contexto de la petición puede estar ya cancelado
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{keyPrefix + key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("redis: liberar candado")
		}
	}
	return release, true, nil
}

// Close cierra el cliente.
func (l *Locker) Close() error {
	return l.client.Close()
}
