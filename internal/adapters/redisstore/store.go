// Package redisstore implementa ports.StateStore sobre Redis, para que el
// cooldown de publicación y los contadores sobrevivan reinicios y se
// compartan entre réplicas.
package redisstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 10

// Config son los parámetros de conexión.
type Config struct {
	Addr       string
	Password   string
	DB         int
	Prefix     string // se antepone a cada clave, p.ej. "miyomi:"
	TLSEnabled bool
}

// Store es un StateStore respaldado por Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New conecta y hace ping. Devuelve error si Redis no responde.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore.New: ping %s: %w", cfg.Addr, err)
	}
	return &Store{rdb: rdb, prefix: cfg.Prefix}, nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get devuelve el valor o domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redisstore.Get %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore.Get %q: %w", key, err)
	}
	return v, nil
}

// Put guarda el valor. ttl <= 0 = sin expiración.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redisstore.Put %q: %w", key, err)
	}
	return nil
}

// Update hace read-modify-write optimista con WATCH/MULTI. Si otro cliente
// modifica la clave entre medio se reintenta.
func (s *Store) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	k := s.key(key)
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(old)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redisstore.Update %q: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("redisstore.Update %q: too much contention", key)
}

// Close cierra la conexión.
func (s *Store) Close() error {
	return s.rdb.Close()
}
