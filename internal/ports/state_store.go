package ports

import (
	"context"
	"time"
)

// StateStore es un almacén clave-valor para el estado que sobrevive entre
// ciclos (cooldowns de publicación, contadores). Se crea al arrancar el
// proceso y se cierra al salir; nada lo usa como singleton implícito.
type StateStore interface {
	// Get devuelve el valor o domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put guarda el valor. ttl <= 0 significa sin expiración.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Update aplica fn atómicamente sobre el valor actual (nil si no existe)
	// y guarda el resultado, conservando la expiración existente.
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error

	Close() error
}
