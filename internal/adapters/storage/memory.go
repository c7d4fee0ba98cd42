package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero = sin expiración
}

// MemoryStateStore implementa ports.StateStore en memoria del proceso.
// Es el default cuando no hay Redis configurado; el estado se pierde al salir.
type MemoryStateStore struct {
	mu   sync.Mutex
	data map[string]memEntry
	now  func() time.Time
}

// NewMemoryStateStore crea un store vacío.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{data: make(map[string]memEntry), now: time.Now}
}

// Get devuelve el valor o domain.ErrNotFound si no existe o expiró.
func (s *MemoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil, fmt.Errorf("storage.Get %q: %w", key, domain.ErrNotFound)
	}
	return clone(e.value), nil
}

// Put guarda el valor. ttl <= 0 = sin expiración.
func (s *MemoryStateStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memEntry{value: clone(value)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = e
	return nil
}

// Update aplica fn bajo el lock y conserva la expiración existente.
// Si fn falla no se guarda nada.
func (s *MemoryStateStore) Update(_ context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	var old []byte
	if ok {
		old = clone(e.value)
	}
	next, err := fn(old)
	if err != nil {
		return fmt.Errorf("storage.Update %q: %w", key, err)
	}
	s.data[key] = memEntry{value: clone(next), expiresAt: e.expiresAt}
	return nil
}

// Close no hace nada; existe para cumplir ports.StateStore.
func (s *MemoryStateStore) Close() error {
	return nil
}

// lookup asume el lock tomado. Las entradas expiradas se borran al leerlas.
func (s *MemoryStateStore) lookup(key string) (memEntry, bool) {
	e, ok := s.data[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		return memEntry{}, false
	}
	return e, true
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
