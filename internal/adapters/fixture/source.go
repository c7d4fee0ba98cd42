// Package fixture sirve mercados desde payloads grabados en disco, con el
// mismo parser que el conector real. Se usa en modo offline y en demos.
package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// ParseFunc decodifica un payload crudo de un proveedor.
type ParseFunc func(data []byte) ([]domain.MarketRecord, error)

// Source implementa ports.MarketSource leyendo un archivo en cada fetch.
type Source struct {
	name  domain.Source
	path  string
	parse ParseFunc
}

// NewSource crea una fuente de fixtures para el proveedor dado.
func NewSource(name domain.Source, path string, parse ParseFunc) *Source {
	return &Source{name: name, path: path, parse: parse}
}

// Name implementa ports.MarketSource.
func (s *Source) Name() domain.Source {
	return s.name
}

// FetchMarkets lee y parsea el archivo. Se relee en cada llamada para poder
// editar el fixture con el proceso corriendo.
func (s *Source) FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("fixture.FetchMarkets: %s: %w", s.name, err)
	}
	markets, err := s.parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture.FetchMarkets: %s: %w", s.name, err)
	}
	slog.Debug("fixture markets loaded", "source", s.name, "path", s.path, "count", len(markets))
	return markets, nil
}
