package ports

import (
	"context"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// MarketSource obtiene mercados normalizados de un proveedor.
type MarketSource interface {
	// Name identifica el proveedor; se usa para prioridad y logging.
	Name() domain.Source

	// FetchMarkets devuelve los mercados activos, ya normalizados.
	// Pagina hasta el tope de seguridad configurado. Un error significa que
	// el proveedor no está disponible en este ciclo.
	FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error)
}
