package strategy

import (
	"context"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// Strategy define el contrato para puntuar mercados.
// Cada estrategia encapsula una heurística distinta.
type Strategy interface {
	// Analyze puntúa un mercado y devuelve la Opportunity con su recomendación.
	// Devuelve error si los datos son insuficientes para puntuar.
	Analyze(ctx context.Context, market domain.MarketRecord) (domain.Opportunity, error)
}
