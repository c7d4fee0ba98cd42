package ports

import (
	"context"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// Notifier presenta el resultado de un ciclo al operador.
type Notifier interface {
	// Notify muestra las oportunidades ordenadas por score y el pick, si lo hay.
	Notify(ctx context.Context, opportunities []domain.Opportunity, pick *domain.Pick) error
}
