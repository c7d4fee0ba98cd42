package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// Storage persiste el historial de ciclos y picks.
type Storage interface {
	// SaveRun registra el resumen de un ciclo.
	SaveRun(ctx context.Context, run domain.RunSummary) error

	// SavePick persiste un pick en forma plana.
	SavePick(ctx context.Context, pick domain.PickRecord) error

	// MarkPublished guarda el texto publicado y el id del cast.
	MarkPublished(ctx context.Context, pickID, text, castHash string) error

	// GetPicks devuelve los picks creados en el rango, más recientes primero.
	GetPicks(ctx context.Context, from, to time.Time, limit int) ([]domain.PickRecord, error)

	// LatestPick devuelve el último pick o domain.ErrNotFound.
	LatestPick(ctx context.Context) (domain.PickRecord, error)

	// GetRuns devuelve los últimos ciclos, más recientes primero.
	GetRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
