package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/ports"
	"golang.org/x/sync/errgroup"
)

const defaultSourceTimeout = 10 * time.Second

// fetchAll consulta todos los proveedores en paralelo, cada uno con su propio
// timeout. Un proveedor que falla o se pasa de tiempo aporta una lista vacía
// y queda en failed; nunca aborta el ciclo.
func fetchAll(ctx context.Context, sources []ports.MarketSource, timeout time.Duration) (lists [][]domain.MarketRecord, failed []domain.Source) {
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	lists = make([][]domain.MarketRecord, len(sources))
	var mu sync.Mutex
	var g errgroup.Group

	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			sctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			markets, err := src.FetchMarkets(sctx)
			if err != nil {
				slog.Warn("source unavailable",
					"source", src.Name(),
					"err", err,
					"elapsed", time.Since(start).Round(time.Millisecond),
				)
				mu.Lock()
				failed = append(failed, src.Name())
				mu.Unlock()
				return nil
			}
			lists[i] = markets
			slog.Debug("source fetched", "source", src.Name(), "markets", len(markets))
			return nil
		})
	}
	_ = g.Wait()

	return lists, failed
}
