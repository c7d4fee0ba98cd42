package scanner

// concurrent.go: worker pool para puntuar mercados en paralelo.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/domain/strategy"
)

// analyzeConcurrent puntúa todos los mercados usando un worker pool.
// El orden del resultado no está definido; el ranking posterior lo fija.
//
// Si workers <= 0 usa runtime.NumCPU().
func analyzeConcurrent(
	ctx context.Context,
	analyzer strategy.Strategy,
	markets []domain.MarketRecord,
	workers int,
) []domain.Opportunity {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(markets) {
		workers = len(markets)
	}

	workCh := make(chan domain.MarketRecord, len(markets))
	resultCh := make(chan domain.Opportunity, len(markets))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range workCh {
				opp, err := analyzer.Analyze(ctx, m)
				if err != nil {
					slog.Debug("analyze failed", "market", m.Key(), "err", err)
					continue
				}
				resultCh <- opp
			}
		}()
	}

	for _, m := range markets {
		workCh <- m
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	opps := make([]domain.Opportunity, 0, len(markets))
	for opp := range resultCh {
		opps = append(opps, opp)
	}

	slog.Debug("concurrent analysis complete",
		"markets", len(markets),
		"opportunities", len(opps),
		"workers", workers,
	)
	return opps
}
