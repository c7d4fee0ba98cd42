package scanner

import (
	"sort"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/google/uuid"
)

const (
	targetMove     = 20
	stopMove       = 10
	minPriceCents  = 5
	maxPriceCents  = 95
	maxConfidence  = 0.9
	defaultPickTTL = 24 * time.Hour
)

// Rank ordena por score descendente, desempatando por source:id para que el
// orden sea determinista. Devuelve una copia.
func Rank(opps []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, len(opps))
	copy(out, opps)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Market.Key() < out[j].Market.Key()
	})
	return out
}

// Pick elige la mejor oportunidad que no sea SKIP y la convierte en un Pick.
// Devuelve nil si no queda ninguna: "hoy no hay nada que hacer", no es error.
//
// El precio de entrada es el del lado recomendado; target = entrada + 20¢ y
// stop = entrada - 10¢, ambos acotados a [5, 95].
func Pick(opps []domain.Opportunity, now time.Time, ttl time.Duration) *domain.Pick {
	candidates := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if !o.IsSkip() {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	best := Rank(candidates)[0]

	if ttl <= 0 {
		ttl = defaultPickTTL
	}
	expires := now.Add(ttl)
	if closes := best.Market.ClosesAt; !closes.IsZero() && closes.Before(expires) {
		expires = closes
	}

	entry := best.SidePrice()
	thesis := make([]string, len(best.Reasoning))
	copy(thesis, best.Reasoning)

	return &domain.Pick{
		ID:          uuid.NewString(),
		Timestamp:   now,
		Opportunity: best,
		Thesis:      thesis,
		Confidence:  domain.ClampFloat(best.Score/100, 0, maxConfidence),
		TargetPrice: domain.ClampInt(entry+targetMove, minPriceCents, maxPriceCents),
		StopLoss:    domain.ClampInt(entry-stopMove, minPriceCents, maxPriceCents),
		ExpiresAt:   expires,
	}
}
