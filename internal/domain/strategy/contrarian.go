package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// Contrarian puntúa mercados buscando consensos que la multitud podría tener mal.
//
// El score es una suma ponderada de heurísticas (extremidad de precio, anomalía
// de volumen, liquidez fina, cercanía al cierre) más un bonus de relevancia
// cultural. La única dependencia temporal es TimeToClose y el término de
// cercanía al cierre; el reloj es inyectable para que Score sea una función
// pura de (mercado, now).
type Contrarian struct {
	w   domain.ScoringWeights
	now func() time.Time
}

// Option configura un Contrarian.
type Option func(*Contrarian)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Contrarian) { c.now = now }
}

// NewContrarian crea el scorer con la tabla de pesos dada.
func NewContrarian(w domain.ScoringWeights, opts ...Option) *Contrarian {
	if w.Lexicon == nil {
		w.Lexicon = domain.DefaultLexicon()
	}
	c := &Contrarian{w: w, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weights devuelve la tabla de pesos en uso.
func (c *Contrarian) Weights() domain.ScoringWeights {
	return c.w
}

// Analyze implementa Strategy.
func (c *Contrarian) Analyze(_ context.Context, market domain.MarketRecord) (domain.Opportunity, error) {
	if market.ID == "" || market.Title == "" {
		return domain.Opportunity{}, fmt.Errorf("contrarian: incomplete market %q", market.Key())
	}
	return c.Score(market), nil
}

// Score calcula la Opportunity de un mercado. Nunca falla: precios fuera de
// rango se clampan a [MinProbability, MaxProbability].
func (c *Contrarian) Score(market domain.MarketRecord) domain.Opportunity {
	w := c.w
	now := c.now()

	p := domain.ClampProbability(market.Probability(), w)
	ext := domain.Extremity(p)

	delta := 0.0
	if market.HasPriceChange {
		delta = market.PriceChange24h
	}

	ratio := domain.VolumeRatio(market.Volume24h, market.VolumeTotal, w)
	anomaly := domain.IsVolumeAnomaly(ratio, delta, w)
	thin := domain.IsThinLiquidity(market.LiquidityScore, market.Volume24h, w)
	hours := market.HoursToClose(now)
	nearFactor := domain.NearCloseFactor(hours, ext, w)

	inefficiency := ext * w.ExtremityPoints
	if anomaly {
		inefficiency += w.VolumeAnomalyPoints
	}
	if thin {
		inefficiency += w.ThinLiquidityPoints
	}
	inefficiency += nearFactor * w.NearClosePoints
	inefficiency = math.Min(inefficiency, 100)

	topics := domain.MatchTopics(w.Lexicon, market.Title, market.Category)
	cultural := domain.CulturalRelevance(topics, w)

	sig := domain.Signals{
		Probability:       p,
		Extremity:         ext,
		VolumeRatio:       ratio,
		VolumeAnomaly:     anomaly,
		ThinLiquidity:     thin,
		NearClose:         nearFactor > 0,
		Inefficiency:      inefficiency,
		CulturalRelevance: cultural,
		Topics:            topics,
	}

	position, rule := c.classify(sig)

	reasoning := make([]string, 0, 6)
	reasoning = append(reasoning, rule)
	reasoning = append(reasoning, c.signalReasons(market, sig, delta, hours)...)

	return domain.Opportunity{
		Market:              market,
		Score:               inefficiency*w.InefficiencyWeight + cultural*w.CulturalWeight,
		Reasoning:           reasoning,
		Delta24h:            delta,
		TimeToClose:         hours,
		RecommendedPosition: position,
		Signals:             sig,
	}
}

// classify aplica las reglas en orden de prioridad; gana la primera que aplica.
func (c *Contrarian) classify(s domain.Signals) (domain.Position, string) {
	w := c.w
	p := s.Probability
	majority := majoritySide(p)
	fade := majority.Opposite()

	switch {
	case s.Inefficiency < w.SkipInefficiency && s.CulturalRelevance < w.SkipCultural:
		return domain.PositionSkip, "Not interesting enough: no clear mispricing and little narrative pull"
	case p > w.FadeYesAbove:
		return domain.PositionNo, fmt.Sprintf("Market overconfident in YES outcome at %s", pct(p))
	case p < w.FadeNoBelow:
		return domain.PositionYes, fmt.Sprintf("Market overconfident in NO outcome at %s NO", pct(1-p))
	case s.VolumeAnomaly:
		return fade, fmt.Sprintf("Heavy volume on a flat price looks like herding, fading the %s majority", majority)
	case s.CulturalRelevance > w.HypeCultural:
		return fade, fmt.Sprintf("Hype-driven narrative, taking the contrarian %s side", fade)
	default:
		return fade, fmt.Sprintf("Fading the crowd: consensus leans %s at %s", majority, pct(math.Max(p, 1-p)))
	}
}

// signalReasons describe cada señal activa, en orden fijo.
func (c *Contrarian) signalReasons(m domain.MarketRecord, s domain.Signals, delta, hours float64) []string {
	w := c.w
	var out []string

	if s.Extremity >= w.NearCloseExtremity {
		out = append(out, fmt.Sprintf("Crowd certainty is high (%s %s), a candidate for being wrong",
			pct(math.Max(s.Probability, 1-s.Probability)), majoritySide(s.Probability)))
	}
	if s.VolumeAnomaly {
		out = append(out, fmt.Sprintf("24h volume is %.1fx the baseline while price barely moved", s.VolumeRatio))
	} else if m.HasPriceChange && math.Abs(delta) > w.StablePriceCents {
		out = append(out, fmt.Sprintf("Price moved %+.0f¢ in the last 24h", delta))
	}
	if s.ThinLiquidity {
		out = append(out, "Thin liquidity relative to volume: easy to push around, size carefully")
	}
	if s.NearClose {
		out = append(out, fmt.Sprintf("Closes in %s with extreme consensus: late mispricing window", humanHours(hours)))
	}
	if len(s.Topics) > 0 {
		out = append(out, "Narrative hook: "+strings.Join(s.Topics, ", "))
	}
	return out
}

// majoritySide devuelve el lado que la multitud favorece. Con p = 0.5 exacto
// ningún lado supera 0.5 y se considera NO como mayoría, así el fallback
// recomienda YES.
func majoritySide(p float64) domain.Position {
	if p > 0.5 {
		return domain.PositionYes
	}
	return domain.PositionNo
}

func pct(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}

func humanHours(h float64) string {
	if h < 48 {
		return fmt.Sprintf("%.0fh", h)
	}
	return fmt.Sprintf("%.1f days", h/24)
}
