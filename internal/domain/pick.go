package domain

import "time"

// Pick es la oportunidad seleccionada en un ciclo, convertida en un registro
// accionable para el generador de contenido. No se muta después de crearse.
type Pick struct {
	ID          string
	Timestamp   time.Time
	Opportunity Opportunity
	Thesis      []string
	Confidence  float64 // [0, 0.9]
	TargetPrice int     // centavos del lado recomendado
	StopLoss    int
	ExpiresAt   time.Time
}

// Position es un atajo a la postura recomendada.
func (p Pick) Position() Position {
	return p.Opportunity.RecommendedPosition
}

// PickRecord es la forma plana de un Pick para persistencia y la API.
type PickRecord struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Source      Source    `json:"source"`
	MarketID    string    `json:"market_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Position    Position  `json:"position"`
	YesPrice    int       `json:"yes_price"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	TargetPrice int       `json:"target_price"`
	StopLoss    int       `json:"stop_loss"`
	ExpiresAt   time.Time `json:"expires_at"`
	ClosesAt    time.Time `json:"closes_at"`
	Thesis      []string  `json:"thesis"`
	PostText    string    `json:"post_text,omitempty"`
	CastHash    string    `json:"cast_hash,omitempty"`
}

// Record aplana el Pick.
func (p Pick) Record() PickRecord {
	m := p.Opportunity.Market
	thesis := make([]string, len(p.Thesis))
	copy(thesis, p.Thesis)
	return PickRecord{
		ID:          p.ID,
		CreatedAt:   p.Timestamp,
		Source:      m.Source,
		MarketID:    m.ID,
		Title:       m.Title,
		Category:    m.Category,
		Position:    p.Position(),
		YesPrice:    m.YesPrice,
		Score:       p.Opportunity.Score,
		Confidence:  p.Confidence,
		TargetPrice: p.TargetPrice,
		StopLoss:    p.StopLoss,
		ExpiresAt:   p.ExpiresAt,
		ClosesAt:    m.ClosesAt,
		Thesis:      thesis,
	}
}

// RunSummary resume un ciclo del pipeline.
type RunSummary struct {
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration_ns"`
	Markets       int           `json:"markets"`
	Opportunities int           `json:"opportunities"`
	Skipped       int           `json:"skipped"`
	SourcesFailed []Source      `json:"sources_failed,omitempty"`
	PickID        string        `json:"pick_id,omitempty"`
}

// PublishResult es la respuesta de un Publisher.
type PublishResult struct {
	ID  string // hash del cast o equivalente
	URL string
}
