package domain

// Position es la postura recomendada para un mercado.
type Position string

const (
	PositionYes  Position = "YES"
	PositionNo   Position = "NO"
	PositionSkip Position = "SKIP"
)

func (p Position) String() string { return string(p) }

// Opposite devuelve el lado contrario. SKIP no tiene contrario.
func (p Position) Opposite() Position {
	switch p {
	case PositionYes:
		return PositionNo
	case PositionNo:
		return PositionYes
	default:
		return PositionSkip
	}
}

// Signals contiene los términos intermedios del scorer.
// Se exponen para el notifier y los tests, no se persisten.
type Signals struct {
	Probability       float64 // p clampeado a [MinProbability, MaxProbability]
	Extremity         float64 // |0.5 - p| × 2, en [0,1]
	VolumeRatio       float64 // volume24h / baseline
	VolumeAnomaly     bool
	ThinLiquidity     bool
	NearClose         bool
	Inefficiency      float64 // [0,100]
	CulturalRelevance float64 // [0,100]
	Topics            []string
}

// Opportunity es un MarketRecord ya puntuado.
type Opportunity struct {
	Market              MarketRecord
	Score               float64
	Reasoning           []string
	Delta24h            float64 // centavos
	TimeToClose         float64 // horas
	RecommendedPosition Position
	Signals             Signals
}

// IsSkip devuelve true si la oportunidad no tiene recomendación.
func (o Opportunity) IsSkip() bool {
	return o.RecommendedPosition == PositionSkip || o.RecommendedPosition == ""
}

// SidePrice devuelve el precio actual (centavos) del lado recomendado,
// derivado de la probabilidad clampeada.
func (o Opportunity) SidePrice() int {
	yes := int(o.Signals.Probability*100 + 0.5)
	if o.Signals.Probability == 0 {
		yes = ClampInt(o.Market.YesPrice, 2, 98)
	}
	if o.RecommendedPosition == PositionNo {
		return 100 - yes
	}
	return yes
}
