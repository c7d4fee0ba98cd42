package domain

import (
	"math"
	"time"
)

// Source identifica el proveedor de datos de un mercado.
type Source string

const (
	SourcePolymarket Source = "polymarket"
	SourceKalshi     Source = "kalshi"
)

func (s Source) String() string { return string(s) }

// MarketRecord es la representación canónica de un mercado de predicción,
// independiente del proveedor. Se construye en cada ciclo y no se muta
// después de normalizarse.
type MarketRecord struct {
	Source   Source
	ID       string // único dentro del proveedor
	Title    string
	Category string
	ClosesAt time.Time

	// Precios en centavos [0,100]. YesPrice + NoPrice ≈ 100.
	YesPrice int
	NoPrice  int

	LiquidityScore float64 // [0,1], 0.5 si el proveedor no lo reporta
	Volume24h      float64 // USD
	VolumeTotal    float64 // USD, 0 si no se conoce
	LastTradeTime  time.Time

	// PriceChange24h es el cambio de precio YES en centavos reportado por el
	// proveedor. HasPriceChange distingue "sin dato" de "sin cambio".
	PriceChange24h float64
	HasPriceChange bool
}

// Key devuelve un identificador global source:id.
func (m MarketRecord) Key() string {
	return string(m.Source) + ":" + m.ID
}

// Probability devuelve la probabilidad implícita de YES sin clamp.
func (m MarketRecord) Probability() float64 {
	return float64(m.YesPrice) / 100
}

// HoursToClose devuelve las horas hasta ClosesAt medidas desde now.
// Devuelve 0 si el mercado ya cerró o no tiene fecha.
func (m MarketRecord) HoursToClose(now time.Time) float64 {
	if m.ClosesAt.IsZero() {
		return 0
	}
	h := m.ClosesAt.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// LiquidityScoreFromUSD convierte liquidez en USD a un score [0,1) con
// saturación suave: halfPoint USD → 0.5.
func LiquidityScoreFromUSD(usd, halfPoint float64) float64 {
	if usd <= 0 {
		return 0
	}
	if halfPoint <= 0 {
		halfPoint = DefaultLiquidityHalfPoint
	}
	return usd / (usd + halfPoint)
}

// DefaultLiquidityHalfPoint es la liquidez (USD) que mapea a score 0.5.
const DefaultLiquidityHalfPoint = 50_000

// ClampInt limita v a [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat limita v a [lo, hi]. NaN se trata como lo.
func ClampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TruncateTitle devuelve el título truncado a maxLen runas.
// Si el título está vacío usa el id como fallback.
func TruncateTitle(title, id string, maxLen int) string {
	t := title
	if t == "" {
		t = id
	}
	r := []rune(t)
	if maxLen > 3 && len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return t
}
