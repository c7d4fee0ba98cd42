// Package normalize convierte payloads de distintos proveedores a
// domain.MarketRecord. Los conectores mapean sus DTOs a Input; aquí se
// validan los campos requeridos y se coaccionan los numéricos a rango.
package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// DriftTolerance es la desviación máxima (centavos) de yes+no respecto a 100
// antes de recalcular noPrice como 100 - yesPrice.
const DriftTolerance = 10

// DefaultLiquidityScore se usa cuando el proveedor no reporta liquidez.
const DefaultLiquidityScore = 0.5

// Input es la forma intermedia que producen los conectores.
// Los punteros distinguen "ausente" de "cero".
type Input struct {
	Source   domain.Source
	ID       string
	Title    string
	Category string
	ClosesAt string // RFC3339 o fecha

	YesCents *float64
	NoCents  *float64

	LiquidityScore *float64
	Volume24h      *float64
	VolumeTotal    *float64
	LastTradeTime  string

	PriceChange24hCents *float64
}

// closeLayouts son los formatos de fecha aceptados, en orden.
var closeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize valida y convierte un Input. Un error (que envuelve
// domain.ErrValidation) significa que el registro debe descartarse.
func Normalize(in Input) (domain.MarketRecord, error) {
	id := strings.TrimSpace(in.ID)
	title := strings.TrimSpace(in.Title)
	if id == "" {
		return domain.MarketRecord{}, fmt.Errorf("%w: missing id", domain.ErrValidation)
	}
	if title == "" {
		return domain.MarketRecord{}, fmt.Errorf("%w: %s: missing title", domain.ErrValidation, id)
	}
	if in.YesCents == nil || !finite(*in.YesCents) {
		return domain.MarketRecord{}, fmt.Errorf("%w: %s: missing yes price", domain.ErrValidation, id)
	}
	closesAt, ok := ParseTime(in.ClosesAt)
	if !ok {
		return domain.MarketRecord{}, fmt.Errorf("%w: %s: bad close time %q", domain.ErrValidation, id, in.ClosesAt)
	}

	yes := domain.ClampInt(int(math.Round(*in.YesCents)), 0, 100)
	no := 100 - yes
	if in.NoCents != nil && finite(*in.NoCents) {
		n := domain.ClampInt(int(math.Round(*in.NoCents)), 0, 100)
		if abs(yes+n-100) <= DriftTolerance {
			no = n
		}
	}

	m := domain.MarketRecord{
		Source:         in.Source,
		ID:             id,
		Title:          title,
		Category:       strings.TrimSpace(in.Category),
		ClosesAt:       closesAt,
		YesPrice:       yes,
		NoPrice:        no,
		LiquidityScore: DefaultLiquidityScore,
	}

	if in.LiquidityScore != nil && finite(*in.LiquidityScore) {
		m.LiquidityScore = domain.ClampFloat(*in.LiquidityScore, 0, 1)
	}
	if in.Volume24h != nil && finite(*in.Volume24h) {
		m.Volume24h = math.Max(*in.Volume24h, 0)
	}
	if in.VolumeTotal != nil && finite(*in.VolumeTotal) {
		m.VolumeTotal = math.Max(*in.VolumeTotal, 0)
	}
	if t, ok := ParseTime(in.LastTradeTime); ok {
		m.LastTradeTime = t
	}
	if in.PriceChange24hCents != nil && finite(*in.PriceChange24hCents) {
		m.PriceChange24h = domain.ClampFloat(*in.PriceChange24hCents, -100, 100)
		m.HasPriceChange = true
	}

	return m, nil
}

// Batch normaliza una lista y descarta los registros inválidos.
// Nunca falla el lote completo.
func Batch(inputs []Input) []domain.MarketRecord {
	out := make([]domain.MarketRecord, 0, len(inputs))
	dropped := 0
	for _, in := range inputs {
		m, err := Normalize(in)
		if err != nil {
			dropped++
			slog.Debug("dropping market record", "source", in.Source, "err", err)
			continue
		}
		out = append(out, m)
	}
	if dropped > 0 {
		slog.Debug("normalization dropped records", "kept", len(out), "dropped", dropped)
	}
	return out
}

// ParseTime prueba los layouts soportados. Devuelve false si s está vacío
// o no coincide con ninguno.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range closeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Float devuelve un puntero a v; azúcar para los mapeos de conectores.
func Float(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
