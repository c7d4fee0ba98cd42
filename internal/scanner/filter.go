package scanner

import (
	"github.com/alejandrodnm/miyomi/internal/domain"
)

// FilterConfig contiene los parámetros configurables de filtrado.
type FilterConfig struct {
	// MinScore descarta oportunidades con score menor (0 = sin mínimo).
	MinScore float64
	// MinHoursToClose descarta mercados que cierran antes de X horas. Con
	// valor > 0 también descarta los que ya cerraron.
	MinHoursToClose float64
}

// DefaultFilterConfig devuelve una configuración de filtrado conservadora.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinScore:        0,
		MinHoursToClose: 1,
	}
}

// Filter aplica los filtros configurados sobre una lista de oportunidades.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve las oportunidades que pasan todos los filtros y cuántas
// se descartaron por SKIP.
func (f *Filter) Apply(opps []domain.Opportunity) (kept []domain.Opportunity, skipped int) {
	kept = make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.IsSkip() {
			skipped++
			continue
		}
		if f.passes(opp) {
			kept = append(kept, opp)
		}
	}
	return kept, skipped
}

// passes evalúa los criterios configurables. SKIP ya fue descartado.
func (f *Filter) passes(opp domain.Opportunity) bool {
	if f.cfg.MinScore > 0 && opp.Score < f.cfg.MinScore {
		return false
	}
	if f.cfg.MinHoursToClose > 0 && opp.TimeToClose < f.cfg.MinHoursToClose {
		return false
	}
	return true
}
