package scanner

import (
	"sort"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// SourcePriority asigna un rango a cada proveedor: 1 es el más prioritario.
// El rango decide qué registro sobrevive a un duplicado y suma al importance.
type SourcePriority map[domain.Source]int

// DefaultPriority prioriza Polymarket sobre Kalshi.
func DefaultPriority() SourcePriority {
	return SourcePriority{
		domain.SourcePolymarket: 1,
		domain.SourceKalshi:     2,
	}
}

// Rank devuelve el rango de s. Proveedores sin rango van detrás de todos.
func (p SourcePriority) Rank(s domain.Source) int {
	if r, ok := p[s]; ok && r > 0 {
		return r
	}
	return len(p) + 1
}

// Aggregate une las listas de todos los proveedores, deduplica por título
// normalizado y ordena por importancia. limit <= 0 no trunca.
//
// El primer registro visto en orden de prioridad gana los duplicados, así el
// resultado no depende del orden en que terminaron los fetches.
func Aggregate(sourceLists [][]domain.MarketRecord, priority SourcePriority, limit int) []domain.MarketRecord {
	if priority == nil {
		priority = DefaultPriority()
	}

	var all []domain.MarketRecord
	for _, list := range sourceLists {
		all = append(all, list...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return priority.Rank(all[i].Source) < priority.Rank(all[j].Source)
	})

	seen := make(map[string]struct{}, len(all))
	out := make([]domain.MarketRecord, 0, len(all))
	for _, m := range all {
		key := dedupKey(m)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}

	importance := func(m domain.MarketRecord) float64 {
		return domain.ImportanceScore(m.Volume24h, m.VolumeTotal, priority.Rank(m.Source))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ia, ib := importance(a), importance(b)
		if ia != ib {
			return ia > ib
		}
		ra, rb := priority.Rank(a.Source), priority.Rank(b.Source)
		if ra != rb {
			return ra < rb
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupKey es el título normalizado. Un título que queda vacío tras
// normalizar (solo signos) no se puede comparar y usa source:id.
func dedupKey(m domain.MarketRecord) string {
	if k := domain.NormalizeTitle(m.Title); k != "" {
		return k
	}
	return "\x00" + m.Key()
}
