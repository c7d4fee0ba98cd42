package domain

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// ClampProbability limita p a [w.MinProbability, w.MaxProbability].
// Evita divisiones por cero aguas abajo (target/stop) con precios 0 o 100.
func ClampProbability(p float64, w ScoringWeights) float64 {
	return ClampFloat(p, w.MinProbability, w.MaxProbability)
}

// Extremity mide la certeza de la multitud: |0.5 - p| × 2.
// 0 = mercado 50/50, 1 = consenso total.
func Extremity(p float64) float64 {
	return ClampFloat(math.Abs(0.5-p)*2, 0, 1)
}

// VolumeBaseline devuelve el volumen diario "normal" esperado para el mercado.
// Si el proveedor reporta volumen total, se usa el promedio implícito
// volumeTotal / lifetimeDays; si no, el baseline fijo.
func VolumeBaseline(volumeTotal float64, w ScoringWeights) float64 {
	if volumeTotal > 0 && w.ImpliedLifetimeDays > 0 {
		implied := volumeTotal / w.ImpliedLifetimeDays
		if implied > 0 {
			return implied
		}
	}
	return w.VolumeBaseline
}

// VolumeRatio devuelve volume24h / baseline. 0 si el baseline es inválido.
func VolumeRatio(volume24h, volumeTotal float64, w ScoringWeights) float64 {
	base := VolumeBaseline(volumeTotal, w)
	if base <= 0 || volume24h <= 0 {
		return 0
	}
	return volume24h / base
}

// IsVolumeAnomaly devuelve true si hay mucho volumen sin movimiento de precio:
// rebaño sin información nueva.
func IsVolumeAnomaly(ratio, delta24h float64, w ScoringWeights) bool {
	return ratio >= w.VolumeAnomalyRatio && math.Abs(delta24h) <= w.StablePriceCents
}

// IsThinLiquidity devuelve true si la liquidez es muy baja para el volumen que mueve.
func IsThinLiquidity(liquidityScore, volume24h float64, w ScoringWeights) bool {
	return volume24h >= w.ThinLiquidityMinVolume && liquidityScore < w.ThinLiquidityScore
}

// NearCloseFactor devuelve [0,1]: 1 cerca del cierre, 0 fuera de la ventana.
// Solo aplica si el consenso ya es extremo.
func NearCloseFactor(hoursToClose, extremity float64, w ScoringWeights) float64 {
	if hoursToClose <= 0 || w.NearCloseHours <= 0 {
		return 0
	}
	if hoursToClose > w.NearCloseHours || extremity < w.NearCloseExtremity {
		return 0
	}
	return 1 - hoursToClose/w.NearCloseHours
}

// MatchTopics devuelve los tópicos del léxico presentes en los textos dados,
// ordenados alfabéticamente.
func MatchTopics(lexicon map[string][]string, texts ...string) []string {
	hay := " " + lexiconText(strings.Join(texts, " ")) + " "
	var topics []string
	for topic, words := range lexicon {
		for _, w := range words {
			if strings.Contains(hay, " "+lexiconText(w)+" ") {
				topics = append(topics, topic)
				break
			}
		}
	}
	sort.Strings(topics)
	return topics
}

// CulturalRelevance suma el bonus de cada tópico, con tope en 100.
func CulturalRelevance(topics []string, w ScoringWeights) float64 {
	total := 0.0
	for _, t := range topics {
		total += w.TopicBonus[t]
	}
	return math.Min(total, 100)
}

// ImportanceScore ordena mercados en el agregador:
// 2×volume24h + volumeTotal + 1000/rank.
func ImportanceScore(volume24h, volumeTotal float64, priorityRank int) float64 {
	if priorityRank < 1 {
		priorityRank = 1
	}
	return 2*volume24h + volumeTotal + 1000/float64(priorityRank)
}

// lexiconText pasa a minúsculas y reemplaza todo lo que no sea letra o dígito
// por un espacio, colapsando espacios.
func lexiconText(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
