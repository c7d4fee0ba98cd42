package domain

// ScoringWeights agrupa todas las constantes heurísticas del scorer.
// Ninguna está derivada estadísticamente: son perillas de producto.
// Los umbrales de clasificación (75/25, 40/30, 60) se conservan tal cual
// pendientes de validación contra resultados reales.
type ScoringWeights struct {
	// Clamp de probabilidad antes de evaluar reglas.
	MinProbability float64
	MaxProbability float64

	// Extremidad de precio: ExtremityPoints × |0.5 - p| × 2.
	ExtremityPoints float64

	// Anomalía de volumen.
	VolumeBaseline      float64 // USD/día cuando no hay volumen total
	ImpliedLifetimeDays float64 // volumeTotal / días → baseline implícito
	VolumeAnomalyRatio  float64 // volume24h / baseline para marcar anomalía
	StablePriceCents    float64 // |delta24h| máximo para considerar precio estable
	VolumeAnomalyPoints float64

	// Liquidez fina respecto al volumen.
	ThinLiquidityScore     float64 // liquidityScore por debajo de esto es "fina"
	ThinLiquidityMinVolume float64 // solo aplica con al menos este volumen 24h
	ThinLiquidityPoints    float64

	// Decaimiento por tiempo al cierre.
	NearCloseHours     float64
	NearCloseExtremity float64 // extremidad mínima para el bonus
	NearClosePoints    float64

	// Relevancia cultural: bonus por tópico, con tope en 100.
	TopicBonus map[string]float64
	Lexicon    map[string][]string

	// Umbrales de clasificación.
	SkipInefficiency float64 // inefficiency < esto …
	SkipCultural     float64 // … y cultural < esto → SKIP
	FadeYesAbove     float64 // p > esto → NO
	FadeNoBelow      float64 // p < esto → YES
	HypeCultural     float64 // cultural > esto → contrarian

	// Score final = inefficiency × InefficiencyWeight + cultural × CulturalWeight.
	InefficiencyWeight float64
	CulturalWeight     float64
}

// Tópicos del léxico narrativo.
const (
	TopicCrypto     = "crypto"
	TopicPolitics   = "politics"
	TopicPopCulture = "pop-culture"
	TopicNYC        = "nyc"
)

// DefaultWeights devuelve la tabla de pesos por defecto.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		MinProbability: 0.02,
		MaxProbability: 0.98,

		ExtremityPoints: 40,

		VolumeBaseline:      50_000,
		ImpliedLifetimeDays: 30,
		VolumeAnomalyRatio:  3,
		StablePriceCents:    5,
		VolumeAnomalyPoints: 20,

		ThinLiquidityScore:     0.2,
		ThinLiquidityMinVolume: 10_000,
		ThinLiquidityPoints:    15,

		NearCloseHours:     7 * 24,
		NearCloseExtremity: 0.5,
		NearClosePoints:    25,

		TopicBonus: map[string]float64{
			TopicCrypto:     30,
			TopicPolitics:   30,
			TopicPopCulture: 35,
			TopicNYC:        40,
		},
		Lexicon: DefaultLexicon(),

		SkipInefficiency: 40,
		SkipCultural:     30,
		FadeYesAbove:     0.75,
		FadeNoBelow:      0.25,
		HypeCultural:     60,

		InefficiencyWeight: 0.7,
		CulturalWeight:     0.3,
	}
}

// DefaultLexicon devuelve las palabras clave por tópico. Se comparan contra
// el título y la categoría normalizados, por palabra completa o frase.
func DefaultLexicon() map[string][]string {
	return map[string][]string{
		TopicCrypto: {
			"bitcoin", "btc", "ethereum", "eth", "crypto", "solana", "sol",
			"dogecoin", "doge", "memecoin", "stablecoin", "etf", "coinbase",
			"binance", "satoshi", "altcoin",
		},
		TopicPolitics: {
			"election", "president", "trump", "biden", "harris", "senate",
			"congress", "governor", "primary", "nominee", "democrat",
			"republican", "impeach", "supreme court", "white house", "vote",
		},
		TopicPopCulture: {
			"taylor swift", "grammy", "grammys", "oscar", "oscars", "emmy",
			"album", "movie", "box office", "netflix", "celebrity", "kardashian",
			"drake", "kanye", "beyonce", "super bowl", "halftime", "tiktok",
			"spotify", "billboard", "met gala", "marvel",
		},
		TopicNYC: {
			"nyc", "new york", "manhattan", "brooklyn", "queens", "bronx",
			"mamdani", "mayor adams", "knicks", "yankees", "mets", "subway",
			"mta", "congestion pricing",
		},
	}
}
