package polymarket

import "encoding/json"

// DTOs raw de la API de Gamma. Solo se usan dentro de este paquete.
// La conversión a normalize.Input se hace en mapping.go.

// gammaMarket es un mercado de GET /markets.
// Gamma devuelve algunos campos numéricos como strings JSON y las listas
// outcomes/outcomePrices como strings con JSON embebido.
type gammaMarket struct {
	ID                string       `json:"id"`
	ConditionID       string       `json:"conditionId"`
	Question          string       `json:"question"`
	Slug              string       `json:"slug"`
	Category          string       `json:"category"`
	EndDate           string       `json:"endDate"`
	EndDateISO        string       `json:"endDateIso"`
	Outcomes          string       `json:"outcomes"`
	OutcomePrices     string       `json:"outcomePrices"`
	Volume            json.Number  `json:"volume"`
	VolumeNum         json.Number  `json:"volumeNum"`
	Volume24h         json.Number  `json:"volume24hr"`
	Liquidity         json.Number  `json:"liquidity"`
	LiquidityNum      json.Number  `json:"liquidityNum"`
	LastTradePrice    json.Number  `json:"lastTradePrice"`
	OneDayPriceChange json.Number  `json:"oneDayPriceChange"`
	UpdatedAt         string       `json:"updatedAt"`
	Active            bool         `json:"active"`
	Closed            bool         `json:"closed"`
	Archived          bool         `json:"archived"`
	Events            []gammaEvent `json:"events"`
}

// gammaEvent es el evento padre; algunos mercados solo traen la categoría aquí.
type gammaEvent struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}
