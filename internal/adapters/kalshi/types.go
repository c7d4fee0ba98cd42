package kalshi

// DTOs raw de la Trade API v2 de Kalshi. Solo se usan dentro de este paquete.

// marketsResponse es la respuesta paginada de GET /markets.
type marketsResponse struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

// kalshiMarket es un mercado de Kalshi. Precios en centavos (1-99),
// volumen en contratos y liquidez en centavos.
type kalshiMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Category       string  `json:"category"`
	Status         string  `json:"status"`
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	PreviousPrice  float64 `json:"previous_price"`
	Volume         float64 `json:"volume"`
	Volume24h      float64 `json:"volume_24h"`
	Liquidity      float64 `json:"liquidity"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
	Result         string  `json:"result"`
}
