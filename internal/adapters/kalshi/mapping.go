package kalshi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/normalize"
)

// ParseMarkets decodifica un payload de GET /markets, descarta mercados no
// abiertos y normaliza el resto.
func ParseMarkets(data []byte, liquidityHalfPoint float64) ([]domain.MarketRecord, error) {
	var resp marketsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("kalshi.ParseMarkets: %w", err)
	}
	return mapMarkets(resp.Markets, liquidityHalfPoint), nil
}

func mapMarkets(raw []kalshiMarket, liquidityHalfPoint float64) []domain.MarketRecord {
	inputs := make([]normalize.Input, 0, len(raw))
	for _, km := range raw {
		if !isOpen(km.Status) {
			continue
		}
		inputs = append(inputs, toInput(km, liquidityHalfPoint))
	}
	return normalize.Batch(inputs)
}

// isOpen acepta "open" (filtro de la API) y "active" (valor que devuelve).
func isOpen(status string) bool {
	switch strings.ToLower(status) {
	case "open", "active":
		return true
	}
	return false
}

// toInput convierte un kalshiMarket. Los precios ya vienen en centavos.
func toInput(km kalshiMarket, liquidityHalfPoint float64) normalize.Input {
	in := normalize.Input{
		Source:   domain.SourceKalshi,
		ID:       km.Ticker,
		Title:    km.Title,
		Category: km.Category,
		ClosesAt: km.CloseTime,
	}
	if in.ClosesAt == "" {
		in.ClosesAt = km.ExpirationTime
	}

	if yes, ok := mid(km.YesBid, km.YesAsk); ok {
		in.YesCents = normalize.Float(yes)
	} else if km.LastPrice > 0 {
		in.YesCents = normalize.Float(km.LastPrice)
	}
	if no, ok := mid(km.NoBid, km.NoAsk); ok {
		in.NoCents = normalize.Float(no)
	}

	if in.YesCents != nil {
		in.Volume24h = normalize.Float(contractsToUSD(km.Volume24h, *in.YesCents))
		in.VolumeTotal = normalize.Float(contractsToUSD(km.Volume, *in.YesCents))
	}
	if km.Liquidity > 0 {
		in.LiquidityScore = normalize.Float(domain.LiquidityScoreFromUSD(km.Liquidity/100, liquidityHalfPoint))
	}
	if km.LastPrice > 0 && km.PreviousPrice > 0 {
		in.PriceChange24hCents = normalize.Float(km.LastPrice - km.PreviousPrice)
	}
	return in
}

// contractsToUSD aproxima el nocional en USD de un volumen en contratos.
// Kalshi reporta volumen en contratos; el resto del pipeline trabaja en USD.
func contractsToUSD(contracts, priceCents float64) float64 {
	return contracts * priceCents / 100
}

// mid devuelve el punto medio bid/ask si ambos lados están cotizados.
func mid(bid, ask float64) (float64, bool) {
	if bid <= 0 || ask <= 0 || ask < bid {
		return 0, false
	}
	return (bid + ask) / 2, true
}
