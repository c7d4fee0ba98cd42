package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/normalize"
)

// ParseMarkets decodifica un payload de GET /markets (array JSON), descarta
// mercados inactivos o cerrados y normaliza el resto. Lo usan tanto el
// conector live como la fuente de fixtures.
func ParseMarkets(data []byte, liquidityHalfPoint float64) ([]domain.MarketRecord, error) {
	var raw []gammaMarket
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("polymarket.ParseMarkets: %w", err)
	}
	return mapMarkets(raw, liquidityHalfPoint), nil
}

// mapMarkets filtra y normaliza los DTOs de Gamma.
func mapMarkets(raw []gammaMarket, liquidityHalfPoint float64) []domain.MarketRecord {
	inputs := make([]normalize.Input, 0, len(raw))
	for _, gm := range raw {
		if !isOpen(gm) {
			continue
		}
		inputs = append(inputs, toInput(gm, liquidityHalfPoint))
	}
	return normalize.Batch(inputs)
}

func isOpen(gm gammaMarket) bool {
	return gm.Active && !gm.Closed && !gm.Archived
}

// toInput convierte un gammaMarket a normalize.Input.
// Gamma expresa precios como probabilidad [0,1]; aquí se pasan a centavos.
func toInput(gm gammaMarket, liquidityHalfPoint float64) normalize.Input {
	in := normalize.Input{
		Source:        domain.SourcePolymarket,
		ID:            gm.ID,
		Title:         gm.Question,
		Category:      gm.Category,
		ClosesAt:      gm.EndDate,
		LastTradeTime: gm.UpdatedAt,
	}
	if in.ID == "" {
		in.ID = gm.ConditionID
	}
	if in.ClosesAt == "" {
		in.ClosesAt = gm.EndDateISO
	}
	if in.Category == "" && len(gm.Events) > 0 {
		in.Category = gm.Events[0].Category
	}

	if yes, no, ok := outcomePrices(gm.Outcomes, gm.OutcomePrices); ok {
		in.YesCents = normalize.Float(yes * 100)
		in.NoCents = normalize.Float(no * 100)
	} else if last, ok := number(gm.LastTradePrice); ok {
		in.YesCents = normalize.Float(last * 100)
	}

	if v, ok := firstNumber(gm.Volume24h); ok {
		in.Volume24h = normalize.Float(v)
	}
	if v, ok := firstNumber(gm.VolumeNum, gm.Volume); ok {
		in.VolumeTotal = normalize.Float(v)
	}
	if v, ok := firstNumber(gm.LiquidityNum, gm.Liquidity); ok {
		in.LiquidityScore = normalize.Float(domain.LiquidityScoreFromUSD(v, liquidityHalfPoint))
	}
	if v, ok := number(gm.OneDayPriceChange); ok {
		in.PriceChange24hCents = normalize.Float(v * 100)
	}
	return in
}

// outcomePrices extrae los precios YES/NO de los strings JSON de Gamma.
// Si los outcomes no son Yes/No se toma el primero como YES.
func outcomePrices(outcomesRaw, pricesRaw string) (yes, no float64, ok bool) {
	var prices []string
	if err := json.Unmarshal([]byte(pricesRaw), &prices); err != nil || len(prices) < 2 {
		return 0, 0, false
	}
	var outcomes []string
	_ = json.Unmarshal([]byte(outcomesRaw), &outcomes)

	yesIdx, noIdx := 0, 1
	for i, o := range outcomes {
		switch strings.ToLower(o) {
		case "yes":
			yesIdx = i
		case "no":
			noIdx = i
		}
	}
	if yesIdx >= len(prices) || noIdx >= len(prices) || yesIdx == noIdx {
		return 0, 0, false
	}

	y, err1 := strconv.ParseFloat(prices[yesIdx], 64)
	n, err2 := strconv.ParseFloat(prices[noIdx], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return y, n, true
}

func number(n json.Number) (float64, bool) {
	if n == "" {
		return 0, false
	}
	v, err := n.Float64()
	return v, err == nil
}

func firstNumber(ns ...json.Number) (float64, bool) {
	for _, n := range ns {
		if v, ok := number(n); ok {
			return v, true
		}
	}
	return 0, false
}
