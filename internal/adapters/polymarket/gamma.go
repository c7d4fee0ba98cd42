package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 50
)

// FetchMarkets devuelve los mercados abiertos de Gamma ordenados por volumen
// 24h, paginando con offset hasta el tope de seguridad.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error) {
	var raw []gammaMarket

	for offset := 0; offset < c.maxRecords; offset += gammaPageSize {
		limit := min(gammaPageSize, c.maxRecords-offset)

		q := url.Values{}
		q.Set("active", "true")
		q.Set("closed", "false")
		q.Set("order", "volume24hr")
		q.Set("ascending", "false")
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		u := c.gammaBase + gammaMarketsPath + "?" + q.Encode()

		var page []gammaMarket
		if err := c.http.Get(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("gamma.FetchMarkets: offset %d: %w", offset, err)
		}
		raw = append(raw, page...)

		slog.Debug("fetched gamma markets page",
			"count", len(page),
			"total", len(raw),
		)

		if len(page) < limit {
			break
		}
	}

	markets := mapMarkets(raw, c.liqHalf)
	slog.Info("polymarket markets fetched", "raw", len(raw), "kept", len(markets))
	return markets, nil
}
