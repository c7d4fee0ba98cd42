package kalshi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/miyomi/internal/adapters/httpclient"
	"github.com/alejandrodnm/miyomi/internal/domain"
)

const (
	defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	marketsPath    = "/markets"

	// Tier básico: 20 lecturas/s → 12/s al 60%
	ratePerSec = 12

	pageSize          = 100
	defaultMaxRecords = 100
)

// Config configura el conector de Kalshi.
type Config struct {
	BaseURL            string
	MaxRecords         int
	Timeout            time.Duration
	LiquidityHalfPoint float64
}

// Client es el conector de Kalshi. Implementa ports.MarketSource.
type Client struct {
	http       *httpclient.Client
	baseURL    string
	maxRecords int
	liqHalf    float64
}

// NewClient crea un Client. Si BaseURL está vacío usa el URL de producción.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = defaultMaxRecords
	}
	if cfg.LiquidityHalfPoint <= 0 {
		cfg.LiquidityHalfPoint = domain.DefaultLiquidityHalfPoint
	}
	return &Client{
		http: httpclient.New(httpclient.Config{
			Timeout:    cfg.Timeout,
			RatePerSec: ratePerSec,
			Burst:      5,
		}),
		baseURL:    cfg.BaseURL,
		maxRecords: cfg.MaxRecords,
		liqHalf:    cfg.LiquidityHalfPoint,
	}
}

// Name implementa ports.MarketSource.
func (c *Client) Name() domain.Source {
	return domain.SourceKalshi
}

// FetchMarkets devuelve los mercados abiertos, paginando por cursor hasta el
// tope de seguridad.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error) {
	var raw []kalshiMarket
	cursor := ""

	for len(raw) < c.maxRecords {
		q := url.Values{}
		q.Set("status", "open")
		q.Set("limit", strconv.Itoa(min(pageSize, c.maxRecords-len(raw))))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp marketsResponse
		if err := c.http.Get(ctx, c.baseURL+marketsPath+"?"+q.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("kalshi.FetchMarkets: %w", err)
		}
		raw = append(raw, resp.Markets...)

		slog.Debug("fetched kalshi markets page",
			"count", len(resp.Markets),
			"total", len(raw),
			"has_more", resp.Cursor != "",
		)

		if resp.Cursor == "" || len(resp.Markets) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	if len(raw) > c.maxRecords {
		raw = raw[:c.maxRecords]
	}

	markets := mapMarkets(raw, c.liqHalf)
	slog.Info("kalshi markets fetched", "raw", len(raw), "kept", len(markets))
	return markets, nil
}
