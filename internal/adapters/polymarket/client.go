package polymarket

import (
	"time"

	"github.com/alejandrodnm/miyomi/internal/adapters/httpclient"
	"github.com/alejandrodnm/miyomi/internal/domain"
)

const (
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Gamma /markets: 300/10s → 180/10s al 60% → 18/s
	gammaRatePerSec = 18

	defaultMaxRecords = 100
)

// Config configura el conector de Polymarket.
type Config struct {
	GammaBase          string
	MaxRecords         int // tope de seguridad de la paginación
	Timeout            time.Duration
	LiquidityHalfPoint float64
}

// Client es el conector de Polymarket sobre la API pública de Gamma.
// Implementa ports.MarketSource.
type Client struct {
	http       *httpclient.Client
	gammaBase  string
	maxRecords int
	liqHalf    float64
}

// NewClient crea un Client. Si GammaBase está vacío usa el URL de producción.
func NewClient(cfg Config) *Client {
	if cfg.GammaBase == "" {
		cfg.GammaBase = defaultGammaBase
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
			RatePerSec: gammaRatePerSec,
			Burst:      10,
		}),
		gammaBase:  cfg.GammaBase,
		maxRecords: cfg.MaxRecords,
		liqHalf:    cfg.LiquidityHalfPoint,
	}
}

// Name implementa ports.MarketSource.
func (c *Client) Name() domain.Source {
	return domain.SourcePolymarket
}
