package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/miyomi/config"
	"github.com/alejandrodnm/miyomi/internal/adapters/content"
	"github.com/alejandrodnm/miyomi/internal/adapters/farcaster"
	"github.com/alejandrodnm/miyomi/internal/adapters/fixture"
	"github.com/alejandrodnm/miyomi/internal/adapters/kalshi"
	"github.com/alejandrodnm/miyomi/internal/adapters/polymarket"
	"github.com/alejandrodnm/miyomi/internal/adapters/redisstore"
	"github.com/alejandrodnm/miyomi/internal/adapters/storage"
	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/ports"
	"github.com/alejandrodnm/miyomi/internal/scanner"
)

// buildSources arma los conectores habilitados, en vivo o desde fixtures.
func buildSources(cfg *config.Config) []ports.MarketSource {
	sc := cfg.Sources
	liq := sc.LiquidityHalfPoint
	var out []ports.MarketSource

	if sc.Polymarket.IsEnabled() {
		if sc.Mode == "fixture" {
			out = append(out, fixture.NewSource(domain.SourcePolymarket, sc.Polymarket.Fixture,
				func(data []byte) ([]domain.MarketRecord, error) {
					return polymarket.ParseMarkets(data, liq)
				}))
		} else {
			out = append(out, polymarket.NewClient(polymarket.Config{
				GammaBase:          sc.Polymarket.BaseURL,
				MaxRecords:         sc.MaxRecords,
				Timeout:            cfg.SourceTimeout(),
				LiquidityHalfPoint: liq,
			}))
		}
	}

	if sc.Kalshi.IsEnabled() {
		if sc.Mode == "fixture" {
			out = append(out, fixture.NewSource(domain.SourceKalshi, sc.Kalshi.Fixture,
				func(data []byte) ([]domain.MarketRecord, error) {
					return kalshi.ParseMarkets(data, liq)
				}))
		} else {
			out = append(out, kalshi.NewClient(kalshi.Config{
				BaseURL:            sc.Kalshi.BaseURL,
				MaxRecords:         sc.MaxRecords,
				Timeout:            cfg.SourceTimeout(),
				LiquidityHalfPoint: liq,
			}))
		}
	}
	return out
}

// buildStateStore elige memoria o Redis.
func buildStateStore(ctx context.Context, cfg config.StateConfig) (ports.StateStore, error) {
	if cfg.Backend != "redis" {
		return storage.NewMemoryStateStore(), nil
	}
	st, err := redisstore.New(ctx, redisstore.Config{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Prefix:     cfg.Prefix,
		TLSEnabled: cfg.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("buildStateStore: %w", err)
	}
	return st, nil
}

// buildPublishing arma generador y publisher. Con provider "none" devuelve
// publisher nil y el scanner no publica.
func buildPublishing(cfg *config.Config) (ports.ContentGenerator, ports.Publisher, error) {
	var pub ports.Publisher
	switch cfg.Publish.Provider {
	case "none":
		return nil, nil, nil
	case "farcaster":
		n, err := farcaster.NewNeynar(farcaster.Config{
			BaseURL:    cfg.Publish.BaseURL,
			APIKey:     cfg.Publish.APIKey,
			SignerUUID: cfg.Publish.SignerUUID,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("buildPublishing: %w", err)
		}
		pub = n
	default:
		pub = farcaster.NewConsole()
	}

	tmpl := content.NewTemplate()
	if cfg.Content.Provider != "llm" {
		return tmpl, pub, nil
	}
	if cfg.Content.APIKey == "" {
		slog.Warn("OPENAI_API_KEY not set, using template content")
		return tmpl, pub, nil
	}
	llm, err := content.NewLLM(content.LLMConfig{
		APIKey:      cfg.Content.APIKey,
		BaseURL:     cfg.Content.BaseURL,
		Model:       cfg.Content.Model,
		Timeout:     cfg.ContentTimeout(),
		Temperature: cfg.Content.Temperature,
		MaxTokens:   cfg.Content.MaxTokens,
	}, tmpl)
	if err != nil {
		return nil, nil, fmt.Errorf("buildPublishing: %w", err)
	}
	return llm, pub, nil
}

func scannerConfig(cfg *config.Config, once bool) scanner.Config {
	sc := scanner.DefaultConfig()
	sc.Interval = cfg.Interval()
	sc.Once = once
	sc.SourceTimeout = cfg.SourceTimeout()
	sc.MaxMarkets = cfg.Pipeline.MaxMarkets
	sc.Workers = cfg.Pipeline.Workers
	sc.PickTTL = cfg.PickTTL()
	sc.PostCooldown = cfg.PostCooldown()
	sc.Filter = scanner.FilterConfig{
		MinScore:        cfg.Pipeline.MinScore,
		MinHoursToClose: cfg.Pipeline.MinHoursToClose,
	}
	for name, rank := range cfg.Sources.Priority {
		sc.Priority[domain.Source(name)] = rank
	}
	return sc
}
