// Package farcaster publica posts como casts vía la API de Neynar, o los
// imprime por consola cuando no hay credenciales.
package farcaster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alejandrodnm/miyomi/internal/adapters/httpclient"
	"github.com/alejandrodnm/miyomi/internal/domain"
)

const (
	defaultBaseURL = "https://api.neynar.com"
	castPath       = "/v2/farcaster/cast"
	maxCastBytes   = 320
)

// Config configura el publisher de Neynar.
type Config struct {
	BaseURL    string
	APIKey     string
	SignerUUID string
	Timeout    time.Duration
}

type castRequest struct {
	SignerUUID string `json:"signer_uuid"`
	Text       string `json:"text"`
}

type castResponse struct {
	Success bool `json:"success"`
	Cast    struct {
		Hash   string `json:"hash"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"cast"`
}

// Neynar implementa ports.Publisher.
type Neynar struct {
	http       *httpclient.Client
	baseURL    string
	signerUUID string
}

// NewNeynar crea el publisher. API key y signer son obligatorios.
func NewNeynar(cfg Config) (*Neynar, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.SignerUUID) == "" {
		return nil, fmt.Errorf("farcaster.NewNeynar: api key and signer uuid are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Neynar{
		http: httpclient.New(httpclient.Config{
			Timeout:    cfg.Timeout,
			RatePerSec: 1,
			Burst:      1,
			MaxRetries: 1, // un POST reintentado puede duplicar el cast
			Headers:    map[string]string{"x-api-key": cfg.APIKey},
		}),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signerUUID: cfg.SignerUUID,
	}, nil
}

// Publish publica text como cast. Rechaza textos vacíos o más largos que
// el límite del protocolo.
func (n *Neynar) Publish(ctx context.Context, text string) (domain.PublishResult, error) {
	if err := validate(text); err != nil {
		return domain.PublishResult{}, fmt.Errorf("farcaster.Publish: %w", err)
	}

	var resp castResponse
	err := n.http.Post(ctx, n.baseURL+castPath, castRequest{SignerUUID: n.signerUUID, Text: text}, &resp)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("farcaster.Publish: %w", err)
	}
	if resp.Cast.Hash == "" {
		return domain.PublishResult{}, fmt.Errorf("farcaster.Publish: response without cast hash")
	}

	res := domain.PublishResult{ID: resp.Cast.Hash}
	if u := resp.Cast.Author.Username; u != "" {
		res.URL = fmt.Sprintf("https://warpcast.com/%s/%s", u, shortHash(resp.Cast.Hash))
	}
	slog.Info("cast published", "hash", res.ID, "url", res.URL)
	return res, nil
}

// Console imprime el post en lugar de publicarlo.
type Console struct {
	out io.Writer
}

// NewConsole crea un publisher que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un publisher para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Publish implementa ports.Publisher.
func (c *Console) Publish(_ context.Context, text string) (domain.PublishResult, error) {
	if err := validate(text); err != nil {
		return domain.PublishResult{}, fmt.Errorf("farcaster.Console: %w", err)
	}
	fmt.Fprintf(c.out, "\n--- POST (%d bytes) ---\n%s\n-----------------------\n", len(text), text)
	return domain.PublishResult{}, nil
}

func validate(text string) error {
	switch {
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: empty text", domain.ErrValidation)
	case len(text) > maxCastBytes:
		return fmt.Errorf("%w: text is %d bytes, max %d", domain.ErrValidation, len(text), maxCastBytes)
	case !utf8.ValidString(text):
		return fmt.Errorf("%w: invalid utf-8", domain.ErrValidation)
	}
	return nil
}

// shortHash es el formato de URL de Warpcast: 0x + 8 hex.
func shortHash(h string) string {
	if len(h) > 10 {
		return h[:10]
	}
	return h
}
