package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 200
	defaultTimeout   = 30 * time.Second
)

const systemPrompt = `You are Miyomi, a sharp, playful contrarian who reads prediction markets
for fun. You write one short social post (max 280 characters) about a single
market call. Rules:
- State the side (YES or NO), the market and the current price.
- Give the one strongest reason from the thesis in plain words.
- Confident but never promise profit. No hashtags, no emojis spam, at most one emoji.
- End with "nfa".
Reply with the post text only.`

// LLMConfig configura el generador LLM.
type LLMConfig struct {
	APIKey      string
	BaseURL     string // vacío = api.openai.com
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// LLM genera posts con un modelo de chat compatible con OpenAI. Si la
// llamada falla y hay fallback configurado, usa el fallback.
type LLM struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	fallback    *Template
}

// NewLLM crea el generador. Devuelve error si falta la API key.
func NewLLM(cfg LLMConfig, fallback *Template) (*LLM, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("content.NewLLM: API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	temp := cfg.Temperature
	if temp < 0 {
		temp = 0
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		openaiCfg.BaseURL = base
	}

	return &LLM{
		api:         openai.NewClientWithConfig(openaiCfg),
		model:       model,
		temperature: temp,
		maxTokens:   maxTokens,
		timeout:     timeout,
		fallback:    fallback,
	}, nil
}

// Generate implementa ports.ContentGenerator.
func (g *LLM) Generate(ctx context.Context, pick domain.Pick) (string, error) {
	if pick.Position() == domain.PositionSkip || pick.Position() == "" {
		return "", fmt.Errorf("content.LLM: %w: pick has no position", domain.ErrValidation)
	}

	text, err := g.complete(ctx, userPrompt(pick))
	if err != nil {
		if g.fallback == nil {
			return "", fmt.Errorf("content.LLM: %w", err)
		}
		slog.Warn("llm generation failed, using template", "pick", pick.ID, "err", err)
		return g.fallback.Generate(ctx, pick)
	}
	return Trim(text, MaxPostBytes), nil
}

func (g *LLM) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	text := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}

// userPrompt describe el pick con los datos que el modelo necesita.
func userPrompt(p domain.Pick) string {
	m := p.Opportunity.Market
	var sb strings.Builder
	fmt.Fprintf(&sb, "Call: %s\n", callLine(p))
	fmt.Fprintf(&sb, "Venue: %s\n", m.Source)
	if m.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", m.Category)
	}
	fmt.Fprintf(&sb, "Market closes: %s\n", m.ClosesAt.UTC().Format("Jan 2, 2006"))
	fmt.Fprintf(&sb, "Target %d¢, stop %d¢, confidence %.0f%%\n", p.TargetPrice, p.StopLoss, p.Confidence*100)
	sb.WriteString("Thesis:\n")
	for _, line := range p.Thesis {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	return sb.String()
}
