package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, cfg.Interval())
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout())
	assert.Equal(t, 24*time.Hour, cfg.PickTTL())
	assert.Equal(t, time.Duration(0), cfg.PostCooldown())
	assert.Equal(t, 100, cfg.Pipeline.MaxMarkets)
	assert.Equal(t, "live", cfg.Sources.Mode)
	assert.Equal(t, "template", cfg.Content.Provider)
	assert.Equal(t, "console", cfg.Publish.Provider)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Sources.Polymarket.IsEnabled())
	assert.True(t, cfg.Sources.Kalshi.IsEnabled())
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  interval_minutes: 30
  post_cooldown_hours: 48
sources:
  mode: FIXTURE
  kalshi:
    enabled: false
content:
  provider: llm
  model: gpt-4o
state:
  backend: redis
  addr: redis:6379
  db: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Interval())
	assert.Equal(t, 48*time.Hour, cfg.PostCooldown())
	assert.Equal(t, "fixture", cfg.Sources.Mode)
	assert.False(t, cfg.Sources.Kalshi.IsEnabled())
	assert.Equal(t, "gpt-4o", cfg.Content.Model)
	assert.Equal(t, "redis:6379", cfg.State.Addr)
	assert.Equal(t, 2, cfg.State.DB)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEYNAR_API_KEY", "neynar")
	t.Setenv("NEYNAR_SIGNER_UUID", "signer")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("MIYOMI_DB", ":memory:")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.Content.APIKey)
	assert.Equal(t, "neynar", cfg.Publish.APIKey)
	assert.Equal(t, "signer", cfg.Publish.SignerUUID)
	assert.Equal(t, "secret", cfg.State.Password)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
}

func TestLoad_UnknownEnumRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "publish:\n  provider: twitter\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline: [unterminated\n"))
	assert.Error(t, err)
}

func TestScoringWeights_Overlay(t *testing.T) {
	s := ScoringConfig{
		FadeYesAbove:  0.8,
		TopicBonus:    map[string]float64{domain.TopicNYC: 50},
		ExtraKeywords: map[string][]string{domain.TopicCrypto: {"pepe"}},
	}
	def := domain.DefaultWeights()
	require.NotContains(t, def.Lexicon[domain.TopicCrypto], "pepe")

	w := s.Weights()

	assert.Equal(t, 0.8, w.FadeYesAbove)
	assert.Equal(t, def.FadeNoBelow, w.FadeNoBelow)
	assert.Equal(t, 50.0, w.TopicBonus[domain.TopicNYC])
	assert.Equal(t, def.TopicBonus[domain.TopicCrypto], w.TopicBonus[domain.TopicCrypto])
	assert.Contains(t, w.Lexicon[domain.TopicCrypto], "pepe")

	// los defaults no quedan alterados
	assert.NotContains(t, domain.DefaultLexicon()[domain.TopicCrypto], "pepe")
	assert.Equal(t, 40.0, domain.DefaultWeights().TopicBonus[domain.TopicNYC])
}

func TestScoringWeights_NewTopicGetsBonus(t *testing.T) {
	s := ScoringConfig{
		ExtraKeywords: map[string][]string{
			"sports":        {"touchdown"},
			domain.TopicNYC: {"brooklyn"},
		},
		TopicBonus: map[string]float64{"weather": 25},
	}
	w := s.Weights()

	assert.Equal(t, float64(defaultTopicBonus), w.TopicBonus["sports"])
	assert.Equal(t, []string{"touchdown"}, w.Lexicon["sports"])
	assert.Equal(t, 40.0, w.TopicBonus[domain.TopicNYC], "existing bonus kept")
	assert.Equal(t, 25.0, w.TopicBonus["weather"])

	topics := domain.MatchTopics(w.Lexicon, "Will the Chiefs score a touchdown first?")
	assert.Equal(t, []string{"sports"}, topics)
	assert.Equal(t, float64(defaultTopicBonus), domain.CulturalRelevance(topics, w))
}
