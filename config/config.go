package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de miyomi.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sources  SourcesConfig  `yaml:"sources"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Content  ContentConfig  `yaml:"content"`
	Publish  PublishConfig  `yaml:"publish"`
	Storage  StorageConfig  `yaml:"storage"`
	State    StateConfig    `yaml:"state"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// PipelineConfig controla el loop y la selección.
type PipelineConfig struct {
	IntervalMinutes   int     `yaml:"interval_minutes"`
	MaxMarkets        int     `yaml:"max_markets"` // límite del agregador
	Workers           int     `yaml:"workers"`
	MinScore          float64 `yaml:"min_score"`
	MinHoursToClose   float64 `yaml:"min_hours_to_close"`
	PickTTLHours      int     `yaml:"pick_ttl_hours"`
	PostCooldownHours int     `yaml:"post_cooldown_hours"`
}

// SourcesConfig elige los proveedores y su modo.
type SourcesConfig struct {
	Mode               string         `yaml:"mode"` // live | fixture
	TimeoutSeconds     int            `yaml:"timeout_seconds"`
	MaxRecords         int            `yaml:"max_records"` // tope de paginación por proveedor
	LiquidityHalfPoint float64        `yaml:"liquidity_half_point_usd"`
	Polymarket         ProviderConfig `yaml:"polymarket"`
	Kalshi             ProviderConfig `yaml:"kalshi"`
	Priority           map[string]int `yaml:"priority"`
}

// ProviderConfig configura un proveedor.
type ProviderConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil = habilitado
	BaseURL string `yaml:"base_url"`
	Fixture string `yaml:"fixture"`
}

// IsEnabled devuelve true salvo que se deshabilite explícitamente.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ScoringConfig sobreescribe pesos del scorer. Los valores cero mantienen
// el default.
type ScoringConfig struct {
	SkipInefficiency   float64             `yaml:"skip_inefficiency"`
	SkipCultural       float64             `yaml:"skip_cultural"`
	FadeYesAbove       float64             `yaml:"fade_yes_above"`
	FadeNoBelow        float64             `yaml:"fade_no_below"`
	HypeCultural       float64             `yaml:"hype_cultural"`
	VolumeBaseline     float64             `yaml:"volume_baseline_usd"`
	VolumeAnomalyRatio float64             `yaml:"volume_anomaly_ratio"`
	NearCloseHours     float64             `yaml:"near_close_hours"`
	InefficiencyWeight float64             `yaml:"inefficiency_weight"`
	CulturalWeight     float64             `yaml:"cultural_weight"`
	TopicBonus         map[string]float64  `yaml:"topic_bonus"`
	ExtraKeywords      map[string][]string `yaml:"extra_keywords"`
}

// ContentConfig elige el generador de posts.
type ContentConfig struct {
	Provider       string  `yaml:"provider"` // template | llm
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	APIKey         string  `yaml:"-"` // OPENAI_API_KEY
}

// PublishConfig elige dónde se publica el post.
type PublishConfig struct {
	Provider   string `yaml:"provider"` // none | console | farcaster
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"-"` // NEYNAR_API_KEY
	SignerUUID string `yaml:"-"` // NEYNAR_SIGNER_UUID
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// StateConfig elige el backend del state store.
type StateConfig struct {
	Backend  string `yaml:"backend"` // memory | redis
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TLS      bool   `yaml:"tls"`
	Password string `yaml:"-"` // REDIS_PASSWORD
}

// ServerConfig controla la API de analítica.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Interval devuelve el intervalo entre ciclos.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Pipeline.IntervalMinutes) * time.Minute
}

// SourceTimeout devuelve el timeout por proveedor.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// ContentTimeout devuelve el timeout de la llamada al LLM.
func (c *Config) ContentTimeout() time.Duration {
	return time.Duration(c.Content.TimeoutSeconds) * time.Second
}

// PickTTL devuelve la vigencia de un pick.
func (c *Config) PickTTL() time.Duration {
	return time.Duration(c.Pipeline.PickTTLHours) * time.Hour
}

// PostCooldown devuelve cuánto se excluye un mercado ya publicado.
func (c *Config) PostCooldown() time.Duration {
	return time.Duration(c.Pipeline.PostCooldownHours) * time.Hour
}

// defaultTopicBonus se asigna a tópicos nuevos de extra_keywords sin
// topic_bonus propio.
const defaultTopicBonus = 30

// Weights superpone los valores no nulos sobre domain.DefaultWeights().
func (s ScoringConfig) Weights() domain.ScoringWeights {
	w := domain.DefaultWeights()
	overlay := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	overlay(&w.SkipInefficiency, s.SkipInefficiency)
	overlay(&w.SkipCultural, s.SkipCultural)
	overlay(&w.FadeYesAbove, s.FadeYesAbove)
	overlay(&w.FadeNoBelow, s.FadeNoBelow)
	overlay(&w.HypeCultural, s.HypeCultural)
	overlay(&w.VolumeBaseline, s.VolumeBaseline)
	overlay(&w.VolumeAnomalyRatio, s.VolumeAnomalyRatio)
	overlay(&w.NearCloseHours, s.NearCloseHours)
	overlay(&w.InefficiencyWeight, s.InefficiencyWeight)
	overlay(&w.CulturalWeight, s.CulturalWeight)

	for topic, bonus := range s.TopicBonus {
		if bonus > 0 {
			w.TopicBonus[topic] = bonus
		}
	}
	for topic, words := range s.ExtraKeywords {
		w.Lexicon[topic] = append(w.Lexicon[topic], words...)
		if w.TopicBonus[topic] <= 0 {
			w.TopicBonus[topic] = defaultTopicBonus
		}
	}
	return w
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MIYOMI_SOURCES_MODE"); v != "" {
		cfg.Sources.Mode = v
	}
	if v := os.Getenv("MIYOMI_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("MIYOMI_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.State.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.State.DB = n
		}
	}
	cfg.State.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Content.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Content.BaseURL = v
	}
	cfg.Publish.APIKey = os.Getenv("NEYNAR_API_KEY")
	cfg.Publish.SignerUUID = os.Getenv("NEYNAR_SIGNER_UUID")
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	p := &cfg.Pipeline
	if p.IntervalMinutes <= 0 {
		p.IntervalMinutes = 360
	}
	if p.MaxMarkets <= 0 {
		p.MaxMarkets = 100
	}
	if p.MinHoursToClose <= 0 {
		p.MinHoursToClose = 1
	}
	if p.PickTTLHours <= 0 {
		p.PickTTLHours = 24
	}
	if p.PostCooldownHours < 0 {
		p.PostCooldownHours = 0
	}

	s := &cfg.Sources
	s.Mode = strings.ToLower(s.Mode)
	if s.Mode == "" {
		s.Mode = "live"
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = 10
	}
	if s.MaxRecords <= 0 {
		s.MaxRecords = 100
	}
	if s.LiquidityHalfPoint <= 0 {
		s.LiquidityHalfPoint = domain.DefaultLiquidityHalfPoint
	}
	if s.Polymarket.BaseURL == "" {
		s.Polymarket.BaseURL = "https://gamma-api.polymarket.com"
	}
	if s.Polymarket.Fixture == "" {
		s.Polymarket.Fixture = "testdata/fixtures/polymarket_markets.json"
	}
	if s.Kalshi.BaseURL == "" {
		s.Kalshi.BaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if s.Kalshi.Fixture == "" {
		s.Kalshi.Fixture = "testdata/fixtures/kalshi_markets.json"
	}

	if cfg.Content.Provider == "" {
		cfg.Content.Provider = "template"
	}
	if cfg.Content.TimeoutSeconds <= 0 {
		cfg.Content.TimeoutSeconds = 30
	}
	if cfg.Publish.Provider == "" {
		cfg.Publish.Provider = "console"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "miyomi.db"
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = "memory"
	}
	if cfg.State.Addr == "" {
		cfg.State.Addr = "localhost:6379"
	}
	if cfg.State.Prefix == "" {
		cfg.State.Prefix = "miyomi:"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// validate rechaza valores de enumeraciones desconocidos.
func (c *Config) validate() error {
	checks := []struct {
		name, value string
		allowed     []string
	}{
		{"sources.mode", c.Sources.Mode, []string{"live", "fixture"}},
		{"content.provider", c.Content.Provider, []string{"template", "llm"}},
		{"publish.provider", c.Publish.Provider, []string{"none", "console", "farcaster"}},
		{"state.backend", c.State.Backend, []string{"memory", "redis"}},
	}
	for _, ch := range checks {
		ok := false
		for _, a := range ch.allowed {
			if ch.value == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s must be one of %s, got %q",
				domain.ErrValidation, ch.name, strings.Join(ch.allowed, "|"), ch.value)
		}
	}
	return nil
}
