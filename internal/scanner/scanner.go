package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/alejandrodnm/miyomi/internal/domain/strategy"
	"github.com/alejandrodnm/miyomi/internal/ports"
)

const statsRunsKey = "stats:runs"

// Config contiene la configuración del scanner.
type Config struct {
	Interval      time.Duration
	Once          bool // un solo ciclo y salir
	SourceTimeout time.Duration
	MaxMarkets    int // límite del agregador, 0 = sin límite
	Workers       int
	Priority      SourcePriority
	Filter        FilterConfig
	PickTTL       time.Duration
	PostCooldown  time.Duration // 0 = sin cooldown
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Interval:      6 * time.Hour,
		SourceTimeout: defaultSourceTimeout,
		MaxMarkets:    100,
		Priority:      DefaultPriority(),
		Filter:        DefaultFilterConfig(),
		PickTTL:       defaultPickTTL,
		PostCooldown:  72 * time.Hour,
	}
}

// Result es la salida de un ciclo del pipeline.
type Result struct {
	StartedAt     time.Time
	Duration      time.Duration
	Markets       []domain.MarketRecord // agregados, ya deduplicados
	Opportunities []domain.Opportunity  // sin SKIP, ordenadas por score
	Skipped       int
	SourcesFailed []domain.Source
	Pick          *domain.Pick
}

// Summary aplana el resultado para persistirlo.
func (r Result) Summary() domain.RunSummary {
	s := domain.RunSummary{
		StartedAt:     r.StartedAt,
		Duration:      r.Duration,
		Markets:       len(r.Markets),
		Opportunities: len(r.Opportunities),
		Skipped:       r.Skipped,
		SourcesFailed: r.SourcesFailed,
	}
	if r.Pick != nil {
		s.PickID = r.Pick.ID
	}
	return s
}

// Option configura dependencias opcionales del Scanner.
type Option func(*Scanner)

// WithStorage persiste ciclos y picks.
func WithStorage(s ports.Storage) Option {
	return func(sc *Scanner) { sc.storage = s }
}

// WithStateStore guarda cooldowns de publicación y contadores.
func WithStateStore(s ports.StateStore) Option {
	return func(sc *Scanner) { sc.state = s }
}

// WithPublishing activa la generación y publicación del post del pick.
func WithPublishing(gen ports.ContentGenerator, pub ports.Publisher) Option {
	return func(sc *Scanner) {
		sc.generator = gen
		sc.publisher = pub
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(sc *Scanner) { sc.now = now }
}

// Scanner es el orquestador del pipeline: fetch → aggregate → score →
// filter → pick → notify/persist/publish.
type Scanner struct {
	cfg       Config
	sources   []ports.MarketSource
	analyzer  strategy.Strategy
	notifier  ports.Notifier
	filter    *Filter
	storage   ports.Storage
	state     ports.StateStore
	generator ports.ContentGenerator
	publisher ports.Publisher
	now       func() time.Time

	mu   sync.RWMutex
	last *Result
}

// New crea un Scanner con las dependencias obligatorias inyectadas.
func New(
	cfg Config,
	sources []ports.MarketSource,
	analyzer strategy.Strategy,
	notifier ports.Notifier,
	opts ...Option,
) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	s := &Scanner{
		cfg:      cfg,
		sources:  sources,
		analyzer: analyzer,
		notifier: notifier,
		filter:   NewFilter(cfg.Filter),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta el loop hasta que el contexto se cancele. Si cfg.Once está
// activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.Interval,
		"once", s.cfg.Once,
		"sources", len(s.sources),
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}

	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta el pipeline de puntuación y selección sin efectos
// secundarios (no notifica, no persiste, no publica).
func (s *Scanner) RunOnce(ctx context.Context) (Result, error) {
	start := s.now()

	lists, failed := fetchAll(ctx, s.sources, s.cfg.SourceTimeout)
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scanner.RunOnce: %w", err)
	}

	markets := Aggregate(lists, s.cfg.Priority, s.cfg.MaxMarkets)
	scored := analyzeConcurrent(ctx, s.analyzer, markets, s.cfg.Workers)
	kept, skipped := s.filter.Apply(scored)
	ranked := Rank(kept)

	candidates := s.withoutCooldown(ctx, ranked)
	pick := Pick(candidates, start, s.cfg.PickTTL)

	return Result{
		StartedAt:     start,
		Duration:      s.now().Sub(start),
		Markets:       markets,
		Opportunities: ranked,
		Skipped:       skipped,
		SourcesFailed: failed,
		Pick:          pick,
	}, nil
}

// LastResult devuelve el resultado del último ciclo completo.
func (s *Scanner) LastResult() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// LatestOpportunities devuelve el ranking del último ciclo y cuándo empezó.
func (s *Scanner) LatestOpportunities() ([]domain.Opportunity, time.Time, bool) {
	res, ok := s.LastResult()
	return res.Opportunities, res.StartedAt, ok
}

// runCycle ejecuta un ciclo completo y notifica/persiste/publica los
// resultados. Solo falla si el propio pipeline falla; los errores de
// colaboradores se loguean.
func (s *Scanner) runCycle(ctx context.Context) error {
	res, err := s.RunOnce(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()

	if err := s.notifier.Notify(ctx, res.Opportunities, res.Pick); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if res.Pick == nil {
		slog.Info("no pick this cycle", "reason", domain.ErrNoOpportunity)
	} else {
		s.handlePick(ctx, *res.Pick)
	}

	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, res.Summary()); err != nil {
			slog.Warn("storage error", "op", "save_run", "err", err)
		}
	}
	s.bumpRuns(ctx)

	slog.Info("scan cycle complete",
		"markets", len(res.Markets),
		"opportunities", len(res.Opportunities),
		"skipped", res.Skipped,
		"sources_failed", len(res.SourcesFailed),
		"duration", res.Duration.Round(time.Millisecond),
	)
	return nil
}

// handlePick persiste el pick y, si hay publicación configurada, genera y
// publica el post. Los fallos aguas abajo no afectan al ciclo.
func (s *Scanner) handlePick(ctx context.Context, pick domain.Pick) {
	m := pick.Opportunity.Market
	slog.Info("pick selected",
		"id", pick.ID,
		"market", m.Key(),
		"position", pick.Position(),
		"score", fmt.Sprintf("%.1f", pick.Opportunity.Score),
		"confidence", fmt.Sprintf("%.2f", pick.Confidence),
	)

	if s.storage != nil {
		if err := s.storage.SavePick(ctx, pick.Record()); err != nil {
			slog.Warn("storage error", "op", "save_pick", "err", err)
		}
	}

	if s.generator == nil || s.publisher == nil {
		return
	}

	text, err := s.generator.Generate(ctx, pick)
	if err != nil {
		slog.Warn("content generation failed", "pick", pick.ID, "err", err)
		return
	}
	res, err := s.publisher.Publish(ctx, text)
	if err != nil {
		slog.Warn("publish failed", "pick", pick.ID, "err", err)
		return
	}

	if s.storage != nil {
		if err := s.storage.MarkPublished(ctx, pick.ID, text, res.ID); err != nil {
			slog.Warn("storage error", "op", "mark_published", "err", err)
		}
	}
	if s.state != nil && s.cfg.PostCooldown > 0 {
		if err := s.state.Put(ctx, cooldownKey(m), []byte(pick.ID), s.cfg.PostCooldown); err != nil {
			slog.Warn("state store error", "op", "cooldown", "err", err)
		}
	}
}

// withoutCooldown quita los mercados publicados dentro del cooldown.
// Si el store falla, el mercado se considera disponible.
func (s *Scanner) withoutCooldown(ctx context.Context, opps []domain.Opportunity) []domain.Opportunity {
	if s.state == nil || s.cfg.PostCooldown <= 0 {
		return opps
	}
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		_, err := s.state.Get(ctx, cooldownKey(o.Market))
		switch {
		case err == nil:
			slog.Debug("market in post cooldown", "market", o.Market.Key())
			continue
		case !errors.Is(err, domain.ErrNotFound):
			slog.Warn("state store error", "op", "cooldown_check", "err", err)
		}
		out = append(out, o)
	}
	return out
}

// bumpRuns incrementa el contador de ciclos del state store.
func (s *Scanner) bumpRuns(ctx context.Context) {
	if s.state == nil {
		return
	}
	err := s.state.Update(ctx, statsRunsKey, func(old []byte) ([]byte, error) {
		n, _ := strconv.Atoi(string(old))
		return []byte(strconv.Itoa(n + 1)), nil
	})
	if err != nil {
		slog.Warn("state store error", "op", "stats", "err", err)
	}
}

// RunCount devuelve cuántos ciclos se registraron en el state store.
func (s *Scanner) RunCount(ctx context.Context) (int, error) {
	if s.state == nil {
		return 0, nil
	}
	b, err := s.state.Get(ctx, statsRunsKey)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scanner.RunCount: %w", err)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("scanner.RunCount: corrupt counter %q: %w", b, err)
	}
	return n, nil
}

func cooldownKey(m domain.MarketRecord) string {
	return "posted:" + string(m.Source) + ":" + m.ID
}
