package storage

// sqlite.go: historial de ciclos y picks.
//
// Estrategia:
//   - `runs`: resumen ligero por ciclo. Siempre 1 fila por ciclo.
//   - `picks`: UNA fila por pick (UPSERT por id). La tesis se guarda como JSON.
//   - Prune automático al arrancar: runs > 30d. Los picks no se podan; son
//     el histórico que consume la API.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at     DATETIME NOT NULL,
    duration_ms    INTEGER  NOT NULL DEFAULT 0,
    markets        INTEGER  NOT NULL DEFAULT 0,
    opportunities  INTEGER  NOT NULL DEFAULT 0,
    skipped        INTEGER  NOT NULL DEFAULT 0,
    sources_failed TEXT     NOT NULL DEFAULT '',
    pick_id        TEXT     NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS picks (
    id           TEXT PRIMARY KEY,
    created_at   DATETIME NOT NULL,
    source       TEXT     NOT NULL,
    market_id    TEXT     NOT NULL,
    title        TEXT     NOT NULL,
    category     TEXT     NOT NULL DEFAULT '',
    position     TEXT     NOT NULL,
    yes_price    INTEGER  NOT NULL DEFAULT 0,
    score        REAL     NOT NULL DEFAULT 0,
    confidence   REAL     NOT NULL DEFAULT 0,
    target_price INTEGER  NOT NULL DEFAULT 0,
    stop_loss    INTEGER  NOT NULL DEFAULT 0,
    expires_at   DATETIME,
    closes_at    DATETIME,
    thesis       TEXT     NOT NULL DEFAULT '[]',
    post_text    TEXT     NOT NULL DEFAULT '',
    cast_hash    TEXT     NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_at    ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_picks_at   ON picks(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_picks_mkt  ON picks(source, market_id);
`

const retentionRuns = 30 * 24 * time.Hour

const pickColumns = `id, created_at, source, market_id, title, category, position,
	yes_price, score, confidence, target_price, stop_loss, expires_at, closes_at,
	thesis, post_text, cast_hash`

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el resumen del ciclo.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.RunSummary) error {
	failed := make([]string, len(run.SourcesFailed))
	for i, src := range run.SourcesFailed {
		failed[i] = string(src)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ms, markets, opportunities, skipped, sources_failed, pick_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC(), run.Duration.Milliseconds(), run.Markets, run.Opportunities,
		run.Skipped, strings.Join(failed, ","), run.PickID,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert: %w", err)
	}
	return nil
}

// SavePick hace upsert de un pick. Re-guardar el mismo id no pisa el texto
// publicado si el nuevo registro no lo trae.
func (s *SQLiteStorage) SavePick(ctx context.Context, p domain.PickRecord) error {
	if p.ID == "" {
		return fmt.Errorf("storage.SavePick: %w: empty id", domain.ErrValidation)
	}
	thesis, err := json.Marshal(p.Thesis)
	if err != nil {
		return fmt.Errorf("storage.SavePick: marshal thesis: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO picks (`+pickColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			score        = excluded.score,
			confidence   = excluded.confidence,
			target_price = excluded.target_price,
			stop_loss    = excluded.stop_loss,
			expires_at   = excluded.expires_at,
			thesis       = excluded.thesis,
			post_text    = CASE WHEN excluded.post_text != '' THEN excluded.post_text ELSE post_text END,
			cast_hash    = CASE WHEN excluded.cast_hash != '' THEN excluded.cast_hash ELSE cast_hash END
	`,
		p.ID, p.CreatedAt.UTC(), string(p.Source), p.MarketID, p.Title, p.Category, string(p.Position),
		p.YesPrice, p.Score, p.Confidence, p.TargetPrice, p.StopLoss,
		nullTime(p.ExpiresAt), nullTime(p.ClosesAt),
		string(thesis), p.PostText, p.CastHash,
	); err != nil {
		return fmt.Errorf("storage.SavePick: upsert %s: %w", p.ID, err)
	}
	return nil
}

// MarkPublished guarda el texto publicado y el id del cast.
func (s *SQLiteStorage) MarkPublished(ctx context.Context, pickID, text, castHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE picks SET post_text = ?, cast_hash = ? WHERE id = ?`, text, castHash, pickID)
	if err != nil {
		return fmt.Errorf("storage.MarkPublished: update %s: %w", pickID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.MarkPublished: %s: %w", pickID, domain.ErrNotFound)
	}
	return nil
}

// GetPicks devuelve picks cuyo created_at está en el rango dado, más
// recientes primero. limit <= 0 = sin límite.
func (s *SQLiteStorage) GetPicks(ctx context.Context, from, to time.Time, limit int) ([]domain.PickRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 = sin límite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pickColumns+`
		FROM picks
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC, id
		LIMIT ?`, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPicks: query: %w", err)
	}
	defer rows.Close()

	var picks []domain.PickRecord
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.GetPicks: %w", err)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// LatestPick devuelve el último pick o domain.ErrNotFound.
func (s *SQLiteStorage) LatestPick(ctx context.Context) (domain.PickRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pickColumns+`
		FROM picks
		ORDER BY created_at DESC, id
		LIMIT 1`)
	p, err := scanPick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PickRecord{}, fmt.Errorf("storage.LatestPick: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.PickRecord{}, fmt.Errorf("storage.LatestPick: %w", err)
	}
	return p, nil
}

// GetRuns devuelve los últimos ciclos, más recientes primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT started_at, duration_ms, markets, opportunities, skipped, sources_failed, pick_id
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		var (
			run        domain.RunSummary
			durationMS int64
			failed     string
		)
		if err := rows.Scan(&run.StartedAt, &durationMS, &run.Markets, &run.Opportunities,
			&run.Skipped, &failed, &run.PickID); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if failed != "" {
			for _, src := range strings.Split(failed, ",") {
				run.SourcesFailed = append(run.SourcesFailed, domain.Source(src))
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

type scanner interface {
	Scan(dest ...any) error
}

func scanPick(row scanner) (domain.PickRecord, error) {
	var (
		p                   domain.PickRecord
		source, position    string
		expiresAt, closesAt sql.NullTime
		thesis              string
	)
	if err := row.Scan(
		&p.ID, &p.CreatedAt, &source, &p.MarketID, &p.Title, &p.Category, &position,
		&p.YesPrice, &p.Score, &p.Confidence, &p.TargetPrice, &p.StopLoss,
		&expiresAt, &closesAt, &thesis, &p.PostText, &p.CastHash,
	); err != nil {
		return domain.PickRecord{}, err
	}
	p.Source = domain.Source(source)
	p.Position = domain.Position(position)
	p.ExpiresAt = expiresAt.Time
	p.ClosesAt = closesAt.Time
	if err := json.Unmarshal([]byte(thesis), &p.Thesis); err != nil {
		return domain.PickRecord{}, fmt.Errorf("decode thesis %s: %w", p.ID, err)
	}
	return p, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// pruneOld elimina ciclos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}
