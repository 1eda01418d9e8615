package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

var ErrNotFound = errors.New("game not found")

// Postgres implementa o cache persistente de placares (tabela game_scores)
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de placares
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Colunas na ordem esperada por scanRecord
const recordColumns = `
	game_id, sport_type, home_team, away_team, home_team_logo, away_team_logo,
	home_score, away_score, status, period, time_remaining,
	scheduled_at, started_at, completed_at, venue, metadata,
	last_updated, created_at`

// Upsert insere o jogo se o game_id for novo, senão sobrescreve os campos
// mutáveis (placar, status, progresso, timing, metadata) e renova last_updated.
// game_id, created_at, nomes dos times e scheduled_at são imutáveis após o
// primeiro insert. started_at/completed_at só são gravados uma vez (COALESCE).
func (p *Postgres) Upsert(ctx context.Context, rec model.GameRecord) (model.GameRecord, error) {
	q := `
		INSERT INTO game_scores
		  (game_id, sport_type, home_team, away_team, home_team_logo, away_team_logo,
		   home_score, away_score, status, period, time_remaining,
		   scheduled_at, started_at, completed_at, venue, metadata, last_updated)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW())
		ON CONFLICT (game_id) DO UPDATE SET
		  home_team_logo = EXCLUDED.home_team_logo,
		  away_team_logo = EXCLUDED.away_team_logo,
		  home_score     = EXCLUDED.home_score,
		  away_score     = EXCLUDED.away_score,
		  status         = EXCLUDED.status,
		  period         = EXCLUDED.period,
		  time_remaining = EXCLUDED.time_remaining,
		  started_at     = COALESCE(game_scores.started_at, EXCLUDED.started_at),
		  completed_at   = COALESCE(game_scores.completed_at, EXCLUDED.completed_at),
		  venue          = EXCLUDED.venue,
		  metadata       = EXCLUDED.metadata,
		  last_updated   = NOW()
		RETURNING ` + recordColumns

	row := p.db.QueryRowContext(ctx, q,
		rec.GameID, rec.SportType, rec.HomeTeam, rec.AwayTeam,
		nullStr(rec.HomeTeamLogo), nullStr(rec.AwayTeamLogo),
		rec.HomeScore, rec.AwayScore, rec.Status,
		nullStr(rec.Period), nullStr(rec.TimeRemaining),
		rec.ScheduledAt, nullTime(rec.StartedAt), nullTime(rec.CompletedAt),
		nullStr(rec.Venue), nullBytes(rec.Metadata),
	)

	out, err := scanRecord(row)
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("upsert game %s: %w", rec.GameID, err)
	}
	return out, nil
}

// FindByGameID retorna um jogo pelo identificador externo
func (p *Postgres) FindByGameID(ctx context.Context, gameID string) (model.GameRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM game_scores WHERE game_id = $1`
	rec, err := scanRecord(p.db.QueryRowContext(ctx, q, gameID))
	if err == sql.ErrNoRows {
		return model.GameRecord{}, ErrNotFound
	}
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("find game %s: %w", gameID, err)
	}
	return rec, nil
}

// FindByStatus retorna jogos por status canônico, ordenados por scheduled_at.
// sport vazio retorna todas as modalidades.
func (p *Postgres) FindByStatus(ctx context.Context, status model.GameStatus, sport model.SportType) ([]model.GameRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM game_scores
		WHERE status = $1 AND ($2 = '' OR sport_type = $2)
		ORDER BY scheduled_at ASC`
	return p.queryRecords(ctx, q, status, string(sport))
}

// FindLive retorna os jogos em andamento (status live)
func (p *Postgres) FindLive(ctx context.Context, sport model.SportType) ([]model.GameRecord, error) {
	return p.FindByStatus(ctx, model.StatusLive, sport)
}

// FindUpcoming retorna os próximos jogos agendados, mais cedo primeiro
func (p *Postgres) FindUpcoming(ctx context.Context, sport model.SportType, limit int) ([]model.GameRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM game_scores
		WHERE status = 'scheduled' AND sport_type = $1 AND scheduled_at > NOW()
		ORDER BY scheduled_at ASC
		LIMIT $2`
	return p.queryRecords(ctx, q, sport, limit)
}

// FindRecentlyCompleted retorna jogos finalizados dentro da janela de lookback,
// mais recente primeiro
func (p *Postgres) FindRecentlyCompleted(ctx context.Context, sport model.SportType, hoursBack int, limit int) ([]model.GameRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM game_scores
		WHERE status = 'final' AND sport_type = $1
		  AND completed_at >= NOW() - ($2 * INTERVAL '1 hour')
		ORDER BY completed_at DESC
		LIMIT $3`
	return p.queryRecords(ctx, q, sport, hoursBack, limit)
}

// FindByDateRange retorna jogos com scheduled_at dentro de [start, end]
func (p *Postgres) FindByDateRange(ctx context.Context, sport model.SportType, start, end time.Time) ([]model.GameRecord, error) {
	q := `SELECT ` + recordColumns + `
		FROM game_scores
		WHERE sport_type = $1 AND scheduled_at BETWEEN $2 AND $3
		ORDER BY scheduled_at ASC`
	return p.queryRecords(ctx, q, sport, start, end)
}

// GetCacheStatus calcula o sumário derivado da modalidade: contagem por
// status e o last_updated mais recente (relógio de frescor do cache)
func (p *Postgres) GetCacheStatus(ctx context.Context, sport model.SportType) (model.CacheStatus, error) {
	const q = `
		SELECT status, COUNT(*), MAX(last_updated)
		FROM game_scores
		WHERE sport_type = $1
		GROUP BY status`

	rows, err := p.db.QueryContext(ctx, q, sport)
	if err != nil {
		return model.CacheStatus{}, fmt.Errorf("cache status %s: %w", sport, err)
	}
	defer rows.Close()

	cs := model.CacheStatus{
		SportType: sport,
		ByStatus:  make(map[model.GameStatus]int),
	}
	for rows.Next() {
		var st model.GameStatus
		var n int
		var max time.Time
		if err := rows.Scan(&st, &n, &max); err != nil {
			return model.CacheStatus{}, err
		}
		cs.ByStatus[st] = n
		cs.Total += n
		if max.After(cs.LastUpdated) {
			cs.LastUpdated = max
		}
	}
	return cs, rows.Err()
}

// DeleteOlderThan apaga jogos finalizados há mais de `days` dias.
// Jogos não finalizados nunca são removidos, independente da idade.
func (p *Postgres) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	const q = `
		DELETE FROM game_scores
		WHERE status = 'final'
		  AND completed_at IS NOT NULL
		  AND completed_at < NOW() - ($1 * INTERVAL '1 day')`

	res, err := p.db.ExecContext(ctx, q, days)
	if err != nil {
		return 0, fmt.Errorf("delete older than %dd: %w", days, err)
	}
	return res.RowsAffected()
}

func (p *Postgres) queryRecords(ctx context.Context, q string, args ...any) ([]model.GameRecord, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanner cobre *sql.Row e *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.GameRecord, error) {
	var (
		rec                        model.GameRecord
		homeLogo, awayLogo, period sql.NullString
		timeRemaining, venue       sql.NullString
		startedAt, completedAt     sql.NullTime
		metadata                   []byte
	)
	err := s.Scan(
		&rec.GameID, &rec.SportType, &rec.HomeTeam, &rec.AwayTeam, &homeLogo, &awayLogo,
		&rec.HomeScore, &rec.AwayScore, &rec.Status, &period, &timeRemaining,
		&rec.ScheduledAt, &startedAt, &completedAt, &venue, &metadata,
		&rec.LastUpdated, &rec.CreatedAt,
	)
	if err != nil {
		return model.GameRecord{}, err
	}
	rec.HomeTeamLogo = homeLogo.String
	rec.AwayTeamLogo = awayLogo.String
	rec.Period = period.String
	rec.TimeRemaining = timeRemaining.String
	rec.Venue = venue.String
	if startedAt.Valid {
		t := startedAt.Time
		rec.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	rec.Metadata = metadata
	return rec, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
