package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

// PostgresRepo persiste o snapshot store de linhas: eventos e mercados
// são upsertados, cotações são sempre APPEND — nenhuma linha existente é
// atualizada ou apagada; re-cotação vira linha nova.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// marketID deriva um id determinístico por (evento, tipo de mercado),
// estável entre mensagens do mesmo mercado.
func marketID(eventID, kind string) string { return eventID + ":" + kind }

// UpsertEvent insere ou atualiza o evento pai da cotação.
// Status e horário de início mudam (SCHEDULED -> LIVE -> FINAL); o evento
// não faz parte do snapshot imutável.
func (r *PostgresRepo) UpsertEvent(ctx context.Context, e events.LineUpdate) error {
	const q = `
		INSERT INTO events (id, home_team, away_team, starts_at, status)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
		  home_team = EXCLUDED.home_team,
		  away_team = EXCLUDED.away_team,
		  starts_at = EXCLUDED.starts_at,
		  status    = EXCLUDED.status
	`
	_, err := r.DB.ExecContext(ctx, q, e.EventID, e.HomeTeam, e.AwayTeam, e.StartsAt, e.EventStatus)
	return err
}

// UpsertMarket garante a existência do mercado (evento, tipo).
func (r *PostgresRepo) UpsertMarket(ctx context.Context, e events.LineUpdate) error {
	const q = `
		INSERT INTO markets (id, event_id, market_kind)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q, marketID(e.EventID, e.MarketKind), e.EventID, e.MarketKind)
	return err
}

// InsertLine anexa a cotação imutável ao histórico e retorna o id gerado.
func (r *PostgresRepo) InsertLine(ctx context.Context, e events.LineUpdate) (string, error) {
	id := uuid.NewString()
	const q = `
		INSERT INTO lines (id, market_id, selection, point, price, source, captured_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.DB.ExecContext(ctx, q,
		id, marketID(e.EventID, e.MarketKind), e.Selection, e.Point, e.Price, e.Source, e.CapturedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpsertCurrent mantém a tabela de leitura com a cotação mais recente por
// (mercado, seleção). Só a visão corrente é mutável; o histórico não.
func (r *PostgresRepo) UpsertCurrent(ctx context.Context, lineID string, e events.LineUpdate) error {
	const q = `
		INSERT INTO lines_current (market_id, selection, line_id, point, price, captured_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (market_id, selection) DO UPDATE SET
		  line_id     = EXCLUDED.line_id,
		  point       = EXCLUDED.point,
		  price       = EXCLUDED.price,
		  captured_at = EXCLUDED.captured_at
		WHERE lines_current.captured_at <= EXCLUDED.captured_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		marketID(e.EventID, e.MarketKind), e.Selection, lineID, e.Point, e.Price, e.CapturedAt,
	)
	return err
}
