package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/wager-ledger-poc/internal/lines-service/dto"
)

// ReadRepo é o acesso somente-leitura às tabelas de linhas.
type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListEvents(ctx context.Context) ([]dto.Event, error) {
	const q = `
		SELECT id, home_team, away_team,
		       to_char(starts_at, 'YYYY-MM-DD"T"HH24:MI:SSZ'), status
		FROM events
		ORDER BY starts_at;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Event
	for rows.Next() {
		var e dto.Event
		if err := rows.Scan(&e.EventID, &e.HomeTeam, &e.AwayTeam, &e.StartsAt, &e.Status); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetCurrentLines retorna a cotação mais recente de cada (mercado, seleção)
// de um evento, direto da visão corrente.
func (r *ReadRepo) GetCurrentLines(ctx context.Context, eventID string) ([]dto.Line, error) {
	const q = `
		SELECT lc.line_id, m.event_id, m.market_kind, lc.selection, lc.point, lc.price,
		       to_char(lc.captured_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM lines_current lc
		JOIN markets m ON m.id = lc.market_id
		WHERE m.event_id = $1
		ORDER BY m.market_kind, lc.selection;
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Line
	for rows.Next() {
		var (
			l     dto.Line
			point sql.NullString
		)
		if err := rows.Scan(&l.LineID, &l.EventID, &l.MarketKind, &l.Selection, &point, &l.Price, &l.CapturedAt); err != nil {
			return nil, err
		}
		if point.Valid {
			l.Point = &point.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListLineHistory retorna o histórico append-only de cotações de um evento.
func (r *ReadRepo) ListLineHistory(ctx context.Context, eventID string) ([]dto.Line, error) {
	const q = `
		SELECT l.id, m.event_id, m.market_kind, l.selection, l.point, l.price,
		       to_char(l.captured_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM lines l
		JOIN markets m ON m.id = l.market_id
		WHERE m.event_id = $1
		ORDER BY l.captured_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Line
	for rows.Next() {
		var (
			l     dto.Line
			point sql.NullString
		)
		if err := rows.Scan(&l.LineID, &l.EventID, &l.MarketKind, &l.Selection, &point, &l.Price, &l.CapturedAt); err != nil {
			return nil, err
		}
		if point.Valid {
			l.Point = &point.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
