package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := &ReadRepo{DB: db}

	mock.ExpectQuery("SELECT id, home_team, away_team").
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_team", "away_team", "starts_at", "status"}).
			AddRow("MATCH_001", "Flamengo", "Palmeiras", "2026-09-01T20:00:00Z", "SCHEDULED").
			AddRow("MATCH_002", "Grêmio", "Internacional", "2026-09-02T18:30:00Z", "LIVE"))

	evs, err := r.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "MATCH_001", evs[0].EventID)
	assert.Equal(t, "LIVE", evs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCurrentLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := &ReadRepo{DB: db}

	cols := []string{"line_id", "event_id", "market_kind", "selection", "point", "price", "captured_at"}
	mock.ExpectQuery("FROM lines_current lc").
		WithArgs("MATCH_001").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "MATCH_001", "MONEYLINE", "home", nil, 150, "2026-08-29T12:00:00Z").
			AddRow("l2", "MATCH_001", "SPREAD", "home", "-3.5", -110, "2026-08-29T12:00:05Z"))

	lines, err := r.GetCurrentLines(context.Background(), "MATCH_001")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Nil(t, lines[0].Point) // moneyline não tem ponto
	require.NotNil(t, lines[1].Point)
	assert.Equal(t, "-3.5", *lines[1].Point)
	assert.Equal(t, int64(-110), lines[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLineHistoryKeepsEveryQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := &ReadRepo{DB: db}

	cols := []string{"id", "event_id", "market_kind", "selection", "point", "price", "captured_at"}
	mock.ExpectQuery("FROM lines l").
		WithArgs("MATCH_001").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "MATCH_001", "SPREAD", "home", "-3.5", -110, "2026-08-29T12:00:00Z").
			AddRow("l2", "MATCH_001", "SPREAD", "home", "-3.5", -115, "2026-08-29T12:01:00Z").
			AddRow("l3", "MATCH_001", "SPREAD", "home", "-3.5", -110, "2026-08-29T12:02:00Z"))

	lines, err := r.ListLineHistory(context.Background(), "MATCH_001")
	require.NoError(t, err)
	// três cotações do mesmo mercado/seleção: histórico nunca colapsa
	require.Len(t, lines, 3)
	assert.Equal(t, int64(-115), lines[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}
