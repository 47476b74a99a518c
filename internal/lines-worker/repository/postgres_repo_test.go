package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

func sampleUpdate() events.LineUpdate {
	pt := "-3.5"
	return events.LineUpdate{
		EventID:     "MATCH_001",
		HomeTeam:    "Flamengo",
		AwayTeam:    "Palmeiras",
		StartsAt:    time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC),
		EventStatus: "SCHEDULED",
		MarketKind:  "SPREAD",
		Selection:   "home",
		Point:       &pt,
		Price:       -110,
		Source:      "provider-simulator",
		CapturedAt:  time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	ev := sampleUpdate()

	mock.ExpectExec("INSERT INTO events").
		WithArgs("MATCH_001", "Flamengo", "Palmeiras", ev.StartsAt, "SCHEDULED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertEvent(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMarketDerivesStableID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	ev := sampleUpdate()

	// id determinístico por (evento, tipo) para que re-cotações caiam no
	// mesmo mercado
	mock.ExpectExec("INSERT INTO markets").
		WithArgs("MATCH_001:SPREAD", "MATCH_001", "SPREAD").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpsertMarket(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLineAppendsAndReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	ev := sampleUpdate()

	mock.ExpectExec("INSERT INTO lines ").
		WithArgs(sqlmock.AnyArg(), "MATCH_001:SPREAD", "home", "-3.5", int64(-110), "provider-simulator", ev.CapturedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.InsertLine(context.Background(), ev)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCurrentGuardsAgainstStaleUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	ev := sampleUpdate()

	// cláusula WHERE garante que captured_at nunca anda para trás
	mock.ExpectExec("INSERT INTO lines_current").
		WithArgs("MATCH_001:SPREAD", "home", "line-42", "-3.5", int64(-110), ev.CapturedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpsertCurrent(context.Background(), "line-42", ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}
