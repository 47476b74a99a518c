package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
)

func TestPostgresPlaceWager(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := NewPostgres(db, 5*time.Minute)
	ctx := context.Background()

	t.Run("successful placement", func(t *testing.T) {
		startsAt := time.Now().Add(2 * time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.price, l.point, e.status, e.starts_at").
			WithArgs("line1").
			WillReturnRows(sqlmock.NewRows([]string{"price", "point", "status", "starts_at"}).
				AddRow(-110, "-3.5", "SCHEDULED", startsAt))
		mock.ExpectQuery("SELECT balance_cents FROM users WHERE id=\\$1 FOR UPDATE").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(20000))
		mock.ExpectQuery("INSERT INTO wagers").
			WithArgs(sqlmock.AnyArg(), "u1", "line1", int64(5000), int64(-110), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"placed_at"}).AddRow(time.Now()))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), model.EntryStakeDebit, int64(-5000), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET balance_cents = balance_cents - \\$1").
			WithArgs(int64(5000), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w, err := p.PlaceWager(ctx, "u1", "line1", 5000)
		require.NoError(t, err)
		assert.Equal(t, model.WagerPending, w.Status)
		assert.Equal(t, int64(-110), w.AcceptedPrice)
		require.NotNil(t, w.AcceptedPoint)
		assert.Equal(t, "-3.5", *w.AcceptedPoint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		startsAt := time.Now().Add(2 * time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.price, l.point, e.status, e.starts_at").
			WithArgs("line1").
			WillReturnRows(sqlmock.NewRows([]string{"price", "point", "status", "starts_at"}).
				AddRow(-110, nil, "SCHEDULED", startsAt))
		mock.ExpectQuery("SELECT balance_cents FROM users WHERE id=\\$1 FOR UPDATE").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(100))
		mock.ExpectRollback()

		_, err := p.PlaceWager(ctx, "u1", "line1", 5000)
		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("betting closed inside buffer", func(t *testing.T) {
		// começa daqui a 3min, janela de corte é 5min
		startsAt := time.Now().Add(3 * time.Minute)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.price, l.point, e.status, e.starts_at").
			WithArgs("line1").
			WillReturnRows(sqlmock.NewRows([]string{"price", "point", "status", "starts_at"}).
				AddRow(-110, nil, "SCHEDULED", startsAt))
		mock.ExpectRollback()

		_, err := p.PlaceWager(ctx, "u1", "line1", 5000)
		assert.ErrorIs(t, err, model.ErrBettingClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non scheduled event", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.price, l.point, e.status, e.starts_at").
			WithArgs("line1").
			WillReturnRows(sqlmock.NewRows([]string{"price", "point", "status", "starts_at"}).
				AddRow(-110, nil, "LIVE", time.Now().Add(time.Hour)))
		mock.ExpectRollback()

		_, err := p.PlaceWager(ctx, "u1", "line1", 5000)
		assert.ErrorIs(t, err, model.ErrBettingClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown line", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.price, l.point, e.status, e.starts_at").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"price", "point", "status", "starts_at"}))
		mock.ExpectRollback()

		_, err := p.PlaceWager(ctx, "u1", "ghost", 5000)
		assert.ErrorIs(t, err, model.ErrLineNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSettleWager(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := NewPostgres(db, 5*time.Minute)
	ctx := context.Background()

	wagerCols := []string{"id", "user_id", "line_id", "stake_cents", "accepted_price", "accepted_point", "status", "placed_at"}

	t.Run("won pays out in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at").
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows(wagerCols).
				AddRow("w1", "u1", "line1", 5000, -110, nil, "PENDING", time.Now()))
		mock.ExpectExec("UPDATE wagers SET status=\\$1, settled_at=NOW\\(\\) WHERE id=\\$2 AND status='PENDING'").
			WithArgs(model.WagerWon, "w1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("SELECT 1 FROM users WHERE id=\\$1 FOR UPDATE").
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "u1", "w1", model.EntryPayoutCredit, int64(9545), "payout:w1").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec("UPDATE users SET balance_cents = balance_cents \\+ \\$1").
			WithArgs(int64(9545), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w, entry, err := p.SettleWager(ctx, "w1", model.OutcomeWon)
		require.NoError(t, err)
		assert.Equal(t, model.WagerWon, w.Status)
		require.NotNil(t, entry)
		assert.Equal(t, int64(9545), entry.AmountCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost writes no ledger entry", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at").
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows(wagerCols).
				AddRow("w1", "u1", "line1", 5000, -110, nil, "PENDING", time.Now()))
		mock.ExpectExec("UPDATE wagers SET status=\\$1").
			WithArgs(model.WagerLost, "w1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w, entry, err := p.SettleWager(ctx, "w1", model.OutcomeLost)
		require.NoError(t, err)
		assert.Equal(t, model.WagerLost, w.Status)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already settled is rejected before any write", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at").
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows(wagerCols).
				AddRow("w1", "u1", "line1", 5000, -110, nil, "WON", time.Now()))
		mock.ExpectRollback()

		_, _, err := p.SettleWager(ctx, "w1", model.OutcomeLost)
		var settled *model.AlreadySettledError
		require.ErrorAs(t, err, &settled)
		assert.Equal(t, model.WagerWon, settled.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conditional update losing the race maps to conflict", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at").
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows(wagerCols).
				AddRow("w1", "u1", "line1", 5000, -110, nil, "PENDING", time.Now()))
		mock.ExpectExec("UPDATE wagers SET status=\\$1").
			WithArgs(model.WagerWon, "w1").
			WillReturnResult(sqlmock.NewResult(0, 0)) // outra transação chegou antes
		mock.ExpectRollback()

		_, _, err := p.SettleWager(ctx, "w1", model.OutcomeWon)
		assert.ErrorIs(t, err, model.ErrTxConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown wager", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(wagerCols))
		mock.ExpectRollback()

		_, _, err := p.SettleWager(ctx, "ghost", model.OutcomeWon)
		assert.ErrorIs(t, err, model.ErrWagerNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAdjustBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := NewPostgres(db, 5*time.Minute)
	ctx := context.Background()

	t.Run("deposit credits and records", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT balance_cents FROM users WHERE id=\\$1 FOR UPDATE").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(1000))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "u1", model.EntryDeposit, int64(5000), "deposit:ref1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET balance_cents = balance_cents \\+ \\$1").
			WithArgs(int64(5000), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		bal, err := p.Deposit(ctx, "u1", 5000, "ref1")
		require.NoError(t, err)
		assert.Equal(t, int64(6000), bal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("withdraw beyond balance rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT balance_cents FROM users WHERE id=\\$1 FOR UPDATE").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(1000))
		mock.ExpectRollback()

		_, err := p.Withdraw(ctx, "u1", 2000, "ref2")
		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateErr(t *testing.T) {
	assert.NoError(t, translateErr(nil))

	// somente conflitos transacionais viram ErrTxConflict
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := translateErr(&pq.Error{Code: pq.ErrorCode(code)})
		assert.ErrorIs(t, err, model.ErrTxConflict, "code %s", code)
	}

	other := &pq.Error{Code: "23505"} // unique_violation passa intocada
	assert.Equal(t, other, translateErr(other))
}
