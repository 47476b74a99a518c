package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/settlement"
)

// Postgres implementa Store sobre database/sql (lib/pq).
// Usa lock pessimista (FOR UPDATE) nas linhas de usuário e aposta para que
// liquidações concorrentes da mesma aposta sejam mutuamente exclusivas.
type Postgres struct {
	db     *sql.DB
	buffer time.Duration
}

// NewPostgres retorna o repositório com a janela de corte de aceitação.
func NewPostgres(db *sql.DB, acceptanceBuffer time.Duration) *Postgres {
	return &Postgres{db: db, buffer: acceptanceBuffer}
}

func (p *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, balance_cents, created_at)
		VALUES ($1, $2, 0, NOW())`,
		u.ID, u.DisplayName,
	)
	return translateErr(err)
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, display_name, balance_cents, created_at
		FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.DisplayName, &u.BalanceCents, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

func (p *Postgres) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Deposit credita saldo e registra a operação no ledger na mesma transação.
func (p *Postgres) Deposit(ctx context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	return p.adjustBalance(ctx, userID, amountCents, model.EntryDeposit, "deposit:"+externalRef)
}

// Withdraw debita saldo com checagem de cobertura dentro da transação.
func (p *Postgres) Withdraw(ctx context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	return p.adjustBalance(ctx, userID, -amountCents, model.EntryWithdrawal, "withdraw:"+externalRef)
}

func (p *Postgres) adjustBalance(ctx context.Context, userID string, deltaCents int64, entryType model.EntryType, desc string) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, translateErr(err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, model.ErrUserNotFound
	}
	if err != nil {
		return 0, translateErr(err)
	}

	if balance+deltaCents < 0 {
		return 0, model.ErrInsufficientBalance
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, wager_id, entry_type, amount_cents, description, created_at)
		VALUES ($1, $2, NULL, $3, $4, $5, NOW())`,
		uuid.NewString(), userID, entryType, deltaCents, desc,
	); err != nil {
		return 0, translateErr(err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2`,
		deltaCents, userID,
	); err != nil {
		return 0, translateErr(err)
	}

	if err = tx.Commit(); err != nil {
		return 0, translateErr(err)
	}
	return balance + deltaCents, nil
}

// PlaceWager admite uma aposta numa única transação: valida linha e evento,
// congela preço/ponto, debita o stake e grava o lançamento STAKE_DEBIT.
func (p *Postgres) PlaceWager(ctx context.Context, userID, lineID string, stakeCents int64) (*model.Wager, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translateErr(err)
	}
	defer tx.Rollback()

	// linhas são imutáveis, não precisam de lock; o join traz o estado do evento
	var (
		price    int64
		point    sql.NullString
		evStatus string
		startsAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT l.price, l.point, e.status, e.starts_at
		FROM lines l
		JOIN markets m ON m.id = l.market_id
		JOIN events  e ON e.id = m.event_id
		WHERE l.id=$1`, lineID,
	).Scan(&price, &point, &evStatus, &startsAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrLineNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}

	if model.EventStatus(evStatus) != model.EventScheduled {
		return nil, model.ErrBettingClosed
	}
	// o início precisa estar a mais de buffer de distância do agora
	if !startsAt.After(time.Now().Add(p.buffer)) {
		return nil, model.ErrBettingClosed
	}

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	if balance < stakeCents {
		return nil, model.ErrInsufficientBalance
	}

	w := &model.Wager{
		ID:            uuid.NewString(),
		UserID:        userID,
		LineID:        lineID,
		StakeCents:    stakeCents,
		AcceptedPrice: price,
		Status:        model.WagerPending,
	}
	if point.Valid {
		w.AcceptedPoint = &point.String
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO wagers (id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', NOW())
		RETURNING placed_at`,
		w.ID, userID, lineID, stakeCents, price, point,
	).Scan(&w.PlacedAt)
	if err != nil {
		return nil, translateErr(err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, wager_id, entry_type, amount_cents, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		uuid.NewString(), userID, w.ID, model.EntryStakeDebit, -stakeCents, "stake:"+w.ID,
	); err != nil {
		return nil, translateErr(err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents - $1 WHERE id=$2`,
		stakeCents, userID,
	); err != nil {
		return nil, translateErr(err)
	}

	if err = tx.Commit(); err != nil {
		return nil, translateErr(err)
	}
	return w, nil
}

// SettleWager tira a aposta de PENDING exatamente uma vez. O FOR UPDATE na
// aposta serializa liquidações concorrentes: a segunda chamada enxerga o
// status terminal e recebe AlreadySettledError.
func (p *Postgres) SettleWager(ctx context.Context, wagerID string, outcome model.Outcome) (*model.Wager, *model.LedgerEntry, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, translateErr(err)
	}
	defer tx.Rollback()

	var (
		w     model.Wager
		point sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at
		FROM wagers WHERE id=$1 FOR UPDATE`, wagerID,
	).Scan(&w.ID, &w.UserID, &w.LineID, &w.StakeCents, &w.AcceptedPrice, &point, &w.Status, &w.PlacedAt)
	if err == sql.ErrNoRows {
		return nil, nil, model.ErrWagerNotFound
	}
	if err != nil {
		return nil, nil, translateErr(err)
	}
	if point.Valid {
		w.AcceptedPoint = &point.String
	}

	delta, err := settlement.Resolve(&w, outcome)
	if err != nil {
		return nil, nil, err
	}

	// atualização condicional: só sai de PENDING quem ainda está em PENDING
	res, err := tx.ExecContext(ctx, `
		UPDATE wagers SET status=$1, settled_at=NOW() WHERE id=$2 AND status='PENDING'`,
		outcome.Status(), wagerID,
	)
	if err != nil {
		return nil, nil, translateErr(err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return nil, nil, model.ErrTxConflict
	}

	var entry *model.LedgerEntry
	if delta != nil {
		// trava a linha do usuário antes de mexer no saldo
		if _, err = tx.ExecContext(ctx, `SELECT 1 FROM users WHERE id=$1 FOR UPDATE`, w.UserID); err != nil {
			return nil, nil, translateErr(err)
		}

		entry = &model.LedgerEntry{
			ID:          uuid.NewString(),
			UserID:      w.UserID,
			WagerID:     &w.ID,
			Type:        delta.EntryType,
			AmountCents: delta.AmountCents,
			Description: descriptionFor(delta.EntryType, w.ID),
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO ledger_entries (id, user_id, wager_id, entry_type, amount_cents, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`,
			entry.ID, entry.UserID, w.ID, entry.Type, entry.AmountCents, entry.Description,
		).Scan(&entry.CreatedAt)
		if err != nil {
			return nil, nil, translateErr(err)
		}

		if _, err = tx.ExecContext(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2`,
			delta.AmountCents, w.UserID,
		); err != nil {
			return nil, nil, translateErr(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, translateErr(err)
	}

	now := time.Now()
	w.Status = outcome.Status()
	w.SettledAt = &now
	return &w, entry, nil
}

func (p *Postgres) GetWager(ctx context.Context, id string) (*model.Wager, error) {
	var (
		w         model.Wager
		point     sql.NullString
		settledAt sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at, settled_at
		FROM wagers WHERE id=$1`, id,
	).Scan(&w.ID, &w.UserID, &w.LineID, &w.StakeCents, &w.AcceptedPrice, &point, &w.Status, &w.PlacedAt, &settledAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrWagerNotFound
	}
	if err != nil {
		return nil, translateErr(err)
	}
	if point.Valid {
		w.AcceptedPoint = &point.String
	}
	if settledAt.Valid {
		w.SettledAt = &settledAt.Time
	}
	return &w, nil
}

func (p *Postgres) ListWagersByUser(ctx context.Context, userID string) ([]model.Wager, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, line_id, stake_cents, accepted_price, accepted_point, status, placed_at, settled_at
		FROM wagers WHERE user_id=$1 ORDER BY placed_at DESC`, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var out []model.Wager
	for rows.Next() {
		var (
			w         model.Wager
			point     sql.NullString
			settledAt sql.NullTime
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.LineID, &w.StakeCents, &w.AcceptedPrice, &point, &w.Status, &w.PlacedAt, &settledAt); err != nil {
			return nil, err
		}
		if point.Valid {
			w.AcceptedPoint = &point.String
		}
		if settledAt.Valid {
			w.SettledAt = &settledAt.Time
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *Postgres) ListLedgerByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, wager_id, entry_type, amount_cents, description, created_at
		FROM ledger_entries WHERE user_id=$1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var (
			e       model.LedgerEntry
			wagerID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &wagerID, &e.Type, &e.AmountCents, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		if wagerID.Valid {
			e.WagerID = &wagerID.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) SumLedgerByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries WHERE user_id=$1`, userID,
	).Scan(&sum)
	return sum, translateErr(err)
}

// translateErr mapeia falhas de serialização/deadlock do Postgres para
// ErrTxConflict, o único tipo que o chamador deve repetir automaticamente.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return model.ErrTxConflict
		}
	}
	return err
}
