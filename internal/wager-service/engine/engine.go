// Package engine é a fachada do core: único caminho de mutação de apostas,
// ledger e saldos. A camada HTTP e o grading-worker chamam o engine; o
// engine valida entradas tipadas na borda e delega as unidades atômicas
// ao store.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/store"
	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

// Publisher emite eventos de domínio no Kafka. Pode ser nil em testes.
type Publisher interface {
	PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error
	PublishWagerSettled(ctx context.Context, e events.WagerSettled) error
}

type Engine struct {
	log   *zap.Logger
	store store.Store
	publ  Publisher
}

func New(log *zap.Logger, s store.Store, publ Publisher) *Engine {
	return &Engine{log: log, store: s, publ: publ}
}

// PlaceWager valida a entrada e admite a aposta. As pré-condições que
// dependem de estado (linha, evento, saldo) são checadas dentro da
// transação do store; aqui fica só a validação pura.
func (e *Engine) PlaceWager(ctx context.Context, userID, lineID string, stakeCents int64) (*model.Wager, error) {
	if stakeCents < 1 {
		return nil, model.ErrInvalidStake
	}
	if userID == "" {
		return nil, model.ErrUserNotFound
	}
	if lineID == "" {
		return nil, model.ErrLineNotFound
	}

	w, err := e.store.PlaceWager(ctx, userID, lineID, stakeCents)
	if err != nil {
		return nil, err
	}

	if e.publ != nil {
		ev := events.WagerPlaced{
			WagerID:       w.ID,
			UserID:        w.UserID,
			LineID:        w.LineID,
			StakeCents:    w.StakeCents,
			AcceptedPrice: w.AcceptedPrice,
			AcceptedPoint: w.AcceptedPoint,
			TsUnixMs:      time.Now().UnixMilli(),
		}
		if perr := e.publ.PublishWagerPlaced(ctx, ev); perr != nil {
			// publicação é best-effort; a aceitação já foi commitada
			e.log.Warn("publish wager_placed failed", zap.String("wagerId", w.ID), zap.Error(perr))
		}
	}

	return w, nil
}

// SettleWager aplica o resultado fornecido pelo colaborador de graduação.
// Resultados fora do enum são rejeitados antes de tocar o store.
func (e *Engine) SettleWager(ctx context.Context, wagerID string, outcome model.Outcome) (*model.Wager, *model.LedgerEntry, error) {
	if !outcome.Valid() {
		return nil, nil, model.ErrInvalidOutcome
	}
	if wagerID == "" {
		return nil, nil, model.ErrWagerNotFound
	}

	w, entry, err := e.store.SettleWager(ctx, wagerID, outcome)
	if err != nil {
		return nil, nil, err
	}

	if e.publ != nil {
		var payout int64
		if entry != nil {
			payout = entry.AmountCents
		}
		ev := events.WagerSettled{
			WagerID:     w.ID,
			UserID:      w.UserID,
			Outcome:     string(outcome),
			PayoutCents: payout,
			Ts:          time.Now().UTC(),
		}
		if perr := e.publ.PublishWagerSettled(ctx, ev); perr != nil {
			e.log.Warn("publish wager_settled failed", zap.String("wagerId", w.ID), zap.Error(perr))
		}
	}

	return w, entry, nil
}

// --- Operações de conta ---

func (e *Engine) CreateUser(ctx context.Context, displayName string) (*model.User, error) {
	u := &model.User{DisplayName: displayName}
	if err := e.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return e.store.GetUser(ctx, u.ID)
}

func (e *Engine) GetUser(ctx context.Context, id string) (*model.User, error) {
	return e.store.GetUser(ctx, id)
}

func (e *Engine) Deposit(ctx context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	if amountCents < 1 {
		return 0, model.ErrInvalidStake
	}
	return e.store.Deposit(ctx, userID, amountCents, externalRef)
}

func (e *Engine) Withdraw(ctx context.Context, userID string, amountCents int64, externalRef string) (int64, error) {
	if amountCents < 1 {
		return 0, model.ErrInvalidStake
	}
	return e.store.Withdraw(ctx, userID, amountCents, externalRef)
}

// --- Acessores de leitura ---

func (e *Engine) GetWager(ctx context.Context, id string) (*model.Wager, error) {
	return e.store.GetWager(ctx, id)
}

func (e *Engine) ListWagersByUser(ctx context.Context, userID string) ([]model.Wager, error) {
	return e.store.ListWagersByUser(ctx, userID)
}

func (e *Engine) ListLedgerByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	return e.store.ListLedgerByUser(ctx, userID)
}
