package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// VerifyUserBalance checa a invariante central do sistema para um usuário:
// saldo materializado == soma dos lançamentos do ledger. Usada pelos testes
// e pela auditoria periódica.
func (e *Engine) VerifyUserBalance(ctx context.Context, userID string) error {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	sum, err := e.store.SumLedgerByUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.BalanceCents != sum {
		return fmt.Errorf("ledger drift for user %s: balance=%d ledger_sum=%d", userID, u.BalanceCents, sum)
	}
	return nil
}

// Auditor varre todos os usuários num intervalo fixo verificando a
// invariante saldo x ledger. Uma violação aqui significa bug de escrita
// em algum caminho mutante, nunca condição normal de operação.
type Auditor struct {
	Log      *zap.Logger
	Engine   *Engine
	Interval time.Duration

	OnViolation func(userID string) // métricas (counter++)
}

// Run bloqueia até o contexto ser cancelado.
func (a *Auditor) Run(ctx context.Context) {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

func (a *Auditor) sweep(ctx context.Context) {
	ids, err := a.Engine.store.ListUserIDs(ctx)
	if err != nil {
		a.Log.Warn("audit list users failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		if err := a.Engine.VerifyUserBalance(ctx, id); err != nil {
			a.Log.Error("balance invariant violated", zap.String("userId", id), zap.Error(err))
			if a.OnViolation != nil {
				a.OnViolation(id)
			}
		}
	}
}
